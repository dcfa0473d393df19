// Package metrics records engine activity in Prometheus collectors.
//
// There is no HTTP endpoint: a command run dumps the registry to a
// node-exporter textfile when asked to.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrNoTextfilePath = errors.New("metrics: textfile path is empty")

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets the buckets of the duration histogram.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry sets the registry metrics are registered on.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Manager owns the engine's collectors.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	eventsImported *prometheus.CounterVec
	rowsRejected   *prometheus.CounterVec
	rowWarnings    prometheus.Counter
	opDuration     *prometheus.HistogramVec
	gridCells      prometheus.Gauge
	networkEdges   prometheus.Gauge
}

// NewManager builds a Manager on its own registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "matchmetrics",
		buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)
	m.eventsImported = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "events_imported_total",
		Help:      "Events accepted by the validator, by source and event type.",
	}, []string{"source", "type"})
	m.rowsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rows_rejected_total",
		Help:      "Input rows dropped on import, by reason.",
	}, []string{"source", "reason"})
	m.rowWarnings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "row_warnings_total",
		Help:      "Accepted rows that lost optional fields.",
	})
	m.opDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of engine operations.",
		Buckets:   m.buckets,
	}, []string{"operation"})
	m.gridCells = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "heatmap_cells",
		Help:      "Non-empty cells in the last density grid built.",
	})
	m.networkEdges = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "network_edges",
		Help:      "Edges in the last pass network built.",
	})
	return m
}

func (m *Manager) Registry() *prometheus.Registry { return m.registry }

func (m *Manager) EventImported(source, eventType string) {
	m.eventsImported.WithLabelValues(source, eventType).Inc()
}

func (m *Manager) RowRejected(source, reason string) {
	m.rowsRejected.WithLabelValues(source, reason).Inc()
}

func (m *Manager) RowWarning() { m.rowWarnings.Inc() }

func (m *Manager) GridCells(n int) { m.gridCells.Set(float64(n)) }

func (m *Manager) NetworkEdges(n int) { m.networkEdges.Set(float64(n)) }

// ObserveDuration records how long operation took since start.
func (m *Manager) ObserveDuration(operation string, start time.Time) {
	m.opDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes every collected metric to path in the text
// exposition format.
func (m *Manager) WriteTextfile(path string) error {
	if path == "" {
		return ErrNoTextfilePath
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
