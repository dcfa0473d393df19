// Package engine runs the analytics operations with logging and metrics.
//
// The operations themselves live in their own packages and are pure; the
// engine only adds observability and applies configured defaults.
package engine

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-match-metrics/internal/classify"
	"github.com/pable/go-match-metrics/internal/config"
	"github.com/pable/go-match-metrics/internal/csvcodec"
	"github.com/pable/go-match-metrics/internal/heatmap"
	"github.com/pable/go-match-metrics/internal/ingest"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/network"
	"github.com/pable/go-match-metrics/internal/stats"
	"github.com/pable/go-match-metrics/internal/validate"
	"github.com/pable/go-match-metrics/pkg/logger"
	"github.com/pable/go-match-metrics/pkg/metrics"
)

const (
	SourceCSV  = "csv"
	SourceJSON = "json"
)

// Severity of an import Issue.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one problem found while importing. Row is 1-based.
type Issue struct {
	Row      int    `json:"row"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Import is the outcome of reading one event file.
type Import struct {
	ID     string             `json:"id"`
	Source string             `json:"source"`
	Events []model.MatchEvent `json:"events"`
	Issues []Issue            `json:"issues,omitempty"`
}

// Rejected counts the error issues.
func (im *Import) Rejected() int {
	n := 0
	for _, is := range im.Issues {
		if is.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Views bundles the three derived views of an event set.
type Views struct {
	Summary model.Summary         `json:"summary"`
	Players []model.PlayerSummary `json:"players"`
	Heatmap []model.HeatmapCell   `json:"heatmap"`
	Network model.Network         `json:"network"`
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// Engine is safe for concurrent use; it holds no event state.
type Engine struct {
	cfg     config.Config
	log     logger.Logger
	metrics *metrics.Manager
}

// New builds an Engine. A nil cfg means config.New().
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.New()
	}
	e := &Engine{cfg: *cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Named("engine")
	}
	if e.metrics == nil {
		e.metrics = metrics.NewManager(metrics.WithHistogramBuckets(e.cfg.DurationBuckets))
	}
	return e
}

func (e *Engine) Config() config.Config { return e.cfg }

func (e *Engine) Metrics() *metrics.Manager { return e.metrics }

// ImportCSV decodes a CSV export. A file without any valid row is an
// error, but the Import is still returned so its issues can be shown.
func (e *Engine) ImportCSV(ctx context.Context, r io.Reader) (*Import, error) {
	defer e.metrics.ObserveDuration("import_csv", time.Now())
	im := &Import{ID: uuid.NewString(), Source: SourceCSV}
	log := e.log.Named("import")

	res, err := csvcodec.Decode(r)
	if res != nil {
		im.Events = res.Events
		for _, pe := range res.ParseErrors {
			im.Issues = append(im.Issues, Issue{Row: pe.Row, Severity: SeverityError, Message: pe.Err.Error()})
			e.metrics.RowRejected(SourceCSV, "parse")
		}
		for _, re := range res.Rejected {
			im.Issues = append(im.Issues, Issue{Row: re.Row, Severity: SeverityError, Message: re.Err.Error()})
			e.metrics.RowRejected(SourceCSV, "validation")
		}
		for _, w := range res.Warnings {
			for _, is := range w.Issues {
				im.Issues = append(im.Issues, Issue{Row: w.Row, Severity: SeverityWarning, Message: is.String()})
			}
			e.metrics.RowWarning()
		}
	}
	sortIssues(im.Issues)
	e.countImported(SourceCSV, im.Events)

	if err != nil {
		log.Error(ctx, "csv import failed",
			logger.String("import_id", im.ID),
			logger.Int("issues", len(im.Issues)),
			logger.Error(err))
		return im, fmt.Errorf("import csv: %w", err)
	}
	log.Info(ctx, "csv import finished",
		logger.String("import_id", im.ID),
		logger.Int("events", len(im.Events)),
		logger.Int("rejected", im.Rejected()))
	return im, nil
}

// ImportJSON validates a raw event array from the tagging UI. Unlike CSV
// import, an array with no valid records is not an error.
func (e *Engine) ImportJSON(ctx context.Context, r io.Reader) (*Import, error) {
	defer e.metrics.ObserveDuration("import_json", time.Now())
	im := &Import{ID: uuid.NewString(), Source: SourceJSON}
	log := e.log.Named("import")

	raws, err := ingest.Read(r)
	if err != nil {
		log.Error(ctx, "json import failed", logger.String("import_id", im.ID), logger.Error(err))
		return nil, fmt.Errorf("import json: %w", err)
	}

	res := validate.Batch(raws)
	im.Events = res.Events
	for _, re := range res.Rejected {
		im.Issues = append(im.Issues, Issue{Row: re.Index + 1, Severity: SeverityError, Message: re.Err.Error()})
		e.metrics.RowRejected(SourceJSON, "validation")
	}
	for _, w := range res.Warnings {
		for _, is := range w.Issues {
			im.Issues = append(im.Issues, Issue{Row: w.Index + 1, Severity: SeverityWarning, Message: is.String()})
		}
		e.metrics.RowWarning()
	}
	sortIssues(im.Issues)
	e.countImported(SourceJSON, im.Events)

	log.Info(ctx, "json import finished",
		logger.String("import_id", im.ID),
		logger.Int("records", len(raws)),
		logger.Int("events", len(im.Events)),
		logger.Int("rejected", im.Rejected()))
	return im, nil
}

func (e *Engine) countImported(source string, events []model.MatchEvent) {
	for i := range events {
		e.metrics.EventImported(source, string(events[i].Type))
	}
}

// Summary aggregates events.
func (e *Engine) Summary(ctx context.Context, events []model.MatchEvent) model.Summary {
	defer e.metrics.ObserveDuration("aggregate", time.Now())
	s := stats.Aggregate(events)
	e.log.Debug(ctx, "aggregated events",
		logger.Int("events", s.TotalEvents),
		logger.Int("shots", s.Shots.Total),
		logger.Int("passes", s.Passes.Total),
		logger.Int("defensive", s.Defensive.Total))
	return s
}

// Players breaks events down per player.
func (e *Engine) Players(ctx context.Context, events []model.MatchEvent) []model.PlayerSummary {
	defer e.metrics.ObserveDuration("players", time.Now())
	ps := stats.ByPlayer(events)
	e.log.Debug(ctx, "player breakdown", logger.Int("players", len(ps)))
	return ps
}

// HeatmapOptions narrows a heatmap build. Zero values use the config.
type HeatmapOptions struct {
	GridSize int
	Zone     model.Zone
	Types    []model.EventType
}

// Heatmap builds a density grid.
func (e *Engine) Heatmap(ctx context.Context, events []model.MatchEvent, o HeatmapOptions) (*heatmap.Grid, error) {
	defer e.metrics.ObserveDuration("heatmap", time.Now())
	size := o.GridSize
	if size == 0 {
		size = e.cfg.GridSize
	}
	opts := []heatmap.Option{heatmap.WithEndWeight(e.cfg.PassEndWeight)}
	if o.Zone != "" {
		opts = append(opts, heatmap.WithZone(o.Zone))
	}
	if len(o.Types) > 0 {
		opts = append(opts, heatmap.WithTypes(o.Types...))
	}

	g, err := heatmap.Build(events, size, opts...)
	if err != nil {
		return nil, fmt.Errorf("build heatmap: %w", err)
	}
	e.metrics.GridCells(g.Len())
	e.log.Debug(ctx, "built heatmap",
		logger.Int("grid_size", size),
		logger.Int("cells", g.Len()),
		logger.Float64("max_density", g.Max()))
	return g, nil
}

// Network builds the pass graph. A negative threshold uses the config.
func (e *Engine) Network(ctx context.Context, events []model.MatchEvent, minPassThreshold int) model.Network {
	return e.FilteredNetwork(ctx, events, stats.Criteria{}, minPassThreshold)
}

// FilteredNetwork builds the pass graph from the passes matching crit.
// Receivers are still derived from the full sequence, so removing the
// opponent's events cannot turn a lost pass into a teammate link.
func (e *Engine) FilteredNetwork(ctx context.Context, events []model.MatchEvent, crit stats.Criteria, minPassThreshold int) model.Network {
	defer e.metrics.ObserveDuration("network", time.Now())
	if minPassThreshold < 0 {
		minPassThreshold = e.cfg.MinPassThreshold
	}
	all := network.Links(events)
	links := all[:0:0]
	for _, l := range all {
		if crit.Match(&events[l.Index]) {
			links = append(links, l)
		}
	}
	net := network.BuildLinks(links, minPassThreshold)
	e.metrics.NetworkEdges(len(net.Edges))
	e.log.Debug(ctx, "built pass network",
		logger.Int("links", len(links)),
		logger.Int("nodes", len(net.Nodes)),
		logger.Int("edges", len(net.Edges)),
		logger.Int("threshold", minPassThreshold))
	return net
}

// Views computes every derived view of the events matching crit with
// configured defaults.
func (e *Engine) Views(ctx context.Context, events []model.MatchEvent, crit stats.Criteria) (*Views, error) {
	filtered := stats.Filter(events, crit)
	g, err := e.Heatmap(ctx, filtered, HeatmapOptions{})
	if err != nil {
		return nil, err
	}
	return &Views{
		Summary: e.Summary(ctx, filtered),
		Players: e.Players(ctx, filtered),
		Heatmap: g.Cells(),
		Network: e.FilteredNetwork(ctx, events, crit, -1),
	}, nil
}

// ExportCSV writes events in the CSV interchange format.
func (e *Engine) ExportCSV(ctx context.Context, w io.Writer, events []model.MatchEvent, metadata ...string) error {
	defer e.metrics.ObserveDuration("export_csv", time.Now())
	// Zones are written from X so a stale or missing zone never reaches the file.
	events = classify.Events(events)
	if err := csvcodec.Encode(w, events, csvcodec.WithMetadata(metadata...)); err != nil {
		e.log.Error(ctx, "csv export failed", logger.Error(err))
		return fmt.Errorf("export csv: %w", err)
	}
	e.log.Info(ctx, "csv export finished", logger.Int("events", len(events)))
	return nil
}

// Flush writes the metrics textfile when one is configured.
func (e *Engine) Flush(ctx context.Context) error {
	if e.cfg.MetricsFile == "" {
		return nil
	}
	if err := e.metrics.WriteTextfile(e.cfg.MetricsFile); err != nil {
		e.log.Warn(ctx, "metrics textfile not written", logger.Error(err))
		return err
	}
	e.log.Debug(ctx, "metrics textfile written", logger.String("path", e.cfg.MetricsFile))
	return nil
}

// sortIssues orders issues by row; within a row errors stay ahead of warnings.
func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Row < issues[j].Row })
}
