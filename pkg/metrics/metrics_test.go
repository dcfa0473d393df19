package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func counterValue(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return -1
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestManager(t *testing.T) {
	Convey("Given a metrics manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(WithRegistry(reg), WithNamespace("test"))

		Convey("When imports and rejections are recorded", func() {
			m.EventImported("csv", "shot")
			m.EventImported("csv", "shot")
			m.EventImported("json", "pass")
			m.RowRejected("csv", "validation")
			m.RowWarning()
			m.ObserveDuration("aggregate", time.Now())

			Convey("Then the counters reflect them", func() {
				So(counterValue(reg, "test_events_imported_total"), ShouldEqual, 3)
				So(counterValue(reg, "test_rows_rejected_total"), ShouldEqual, 1)
				So(counterValue(reg, "test_row_warnings_total"), ShouldEqual, 1)
			})
		})

		Convey("When writing a textfile", func() {
			m.EventImported("csv", "defensive")
			m.GridCells(12)
			path := filepath.Join(t.TempDir(), "matchmetrics.prom")
			err := m.WriteTextfile(path)

			Convey("Then the file holds the exposition text", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `test_events_imported_total{source="csv",type="defensive"} 1`)
				So(string(data), ShouldContainSubstring, "test_heatmap_cells 12")
			})
		})

		Convey("When the textfile path is empty", func() {
			err := m.WriteTextfile("")

			Convey("Then it fails with ErrNoTextfilePath", func() {
				So(errors.Is(err, ErrNoTextfilePath), ShouldBeTrue)
			})
		})
	})

	Convey("Given two managers with default options", t, func() {
		Convey("Then they do not collide on registration", func() {
			So(func() {
				NewManager()
				NewManager()
			}, ShouldNotPanic)
		})
	})
}
