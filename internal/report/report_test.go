package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/go-match-metrics/internal/heatmap"
	"github.com/pable/go-match-metrics/internal/model"
)

func TestRound(t *testing.T) {
	cases := []struct {
		v    float64
		prec int
		want float64
	}{
		{66.66666, 1, 66.7},
		{0.35, 2, 0.35},
		{2.5, 0, 3},
		{100, 1, 100},
	}
	for _, c := range cases {
		if got := Round(c.v, c.prec); got != c.want {
			t.Errorf("Round(%v, %d) = %v, want %v", c.v, c.prec, got, c.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]model.HeatmapCell{
		{GridX: 0, GridY: 0, Density: 2},
		{GridX: 1, GridY: 0, Density: 0.5},
	})
	if got[0].Intensity != 1 || got[1].Intensity != 0.25 {
		t.Errorf("intensities: %+v", got)
	}
	if got[1].Density != 0.5 {
		t.Error("raw density must be kept")
	}
	if out := Normalize(nil); len(out) != 0 {
		t.Errorf("empty input: %+v", out)
	}
}

func TestPrintGridMap(t *testing.T) {
	g, err := heatmap.Build([]model.MatchEvent{{Type: model.EventShot, X: 0, Y: 0}}, 100)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	PrintGridMap(&buf, g)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// 8x6 cells plus the frame.
	if len(lines) != g.Rows+2 {
		t.Fatalf("want %d lines, got %d:\n%s", g.Rows+2, len(lines), buf.String())
	}
	if lines[1] != "|@       |" {
		t.Errorf("first row: got %q", lines[1])
	}
}

func TestPrintNetwork(t *testing.T) {
	net := model.Network{
		Nodes: []model.PlayerNode{{ID: "A", Touches: 4, PassesAttempted: 3, PassesCompleted: 2}},
		Edges: []model.PassConnection{{From: "A", To: "B", Count: 3, Success: 2}},
	}
	var buf bytes.Buffer
	PrintNetwork(&buf, net, 1)
	if !strings.Contains(buf.String(), "66.7%") {
		t.Errorf("success rate not rounded for display:\n%s", buf.String())
	}

	buf.Reset()
	PrintNetwork(&buf, model.Network{}, 1)
	if !strings.Contains(buf.String(), "No connections") {
		t.Errorf("empty network message missing:\n%s", buf.String())
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, model.Summary{
		TotalEvents: 3,
		Passes:      model.PassStats{Total: 3, Completed: 2, Incomplete: 1, CompletionRate: 200.0 / 3},
	}, 1)
	out := buf.String()
	if !strings.Contains(out, "Events: 3") || !strings.Contains(out, "66.7%") {
		t.Errorf("summary output:\n%s", out)
	}
}
