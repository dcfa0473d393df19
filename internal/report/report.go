package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-match-metrics/internal/heatmap"
	"github.com/pable/go-match-metrics/internal/model"
)

// newTable returns a table with right-aligned rows and centred headers.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

// Round rounds v to prec decimals. Aggregates are kept at full precision
// and only rounded here, for display.
func Round(v float64, prec int) float64 {
	p := math.Pow(10, float64(prec))
	return math.Round(v*p) / p
}

func num(v float64, prec int) string {
	return strconv.FormatFloat(Round(v, prec), 'f', prec, 64)
}

func pct(v float64, prec int) string {
	return num(v, prec) + "%"
}

// PrintSummary prints the per-type counters of s.
func PrintSummary(w io.Writer, s model.Summary, prec int) {
	fmt.Fprintf(w, "\nEvents: %d  |  Shots: %d  |  Passes: %d  |  Defensive: %d\n\n",
		s.TotalEvents, s.Shots.Total, s.Passes.Total, s.Defensive.Total)

	shots := newTable(w)
	shots.Header("SHOTS", "GOALS", "SAVED", "MISSED", "XG", "AVG_XG")
	shots.Append(
		strconv.Itoa(s.Shots.Total),
		strconv.Itoa(s.Shots.Goals),
		strconv.Itoa(s.Shots.Saved),
		strconv.Itoa(s.Shots.Missed),
		num(s.Shots.TotalXG, prec+2),
		num(s.Shots.AvgXG, prec+2),
	)
	shots.Render()

	passes := newTable(w)
	passes.Header("PASSES", "COMPLETED", "INCOMPLETE", "CMP%", "XA", "AVG_XA")
	passes.Append(
		strconv.Itoa(s.Passes.Total),
		strconv.Itoa(s.Passes.Completed),
		strconv.Itoa(s.Passes.Incomplete),
		pct(s.Passes.CompletionRate, prec),
		num(s.Passes.TotalXA, prec+2),
		num(s.Passes.AvgXA, prec+2),
	)
	passes.Render()

	def := newTable(w)
	def.Header("DEFENSIVE", "WON", "LOST", "WON%", "TACKLES", "INTERCEPTIONS", "BLOCKS", "CLEARANCES")
	def.Append(
		strconv.Itoa(s.Defensive.Total),
		strconv.Itoa(s.Defensive.Successful),
		strconv.Itoa(s.Defensive.Failed),
		pct(s.Defensive.SuccessRate, prec),
		strconv.Itoa(s.Defensive.Tackles),
		strconv.Itoa(s.Defensive.Interceptions),
		strconv.Itoa(s.Defensive.Blocks),
		strconv.Itoa(s.Defensive.Clearances),
	)
	def.Render()
}

// PrintDistribution prints phase and zone shares of all events.
func PrintDistribution(w io.Writer, s model.Summary, prec int) {
	share := func(n int) string {
		if s.TotalEvents == 0 {
			return "—"
		}
		return pct(float64(n)/float64(s.TotalEvents)*100, prec)
	}

	table := newTable(w)
	table.Header("GROUP", "LABEL", "EVENTS", "SHARE")
	rows := []struct {
		group, label string
		n            int
	}{
		{"zone", string(model.ZoneBuildUp), s.Zones.BuildUp},
		{"zone", string(model.ZoneProgression), s.Zones.Progression},
		{"zone", string(model.ZoneFinishing), s.Zones.Finishing},
		{"phase", string(model.PhaseInPossession), s.Phases.InPossession},
		{"phase", string(model.PhaseOutPossession), s.Phases.OutPossession},
		{"phase", string(model.PhaseAttackingTransition), s.Phases.AttackingTransition},
		{"phase", string(model.PhaseDefensiveTransition), s.Phases.DefensiveTransition},
		{"phase", "untagged", s.Phases.Untagged},
	}
	for _, r := range rows {
		table.Append(r.group, r.label, strconv.Itoa(r.n), share(r.n))
	}
	table.Render()
}

// PrintPlayerTable prints one row per player. If focus is non-empty, that
// player's row is marked with ">".
func PrintPlayerTable(w io.Writer, players []model.PlayerSummary, prec int, focus string) {
	table := newTable(w)
	table.Header(" ", "PLAYER", "TEAM", "SHOTS", "GOALS", "XG", "PASSES", "CMP%", "XA", "DEF", "DEF_WON%")

	for i := range players {
		p := &players[i]
		marker := " "
		if focus != "" && p.PlayerID == focus {
			marker = ">"
		}
		name := p.PlayerID
		if p.PlayerName != "" {
			name = p.PlayerName + " (" + p.PlayerID + ")"
		}
		cmp := "—"
		if p.Passes > 0 {
			cmp = pct(p.CompletionRate(), prec)
		}
		won := "—"
		if p.DefensiveActions > 0 {
			won = pct(p.DefensiveSuccessRate(), prec)
		}
		table.Append(
			marker,
			name,
			p.TeamID,
			strconv.Itoa(p.Shots),
			strconv.Itoa(p.Goals),
			num(p.TotalXG, prec+2),
			strconv.Itoa(p.Passes),
			cmp,
			num(p.TotalXA, prec+2),
			strconv.Itoa(p.DefensiveActions),
			won,
		)
	}
	table.Render()
}

// NormalizedCell is a heatmap cell scaled against the densest cell.
type NormalizedCell struct {
	model.HeatmapCell
	Intensity float64 `json:"intensity"` // in [0,1]
}

// Normalize scales cells by the observed maximum so the densest cell has
// intensity 1. An all-zero input yields zero intensities.
func Normalize(cells []model.HeatmapCell) []NormalizedCell {
	var peak float64
	for _, c := range cells {
		if c.Density > peak {
			peak = c.Density
		}
	}
	out := make([]NormalizedCell, len(cells))
	for i, c := range cells {
		out[i] = NormalizedCell{HeatmapCell: c}
		if peak > 0 {
			out[i].Intensity = c.Density / peak
		}
	}
	return out
}

// shades maps intensity to a glyph, lightest first.
var shades = []rune(" .:-=+*#%@")

// PrintGridMap draws the grid as a character map, one glyph per cell,
// with the attacking direction to the right.
func PrintGridMap(w io.Writer, g *heatmap.Grid) {
	peak := g.Max()
	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", g.Cols) + "+\n")
	for gy := 0; gy < g.Rows; gy++ {
		b.WriteByte('|')
		for gx := 0; gx < g.Cols; gx++ {
			d := g.Density(gx, gy)
			idx := 0
			if peak > 0 && d > 0 {
				idx = 1 + int(math.Round(d/peak*float64(len(shades)-2)))
			}
			b.WriteRune(shades[idx])
		}
		b.WriteString("|\n")
	}
	b.WriteString("+" + strings.Repeat("-", g.Cols) + "+\n")
	fmt.Fprint(w, b.String())
}

// PrintGridTable lists the top densest cells. top <= 0 lists them all.
func PrintGridTable(w io.Writer, g *heatmap.Grid, prec, top int) {
	cells := Normalize(g.Cells())
	// densest first; Cells order breaks ties
	sortByDensity(cells)
	if top > 0 && len(cells) > top {
		cells = cells[:top]
	}

	table := newTable(w)
	table.Header("GRID_X", "GRID_Y", "X%", "Y%", "DENSITY", "INTENSITY")
	for _, c := range cells {
		cx, cy := cellCentre(g, c.GridX, c.GridY)
		table.Append(
			strconv.Itoa(c.GridX),
			strconv.Itoa(c.GridY),
			num(cx, prec),
			num(cy, prec),
			num(c.Density, prec),
			num(c.Intensity, 2),
		)
	}
	table.Render()
}

// cellCentre converts a cell back to pitch percentages.
func cellCentre(g *heatmap.Grid, gx, gy int) (x, y float64) {
	size := float64(g.CellSize)
	x = math.Min((float64(gx)+0.5)*size, heatmap.CanvasWidth) / heatmap.CanvasWidth * 100
	y = math.Min((float64(gy)+0.5)*size, heatmap.CanvasHeight) / heatmap.CanvasHeight * 100
	return x, y
}

func sortByDensity(cells []NormalizedCell) {
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].Density > cells[j].Density })
}

// PrintNetwork prints the node and edge tables of net.
func PrintNetwork(w io.Writer, net model.Network, prec int) {
	nodes := newTable(w)
	nodes.Header("PLAYER", "NAME", "TOUCHES", "PASSES", "COMPLETED")
	for _, n := range net.Nodes {
		nodes.Append(n.ID, n.Name, strconv.Itoa(n.Touches), strconv.Itoa(n.PassesAttempted), strconv.Itoa(n.PassesCompleted))
	}
	nodes.Render()

	if len(net.Edges) == 0 {
		fmt.Fprintln(w, "\nNo connections above the pass threshold.")
		return
	}
	edges := newTable(w)
	edges.Header("FROM", "TO", "PASSES", "COMPLETED", "SUCCESS%")
	for i := range net.Edges {
		e := &net.Edges[i]
		edges.Append(e.From, e.To, strconv.Itoa(e.Count), strconv.Itoa(e.Success), pct(e.SuccessRate()*100, prec))
	}
	edges.Render()
}
