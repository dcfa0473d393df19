// Package heatmap bins match events into a fixed-resolution density grid.
//
// Positions are mapped onto a logical 800x520 canvas so grids keep the same
// aspect ratio regardless of where they are drawn. Densities are raw weighted
// counts; scaling for display belongs to the caller.
package heatmap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pable/go-match-metrics/internal/model"
)

const (
	CanvasWidth  = 800
	CanvasHeight = 520

	// DefaultEndWeight is the contribution of a pass destination relative to
	// the 1.0 of an event origin.
	DefaultEndWeight = 0.5
)

var (
	ErrInvalidGridSize  = errors.New("heatmap: grid size must be positive")
	ErrInvalidEndWeight = errors.New("heatmap: end weight must be a finite value >= 0")
)

// Grid holds the weighted cell densities of one build. Only non-empty cells
// are stored.
type Grid struct {
	CellSize int
	Cols     int
	Rows     int

	density map[int]float64
}

func newGrid(cellSize int) *Grid {
	return &Grid{
		CellSize: cellSize,
		Cols:     cells(CanvasWidth, cellSize),
		Rows:     cells(CanvasHeight, cellSize),
		density:  make(map[int]float64),
	}
}

// cells is the number of cellSize-wide bins needed to cover extent.
func cells(extent, cellSize int) int {
	return (extent + cellSize - 1) / cellSize
}

func (g *Grid) key(gx, gy int) int {
	return gy*g.Cols + gx
}

// Index maps pitch coordinates (percent) to a cell, clamped into the grid.
func (g *Grid) Index(x, y float64) (gx, gy int) {
	size := float64(g.CellSize)
	gx = clamp(int(math.Floor((x/100)*(CanvasWidth/size))), g.Cols)
	gy = clamp(int(math.Floor((y/100)*(CanvasHeight/size))), g.Rows)
	return gx, gy
}

func (g *Grid) add(x, y, w float64) {
	if w == 0 || math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	gx, gy := g.Index(x, y)
	g.density[g.key(gx, gy)] += w
}

// Density returns the weight accumulated in cell (gx, gy).
func (g *Grid) Density(gx, gy int) float64 {
	if gx < 0 || gy < 0 || gx >= g.Cols || gy >= g.Rows {
		return 0
	}
	return g.density[g.key(gx, gy)]
}

// Len is the number of non-empty cells.
func (g *Grid) Len() int {
	return len(g.density)
}

// Max returns the largest cell density, or 0 for an empty grid.
func (g *Grid) Max() float64 {
	var m float64
	for _, d := range g.density {
		if d > m {
			m = d
		}
	}
	return m
}

// Total is the sum of all cell weights.
func (g *Grid) Total() float64 {
	var t float64
	for _, c := range g.Cells() {
		t += c.Density
	}
	return t
}

// Cells returns the non-empty cells ordered by row, then column.
func (g *Grid) Cells() []model.HeatmapCell {
	keys := make([]int, 0, len(g.density))
	for k := range g.density {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]model.HeatmapCell, len(keys))
	for i, k := range keys {
		out[i] = model.HeatmapCell{GridX: k % g.Cols, GridY: k / g.Cols, Density: g.density[k]}
	}
	return out
}

type options struct {
	zone      model.Zone
	types     []model.EventType
	endWeight float64
}

// Option narrows or tunes a Build.
type Option func(*options)

// WithZone keeps only events classified into z.
func WithZone(z model.Zone) Option {
	return func(o *options) { o.zone = z }
}

// WithTypes keeps only events of the given types.
func WithTypes(types ...model.EventType) Option {
	return func(o *options) { o.types = types }
}

// WithEndWeight overrides DefaultEndWeight.
func WithEndWeight(w float64) Option {
	return func(o *options) { o.endWeight = w }
}

// Build bins events into a grid whose cells are gridSize canvas units wide.
// Every event adds 1.0 at its position; passes with an end position add the
// end weight at the destination as well. The input is never modified.
func Build(events []model.MatchEvent, gridSize int, opts ...Option) (*Grid, error) {
	if gridSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGridSize, gridSize)
	}
	o := options{endWeight: DefaultEndWeight}
	for _, opt := range opts {
		opt(&o)
	}
	if o.endWeight < 0 || math.IsNaN(o.endWeight) || math.IsInf(o.endWeight, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidEndWeight, o.endWeight)
	}

	g := newGrid(gridSize)
	for i := range events {
		e := &events[i]
		if o.zone != "" && e.Zone != o.zone {
			continue
		}
		if len(o.types) > 0 && !hasType(o.types, e.Type) {
			continue
		}
		g.add(e.X, e.Y, 1.0)
		if e.Type == model.EventPass && e.HasEnd() {
			g.add(*e.EndX, *e.EndY, o.endWeight)
		}
	}
	return g, nil
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func hasType(types []model.EventType, t model.EventType) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}
