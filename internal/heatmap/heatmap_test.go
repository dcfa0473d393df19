package heatmap

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pable/go-match-metrics/internal/model"
)

func ptr(f float64) *float64 { return &f }

func passWithEnd(x, y, ex, ey float64) model.MatchEvent {
	return model.MatchEvent{Type: model.EventPass, X: x, Y: y, EndX: ptr(ex), EndY: ptr(ey), Completed: true}
}

func TestBuild_PassOriginAndEndWeights(t *testing.T) {
	g, err := Build([]model.MatchEvent{passWithEnd(10, 10, 90, 90)}, 20)
	if err != nil {
		t.Fatal(err)
	}
	// 20-unit cells: 40 columns, 26 rows.
	if g.Cols != 40 || g.Rows != 26 {
		t.Fatalf("dimensions: want 40x26, got %dx%d", g.Cols, g.Rows)
	}
	if d := g.Density(4, 2); d != 1.0 {
		t.Errorf("origin cell (4,2): want 1.0, got %v", d)
	}
	if d := g.Density(36, 23); d != 0.5 {
		t.Errorf("end cell (36,23): want 0.5, got %v", d)
	}
	if g.Len() != 2 {
		t.Errorf("want 2 non-empty cells, got %d", g.Len())
	}
}

func TestBuild_EndIgnoredWithoutBothCoordinates(t *testing.T) {
	half := model.MatchEvent{Type: model.EventPass, X: 10, Y: 10, EndX: ptr(90)}
	g, err := Build([]model.MatchEvent{half}, 20)
	if err != nil {
		t.Fatal(err)
	}
	if g.Total() != 1.0 {
		t.Errorf("total: want 1.0, got %v", g.Total())
	}
}

func TestBuild_EndWeightOption(t *testing.T) {
	g, err := Build([]model.MatchEvent{passWithEnd(10, 10, 90, 90)}, 20, WithEndWeight(0.25))
	if err != nil {
		t.Fatal(err)
	}
	if d := g.Density(36, 23); d != 0.25 {
		t.Errorf("end cell: want 0.25, got %v", d)
	}
	if _, err := Build(nil, 20, WithEndWeight(-1)); !errors.Is(err, ErrInvalidEndWeight) {
		t.Errorf("negative end weight: want ErrInvalidEndWeight, got %v", err)
	}
}

func TestBuild_InvalidGridSize(t *testing.T) {
	for _, size := range []int{0, -5} {
		if _, err := Build(nil, size); !errors.Is(err, ErrInvalidGridSize) {
			t.Errorf("size %d: want ErrInvalidGridSize, got %v", size, err)
		}
	}
}

func TestBuild_Empty(t *testing.T) {
	g, err := Build(nil, 20)
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 0 || g.Max() != 0 || len(g.Cells()) != 0 {
		t.Errorf("empty input should produce an empty grid, got %+v", g.Cells())
	}
}

func TestBuild_EdgesClampIntoGrid(t *testing.T) {
	events := []model.MatchEvent{
		{Type: model.EventShot, X: 100, Y: 100},
		{Type: model.EventShot, X: 0, Y: 0},
	}
	g, err := Build(events, 20)
	if err != nil {
		t.Fatal(err)
	}
	if d := g.Density(g.Cols-1, g.Rows-1); d != 1 {
		t.Errorf("far corner: want 1, got %v", d)
	}
	if d := g.Density(0, 0); d != 1 {
		t.Errorf("origin corner: want 1, got %v", d)
	}
}

func TestIndex_ScalesPercentBeforeCanvas(t *testing.T) {
	g, err := Build([]model.MatchEvent{{Type: model.EventShot, X: 7.25, Y: 0}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	// (7.25/100)*800 evaluates just below 58 in float64.
	if gx, _ := g.Index(7.25, 0); gx != 57 {
		t.Errorf("x=7.25 at cell size 1: want column 57, got %d", gx)
	}
	if d := g.Density(57, 0); d != 1 {
		t.Errorf("density at (57,0): want 1, got %v", d)
	}
}

func TestBuild_NonDividingCellSize(t *testing.T) {
	// 800/30 and 520/30 leave partial cells at the far edges.
	g, err := Build([]model.MatchEvent{{Type: model.EventShot, X: 100, Y: 100}}, 30)
	if err != nil {
		t.Fatal(err)
	}
	if g.Cols != 27 || g.Rows != 18 {
		t.Fatalf("dimensions: want 27x18, got %dx%d", g.Cols, g.Rows)
	}
	if d := g.Density(26, 17); d != 1 {
		t.Errorf("last cell: want 1, got %v", d)
	}
}

func TestBuild_ZoneAndTypeFilters(t *testing.T) {
	events := []model.MatchEvent{
		{Type: model.EventShot, X: 80, Y: 50, Zone: model.ZoneFinishing},
		{Type: model.EventDefensive, X: 85, Y: 50, Zone: model.ZoneFinishing},
		{Type: model.EventPass, X: 10, Y: 50, Zone: model.ZoneBuildUp},
	}
	g, err := Build(events, 20, WithZone(model.ZoneFinishing))
	if err != nil {
		t.Fatal(err)
	}
	if g.Total() != 2 {
		t.Errorf("zone filter total: want 2, got %v", g.Total())
	}

	g, err = Build(events, 20, WithZone(model.ZoneFinishing), WithTypes(model.EventShot))
	if err != nil {
		t.Fatal(err)
	}
	if g.Total() != 1 {
		t.Errorf("zone+type filter total: want 1, got %v", g.Total())
	}
}

func TestBuild_AccumulatesAndIsDeterministic(t *testing.T) {
	events := []model.MatchEvent{
		{Type: model.EventShot, X: 51, Y: 51},
		{Type: model.EventShot, X: 52, Y: 52},
		passWithEnd(20, 80, 52, 51),
		{Type: model.EventDefensive, X: 5, Y: 95},
	}
	first, err := Build(events, 20)
	if err != nil {
		t.Fatal(err)
	}
	if first.Max() != 2.5 {
		t.Errorf("max: want 2.5, got %v", first.Max())
	}
	for i := 0; i < 20; i++ {
		again, _ := Build(events, 20)
		if !reflect.DeepEqual(first.Cells(), again.Cells()) {
			t.Fatal("cells differ across repeated builds")
		}
	}
}

func TestCells_SortedByRowThenColumn(t *testing.T) {
	events := []model.MatchEvent{
		{Type: model.EventShot, X: 90, Y: 10},
		{Type: model.EventShot, X: 10, Y: 90},
		{Type: model.EventShot, X: 10, Y: 10},
	}
	g, err := Build(events, 100)
	if err != nil {
		t.Fatal(err)
	}
	cells := g.Cells()
	for i := 1; i < len(cells); i++ {
		prev, cur := cells[i-1], cells[i]
		if prev.GridY > cur.GridY || (prev.GridY == cur.GridY && prev.GridX >= cur.GridX) {
			t.Fatalf("cells out of order: %+v", cells)
		}
	}
}
