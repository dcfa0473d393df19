// Package classify maps event coordinates and tags onto tactical labels.
package classify

import "github.com/pable/go-match-metrics/internal/model"

// Third boundaries along the pitch length, in percent. Intervals are
// half-open: a value equal to a boundary belongs to the zone above it.
const (
	BuildUpLimit     = 33.33
	ProgressionLimit = 66.66
)

// Zone returns the pitch third containing x.
func Zone(x float64) model.Zone {
	switch {
	case x < BuildUpLimit:
		return model.ZoneBuildUp
	case x < ProgressionLimit:
		return model.ZoneProgression
	default:
		return model.ZoneFinishing
	}
}

// Phase verifies a recorder-supplied phase tag. It returns false for
// anything outside the four known phases, including the empty string.
func Phase(s string) (model.Phase, bool) {
	p := model.Phase(s)
	if !p.Valid() {
		return "", false
	}
	return p, true
}

// Events returns a copy of events with Zone derived from each event's X.
// Any zone already present is replaced; the input slice is not modified.
func Events(events []model.MatchEvent) []model.MatchEvent {
	out := make([]model.MatchEvent, len(events))
	for i, e := range events {
		e.Zone = Zone(e.X)
		out[i] = e
	}
	return out
}
