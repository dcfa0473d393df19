package stats

import (
	"sort"

	"github.com/pable/go-match-metrics/internal/model"
)

// Aggregate computes the Summary view over events. Rates are kept at full
// float precision; rounding is a presentation concern. Empty input yields a
// zero Summary.
func Aggregate(events []model.MatchEvent) model.Summary {
	var s model.Summary
	s.TotalEvents = len(events)

	// ---- Pass 1: partition by type, accumulate per-type counters. ----
	for i := range events {
		e := &events[i]
		switch e.Type {
		case model.EventShot:
			s.Shots.Total++
			s.Shots.TotalXG += e.XG
			switch e.Outcome {
			case model.OutcomeGoal:
				s.Shots.Goals++
			case model.OutcomeSaved:
				s.Shots.Saved++
			case model.OutcomeMiss:
				s.Shots.Missed++
			}

		case model.EventPass:
			s.Passes.Total++
			s.Passes.TotalXA += e.XA
			if e.Completed {
				s.Passes.Completed++
			} else {
				s.Passes.Incomplete++
			}

		case model.EventDefensive:
			s.Defensive.Total++
			if e.Success {
				s.Defensive.Successful++
			} else {
				s.Defensive.Failed++
			}
			switch e.ActionType {
			case model.ActionTackle:
				s.Defensive.Tackles++
			case model.ActionInterception:
				s.Defensive.Interceptions++
			case model.ActionBlock:
				s.Defensive.Blocks++
			case model.ActionClearance:
				s.Defensive.Clearances++
			}
		}

		// ---- Distributions span every event regardless of type. ----
		switch e.Phase {
		case model.PhaseInPossession:
			s.Phases.InPossession++
		case model.PhaseOutPossession:
			s.Phases.OutPossession++
		case model.PhaseAttackingTransition:
			s.Phases.AttackingTransition++
		case model.PhaseDefensiveTransition:
			s.Phases.DefensiveTransition++
		default:
			s.Phases.Untagged++
		}
		switch e.Zone {
		case model.ZoneBuildUp:
			s.Zones.BuildUp++
		case model.ZoneProgression:
			s.Zones.Progression++
		case model.ZoneFinishing:
			s.Zones.Finishing++
		default:
			s.Zones.Unclassified++
		}
	}

	// ---- Pass 2: derived rates. ----
	s.Shots.AvgXG = ratio(s.Shots.TotalXG, s.Shots.Total)
	s.Passes.AvgXA = ratio(s.Passes.TotalXA, s.Passes.Total)
	s.Passes.CompletionRate = percent(s.Passes.Completed, s.Passes.Total)
	s.Defensive.SuccessRate = percent(s.Defensive.Successful, s.Defensive.Total)
	return s
}

// ByPlayer breaks events down per player. Events without a player id are
// skipped. Output is sorted by involvement (shots + passes + defensive
// actions) descending, then by player id, so repeated calls are identical.
func ByPlayer(events []model.MatchEvent) []model.PlayerSummary {
	accums := make(map[string]*model.PlayerSummary)
	for i := range events {
		e := &events[i]
		if e.PlayerID == "" {
			continue
		}
		acc, ok := accums[e.PlayerID]
		if !ok {
			acc = &model.PlayerSummary{PlayerID: e.PlayerID}
			accums[e.PlayerID] = acc
		}
		// Latest non-empty label wins; tagging order is chronological.
		if e.PlayerName != "" {
			acc.PlayerName = e.PlayerName
		}
		if e.TeamID != "" {
			acc.TeamID = e.TeamID
		}

		switch e.Type {
		case model.EventShot:
			acc.Shots++
			acc.TotalXG += e.XG
			if e.Outcome == model.OutcomeGoal {
				acc.Goals++
			}
		case model.EventPass:
			acc.Passes++
			acc.TotalXA += e.XA
			if e.Completed {
				acc.PassesCompleted++
			}
		case model.EventDefensive:
			acc.DefensiveActions++
			if e.Success {
				acc.DefensiveSuccessful++
			}
		}
	}

	out := make([]model.PlayerSummary, 0, len(accums))
	for _, acc := range accums {
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool {
		ai := involvement(&out[i])
		aj := involvement(&out[j])
		if ai != aj {
			return ai > aj
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// Criteria narrows an event set before aggregation. Zero values match all.
type Criteria struct {
	TeamID   string
	PlayerID string
	Types    []model.EventType
	Zone     model.Zone
}

// Match reports whether e satisfies every set field of c.
func (c Criteria) Match(e *model.MatchEvent) bool {
	if c.TeamID != "" && e.TeamID != c.TeamID {
		return false
	}
	if c.PlayerID != "" && e.PlayerID != c.PlayerID {
		return false
	}
	if c.Zone != "" && e.Zone != c.Zone {
		return false
	}
	if len(c.Types) > 0 && !containsType(c.Types, e.Type) {
		return false
	}
	return true
}

// Filter returns the events matching c, preserving order. The input is
// never modified.
func Filter(events []model.MatchEvent, c Criteria) []model.MatchEvent {
	out := make([]model.MatchEvent, 0, len(events))
	for i := range events {
		if c.Match(&events[i]) {
			out = append(out, events[i])
		}
	}
	return out
}

func involvement(p *model.PlayerSummary) int {
	return p.Shots + p.Passes + p.DefensiveActions
}

func containsType(types []model.EventType, t model.EventType) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

func ratio(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
