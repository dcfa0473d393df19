// Package validate turns loosely typed event records into MatchEvents.
//
// Validation is pure and total: every violated field of a record is
// reported together, so batch imports can list all problems at once.
// Records come from the tagging UI (JSON-decoded values) or from CSV
// (strings); both shapes are accepted for every field.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pable/go-match-metrics/internal/classify"
	"github.com/pable/go-match-metrics/internal/model"
)

// Canonical record keys.
const (
	KeyType       = "type"
	KeyX          = "x"
	KeyY          = "y"
	KeyEndX       = "endX"
	KeyEndY       = "endY"
	KeyOutcome    = "outcome"
	KeyBodyPart   = "bodyPart"
	KeyAssistType = "assistType"
	KeyActionType = "actionType"
	KeySuccess    = "success"
	KeyCompleted  = "completed"
	KeyXG         = "xG"
	KeyXA         = "xA"
	KeyTimestamp  = "timestamp"
	KeyPlayerID   = "playerId"
	KeyPlayerName = "playerName"
	KeyTeamID     = "teamId"
	KeyTeamName   = "teamName"
	KeyMinute     = "minute"
	KeyPhase      = "phase"
	KeyZone       = "zone"
)

// RawEvent is an unvalidated event record keyed by the canonical keys.
type RawEvent map[string]any

// FieldIssue describes one problem with one field.
type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (f FieldIssue) String() string {
	return f.Field + ": " + f.Reason
}

// Error lists every field that made a record invalid.
type Error struct {
	Fields []FieldIssue
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "invalid event: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the violations.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Result is an accepted event plus any non-fatal issues found while
// building it. Warnings name optional fields that were dropped.
type Result struct {
	Event    model.MatchEvent
	Warnings []FieldIssue
}

// timestampLayouts are the ISO-8601 shapes accepted for KeyTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02",
}

// Event validates one record. On failure the error is a *Error listing
// every violated field; on success the event has its zone attached.
func Event(raw RawEvent) (Result, error) {
	var (
		ev       model.MatchEvent
		errs     []FieldIssue
		warnings []FieldIssue
	)
	fail := func(field, format string, args ...any) {
		errs = append(errs, FieldIssue{Field: field, Reason: fmt.Sprintf(format, args...)})
	}
	warn := func(field, format string, args ...any) {
		warnings = append(warnings, FieldIssue{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	// Discriminant.
	typ, ok := text(raw[KeyType])
	ev.Type = model.EventType(strings.ToLower(strings.TrimSpace(typ)))
	switch {
	case !ok || ev.Type == "":
		fail(KeyType, "missing")
	case !ev.Type.Valid():
		fail(KeyType, "unknown event type %q", typ)
	}

	// Position.
	ev.X = coordinate(raw, KeyX, true, fail)
	ev.Y = coordinate(raw, KeyY, true, fail)

	switch ev.Type {
	case model.EventShot:
		if s, ok := text(raw[KeyOutcome]); ok && strings.TrimSpace(s) != "" {
			ev.Outcome = model.Outcome(strings.ToLower(strings.TrimSpace(s)))
			if !ev.Outcome.Valid() {
				fail(KeyOutcome, "unknown outcome %q", s)
			}
		} else {
			ev.Outcome = model.OutcomeMiss
		}
		ev.BodyPart, _ = text(raw[KeyBodyPart])
		ev.AssistType, _ = text(raw[KeyAssistType])
		ev.XG = nonNegative(raw, KeyXG, fail)

	case model.EventPass:
		endX, hasX := optionalCoordinate(raw, KeyEndX, fail)
		endY, hasY := optionalCoordinate(raw, KeyEndY, fail)
		switch {
		case hasX && hasY:
			ev.EndX, ev.EndY = endX, endY
		case hasX:
			fail(KeyEndY, "required when %s is set", KeyEndX)
		case hasY:
			fail(KeyEndX, "required when %s is set", KeyEndY)
		}
		ev.Completed = flag(raw, KeyCompleted, true, fail)
		ev.XA = nonNegative(raw, KeyXA, fail)

	case model.EventDefensive:
		if s, ok := text(raw[KeyActionType]); ok && strings.TrimSpace(s) != "" {
			ev.ActionType = model.ActionType(strings.ToLower(strings.TrimSpace(s)))
			if !ev.ActionType.Known() {
				warn(KeyActionType, "unknown action type %q kept outside the action buckets", s)
			}
		}
		ev.Success = flag(raw, KeySuccess, false, fail)
	}

	// Context.
	ev.PlayerID, _ = text(raw[KeyPlayerID])
	ev.PlayerName, _ = text(raw[KeyPlayerName])
	ev.TeamID, _ = text(raw[KeyTeamID])
	ev.TeamName, _ = text(raw[KeyTeamName])

	if present(raw[KeyMinute]) {
		v, ok := number(raw[KeyMinute])
		switch {
		case !ok || math.IsNaN(v):
			warn(KeyMinute, "not a number, dropped")
		case v < 0 || v != math.Trunc(v) || v > math.MaxInt32:
			warn(KeyMinute, "%v is not a non-negative whole minute, dropped", v)
		default:
			m := int(v)
			ev.Minute = &m
		}
	}

	if s, ok := text(raw[KeyTimestamp]); ok && strings.TrimSpace(s) != "" {
		if validTimestamp(strings.TrimSpace(s)) {
			ev.Timestamp = s
		} else {
			warn(KeyTimestamp, "%q is not an ISO-8601 time, dropped", s)
		}
	}

	if s, ok := text(raw[KeyPhase]); ok && strings.TrimSpace(s) != "" {
		if p, ok := classify.Phase(strings.ToLower(strings.TrimSpace(s))); ok {
			ev.Phase = p
		} else {
			warn(KeyPhase, "unknown phase %q, dropped", s)
		}
	}

	if len(errs) > 0 {
		return Result{Warnings: warnings}, &Error{Fields: errs}
	}

	ev.Zone = classify.Zone(ev.X)
	if s, ok := text(raw[KeyZone]); ok && strings.TrimSpace(s) != "" {
		if model.Zone(strings.ToLower(strings.TrimSpace(s))) != ev.Zone {
			warn(KeyZone, "%q does not match x=%v, replaced with %s", s, ev.X, ev.Zone)
		}
	}
	return Result{Event: ev, Warnings: warnings}, nil
}

// RowError is a rejected record within a batch. Index is 0-based.
type RowError struct {
	Index int
	Err   *Error
}

// RowWarning carries the warnings of an accepted record within a batch.
type RowWarning struct {
	Index  int
	Issues []FieldIssue
}

// BatchResult holds the accepted events of a batch, in input order, plus
// every rejection and warning.
type BatchResult struct {
	Events   []model.MatchEvent
	Rejected []RowError
	Warnings []RowWarning
}

// Batch validates raws in order without stopping at the first failure.
func Batch(raws []RawEvent) BatchResult {
	res := BatchResult{Events: make([]model.MatchEvent, 0, len(raws))}
	for i, raw := range raws {
		r, err := Event(raw)
		if len(r.Warnings) > 0 {
			res.Warnings = append(res.Warnings, RowWarning{Index: i, Issues: r.Warnings})
		}
		if err != nil {
			res.Rejected = append(res.Rejected, RowError{Index: i, Err: err.(*Error)})
			continue
		}
		res.Events = append(res.Events, r.Event)
	}
	return res
}

// ---- coercion helpers ----

// present reports whether v carries a value. Nil and blank strings are absent.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}

// text renders scalar values as strings so numeric ids from JSON survive.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}

// number coerces v to float64. NaN is returned as-is for the caller to reject.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coordinate(raw RawEvent, key string, required bool, fail func(string, string, ...any)) float64 {
	v := raw[key]
	if !present(v) {
		if required {
			fail(key, "missing")
		}
		return 0
	}
	f, ok := number(v)
	switch {
	case !ok:
		fail(key, "not a number: %v", v)
	case math.IsNaN(f):
		fail(key, "NaN")
	case f < 0 || f > 100:
		fail(key, "%v outside [0,100]", f)
	default:
		return f
	}
	return 0
}

// optionalCoordinate reports whether key is set at all; range and type
// problems are reported through fail.
func optionalCoordinate(raw RawEvent, key string, fail func(string, string, ...any)) (*float64, bool) {
	if !present(raw[key]) {
		return nil, false
	}
	f := coordinate(raw, key, true, fail)
	return &f, true
}

func nonNegative(raw RawEvent, key string, fail func(string, string, ...any)) float64 {
	v := raw[key]
	if !present(v) {
		return 0
	}
	f, ok := number(v)
	switch {
	case !ok:
		fail(key, "not a number: %v", v)
	case math.IsNaN(f):
		fail(key, "NaN")
	case f < 0 || math.IsInf(f, 1):
		fail(key, "%v must be a finite value >= 0", f)
	default:
		return f
	}
	return 0
}

func flag(raw RawEvent, key string, def bool, fail func(string, string, ...any)) bool {
	v := raw[key]
	if !present(v) {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	fail(key, "not a boolean: %v", v)
	return def
}

func validTimestamp(s string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
