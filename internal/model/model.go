package model

// EventType is the discriminant of a MatchEvent.
type EventType string

const (
	EventShot      EventType = "shot"
	EventPass      EventType = "pass"
	EventDefensive EventType = "defensive"
)

// Valid reports whether t is one of the three known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventShot, EventPass, EventDefensive:
		return true
	default:
		return false
	}
}

// Outcome is the result of a shot.
type Outcome string

const (
	OutcomeGoal  Outcome = "goal"
	OutcomeSaved Outcome = "saved"
	OutcomeMiss  Outcome = "miss"
)

// Valid reports whether o is a known shot outcome.
func (o Outcome) Valid() bool {
	return o == OutcomeGoal || o == OutcomeSaved || o == OutcomeMiss
}

// ActionType classifies a defensive event. Values outside the four known
// actions are kept as-is and counted only in defensive totals.
type ActionType string

const (
	ActionTackle       ActionType = "tackle"
	ActionInterception ActionType = "interception"
	ActionBlock        ActionType = "block"
	ActionClearance    ActionType = "clearance"
)

// Known reports whether a is one of the four bucketed actions.
func (a ActionType) Known() bool {
	switch a {
	case ActionTackle, ActionInterception, ActionBlock, ActionClearance:
		return true
	default:
		return false
	}
}

// Phase is the possession state tagged on an event by the recorder.
type Phase string

const (
	PhaseInPossession        Phase = "in_possession"
	PhaseOutPossession       Phase = "out_possession"
	PhaseAttackingTransition Phase = "attacking_transition"
	PhaseDefensiveTransition Phase = "defensive_transition"
)

// Valid reports whether p is one of the four phase labels.
func (p Phase) Valid() bool {
	switch p {
	case PhaseInPossession, PhaseOutPossession, PhaseAttackingTransition, PhaseDefensiveTransition:
		return true
	default:
		return false
	}
}

// Zone is a third of the pitch length, derived from X.
type Zone string

const (
	ZoneBuildUp     Zone = "build_up"
	ZoneProgression Zone = "progression"
	ZoneFinishing   Zone = "finishing"
)

// Valid reports whether z is one of the three thirds.
func (z Zone) Valid() bool {
	return z == ZoneBuildUp || z == ZoneProgression || z == ZoneFinishing
}

// ---- Tagged events ----

// MatchEvent is a single manually tagged action. Coordinates are
// percentages of pitch length (X) and width (Y).
//
// Only the fields belonging to Type are meaningful: Outcome, BodyPart,
// AssistType and XG for shots; EndX, EndY, Completed and XA for passes;
// ActionType and Success for defensive actions.
type MatchEvent struct {
	Type EventType `json:"type"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	EndX *float64  `json:"endX,omitempty"`
	EndY *float64  `json:"endY,omitempty"`

	// Shot
	Outcome    Outcome `json:"outcome,omitempty"`
	BodyPart   string  `json:"bodyPart,omitempty"`
	AssistType string  `json:"assistType,omitempty"`
	XG         float64 `json:"xG,omitempty"`

	// Pass
	Completed bool    `json:"completed"`
	XA        float64 `json:"xA,omitempty"`

	// Defensive
	ActionType ActionType `json:"actionType,omitempty"`
	Success    bool       `json:"success"`

	// Context
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	TeamID     string `json:"teamId,omitempty"`
	TeamName   string `json:"teamName,omitempty"`
	Minute     *int   `json:"minute,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`

	// Attached by the classifier.
	Phase Phase `json:"phase,omitempty"`
	Zone  Zone  `json:"zone,omitempty"`
}

// HasEnd reports whether both pass end coordinates are present.
func (e *MatchEvent) HasEnd() bool {
	return e.EndX != nil && e.EndY != nil
}

// ---- Aggregated views ----

type ShotStats struct {
	Total   int     `json:"total"`
	Goals   int     `json:"goals"`
	Saved   int     `json:"saved"`
	Missed  int     `json:"missed"`
	TotalXG float64 `json:"totalXG"`
	AvgXG   float64 `json:"avgXG"`
}

type PassStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Incomplete     int     `json:"incomplete"`
	CompletionRate float64 `json:"completionRate"` // percent
	TotalXA        float64 `json:"totalXA"`
	AvgXA          float64 `json:"avgXA"`
}

type DefensiveStats struct {
	Total         int     `json:"total"`
	Successful    int     `json:"successful"`
	Failed        int     `json:"failed"`
	SuccessRate   float64 `json:"successRate"` // percent
	Tackles       int     `json:"tackles"`
	Interceptions int     `json:"interceptions"`
	Blocks        int     `json:"blocks"`
	Clearances    int     `json:"clearances"`
}

// PhaseDistribution counts phase labels across all events. Events without
// a phase are counted in Untagged.
type PhaseDistribution struct {
	InPossession        int `json:"in_possession"`
	OutPossession       int `json:"out_possession"`
	AttackingTransition int `json:"attacking_transition"`
	DefensiveTransition int `json:"defensive_transition"`
	Untagged            int `json:"untagged"`
}

type ZoneDistribution struct {
	BuildUp      int `json:"build_up"`
	Progression  int `json:"progression"`
	Finishing    int `json:"finishing"`
	Unclassified int `json:"unclassified"`
}

// Summary is the full statistics view over an event set.
type Summary struct {
	TotalEvents int               `json:"totalEvents"`
	Shots       ShotStats         `json:"shots"`
	Passes      PassStats         `json:"passes"`
	Defensive   DefensiveStats    `json:"defensive"`
	Phases      PhaseDistribution `json:"phases"`
	Zones       ZoneDistribution  `json:"zones"`
}

// PlayerSummary holds one player's contribution to an event set.
type PlayerSummary struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName,omitempty"`
	TeamID     string `json:"teamId,omitempty"`

	Shots   int     `json:"shots"`
	Goals   int     `json:"goals"`
	TotalXG float64 `json:"totalXG"`

	Passes          int     `json:"passes"`
	PassesCompleted int     `json:"passesCompleted"`
	TotalXA         float64 `json:"totalXA"`

	DefensiveActions    int `json:"defensiveActions"`
	DefensiveSuccessful int `json:"defensiveSuccessful"`
}

func (p *PlayerSummary) CompletionRate() float64 {
	if p.Passes == 0 {
		return 0
	}
	return float64(p.PassesCompleted) / float64(p.Passes) * 100
}

func (p *PlayerSummary) DefensiveSuccessRate() float64 {
	if p.DefensiveActions == 0 {
		return 0
	}
	return float64(p.DefensiveSuccessful) / float64(p.DefensiveActions) * 100
}

// PassConnection is a directed edge of the pass network. Success <= Count.
type PassConnection struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Count   int    `json:"count"`
	Success int    `json:"success"`
}

// SuccessRate is the completed fraction in [0,1]. Edges never have Count 0.
func (c *PassConnection) SuccessRate() float64 {
	if c.Count == 0 {
		return 0
	}
	return float64(c.Success) / float64(c.Count)
}

// PlayerNode is a vertex of the pass network.
type PlayerNode struct {
	ID              string `json:"id"`
	Name            string `json:"name,omitempty"`
	Touches         int    `json:"touches"`
	PassesAttempted int    `json:"passesAttempted"`
	PassesCompleted int    `json:"passesCompleted"`
}

// Network is the pass graph view.
type Network struct {
	Nodes []PlayerNode     `json:"nodes"`
	Edges []PassConnection `json:"edges"`
}

// HeatmapCell is one bin of a density grid.
type HeatmapCell struct {
	GridX   int     `json:"gridX"`
	GridY   int     `json:"gridY"`
	Density float64 `json:"density"`
}
