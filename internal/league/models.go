// Package league holds the read-only snapshot of an ESPN fantasy football
// league as decoded from the upstream API.
package league

import "strings"

// Position is a player's eligible position or lineup slot.
type Position string

const (
	PositionQB      Position = "QB"
	PositionRB      Position = "RB"
	PositionWR      Position = "WR"
	PositionTE      Position = "TE"
	PositionFlex    Position = "FLEX"
	PositionDST     Position = "DST"
	PositionK       Position = "K"
	PositionBench   Position = "BENCH"
	PositionIR      Position = "IR"
	PositionOP      Position = "OP"
	PositionUnknown Position = "UNKNOWN"
)

// ParsePosition normalizes user input ("d/st", "rb/wr/te", "any") to a Position.
// The empty string and "ANY" return ("", true) meaning no filter.
func ParsePosition(s string) (Position, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ANY":
		return "", true
	case "QB":
		return PositionQB, true
	case "RB":
		return PositionRB, true
	case "WR":
		return PositionWR, true
	case "TE":
		return PositionTE, true
	case "FLEX", "RB/WR/TE":
		return PositionFlex, true
	case "DST", "D/ST", "DEF":
		return PositionDST, true
	case "K":
		return PositionK, true
	default:
		return "", false
	}
}

// IsStarter reports whether a lineup slot counts toward the weekly score.
func (p Position) IsStarter() bool {
	return p != PositionBench && p != PositionIR && p != ""
}

// ActionType is the closed set of transaction kinds in recent activity.
type ActionType string

const (
	ActionFreeAgentAdded ActionType = "FA ADDED"
	ActionWaiverAdded    ActionType = "WAIVER ADDED"
	ActionDropped        ActionType = "DROPPED"
	ActionTraded         ActionType = "TRADED"
	ActionUnknown        ActionType = "UNKNOWN"
)

// ParseActivityFilter maps a filter key to the action it selects.
// The empty string means no filter.
func ParseActivityFilter(s string) (ActionType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", true
	case "FA", string(ActionFreeAgentAdded):
		return ActionFreeAgentAdded, true
	case "WAIVER", string(ActionWaiverAdded):
		return ActionWaiverAdded, true
	case "TRADED", "TRADE":
		return ActionTraded, true
	case "DROPPED", "DROP":
		return ActionDropped, true
	default:
		return "", false
	}
}

// Player is a rostered player, free agent or box-score line.
type Player struct {
	ID                   int
	Name                 string
	Position             Position
	LineupSlot           Position
	TotalPoints          float64
	AvgPoints            float64
	ProjectedTotalPoints float64
	// Points and ProjectedPoints are single-week values, set in box scores.
	Points          float64
	ProjectedPoints float64
	Injured         bool
	InjuryStatus    string
}

// Team is one fantasy franchise with its season record and roster.
type Team struct {
	ID                     int
	Name                   string
	Abbrev                 string
	Wins                   int
	Losses                 int
	Ties                   int
	PointsFor              float64
	PointsAgainst          float64
	Acquisitions           int
	AcquisitionBudgetSpent int
	Drops                  int
	Trades                 int
	Roster                 []Player

	// Per matchup period, in period order. Opponents holds the opponent
	// team id, 0 for a bye.
	Scores          []float64
	MarginOfVictory []float64
	Opponents       []int
}

// BoxScore is one game of a scoring period. AwayTeam is empty on a bye.
type BoxScore struct {
	HomeTeam      string
	AwayTeam      string
	HomeScore     float64
	AwayScore     float64
	HomeProjected float64
	AwayProjected float64
	HomeLineup    []Player
	AwayLineup    []Player
}

// PowerRanking pairs a team with its ranking score.
type PowerRanking struct {
	Score float64
	Team  string
}

// Action is a single (team, action, player) transaction line.
type Action struct {
	Team   string
	Type   ActionType
	Player string
}

// Activity groups the actions of one league message, dated in epoch millis.
type Activity struct {
	Date    int64
	Actions []Action
}
