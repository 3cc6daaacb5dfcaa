package export

// DateInfo carries the invocation weekday and the league's current week.
// The weekday key keeps the spelling downstream prompts already parse.
type DateInfo struct {
	DayOfWeek   string `json:"current_day of the week"`
	CurrentWeek int    `json:"current_week"`
}

// TeamRecord summarizes one team with its roster in league order.
type TeamRecord struct {
	TeamName               string        `json:"team_name"`
	Wins                   int           `json:"wins"`
	Losses                 int           `json:"losses"`
	PointsFor              float64       `json:"points_for"`
	PointsAgainst          float64       `json:"points_against"`
	Acquisitions           int           `json:"acquisitions"`
	AcquisitionBudgetSpent int           `json:"acquisition_budget_spent"`
	Roster                 []RosterEntry `json:"roster"`
}

type RosterEntry struct {
	PlayerName      string  `json:"player_name"`
	Position        string  `json:"position"`
	LineupSlot      string  `json:"lineup_slot"`
	Points          float64 `json:"points"`
	ProjectedPoints float64 `json:"projected_points"`
	Injured         bool    `json:"injured"`
	InjuryStatus    string  `json:"injury_status"`
	Starter         bool    `json:"starter"`
}

// PlayerRecord is the alternate roster view with averages and the
// injury status string.
type PlayerRecord struct {
	Name                 string  `json:"name"`
	Position             string  `json:"position"`
	TotalPoints          float64 `json:"total_points"`
	AvgPoints            float64 `json:"avg_points"`
	ProjectedTotalPoints float64 `json:"projected_total_points"`
	InjuryStatus         string  `json:"injury_status"`
}

type MatchupRecord struct {
	HomeTeam      string        `json:"home_team"`
	AwayTeam      string        `json:"away_team"`
	HomeScore     float64       `json:"home_score"`
	AwayScore     float64       `json:"away_score"`
	HomeProjected float64       `json:"home_projected"`
	AwayProjected float64       `json:"away_projected"`
	HomeLineup    []LineupEntry `json:"home_lineup"`
	AwayLineup    []LineupEntry `json:"away_lineup"`
}

type LineupEntry struct {
	PlayerName      string  `json:"player_name"`
	SlotPosition    string  `json:"slot_position"`
	Points          float64 `json:"points"`
	ProjectedPoints float64 `json:"projected_points"`
}

type FreeAgentEntry struct {
	Name            string  `json:"name"`
	Position        string  `json:"position"`
	TotalPoints     float64 `json:"total_points"`
	ProjectedPoints float64 `json:"projected_points"`
}

type PowerRankingEntry struct {
	TeamName string  `json:"team_name"`
	Score    float64 `json:"score"`
}

// ActivityEvent is one league message; Date is epoch milliseconds.
type ActivityEvent struct {
	Date    int64            `json:"date"`
	Actions []ActivityAction `json:"actions"`
}

type ActivityAction struct {
	Team       string `json:"team"`
	ActionType string `json:"action_type"`
	PlayerName string `json:"player_name"`
}

// Document is the full export. Every list is non-nil so that empty
// sections serialize as [] rather than null.
type Document struct {
	DateInfo       DateInfo            `json:"date_info"`
	TeamInfo       TeamRecord          `json:"team_info"`
	PlayerInfo     []PlayerRecord      `json:"player_info"`
	MatchupInfo    []MatchupRecord     `json:"matchup_info"`
	FreeAgents     []FreeAgentEntry    `json:"free_agents"`
	PowerRankings  []PowerRankingEntry `json:"power_rankings"`
	RecentActivity []ActivityEvent     `json:"recent_activity"`
}

// TeamDocument is the team-only export shape.
type TeamDocument struct {
	DateInfo   DateInfo       `json:"date_info"`
	TeamInfo   TeamRecord     `json:"team_info"`
	PlayerInfo []PlayerRecord `json:"player_info"`
}

func newDocument() *Document {
	return &Document{
		TeamInfo:       TeamRecord{Roster: []RosterEntry{}},
		PlayerInfo:     []PlayerRecord{},
		MatchupInfo:    []MatchupRecord{},
		FreeAgents:     []FreeAgentEntry{},
		PowerRankings:  []PowerRankingEntry{},
		RecentActivity: []ActivityEvent{},
	}
}
