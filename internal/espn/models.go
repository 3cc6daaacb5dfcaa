package espn

// Wire shapes of the ESPN fantasy v3 API. Only fields the exporter reads are
// declared; everything else in the payload is ignored by encoding/json.

type leagueResponse struct {
	ID              int64         `json:"id"`
	SeasonID        int           `json:"seasonId"`
	ScoringPeriodID int           `json:"scoringPeriodId"`
	Status          statusJSON    `json:"status"`
	Settings        settingsJSON  `json:"settings"`
	Teams           []teamJSON    `json:"teams"`
	Schedule        []matchupJSON `json:"schedule"`
}

type statusJSON struct {
	CurrentMatchupPeriod int  `json:"currentMatchupPeriod"`
	FirstScoringPeriod   int  `json:"firstScoringPeriod"`
	FinalScoringPeriod   int  `json:"finalScoringPeriod"`
	IsActive             bool `json:"isActive"`
}

type settingsJSON struct {
	Name             string `json:"name"`
	Size             int    `json:"size"`
	ScheduleSettings struct {
		MatchupPeriods map[string][]int `json:"matchupPeriods"`
	} `json:"scheduleSettings"`
}

type teamJSON struct {
	ID       int    `json:"id"`
	Abbrev   string `json:"abbrev"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Nickname string `json:"nickname"`
	Record   struct {
		Overall recordJSON `json:"overall"`
	} `json:"record"`
	TransactionCounter transactionCounterJSON `json:"transactionCounter"`
	Roster             rosterJSON             `json:"roster"`
}

type recordJSON struct {
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"pointsFor"`
	PointsAgainst float64 `json:"pointsAgainst"`
}

type transactionCounterJSON struct {
	Acquisitions           int `json:"acquisitions"`
	AcquisitionBudgetSpent int `json:"acquisitionBudgetSpent"`
	Drops                  int `json:"drops"`
	Trades                 int `json:"trades"`
}

type rosterJSON struct {
	AppliedStatTotal float64           `json:"appliedStatTotal"`
	Entries          []rosterEntryJSON `json:"entries"`
}

type rosterEntryJSON struct {
	PlayerID        int                 `json:"playerId"`
	LineupSlotID    int                 `json:"lineupSlotId"`
	PlayerPoolEntry playerPoolEntryJSON `json:"playerPoolEntry"`
}

type playerPoolEntryJSON struct {
	ID               int        `json:"id"`
	OnTeamID         int        `json:"onTeamId"`
	AppliedStatTotal float64    `json:"appliedStatTotal"`
	Player           playerJSON `json:"player"`
}

type playerJSON struct {
	ID                int        `json:"id"`
	FullName          string     `json:"fullName"`
	DefaultPositionID int        `json:"defaultPositionId"`
	ProTeamID         int        `json:"proTeamId"`
	Injured           bool       `json:"injured"`
	InjuryStatus      string     `json:"injuryStatus"`
	Stats             []statJSON `json:"stats"`
}

type statJSON struct {
	SeasonID        int     `json:"seasonId"`
	ScoringPeriodID int     `json:"scoringPeriodId"`
	StatSourceID    int     `json:"statSourceId"`
	StatSplitTypeID int     `json:"statSplitTypeId"`
	AppliedTotal    float64 `json:"appliedTotal"`
	AppliedAverage  float64 `json:"appliedAverage"`
}

type matchupJSON struct {
	ID              int              `json:"id"`
	MatchupPeriodID int              `json:"matchupPeriodId"`
	Home            *matchupTeamJSON `json:"home"`
	Away            *matchupTeamJSON `json:"away"`
	Winner          string           `json:"winner"`
}

type matchupTeamJSON struct {
	TeamID                        int         `json:"teamId"`
	TotalPoints                   float64     `json:"totalPoints"`
	TotalPointsLive               *float64    `json:"totalPointsLive"`
	TotalProjectedPointsLive      *float64    `json:"totalProjectedPointsLive"`
	RosterForCurrentScoringPeriod *rosterJSON `json:"rosterForCurrentScoringPeriod"`
}

type playersResponse struct {
	Players []playerPoolEntryJSON `json:"players"`
}

type playerListEntry struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
}

type communicationResponse struct {
	Topics []topicJSON `json:"topics"`
}

type topicJSON struct {
	Date     int64         `json:"date"`
	Messages []messageJSON `json:"messages"`
}

type messageJSON struct {
	MessageTypeID int `json:"messageTypeId"`
	TargetID      int `json:"targetId"`
	From          int `json:"from"`
	To            int `json:"to"`
	For           int `json:"for"`
}
