package espn

import (
	"sort"
	"strconv"
	"strings"

	"github.com/fortuna/gridiron/internal/league"
)

const (
	statSourceActual    = 0
	statSourceProjected = 1
)

// defaultPositions maps player.defaultPositionId to a position.
var defaultPositions = map[int]league.Position{
	1:  league.PositionQB,
	2:  league.PositionRB,
	3:  league.PositionWR,
	4:  league.PositionTE,
	5:  league.PositionK,
	16: league.PositionDST,
}

// lineupSlots maps lineupSlotId to a position.
var lineupSlots = map[int]league.Position{
	0:  league.PositionQB,
	2:  league.PositionRB,
	4:  league.PositionWR,
	6:  league.PositionTE,
	7:  league.PositionOP,
	16: league.PositionDST,
	17: league.PositionK,
	20: league.PositionBench,
	21: league.PositionIR,
	23: league.PositionFlex,
}

// slotFilters maps a position filter to the lineupSlotId ESPN filters on.
var slotFilters = map[league.Position]int{
	league.PositionQB:   0,
	league.PositionRB:   2,
	league.PositionWR:   4,
	league.PositionTE:   6,
	league.PositionDST:  16,
	league.PositionK:    17,
	league.PositionFlex: 23,
}

func positionFor(id int) league.Position {
	if p, ok := defaultPositions[id]; ok {
		return p
	}
	return league.PositionUnknown
}

func slotFor(id int) league.Position {
	if p, ok := lineupSlots[id]; ok {
		return p
	}
	return league.PositionUnknown
}

func teamName(t teamJSON) string {
	if name := strings.TrimSpace(t.Name); name != "" {
		return name
	}
	return strings.TrimSpace(t.Location + " " + t.Nickname)
}

// seasonStat returns the full-season line for a stat source.
func seasonStat(stats []statJSON, season, source int) (statJSON, bool) {
	for _, s := range stats {
		if s.ScoringPeriodID != 0 || s.StatSourceID != source || s.StatSplitTypeID != 0 {
			continue
		}
		if s.SeasonID != 0 && s.SeasonID != season {
			continue
		}
		return s, true
	}
	return statJSON{}, false
}

// weekStat returns the single scoring-period line for a stat source.
func weekStat(stats []statJSON, week, source int) (statJSON, bool) {
	for _, s := range stats {
		if s.ScoringPeriodID == week && s.StatSourceID == source {
			return s, true
		}
	}
	return statJSON{}, false
}

func parsePlayer(entry playerPoolEntryJSON, slotID int, season int) league.Player {
	p := entry.Player
	status := strings.TrimSpace(p.InjuryStatus)
	if status == "" {
		status = "ACTIVE"
	}

	player := league.Player{
		ID:           p.ID,
		Name:         p.FullName,
		Position:     positionFor(p.DefaultPositionID),
		Injured:      p.Injured,
		InjuryStatus: status,
	}
	if slotID >= 0 {
		player.LineupSlot = slotFor(slotID)
	}

	if actual, ok := seasonStat(p.Stats, season, statSourceActual); ok {
		player.TotalPoints = actual.AppliedTotal
		player.AvgPoints = actual.AppliedAverage
	} else {
		player.TotalPoints = entry.AppliedStatTotal
	}
	if projected, ok := seasonStat(p.Stats, season, statSourceProjected); ok {
		player.ProjectedTotalPoints = projected.AppliedTotal
	}
	return player
}

func parseBoxPlayer(entry rosterEntryJSON, week, season int) league.Player {
	player := parsePlayer(entry.PlayerPoolEntry, entry.LineupSlotID, season)
	stats := entry.PlayerPoolEntry.Player.Stats
	if actual, ok := weekStat(stats, week, statSourceActual); ok {
		player.Points = actual.AppliedTotal
	}
	if projected, ok := weekStat(stats, week, statSourceProjected); ok {
		player.ProjectedPoints = projected.AppliedTotal
	}
	return player
}

func parseRoster(entries []rosterEntryJSON, season int) []league.Player {
	roster := make([]league.Player, 0, len(entries))
	for _, e := range entries {
		roster = append(roster, parsePlayer(e.PlayerPoolEntry, e.LineupSlotID, season))
	}
	return roster
}

// parseTeams converts teams and folds the schedule into per-team scores,
// margins and opponents. The result is sorted by team id.
func parseTeams(resp *leagueResponse) []league.Team {
	season := resp.SeasonID
	teams := make([]league.Team, 0, len(resp.Teams))
	index := make(map[int]int, len(resp.Teams))

	for _, t := range resp.Teams {
		rec := t.Record.Overall
		teams = append(teams, league.Team{
			ID:                     t.ID,
			Name:                   teamName(t),
			Abbrev:                 t.Abbrev,
			Wins:                   rec.Wins,
			Losses:                 rec.Losses,
			Ties:                   rec.Ties,
			PointsFor:              rec.PointsFor,
			PointsAgainst:          rec.PointsAgainst,
			Acquisitions:           t.TransactionCounter.Acquisitions,
			AcquisitionBudgetSpent: t.TransactionCounter.AcquisitionBudgetSpent,
			Drops:                  t.TransactionCounter.Drops,
			Trades:                 t.TransactionCounter.Trades,
			Roster:                 parseRoster(t.Roster.Entries, season),
		})
	}
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	for i, t := range teams {
		index[t.ID] = i
	}

	schedule := append([]matchupJSON(nil), resp.Schedule...)
	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].MatchupPeriodID < schedule[j].MatchupPeriodID
	})

	for _, m := range schedule {
		if m.Home == nil {
			continue
		}
		if m.Away == nil {
			if i, ok := index[m.Home.TeamID]; ok {
				appendResult(&teams[i], m.Home.TotalPoints, 0, 0)
			}
			continue
		}
		home, away := m.Home, m.Away
		if i, ok := index[home.TeamID]; ok {
			appendResult(&teams[i], home.TotalPoints, home.TotalPoints-away.TotalPoints, away.TeamID)
		}
		if i, ok := index[away.TeamID]; ok {
			appendResult(&teams[i], away.TotalPoints, away.TotalPoints-home.TotalPoints, home.TeamID)
		}
	}
	return teams
}

func appendResult(t *league.Team, score, mov float64, opponent int) {
	t.Scores = append(t.Scores, score)
	t.MarginOfVictory = append(t.MarginOfVictory, mov)
	t.Opponents = append(t.Opponents, opponent)
}

// parseMatchupPeriods inverts settings.scheduleSettings.matchupPeriods into
// scoring period -> matchup period.
func parseMatchupPeriods(settings settingsJSON) map[int]int {
	out := make(map[int]int)
	for key, weeks := range settings.ScheduleSettings.MatchupPeriods {
		period, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		for _, w := range weeks {
			out[w] = period
		}
	}
	return out
}

func parseBoxScore(m matchupJSON, names map[int]string, week, season int) league.BoxScore {
	var box league.BoxScore
	if m.Home != nil {
		box.HomeTeam = names[m.Home.TeamID]
		box.HomeScore, box.HomeProjected, box.HomeLineup = parseBoxSide(m.Home, week, season)
	}
	if m.Away != nil {
		box.AwayTeam = names[m.Away.TeamID]
		box.AwayScore, box.AwayProjected, box.AwayLineup = parseBoxSide(m.Away, week, season)
	}
	return box
}

func parseBoxSide(side *matchupTeamJSON, week, season int) (score, projected float64, lineup []league.Player) {
	lineup = []league.Player{}
	if side.RosterForCurrentScoringPeriod != nil {
		for _, e := range side.RosterForCurrentScoringPeriod.Entries {
			lineup = append(lineup, parseBoxPlayer(e, week, season))
		}
	}

	switch {
	case side.TotalPointsLive != nil:
		score = *side.TotalPointsLive
	case side.RosterForCurrentScoringPeriod != nil:
		score = side.RosterForCurrentScoringPeriod.AppliedStatTotal
	default:
		score = side.TotalPoints
	}

	if side.TotalProjectedPointsLive != nil {
		projected = *side.TotalProjectedPointsLive
	} else {
		for _, p := range lineup {
			if p.LineupSlot.IsStarter() {
				projected += p.ProjectedPoints
			}
		}
	}
	return round2(score), round2(projected), lineup
}
