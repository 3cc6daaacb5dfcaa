// Package export turns a loaded league into the normalized JSON export:
// seven extractors, the document aggregator and the file writer.
package export

import (
	"context"
	"fmt"

	"github.com/fortuna/gridiron/internal/league"
)

const (
	DefaultFreeAgentSize = 10
	DefaultActivitySize  = 25
)

// Session is the read-only league capability the extractors query.
// *espn.League implements it.
type Session interface {
	CurrentWeek() int
	FinalWeek() int
	Teams() []league.Team
	BoxScores(ctx context.Context, week int) ([]league.BoxScore, error)
	FreeAgents(ctx context.Context, size int, position league.Position) ([]league.Player, error)
	PowerRankings(ctx context.Context, week int) ([]league.PowerRanking, error)
	RecentActivity(ctx context.Context, size int, action league.ActionType) ([]league.Activity, error)
}

func teamAt(s Session, teamID int) (league.Team, error) {
	teams := s.Teams()
	if teamID < 1 || teamID > len(teams) {
		return league.Team{}, fmt.Errorf("%w: team %d (league has %d teams)", league.ErrIndexOutOfRange, teamID, len(teams))
	}
	return teams[teamID-1], nil
}

// ExtractTeam returns the 1-based teamID's record with its roster in league order.
func ExtractTeam(s Session, teamID int) (TeamRecord, error) {
	team, err := teamAt(s, teamID)
	if err != nil {
		return TeamRecord{}, err
	}

	rec := TeamRecord{
		TeamName:               team.Name,
		Wins:                   team.Wins,
		Losses:                 team.Losses,
		PointsFor:              team.PointsFor,
		PointsAgainst:          team.PointsAgainst,
		Acquisitions:           team.Acquisitions,
		AcquisitionBudgetSpent: team.AcquisitionBudgetSpent,
		Roster:                 make([]RosterEntry, 0, len(team.Roster)),
	}
	for _, p := range team.Roster {
		rec.Roster = append(rec.Roster, RosterEntry{
			PlayerName:      p.Name,
			Position:        string(p.Position),
			LineupSlot:      string(p.LineupSlot),
			Points:          p.TotalPoints,
			ProjectedPoints: p.ProjectedTotalPoints,
			Injured:         p.Injured,
			InjuryStatus:    p.InjuryStatus,
			Starter:         p.LineupSlot.IsStarter(),
		})
	}
	return rec, nil
}

// ExtractPlayers returns the same roster as ExtractTeam in the player view.
func ExtractPlayers(s Session, teamID int) ([]PlayerRecord, error) {
	team, err := teamAt(s, teamID)
	if err != nil {
		return nil, err
	}

	players := make([]PlayerRecord, 0, len(team.Roster))
	for _, p := range team.Roster {
		players = append(players, PlayerRecord{
			Name:                 p.Name,
			Position:             string(p.Position),
			TotalPoints:          p.TotalPoints,
			AvgPoints:            p.AvgPoints,
			ProjectedTotalPoints: p.ProjectedTotalPoints,
			InjuryStatus:         p.InjuryStatus,
		})
	}
	return players, nil
}

// ExtractMatchups returns the week's games. A week outside the season, or
// one the league has no scores for yet, is ErrInvalidWeek.
func ExtractMatchups(ctx context.Context, s Session, week int) ([]MatchupRecord, error) {
	if week < 1 || (s.FinalWeek() > 0 && week > s.FinalWeek()) {
		return nil, fmt.Errorf("%w: week %d outside 1..%d", league.ErrInvalidWeek, week, s.FinalWeek())
	}

	boxes, err := s.BoxScores(ctx, week)
	if err != nil {
		return nil, err
	}
	if len(boxes) == 0 {
		return nil, fmt.Errorf("%w: no scores for week %d", league.ErrInvalidWeek, week)
	}

	matchups := make([]MatchupRecord, 0, len(boxes))
	for _, b := range boxes {
		matchups = append(matchups, MatchupRecord{
			HomeTeam:      b.HomeTeam,
			AwayTeam:      b.AwayTeam,
			HomeScore:     b.HomeScore,
			AwayScore:     b.AwayScore,
			HomeProjected: b.HomeProjected,
			AwayProjected: b.AwayProjected,
			HomeLineup:    lineup(b.HomeLineup),
			AwayLineup:    lineup(b.AwayLineup),
		})
	}
	return matchups, nil
}

func lineup(players []league.Player) []LineupEntry {
	out := make([]LineupEntry, 0, len(players))
	for _, p := range players {
		out = append(out, LineupEntry{
			PlayerName:      p.Name,
			SlotPosition:    string(p.LineupSlot),
			Points:          p.Points,
			ProjectedPoints: p.ProjectedPoints,
		})
	}
	return out
}

// FreeAgentOptions selects free agents. An empty Position or "ANY" means
// every position; Size <= 0 means DefaultFreeAgentSize.
type FreeAgentOptions struct {
	Position string
	Size     int
}

// ExtractFreeAgents returns at most Size free agents in upstream order.
func ExtractFreeAgents(ctx context.Context, s Session, opts FreeAgentOptions) ([]FreeAgentEntry, error) {
	position, ok := league.ParsePosition(opts.Position)
	if !ok {
		return nil, fmt.Errorf("%w: unknown free agent position %q", league.ErrConfig, opts.Position)
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultFreeAgentSize
	}

	players, err := s.FreeAgents(ctx, size, position)
	if err != nil {
		return nil, err
	}
	if len(players) > size {
		players = players[:size]
	}

	agents := make([]FreeAgentEntry, 0, len(players))
	for _, p := range players {
		agents = append(agents, FreeAgentEntry{
			Name:            p.Name,
			Position:        string(p.Position),
			TotalPoints:     p.TotalPoints,
			ProjectedPoints: p.ProjectedTotalPoints,
		})
	}
	return agents, nil
}

// ExtractPowerRankings mirrors the session's ranking order.
func ExtractPowerRankings(ctx context.Context, s Session, week int) ([]PowerRankingEntry, error) {
	if week < 1 {
		return nil, fmt.Errorf("%w: week %d", league.ErrInvalidWeek, week)
	}

	rankings, err := s.PowerRankings(ctx, week)
	if err != nil {
		return nil, err
	}
	out := make([]PowerRankingEntry, 0, len(rankings))
	for _, r := range rankings {
		out = append(out, PowerRankingEntry{TeamName: r.Team, Score: r.Score})
	}
	return out, nil
}

// ActivityOptions selects recent activity. Type is a filter key such as
// "FA", "WAIVER", "TRADED" or "DROPPED"; empty means all.
type ActivityOptions struct {
	Size int
	Type string
}

// ExtractRecentActivity returns league transactions, most recent first.
func ExtractRecentActivity(ctx context.Context, s Session, opts ActivityOptions) ([]ActivityEvent, error) {
	action, ok := league.ParseActivityFilter(opts.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown activity type %q", league.ErrConfig, opts.Type)
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultActivitySize
	}

	activity, err := s.RecentActivity(ctx, size, action)
	if err != nil {
		return nil, err
	}
	if len(activity) > size {
		activity = activity[:size]
	}

	events := make([]ActivityEvent, 0, len(activity))
	for _, a := range activity {
		ev := ActivityEvent{Date: a.Date, Actions: make([]ActivityAction, 0, len(a.Actions))}
		for _, act := range a.Actions {
			ev.Actions = append(ev.Actions, ActivityAction{
				Team:       act.Team,
				ActionType: string(act.Type),
				PlayerName: act.Player,
			})
		}
		events = append(events, ev)
	}
	return events, nil
}

// ExtractDateInfo reads the weekday from clock and the league's current week.
func ExtractDateInfo(s Session, clock Clock) DateInfo {
	return DateInfo{
		DayOfWeek:   clockOrSystem(clock).Now().Weekday().String(),
		CurrentWeek: s.CurrentWeek(),
	}
}
