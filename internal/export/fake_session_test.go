package export

import (
	"context"

	"github.com/fortuna/gridiron/internal/league"
)

// fakeSession is an in-memory Session that records calls per method.
type fakeSession struct {
	current   int
	final     int
	teams     []league.Team
	boxes     map[int][]league.BoxScore
	agents    []league.Player
	rankings  []league.PowerRanking
	activity  []league.Activity
	boxErr    error
	agentsErr error

	calls        map[string]int
	lastSize     int
	lastPosition league.Position
	lastAction   league.ActionType
}

func (f *fakeSession) record(name string) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeSession) CurrentWeek() int { return f.current }
func (f *fakeSession) FinalWeek() int   { return f.final }

func (f *fakeSession) Teams() []league.Team {
	f.record("Teams")
	return f.teams
}

func (f *fakeSession) BoxScores(_ context.Context, week int) ([]league.BoxScore, error) {
	f.record("BoxScores")
	if f.boxErr != nil {
		return nil, f.boxErr
	}
	return f.boxes[week], nil
}

func (f *fakeSession) FreeAgents(_ context.Context, size int, position league.Position) ([]league.Player, error) {
	f.record("FreeAgents")
	f.lastSize, f.lastPosition = size, position
	if f.agentsErr != nil {
		return nil, f.agentsErr
	}
	return f.agents, nil
}

func (f *fakeSession) PowerRankings(_ context.Context, _ int) ([]league.PowerRanking, error) {
	f.record("PowerRankings")
	return f.rankings, nil
}

func (f *fakeSession) RecentActivity(_ context.Context, size int, action league.ActionType) ([]league.Activity, error) {
	f.record("RecentActivity")
	f.lastSize, f.lastAction = size, action
	return f.activity, nil
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		current: 7,
		final:   17,
		teams: []league.Team{
			{
				ID: 1, Name: "Alpha", Wins: 5, Losses: 1, PointsFor: 812.4, PointsAgainst: 700.1,
				Acquisitions: 4, AcquisitionBudgetSpent: 22,
				Roster: []league.Player{
					{Name: "Josh Allen", Position: league.PositionQB, LineupSlot: league.PositionQB, TotalPoints: 150.2, AvgPoints: 21.46, ProjectedTotalPoints: 360, InjuryStatus: "ACTIVE"},
					{Name: "Bijan Robinson", Position: league.PositionRB, LineupSlot: league.PositionBench, TotalPoints: 98, AvgPoints: 14, ProjectedTotalPoints: 280, Injured: true, InjuryStatus: "QUESTIONABLE"},
				},
			},
			{ID: 2, Name: "Bravo", Wins: 3, Losses: 3},
		},
		boxes: map[int][]league.BoxScore{
			7: {{
				HomeTeam: "Alpha", AwayTeam: "Bravo",
				HomeScore: 101.5, AwayScore: 99.2, HomeProjected: 110, AwayProjected: 95.5,
				HomeLineup: []league.Player{{Name: "Josh Allen", LineupSlot: league.PositionQB, Points: 25.3, ProjectedPoints: 22.1}},
				AwayLineup: []league.Player{},
			}},
		},
		agents: []league.Player{
			{Name: "Zed", Position: league.PositionWR, TotalPoints: 10, ProjectedTotalPoints: 50},
			{Name: "Abe", Position: league.PositionRB, TotalPoints: 30, ProjectedTotalPoints: 90},
		},
		rankings: []league.PowerRanking{{Score: 20.4, Team: "Alpha"}, {Score: 17.25, Team: "Bravo"}},
		activity: []league.Activity{
			{Date: 1730800000000, Actions: []league.Action{{Team: "Bravo", Type: league.ActionFreeAgentAdded, Player: "Zed"}}},
		},
	}
}
