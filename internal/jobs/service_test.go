package jobs

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/league"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	current int
}

func (s stubSession) CurrentWeek() int { return s.current }
func (s stubSession) FinalWeek() int   { return 17 }

func (s stubSession) Teams() []league.Team {
	return []league.Team{{ID: 1, Name: "Alpha", Roster: []league.Player{{Name: "Josh Allen", Position: league.PositionQB, LineupSlot: league.PositionQB}}}}
}

func (s stubSession) BoxScores(context.Context, int) ([]league.BoxScore, error) {
	return []league.BoxScore{{HomeTeam: "Alpha", AwayTeam: "Bravo"}}, nil
}

func (s stubSession) FreeAgents(context.Context, int, league.Position) ([]league.Player, error) {
	return nil, nil
}

func (s stubSession) PowerRankings(context.Context, int) ([]league.PowerRanking, error) {
	return []league.PowerRanking{{Score: 1, Team: "Alpha"}}, nil
}

func (s stubSession) RecentActivity(context.Context, int, league.ActionType) ([]league.Activity, error) {
	return nil, nil
}

type memoryHistory struct {
	mu   sync.Mutex
	runs map[string]store.ExportRun
}

func (h *memoryHistory) Insert(_ context.Context, run *store.ExportRun) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.runs == nil {
		h.runs = map[string]store.ExportRun{}
	}
	h.runs[run.ID] = *run
	return nil
}

func (h *memoryHistory) Finish(_ context.Context, run *store.ExportRun) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs[run.ID] = *run
	return nil
}

func (h *memoryHistory) get(id string) store.ExportRun {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs[id]
}

type fakeArchiver struct {
	err error
}

func (a fakeArchiver) Upload(_ context.Context, path string, leagueID int64, season int) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return "exports/key.json", nil
}

var fixedClock = export.FixedClock(time.Date(2024, 11, 5, 14, 30, 0, 0, time.UTC))

func openStub(current int) SessionOpener {
	return func(context.Context, int64, int) (export.Session, error) {
		return stubSession{current: current}, nil
	}
}

func testRequest(t *testing.T) Request {
	return Request{LeagueID: 123, Season: 2024, TeamID: 1, Dir: t.TempDir(), Source: SourceAPI}
}

func TestEnqueueRunsJobAndNotifies(t *testing.T) {
	history := &memoryHistory{}
	events := make(chan Event, 1)

	svc := NewService(NewRunner(openStub(7), fakeArchiver{}, fixedClock, zerolog.Nop()), Options{
		History: history,
		Logger:  zerolog.Nop(),
	})
	svc.Subscribe(NotifierFunc(func(_ context.Context, ev Event) error {
		events <- ev
		return nil
	}))
	svc.Start()
	defer svc.Shutdown(context.Background())

	job, err := svc.Enqueue(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, job.Status)
	assert.NotEmpty(t, job.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done, err := svc.Wait(ctx, job.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 7, done.Week, "week 0 resolves to the current week")
	assert.Equal(t, "exports/key.json", done.ArchiveKey)
	assert.FileExists(t, done.FilePath)
	assert.Contains(t, done.FilePath, "league_data_week_7_20241105_143000.json")

	select {
	case ev := <-events:
		assert.Equal(t, job.ID, ev.JobID)
		assert.Equal(t, StatusCompleted, ev.Status)
		assert.Equal(t, done.FilePath, ev.FilePath)
	case <-ctx.Done():
		t.Fatal("no completion event")
	}

	run := history.get(job.ID)
	assert.Equal(t, store.StatusCompleted, run.Status)
	assert.Equal(t, 7, run.Week)
}

func TestRunOnceFailure(t *testing.T) {
	history := &memoryHistory{}
	failing := func(context.Context, int64, int) (export.Session, error) {
		return nil, errors.Join(league.ErrSession, errors.New("access denied"))
	}
	svc := NewService(NewRunner(failing, nil, fixedClock, zerolog.Nop()), Options{History: history, Logger: zerolog.Nop()})

	job, err := svc.RunOnce(context.Background(), testRequest(t))
	require.ErrorIs(t, err, league.ErrSession)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Contains(t, job.Error, "access denied")
	assert.Equal(t, store.StatusFailed, history.get(job.ID).Status)
}

func TestRunOnceArchiveFailureKeepsFile(t *testing.T) {
	runner := NewRunner(openStub(3), fakeArchiver{err: errors.New("bucket missing")}, fixedClock, zerolog.Nop())
	svc := NewService(runner, Options{Logger: zerolog.Nop()})

	job, err := svc.RunOnce(context.Background(), testRequest(t))
	require.Error(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	_, statErr := os.Stat(job.FilePath)
	assert.NoError(t, statErr)
}

func TestRunOnceTeamVariant(t *testing.T) {
	svc := NewService(NewRunner(openStub(3), nil, fixedClock, zerolog.Nop()), Options{Logger: zerolog.Nop()})

	req := testRequest(t)
	req.Variant = export.VariantTeam
	req.Week = 2
	job, err := svc.RunOnce(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, job.Week)

	doc, err := export.ReadExport(job.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", doc.TeamInfo.TeamName)
	assert.Empty(t, doc.PowerRankings)
}

func TestEnqueueValidation(t *testing.T) {
	svc := NewService(NewRunner(openStub(1), nil, fixedClock, zerolog.Nop()), Options{Logger: zerolog.Nop()})

	tests := map[string]func(*Request){
		"league":  func(r *Request) { r.LeagueID = 0 },
		"team":    func(r *Request) { r.TeamID = 0 },
		"season":  func(r *Request) { r.Season = 0 },
		"variant": func(r *Request) { r.Variant = "gui" },
		"dir":     func(r *Request) { r.Dir = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			req := testRequest(t)
			mutate(&req)
			_, err := svc.Enqueue(context.Background(), req)
			assert.ErrorIs(t, err, league.ErrConfig)
		})
	}

	req := testRequest(t)
	req.Week = -1
	_, err := svc.Enqueue(context.Background(), req)
	assert.ErrorIs(t, err, league.ErrInvalidWeek)
}

func TestEnqueueQueueFull(t *testing.T) {
	svc := NewService(NewRunner(openStub(1), nil, fixedClock, zerolog.Nop()), Options{QueueSize: 1, Logger: zerolog.Nop()})

	_, err := svc.Enqueue(context.Background(), testRequest(t))
	require.NoError(t, err)
	_, err = svc.Enqueue(context.Background(), testRequest(t))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestGetAndWaitUnknown(t *testing.T) {
	svc := NewService(NewRunner(openStub(1), nil, fixedClock, zerolog.Nop()), Options{Logger: zerolog.Nop()})

	_, err := svc.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownJob)
	_, err = svc.Wait(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestRetainPrunesFinishedJobs(t *testing.T) {
	svc := NewService(NewRunner(openStub(1), nil, fixedClock, zerolog.Nop()), Options{Retain: 1, Logger: zerolog.Nop()})

	first, err := svc.RunOnce(context.Background(), testRequest(t))
	require.NoError(t, err)
	second, err := svc.RunOnce(context.Background(), testRequest(t))
	require.NoError(t, err)

	_, err = svc.Get(first.ID)
	assert.ErrorIs(t, err, ErrUnknownJob)
	got, err := svc.Get(second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}
