package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortuna/gridiron/internal/jobs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	mu       sync.Mutex
	requests []jobs.Request
	errs     []error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, req jobs.Request) (*jobs.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &jobs.Job{ID: "job", Request: req, Status: jobs.StatusQueued}, nil
}

func (f *fakeEnqueuer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string { return "counting" }

func noSleep(context.Context, time.Duration) error { return nil }

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("every tuesday", &countingJob{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counting")

	// five-field specs are rejected because the seconds field is required
	assert.Error(t, s.AddJob("0 9 * * TUE", &countingJob{}))
	assert.NoError(t, s.AddJob("0 0 9 * * TUE", &countingJob{}))
	assert.NoError(t, s.AddJob("@hourly", &countingJob{}))
}

func TestSchedulerFiresJobs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("ignored")}
	require.NoError(t, s.AddJob("* * * * * *", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}
	require.NoError(t, s.RunNow(job))
	assert.EqualValues(t, 1, job.runs.Load())
}

func TestExportJobQueuesCurrentWeek(t *testing.T) {
	exports := &fakeEnqueuer{}
	job := NewExportJob(exports, jobs.Request{LeagueID: 123, Season: 2024, TeamID: 2, Week: 5, Source: jobs.SourceCLI}, ExportJobConfig{})

	assert.Equal(t, "league_export_123", job.Name())
	require.NoError(t, job.Run())
	require.Equal(t, 1, exports.calls())
	assert.Equal(t, 0, exports.requests[0].Week)
	assert.Equal(t, jobs.SourceSchedule, exports.requests[0].Source)
	assert.Equal(t, 2, exports.requests[0].TeamID)
}

func TestExportJobRetriesFullQueue(t *testing.T) {
	exports := &fakeEnqueuer{errs: []error{jobs.ErrQueueFull, jobs.ErrQueueFull, nil}}
	job := NewExportJob(exports, jobs.Request{LeagueID: 1}, ExportJobConfig{MaxRetries: 3})
	job.sleep = noSleep

	require.NoError(t, job.Run())
	assert.Equal(t, 3, exports.calls())
}

func TestExportJobGivesUp(t *testing.T) {
	exports := &fakeEnqueuer{errs: []error{jobs.ErrQueueFull, jobs.ErrQueueFull}}
	job := NewExportJob(exports, jobs.Request{LeagueID: 1}, ExportJobConfig{MaxRetries: 2})
	job.sleep = noSleep

	err := job.Run()
	require.ErrorIs(t, err, jobs.ErrQueueFull)
	assert.Equal(t, 2, exports.calls())
}

func TestExportJobDoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("invalid request")
	exports := &fakeEnqueuer{errs: []error{boom}}
	job := NewExportJob(exports, jobs.Request{LeagueID: 1}, ExportJobConfig{})
	job.sleep = noSleep

	require.ErrorIs(t, job.Run(), boom)
	assert.Equal(t, 1, exports.calls())
}
