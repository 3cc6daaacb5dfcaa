package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrQueueFull is returned by Enqueue when the worker is saturated.
var ErrQueueFull = errors.New("export queue is full")

// ErrUnknownJob is returned for ids the service has never seen or has pruned.
var ErrUnknownJob = errors.New("unknown export job")

// History persists job records. *repository.ExportRepository implements it.
type History interface {
	Insert(ctx context.Context, run *store.ExportRun) error
	Finish(ctx context.Context, run *store.ExportRun) error
}

// Options configures a Service.
type Options struct {
	History   History
	Notifiers []Notifier
	QueueSize int
	// Retain bounds how many finished jobs are kept in memory.
	Retain int
	Logger zerolog.Logger
}

type entry struct {
	job  *Job
	done chan struct{}
}

// Service queues export jobs and runs them on a single worker.
type Service struct {
	runner  *Runner
	history History

	mu        sync.RWMutex
	jobs      map[string]*entry
	finished  []string
	notifiers []Notifier
	retain    int

	queue  chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now func() time.Time
	log zerolog.Logger
}

// NewService constructs a Service. Call Start to launch the worker.
func NewService(runner *Runner, opts Options) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	size := opts.QueueSize
	if size <= 0 {
		size = 16
	}
	retain := opts.Retain
	if retain <= 0 {
		retain = 100
	}

	return &Service{
		runner:    runner,
		history:   opts.History,
		jobs:      make(map[string]*entry),
		notifiers: append([]Notifier(nil), opts.Notifiers...),
		retain:    retain,
		queue:     make(chan string, size),
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
		log:       opts.Logger.With().Str("component", "jobs").Logger(),
	}
}

// Subscribe adds a completion notifier.
func (s *Service) Subscribe(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifiers = append(s.notifiers, n)
}

// Start launches the background worker loop.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops the worker and waits for the running job to finish.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue validates req and queues it. The returned job is a snapshot in
// the queued state.
func (s *Service) Enqueue(ctx context.Context, req Request) (*Job, error) {
	e, err := s.register(ctx, req)
	if err != nil {
		return nil, err
	}

	select {
	case s.queue <- e.job.ID:
	default:
		s.complete(e, Result{}, ErrQueueFull)
		return nil, ErrQueueFull
	}

	s.log.Info().Str("job_id", e.job.ID).Int64("league_id", req.LeagueID).Str("source", string(req.Source)).Msg("job queued")
	return s.snapshot(e), nil
}

// RunOnce runs req on the caller's goroutine and returns the finished job.
// The job error, if any, is also returned as err.
func (s *Service) RunOnce(ctx context.Context, req Request) (*Job, error) {
	e, err := s.register(ctx, req)
	if err != nil {
		return nil, err
	}
	runErr := s.execute(ctx, e)
	return s.snapshot(e), runErr
}

// Get returns a snapshot of job id.
func (s *Service) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	return e.job.Copy(), nil
}

// Wait blocks until job id finishes or ctx is done.
func (s *Service) Wait(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	e, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}

	select {
	case <-e.done:
		return s.snapshot(e), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) register(ctx context.Context, req Request) (*entry, error) {
	if req.Variant == "" {
		req.Variant = export.VariantFull
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job := &Job{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    StatusQueued,
		CreatedAt: s.now().UTC(),
	}

	if s.history != nil {
		if err := s.history.Insert(ctx, runRecord(job)); err != nil {
			return nil, fmt.Errorf("record job: %w", err)
		}
	}

	e := &entry{job: job, done: make(chan struct{})}
	s.mu.Lock()
	s.jobs[job.ID] = e
	s.mu.Unlock()
	return e, nil
}

func (s *Service) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case id := <-s.queue:
			s.mu.RLock()
			e, ok := s.jobs[id]
			s.mu.RUnlock()
			if !ok {
				continue
			}
			_ = s.execute(s.ctx, e)
		}
	}
}

func (s *Service) execute(ctx context.Context, e *entry) error {
	started := s.now().UTC()
	s.mu.Lock()
	e.job.Status = StatusRunning
	e.job.StartedAt = &started
	req := e.job.Request
	s.mu.Unlock()

	s.log.Info().Str("job_id", e.job.ID).Msg("job started")
	res, err := s.runner.Run(ctx, req)
	s.complete(e, res, err)
	return err
}

// complete moves the job to its terminal state, records it and notifies
// subscribers.
func (s *Service) complete(e *entry, res Result, runErr error) {
	finished := s.now().UTC()

	s.mu.Lock()
	job := e.job
	job.Week = res.Week
	job.FilePath = res.FilePath
	job.ArchiveKey = res.ArchiveKey
	job.FinishedAt = &finished
	if runErr != nil {
		job.Status = StatusFailed
		job.Error = runErr.Error()
	} else {
		job.Status = StatusCompleted
	}
	snapshot := job.Copy()
	notifiers := append([]Notifier(nil), s.notifiers...)
	s.finished = append(s.finished, job.ID)
	s.pruneLocked()
	s.mu.Unlock()

	close(e.done)

	logEvent := s.log.Info()
	if runErr != nil {
		logEvent = s.log.Error().Err(runErr)
	}
	logEvent.Str("job_id", snapshot.ID).Str("status", string(snapshot.Status)).Str("path", snapshot.FilePath).Msg("job finished")

	// Recording and notification outlive a cancelled job context.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.history != nil {
		if err := s.history.Finish(ctx, runRecord(snapshot)); err != nil {
			s.log.Warn().Err(err).Str("job_id", snapshot.ID).Msg("failed to record job result")
		}
	}

	ev := eventFor(snapshot)
	for _, n := range notifiers {
		if err := n.Notify(ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("job_id", snapshot.ID).Msg("notifier failed")
		}
	}
}

// pruneLocked drops the oldest finished jobs beyond the retain limit.
func (s *Service) pruneLocked() {
	for len(s.finished) > s.retain {
		delete(s.jobs, s.finished[0])
		s.finished = s.finished[1:]
	}
}

func (s *Service) snapshot(e *entry) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return e.job.Copy()
}

func runRecord(job *Job) *store.ExportRun {
	return &store.ExportRun{
		ID:         job.ID,
		LeagueID:   job.Request.LeagueID,
		Season:     job.Request.Season,
		TeamID:     job.Request.TeamID,
		Week:       job.Week,
		Variant:    string(job.Request.Variant),
		Source:     string(job.Request.Source),
		Status:     string(job.Status),
		FilePath:   job.FilePath,
		ArchiveKey: job.ArchiveKey,
		Error:      job.Error,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
}
