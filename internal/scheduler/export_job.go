package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/jobs"
)

// Enqueuer accepts export requests.
type Enqueuer interface {
	Enqueue(ctx context.Context, req jobs.Request) (*jobs.Job, error)
}

// ExportJobConfig tunes ExportJob.
type ExportJobConfig struct {
	MaxRetries int           // Default: 3
	RetryDelay time.Duration // Default: 5s
	Timeout    time.Duration // Default: 10s
}

// ExportJob queues one league export per tick. The export itself runs on
// the jobs worker.
type ExportJob struct {
	exports Enqueuer
	req     jobs.Request
	cfg     ExportJobConfig
	sleep   func(context.Context, time.Duration) error
}

// NewExportJob builds the scheduled export for req. Week is always reset
// so every tick exports the league's current week.
func NewExportJob(exports Enqueuer, req jobs.Request, cfg ExportJobConfig) *ExportJob {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	req.Week = 0
	req.Source = jobs.SourceSchedule
	return &ExportJob{exports: exports, req: req, cfg: cfg, sleep: sleepCtx}
}

// Name implements Job.
func (j *ExportJob) Name() string {
	return fmt.Sprintf("league_export_%d", j.req.LeagueID)
}

// Run queues the export, retrying while the queue is full.
func (j *ExportJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.Timeout+time.Duration(j.cfg.MaxRetries)*j.cfg.RetryDelay)
	defer cancel()

	var err error
	for attempt := 1; attempt <= j.cfg.MaxRetries; attempt++ {
		_, err = j.exports.Enqueue(ctx, j.req)
		if err == nil || !errors.Is(err, jobs.ErrQueueFull) {
			return err
		}
		if attempt < j.cfg.MaxRetries {
			if serr := j.sleep(ctx, j.cfg.RetryDelay); serr != nil {
				return serr
			}
		}
	}
	return fmt.Errorf("after %d attempts: %w", j.cfg.MaxRetries, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
