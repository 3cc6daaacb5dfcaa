// Package jobs runs league exports off the caller's goroutine and fans
// completion events out to subscribers.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/league"
)

// Status represents the lifecycle state for a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the job has finished.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Source records what triggered a job.
type Source string

const (
	SourceCLI      Source = "cli"
	SourceAPI      Source = "api"
	SourceMCP      Source = "mcp"
	SourceSchedule Source = "schedule"
)

// Request describes one export. Week 0 means the league's current week.
type Request struct {
	LeagueID   int64                   `json:"league_id"`
	Season     int                     `json:"season"`
	TeamID     int                     `json:"team_id"`
	Week       int                     `json:"week"`
	Variant    export.Variant          `json:"variant"`
	FreeAgents export.FreeAgentOptions `json:"-"`
	Activity   export.ActivityOptions  `json:"-"`
	Dir        string                  `json:"-"`
	Source     Source                  `json:"source"`
}

// Validate checks the request before it is queued.
func (r Request) Validate() error {
	if r.LeagueID <= 0 {
		return fmt.Errorf("%w: league_id must be positive", league.ErrConfig)
	}
	if r.Season < 2000 {
		return fmt.Errorf("%w: invalid season %d", league.ErrConfig, r.Season)
	}
	if r.TeamID < 1 {
		return fmt.Errorf("%w: team_id must be positive", league.ErrConfig)
	}
	if r.Week < 0 {
		return fmt.Errorf("%w: week must not be negative", league.ErrInvalidWeek)
	}
	if r.Dir == "" {
		return fmt.Errorf("%w: export directory is required", league.ErrConfig)
	}
	if _, err := export.ParseVariant(string(r.Variant)); err != nil {
		return err
	}
	return nil
}

// Job is the in-memory state of one export.
type Job struct {
	ID         string     `json:"id"`
	Request    Request    `json:"request"`
	Status     Status     `json:"status"`
	Week       int        `json:"week,omitempty"`
	FilePath   string     `json:"file_path,omitempty"`
	ArchiveKey string     `json:"archive_key,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Copy returns a shallow copy to prevent external mutation.
func (j *Job) Copy() *Job {
	if j == nil {
		return nil
	}
	cpy := *j
	return &cpy
}

// Event announces a finished job.
type Event struct {
	JobID      string    `json:"job_id"`
	Status     Status    `json:"status"`
	LeagueID   int64     `json:"league_id"`
	Season     int       `json:"season"`
	TeamID     int       `json:"team_id"`
	Week       int       `json:"week"`
	Variant    string    `json:"variant"`
	Source     Source    `json:"source"`
	FilePath   string    `json:"file_path,omitempty"`
	ArchiveKey string    `json:"archive_key,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

func eventFor(job *Job) Event {
	ev := Event{
		JobID:      job.ID,
		Status:     job.Status,
		LeagueID:   job.Request.LeagueID,
		Season:     job.Request.Season,
		TeamID:     job.Request.TeamID,
		Week:       job.Week,
		Variant:    string(job.Request.Variant),
		Source:     job.Request.Source,
		FilePath:   job.FilePath,
		ArchiveKey: job.ArchiveKey,
		Error:      job.Error,
	}
	if job.FinishedAt != nil {
		ev.FinishedAt = *job.FinishedAt
	}
	return ev
}

// Notifier receives completion events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }
