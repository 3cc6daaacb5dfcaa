package store

import "time"

// Export run statuses.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ExportRun is one recorded export job.
type ExportRun struct {
	ID         string     `json:"id"`
	LeagueID   int64      `json:"league_id"`
	Season     int        `json:"season"`
	TeamID     int        `json:"team_id"`
	Week       int        `json:"week"`
	Variant    string     `json:"variant"`
	Source     string     `json:"source"`
	Status     string     `json:"status"`
	FilePath   string     `json:"file_path,omitempty"`
	ArchiveKey string     `json:"archive_key,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
