package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/store"
)

// ExportRepository handles export run history.
type ExportRepository struct {
	db *store.Database
}

// NewExportRepository creates a new export repository.
func NewExportRepository(db *store.Database) *ExportRepository {
	return &ExportRepository{db: db}
}

const exportColumns = `id, league_id, season, team_id, week, variant, source, status,
	file_path, archive_key, error, created_at, finished_at`

// Insert records a new run.
func (r *ExportRepository) Insert(ctx context.Context, run *store.ExportRun) error {
	query := r.db.Rebind(`
		INSERT INTO export_runs (` + exportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`)

	_, err := r.db.DB().ExecContext(ctx, query,
		run.ID, run.LeagueID, run.Season, run.TeamID, run.Week, run.Variant, run.Source, run.Status,
		run.FilePath, run.ArchiveKey, run.Error, run.CreatedAt.UnixMilli(), millisOrNull(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting export run: %w", err)
	}
	return nil
}

// Finish sets the terminal status, output location and error of a run.
func (r *ExportRepository) Finish(ctx context.Context, run *store.ExportRun) error {
	query := r.db.Rebind(`
		UPDATE export_runs
		SET status = $1, week = $2, file_path = $3, archive_key = $4, error = $5, finished_at = $6
		WHERE id = $7
	`)

	res, err := r.db.DB().ExecContext(ctx, query,
		run.Status, run.Week, run.FilePath, run.ArchiveKey, run.Error, millisOrNull(run.FinishedAt), run.ID,
	)
	if err != nil {
		return fmt.Errorf("updating export run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("export run %s: %w", run.ID, store.ErrNotFound)
	}
	return nil
}

// Get finds a run by id.
func (r *ExportRepository) Get(ctx context.Context, id string) (*store.ExportRun, error) {
	query := r.db.Rebind(`SELECT ` + exportColumns + ` FROM export_runs WHERE id = $1`)

	run, err := scanRun(r.db.DB().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("export run %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying export run: %w", err)
	}
	return run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *ExportRepository) ListRecent(ctx context.Context, limit int) ([]*store.ExportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.Rebind(`SELECT ` + exportColumns + ` FROM export_runs ORDER BY created_at DESC, id LIMIT $1`)

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying export runs: %w", err)
	}
	defer rows.Close()

	runs := []*store.ExportRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning export run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*store.ExportRun, error) {
	var (
		run      store.ExportRun
		created  int64
		finished sql.NullInt64
	)
	err := row.Scan(
		&run.ID, &run.LeagueID, &run.Season, &run.TeamID, &run.Week, &run.Variant, &run.Source, &run.Status,
		&run.FilePath, &run.ArchiveKey, &run.Error, &created, &finished,
	)
	if err != nil {
		return nil, err
	}

	run.CreatedAt = time.UnixMilli(created).UTC()
	if finished.Valid {
		t := time.UnixMilli(finished.Int64).UTC()
		run.FinishedAt = &t
	}
	return &run, nil
}

func millisOrNull(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
