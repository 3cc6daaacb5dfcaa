package jobs

import (
	"context"
	"fmt"

	"github.com/fortuna/gridiron/internal/export"
	"github.com/rs/zerolog"
)

// SessionOpener loads a league for an export.
type SessionOpener func(ctx context.Context, leagueID int64, season int) (export.Session, error)

// Archiver copies a written export to long-term storage and returns its key.
type Archiver interface {
	Upload(ctx context.Context, path string, leagueID int64, season int) (string, error)
}

// Result is what a successful run produced.
type Result struct {
	Week       int
	FilePath   string
	ArchiveKey string
}

// Runner executes a single export request end to end.
type Runner struct {
	open     SessionOpener
	archiver Archiver
	clock    export.Clock
	log      zerolog.Logger
}

// NewRunner constructs a runner. archiver may be nil.
func NewRunner(open SessionOpener, archiver Archiver, clock export.Clock, log zerolog.Logger) *Runner {
	if clock == nil {
		clock = export.SystemClock
	}
	return &Runner{
		open:     open,
		archiver: archiver,
		clock:    clock,
		log:      log.With().Str("component", "export-runner").Logger(),
	}
}

// Run opens the league, builds the document, writes it and archives it.
// A failed upload fails the run but the returned Result still names the
// local file.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	var res Result

	session, err := r.open(ctx, req.LeagueID, req.Season)
	if err != nil {
		return res, err
	}

	res.Week = req.Week
	if res.Week == 0 {
		res.Week = session.CurrentWeek()
	}

	variant, err := export.ParseVariant(string(req.Variant))
	if err != nil {
		return res, err
	}

	doc, err := export.BuildDocument(ctx, session, req.TeamID, res.Week, export.Options{
		Variant:    variant,
		FreeAgents: req.FreeAgents,
		Activity:   req.Activity,
		Clock:      r.clock,
	})
	if err != nil {
		return res, err
	}

	res.FilePath, err = export.WriteExportVariant(doc, variant, req.Dir, res.Week, r.clock)
	if err != nil {
		return res, err
	}
	r.log.Info().Str("path", res.FilePath).Int("week", res.Week).Msg("export written")

	if r.archiver != nil {
		key, err := r.archiver.Upload(ctx, res.FilePath, req.LeagueID, req.Season)
		if err != nil {
			return res, fmt.Errorf("archive %s: %w", res.FilePath, err)
		}
		res.ArchiveKey = key
	}
	return res, nil
}
