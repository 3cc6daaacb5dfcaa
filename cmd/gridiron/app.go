package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/archive"
	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/espn"
	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/jobs"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/rs/zerolog"
)

// app holds the process-wide dependencies shared by every command.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	cache   *cache.RedisCache
	db      *store.Database
	history *repository.ExportRepository
	exports *jobs.Service
}

func newApp(ctx context.Context, cfg config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without response cache or event stream")
		} else {
			a.cache = rc
			log.Info().Msg("connected to redis")
		}
	}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var archiver jobs.Archiver
	archiveCfg := archive.Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		Prefix:          cfg.S3Prefix,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	}
	if archiveCfg.Enabled() {
		s3, err := archive.NewS3Archiver(ctx, archiveCfg, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("initializing archive: %w", err)
		}
		archiver = s3
	}

	var notifiers []jobs.Notifier
	if a.cache != nil {
		stream := publisher.NewRedisPublisher(a.cache.Client())
		notifiers = append(notifiers, jobs.NotifierFunc(func(ctx context.Context, ev jobs.Event) error {
			return stream.PublishExport(ctx, ev)
		}))
	}

	runner := jobs.NewRunner(a.openSession, archiver, export.SystemClock, log)
	a.exports = jobs.NewService(runner, jobs.Options{
		History:   a.history,
		Notifiers: notifiers,
		Logger:    log,
	})
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	db, err := store.NewDatabase(ctx, a.cfg.DBDriver, a.cfg.DatabaseURL, a.log)
	if err != nil {
		return err
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	a.db = db
	a.history = repository.NewExportRepository(db)
	return nil
}

func (a *app) openSession(ctx context.Context, leagueID int64, season int) (export.Session, error) {
	opts := espn.Options{
		LeagueID: leagueID,
		Season:   season,
		ESPNS2:   a.cfg.ESPNS2,
		SWID:     a.cfg.SWID,
		BaseURL:  a.cfg.ESPNBaseURL,
		Timeout:  a.cfg.ESPNTimeout(),
		Retries:  a.cfg.ESPNRetries,
		CacheTTL: a.cfg.CacheTTL(),
		Logger:   a.log,
	}
	if a.cache != nil {
		opts.Cache = a.cache
	}
	return espn.Open(ctx, opts)
}

// defaultRequest is the export described by the loaded config.
func (a *app) defaultRequest() jobs.Request {
	return jobs.Request{
		LeagueID: a.cfg.LeagueID,
		Season:   a.cfg.Season,
		TeamID:   a.cfg.TeamID,
		Variant:  export.Variant(a.cfg.Variant),
		FreeAgents: export.FreeAgentOptions{
			Position: a.cfg.FreeAgentPosition,
			Size:     a.cfg.FreeAgentSize,
		},
		Activity: export.ActivityOptions{
			Size: a.cfg.ActivitySize,
			Type: a.cfg.ActivityType,
		},
		Dir: a.cfg.ExportDir,
	}
}

// healthChecks lists the dependencies /health reports on.
func (a *app) healthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{
		"database": a.db.HealthCheck,
	}
	if a.cache != nil {
		checks["redis"] = a.cache.HealthCheck
	}
	return checks
}

func (a *app) Close() {
	if a.exports != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := a.exports.Shutdown(ctx); err != nil {
			a.log.Warn().Err(err).Msg("export worker did not stop cleanly")
		}
		cancel()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.cache != nil {
		a.cache.Close()
	}
}
