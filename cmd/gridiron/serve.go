package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fortuna/gridiron/internal/api/rest"
	"github.com/fortuna/gridiron/internal/api/websocket"
	"github.com/fortuna/gridiron/internal/scheduler"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr     string
	schedule string
}

var serveCmd = &cobra.Command{
	Use:   "serve [--addr :8080] [--schedule \"0 0 9 * * TUE\"]",
	Short: "Runs the REST and websocket API and the optional export schedule.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", "", "HTTP listen address.")
	f.StringVar(&serveFlags.schedule, "schedule", "", "Cron schedule (seconds first) for automatic exports.")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.HTTPAddr = serveFlags.addr
	}
	if cmd.Flags().Changed("schedule") {
		cfg.ExportSchedule = serveFlags.schedule
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(cfg)
	log.Info().Str("version", serviceVersion).Msg("starting " + serviceName)

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ws := websocket.NewServer(cfg.CORSOrigin, log)
	go ws.Run(ctx)
	a.exports.Subscribe(ws)
	a.exports.Start()

	if cfg.ExportSchedule != "" {
		sched := scheduler.New(log)
		job := scheduler.NewExportJob(a.exports, a.defaultRequest(), scheduler.ExportJobConfig{})
		if err := sched.AddJob(cfg.ExportSchedule, job); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	server := rest.NewServer(cfg.HTTPAddr, rest.Deps{
		Exports:    a.exports,
		History:    a.history,
		Websocket:  ws,
		Defaults:   a.defaultRequest(),
		Checks:     a.healthChecks(),
		CORSOrigin: cfg.CORSOrigin,
		Version:    serviceVersion,
		Logger:     log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("REST API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("REST server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("REST server shutdown")
	}
	return nil
}
