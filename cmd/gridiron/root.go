package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	config   string
	logLevel string
	league   int64
	season   int
	team     int
}

var rootCmd = &cobra.Command{
	Use:           serviceName,
	Short:         "gridiron exports ESPN fantasy football league snapshots as JSON.",
	Version:       serviceVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.config, "config", config.DefaultFile, "Config file (json5); a .local sibling overrides it.")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level (debug, info, warn, error).")
	f.Int64Var(&rootFlags.league, "league", 0, "ESPN league id.")
	f.IntVar(&rootFlags.season, "season", 0, "Season year.")
	f.IntVar(&rootFlags.team, "team", 0, "Team id (1-based).")
}

func executeContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config chain and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(rootFlags.config)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = rootFlags.logLevel
	}
	if flags.Changed("league") {
		cfg.LeagueID = rootFlags.league
	}
	if flags.Changed("season") {
		cfg.Season = rootFlags.season
	}
	if flags.Changed("team") {
		cfg.TeamID = rootFlags.team
	}
	return cfg, nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	log := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logging.SetGlobalLogger(log)
	return log
}
