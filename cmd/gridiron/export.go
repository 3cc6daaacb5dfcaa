package main

import (
	"fmt"

	"github.com/fortuna/gridiron/internal/jobs"
	"github.com/spf13/cobra"
)

var exportFlags struct {
	week         int
	dir          string
	variant      string
	position     string
	freeAgents   int
	activity     int
	activityType string
}

var exportCmd = &cobra.Command{
	Use:   "export [--league ID] [--season YEAR] [--team ID] [--week N]",
	Short: "Exports the league snapshot to a timestamped JSON file and prints its path.",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.IntVar(&exportFlags.week, "week", 0, "Matchup week (0 = current week).")
	f.StringVar(&exportFlags.dir, "dir", "", "Output directory.")
	f.StringVar(&exportFlags.variant, "variant", "", "Document variant: full or team.")
	f.StringVar(&exportFlags.position, "position", "", "Free agent position filter (QB, RB, WR, TE, K, D/ST, FLEX).")
	f.IntVar(&exportFlags.freeAgents, "free-agents", 0, "Number of free agents to include.")
	f.IntVar(&exportFlags.activity, "activity", 0, "Number of recent activity entries to include.")
	f.StringVar(&exportFlags.activityType, "activity-type", "", "Activity filter: FA, WAIVER, TRADED or DROPPED.")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.ExportDir = exportFlags.dir
	}
	if flags.Changed("variant") {
		cfg.Variant = exportFlags.variant
	}
	if flags.Changed("position") {
		cfg.FreeAgentPosition = exportFlags.position
	}
	if flags.Changed("free-agents") {
		cfg.FreeAgentSize = exportFlags.freeAgents
	}
	if flags.Changed("activity") {
		cfg.ActivitySize = exportFlags.activity
	}
	if flags.Changed("activity-type") {
		cfg.ActivityType = exportFlags.activityType
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(cfg)
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	req := a.defaultRequest()
	req.Week = exportFlags.week
	req.Source = jobs.SourceCLI

	job, err := a.exports.RunOnce(ctx, req)
	if err != nil {
		if job != nil && job.FilePath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "export written to %s but not archived\n", job.FilePath)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Week %d exported to %s\n", job.Week, job.FilePath)
	if job.ArchiveKey != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Archived as %s\n", job.ArchiveKey)
	}
	return nil
}
