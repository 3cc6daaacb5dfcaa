package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	limit int
	show  string
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit N] [--show ID]",
	Short: "Lists recorded export runs, or summarises one run's document.",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.IntVar(&historyFlags.limit, "limit", 20, "Number of runs to list.")
	f.StringVar(&historyFlags.show, "show", "", "Run id whose document to summarise.")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx := cmd.Context()

	db, err := store.NewDatabase(ctx, cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.RunMigrations(ctx); err != nil {
		return err
	}
	repo := repository.NewExportRepository(db)
	out := cmd.OutOrStdout()

	if historyFlags.show != "" {
		run, err := repo.Get(ctx, historyFlags.show)
		if err != nil {
			return err
		}
		if run.FilePath == "" {
			return fmt.Errorf("run %s has no document (status %s)", run.ID, run.Status)
		}
		doc, err := export.ReadExport(run.FilePath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s  week %d  %s\n", doc.TeamInfo.TeamName, doc.DateInfo.CurrentWeek, run.FilePath)
		fmt.Fprintf(out, "record %d-%d  points for %.2f  against %.2f\n",
			doc.TeamInfo.Wins, doc.TeamInfo.Losses, doc.TeamInfo.PointsFor, doc.TeamInfo.PointsAgainst)
		fmt.Fprintf(out, "%d roster players, %d matchups, %d free agents, %d activity entries\n",
			len(doc.PlayerInfo), len(doc.MatchupInfo), len(doc.FreeAgents), len(doc.RecentActivity))
		return nil
	}

	runs, err := repo.ListRecent(ctx, historyFlags.limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tWEEK\tSTATUS\tFILE")
	for _, r := range runs {
		file := r.FilePath
		if r.Error != "" {
			file = r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Source, r.Week, r.Status, file)
	}
	return tw.Flush()
}
