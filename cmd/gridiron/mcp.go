package main

import (
	"github.com/fortuna/gridiron/internal/api/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serves the export_league_data tool over MCP stdio.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// stdout belongs to the protocol; logging.New writes to stderr.
		log := newLogger(cfg)
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		return mcp.NewServer(a.exports, a.defaultRequest(), serviceVersion, log).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
