// Package mcp exposes league exports as Model Context Protocol tools so an
// assistant can pull a fresh document without a human copying files around.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/jobs"
	"github.com/fortuna/gridiron/internal/league"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// ToolExportLeagueData is the name of the export tool.
const ToolExportLeagueData = "export_league_data"

// ExportRunner runs one export to completion.
type ExportRunner interface {
	RunOnce(ctx context.Context, req jobs.Request) (*jobs.Job, error)
}

// ExportArgs are the tool arguments. Zero values fall back to the server
// defaults.
type ExportArgs struct {
	TeamID  int    `json:"team_id,omitempty" jsonschema:"Team id in the league (default from config)"`
	Week    int    `json:"week,omitempty" jsonschema:"Matchup week (0 = current week)"`
	Variant string `json:"variant,omitempty" jsonschema:"full or team"`
}

// ExportResult is the tool payload.
type ExportResult struct {
	JobID    string          `json:"job_id"`
	FilePath string          `json:"file_path"`
	Week     int             `json:"week"`
	Document json.RawMessage `json:"document"`
}

// Server hosts the gridiron MCP tools.
type Server struct {
	server   *sdk.Server
	runner   ExportRunner
	defaults jobs.Request
	log      zerolog.Logger
}

// NewServer registers the tools. defaults supplies league, season and the
// export options for every call.
func NewServer(runner ExportRunner, defaults jobs.Request, version string, log zerolog.Logger) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		server: sdk.NewServer(&sdk.Implementation{
			Name:    "gridiron",
			Version: version,
		}, nil),
		runner:   runner,
		defaults: defaults,
		log:      log.With().Str("component", "mcp").Logger(),
	}

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolExportLeagueData,
		Description: "Export the fantasy league snapshot (team, roster, matchups, free agents, power rankings, activity) and return the JSON document",
	}, s.exportLeagueData)

	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunTransport(ctx, &sdk.StdioTransport{})
}

// RunTransport serves over t.
func (s *Server) RunTransport(ctx context.Context, t sdk.Transport) error {
	s.log.Info().Msg("mcp server started")
	err := s.server.Run(ctx, t)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) exportLeagueData(ctx context.Context, _ *sdk.CallToolRequest, args ExportArgs) (*sdk.CallToolResult, any, error) {
	req := s.defaults
	req.Source = jobs.SourceMCP
	if args.TeamID != 0 {
		req.TeamID = args.TeamID
	}
	if args.Week < 0 {
		return toolError(fmt.Errorf("%w: week must not be negative", league.ErrInvalidWeek)), nil, nil
	}
	req.Week = args.Week
	if args.Variant != "" {
		v, err := export.ParseVariant(args.Variant)
		if err != nil {
			return toolError(err), nil, nil
		}
		req.Variant = v
	}

	job, err := s.runner.RunOnce(ctx, req)
	if err != nil {
		s.log.Warn().Err(err).Msg("export tool failed")
		return toolError(err), nil, nil
	}

	body, err := os.ReadFile(job.FilePath)
	if err != nil {
		return toolError(fmt.Errorf("%w: reading %s: %v", league.ErrIO, job.FilePath, err)), nil, nil
	}

	return toolJSON(ExportResult{
		JobID:    job.ID,
		FilePath: job.FilePath,
		Week:     job.Week,
		Document: body,
	})
}

func toolJSON(v any) (*sdk.CallToolResult, any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return toolError(err), nil, nil
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(b)}},
	}, nil, nil
}

func toolError(err error) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{
			&sdk.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
