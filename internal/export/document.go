package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/fortuna/gridiron/internal/league"
)

// Stage names an extractor in aggregation order.
type Stage string

const (
	StageTeam          Stage = "team_info"
	StagePlayer        Stage = "player_info"
	StageMatchup       Stage = "matchup_info"
	StageFreeAgents    Stage = "free_agents"
	StagePowerRankings Stage = "power_rankings"
	StageActivity      Stage = "recent_activity"
	StageDate          Stage = "date_info"
)

// StageError reports which extractor aborted a document build.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Variant selects the export shape.
type Variant string

const (
	VariantFull Variant = "full"
	VariantTeam Variant = "team"
)

// ParseVariant accepts "full" (or empty) and "team".
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", VariantFull:
		return VariantFull, nil
	case VariantTeam:
		return VariantTeam, nil
	default:
		return "", fmt.Errorf("%w: unknown export variant %q", league.ErrConfig, s)
	}
}

// Options tunes BuildDocument. The zero value builds the full document with
// default free agent and activity caps on the system clock.
type Options struct {
	Variant    Variant
	FreeAgents FreeAgentOptions
	Activity   ActivityOptions
	Clock      Clock
}

// BuildDocument runs the extractors in order: team, player, matchup, free
// agents, power rankings, activity, date. The first failure aborts the
// build with a *StageError; no partial document is returned.
func BuildDocument(ctx context.Context, s Session, teamID, week int, opts Options) (*Document, error) {
	doc := newDocument()
	full := opts.Variant != VariantTeam

	var err error
	if doc.TeamInfo, err = ExtractTeam(s, teamID); err != nil {
		return nil, &StageError{Stage: StageTeam, Err: err}
	}
	if doc.PlayerInfo, err = ExtractPlayers(s, teamID); err != nil {
		return nil, &StageError{Stage: StagePlayer, Err: err}
	}

	if full {
		if doc.MatchupInfo, err = ExtractMatchups(ctx, s, week); err != nil {
			return nil, &StageError{Stage: StageMatchup, Err: err}
		}
		if doc.FreeAgents, err = ExtractFreeAgents(ctx, s, opts.FreeAgents); err != nil {
			return nil, &StageError{Stage: StageFreeAgents, Err: err}
		}
		if doc.PowerRankings, err = ExtractPowerRankings(ctx, s, week); err != nil {
			return nil, &StageError{Stage: StagePowerRankings, Err: err}
		}
		if doc.RecentActivity, err = ExtractRecentActivity(ctx, s, opts.Activity); err != nil {
			return nil, &StageError{Stage: StageActivity, Err: err}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageDate, Err: err}
	}
	doc.DateInfo = ExtractDateInfo(s, opts.Clock)
	return doc, nil
}

// View returns the value serialized for variant.
func (d *Document) View(variant Variant) any {
	if variant == VariantTeam {
		return TeamDocument{DateInfo: d.DateInfo, TeamInfo: d.TeamInfo, PlayerInfo: d.PlayerInfo}
	}
	return d
}
