package espn

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fortuna/gridiron/internal/league"
	"github.com/rs/zerolog"
)

// firstBoxScoreSeason is the earliest season ESPN serves box scores for.
const firstBoxScoreSeason = 2019

// Options identifies a league and carries the session credentials.
type Options struct {
	LeagueID int64
	Season   int
	ESPNS2   string
	SWID     string

	BaseURL  string
	Timeout  time.Duration
	Retries  int
	Cache    Cache
	CacheTTL time.Duration
	Logger   zerolog.Logger
}

// Validate checks the options without touching the network.
func (o Options) Validate() error {
	if o.LeagueID <= 0 {
		return fmt.Errorf("%w: league id must be positive, got %d", league.ErrConfig, o.LeagueID)
	}
	if o.Season < 2000 {
		return fmt.Errorf("%w: invalid season year %d", league.ErrConfig, o.Season)
	}
	if strings.TrimSpace(o.ESPNS2) == "" || strings.TrimSpace(o.SWID) == "" {
		return fmt.Errorf("%w: missing espn_s2 or SWID credentials", league.ErrConfig)
	}
	return nil
}

// League is a loaded league handle. Team data is fetched once by Open;
// box scores, free agents and activity are queried on demand.
// A League is safe for concurrent use.
type League struct {
	client *Client
	log    zerolog.Logger

	id                   int64
	season               int
	name                 string
	currentWeek          int
	currentMatchupPeriod int
	finalWeek            int
	teams                []league.Team
	teamNames            map[int]string
	matchupPeriods       map[int]int

	mu            sync.Mutex
	playerNames   map[int]string
	playersLoaded bool
}

// Open validates the options, then loads the league settings, teams,
// rosters and schedule.
func Open(ctx context.Context, opts Options) (*League, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	client := NewClient(ClientOptions{
		BaseURL:  opts.BaseURL,
		ESPNS2:   opts.ESPNS2,
		SWID:     opts.SWID,
		Timeout:  opts.Timeout,
		Retries:  opts.Retries,
		Cache:    opts.Cache,
		CacheTTL: opts.CacheTTL,
		Logger:   opts.Logger,
	})

	l := &League{
		client:      client,
		log:         opts.Logger.With().Str("component", "espn-league").Int64("league_id", opts.LeagueID).Int("season", opts.Season).Logger(),
		id:          opts.LeagueID,
		season:      opts.Season,
		playerNames: make(map[int]string),
	}

	params := url.Values{"view": {"mTeam", "mRoster", "mMatchup", "mSettings"}}
	resp, err := l.fetchLeague(ctx, params, nil)
	if err != nil {
		return nil, err
	}
	l.load(resp)

	l.log.Info().
		Str("name", l.name).
		Int("teams", len(l.teams)).
		Int("current_week", l.currentWeek).
		Msg("league loaded")
	return l, nil
}

func (l *League) leaguePath() string {
	return fmt.Sprintf("/seasons/%d/segments/0/leagues/%d", l.season, l.id)
}

// fetchLeague reads the league endpoint. Seasons before 2018 live under
// leagueHistory, which wraps the league in a one-element array.
func (l *League) fetchLeague(ctx context.Context, params url.Values, filter any) (*leagueResponse, error) {
	if l.season >= 2018 {
		var resp leagueResponse
		if err := l.client.get(ctx, l.leaguePath(), params, filter, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}

	params.Set("seasonId", strconv.Itoa(l.season))
	var history []leagueResponse
	if err := l.client.get(ctx, fmt.Sprintf("/leagueHistory/%d", l.id), params, filter, &history); err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: no history for league %d season %d", league.ErrSession, l.id, l.season)
	}
	return &history[0], nil
}

func (l *League) load(resp *leagueResponse) {
	if resp.SeasonID == 0 {
		resp.SeasonID = l.season
	}
	l.name = resp.Settings.Name
	l.currentMatchupPeriod = resp.Status.CurrentMatchupPeriod
	l.finalWeek = resp.Status.FinalScoringPeriod

	l.currentWeek = resp.ScoringPeriodID
	if l.season >= 2018 && l.finalWeek > 0 && l.currentWeek > l.finalWeek {
		l.currentWeek = l.finalWeek
	}

	l.teams = parseTeams(resp)
	l.teamNames = make(map[int]string, len(l.teams))
	for _, t := range l.teams {
		l.teamNames[t.ID] = t.Name
		for _, p := range t.Roster {
			l.playerNames[p.ID] = p.Name
		}
	}
	l.matchupPeriods = parseMatchupPeriods(resp.Settings)
}

// Name returns the league name from settings.
func (l *League) Name() string { return l.name }

// CurrentWeek returns the current scoring period.
func (l *League) CurrentWeek() int { return l.currentWeek }

// FinalWeek returns the last scoring period of the season, or 0 if unknown.
func (l *League) FinalWeek() int { return l.finalWeek }

// Teams returns the teams ordered by team id. The slice is a copy.
func (l *League) Teams() []league.Team {
	return append([]league.Team(nil), l.teams...)
}

func (l *League) matchupPeriodFor(week int) int {
	if period, ok := l.matchupPeriods[week]; ok {
		return period
	}
	return week
}

// BoxScores returns the games of a scoring period in upstream order.
// Weeks after the current week have no scores and return an empty result
// without a request.
func (l *League) BoxScores(ctx context.Context, week int) ([]league.BoxScore, error) {
	if l.season < firstBoxScoreSeason {
		return nil, fmt.Errorf("%w: box scores are not available before %d", league.ErrSession, firstBoxScoreSeason)
	}
	if week > l.currentWeek {
		return []league.BoxScore{}, nil
	}

	period := l.matchupPeriodFor(week)
	params := url.Values{
		"view":            {"mMatchupScore", "mScoreboard"},
		"scoringPeriodId": {strconv.Itoa(week)},
	}
	filter := map[string]any{
		"schedule": map[string]any{
			"filterMatchupPeriodIds": map[string]any{"value": []int{period}},
		},
	}

	resp, err := l.fetchLeague(ctx, params, filter)
	if err != nil {
		return nil, err
	}

	boxes := make([]league.BoxScore, 0, len(resp.Schedule))
	for _, m := range resp.Schedule {
		if m.MatchupPeriodID != 0 && m.MatchupPeriodID != period {
			continue
		}
		boxes = append(boxes, parseBoxScore(m, l.teamNames, week, l.season))
	}
	return boxes, nil
}

// FreeAgents returns up to size free agents and waiver players ranked by
// ESPN's percent-owned ordering. An empty position means any position.
func (l *League) FreeAgents(ctx context.Context, size int, position league.Position) ([]league.Player, error) {
	slots := []int{}
	if position != "" {
		slot, ok := slotFilters[position]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported free agent position %q", league.ErrConfig, position)
		}
		slots = append(slots, slot)
	}

	params := url.Values{
		"view":            {"kona_player_info"},
		"scoringPeriodId": {strconv.Itoa(l.currentWeek)},
	}
	filter := map[string]any{
		"players": map[string]any{
			"filterStatus":   map[string]any{"value": []string{"FREEAGENT", "WAIVERS"}},
			"filterSlotIds":  map[string]any{"value": slots},
			"limit":          size,
			"sortPercOwned":  map[string]any{"sortPriority": 1, "sortAsc": false},
			"sortDraftRanks": map[string]any{"sortPriority": 100, "sortAsc": true, "value": "STANDARD"},
		},
	}

	var resp playersResponse
	if err := l.client.get(ctx, l.leaguePath(), params, filter, &resp); err != nil {
		return nil, err
	}

	players := make([]league.Player, 0, len(resp.Players))
	for _, entry := range resp.Players {
		players = append(players, parsePlayer(entry, -1, l.season))
	}
	return players, nil
}

// PowerRankings ranks teams through the given week. Weeks outside
// 1..current week are clamped to the current week.
func (l *League) PowerRankings(_ context.Context, week int) ([]league.PowerRanking, error) {
	if week <= 0 || week > l.currentWeek {
		week = l.currentWeek
	}
	return powerRankings(l.teams, week), nil
}
