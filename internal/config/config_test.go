package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortuna/gridiron/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestReadFileMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gridiron.json5")
	writeFile(t, path, `{
		// league settings
		league_id: 1339216694,
		season: 2024,
		team_id: 2,
		export_dir: "exports",
	}`)
	writeFile(t, filepath.Join(dir, "gridiron.local.json5"), `{espn_s2: "local-s2", swid: "{local}", team_id: 3}`)

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1339216694), cfg.LeagueID)
	assert.Equal(t, 2024, cfg.Season)
	assert.Equal(t, 3, cfg.TeamID)
	assert.Equal(t, "exports", cfg.ExportDir)
	assert.Equal(t, "local-s2", cfg.ESPNS2)
	assert.Equal(t, "{local}", cfg.SWID)
}

func TestReadFileMissingIsEmpty(t *testing.T) {
	cfg, err := ReadFile(filepath.Join(t.TempDir(), "absent.json5"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestReadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json5")
	writeFile(t, path, `{league_id: `)

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, league.ErrConfig)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridiron.json5")
	writeFile(t, path, `{league_id: 1, season: 2023, espn_s2: "file-s2", swid: "file-swid"}`)

	t.Setenv("LEAGUE_ID", "42")
	t.Setenv("ESPN_S2", "env-s2")
	t.Setenv("FREE_AGENT_SIZE", "15")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.LeagueID)
	assert.Equal(t, 2023, cfg.Season)
	assert.Equal(t, "env-s2", cfg.ESPNS2)
	assert.Equal(t, "file-swid", cfg.SWID)
	assert.Equal(t, 15, cfg.FreeAgentSize)
	assert.Equal(t, 25, cfg.ActivitySize)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvFalseOverridesFileTrue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridiron.json5")
	writeFile(t, path, `{log_pretty: true, free_agent_size: 12}`)

	t.Setenv("LOG_PRETTY", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, 12, cfg.FreeAgentSize)
}

func TestReadFileLocalFalseOverridesBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gridiron.json5")
	writeFile(t, path, `{log_pretty: true, redis_url: "redis://localhost:6379"}`)
	writeFile(t, filepath.Join(dir, "gridiron.local.json5"), `{log_pretty: false, redis_url: ""}`)

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.LogPretty)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("LEAGUE_ID", "not-a-number")

	_, err := Load(filepath.Join(t.TempDir(), "gridiron.json5"))
	assert.ErrorIs(t, err, league.ErrConfig)
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.ApplyDefaults(time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, 2024, cfg.Season)
	assert.Equal(t, 1, cfg.TeamID)
	assert.Equal(t, "data_exports", cfg.ExportDir)
	assert.Equal(t, "full", cfg.Variant)
	assert.Equal(t, 10, cfg.FreeAgentSize)
	assert.Equal(t, 25, cfg.ActivitySize)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "gridiron.db", cfg.DatabaseURL)
	assert.Equal(t, 15*time.Second, cfg.ESPNTimeout())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())

	cfg = Config{}
	require.NoError(t, cfg.ApplyDefaults(time.Date(2024, time.September, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024, cfg.Season)
}

func TestApplyDefaultsKeepsSetValues(t *testing.T) {
	cfg := Config{
		TeamID:        4,
		FreeAgentSize: -3,
		DBDriver:      "postgres",
		DatabaseURL:   "postgres://localhost/gridiron",
		LogPretty:     true,
	}
	require.NoError(t, cfg.ApplyDefaults(time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, 4, cfg.TeamID)
	assert.Equal(t, 10, cfg.FreeAgentSize)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://localhost/gridiron", cfg.DatabaseURL)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestValidate(t *testing.T) {
	valid := Config{LeagueID: 1, Season: 2024, TeamID: 1, ESPNS2: "s2", SWID: "swid", DBDriver: "sqlite"}
	require.NoError(t, valid.Validate())

	tests := map[string]func(*Config){
		"missing league":  func(c *Config) { c.LeagueID = 0 },
		"missing espn_s2": func(c *Config) { c.ESPNS2 = " " },
		"missing swid":    func(c *Config) { c.SWID = "" },
		"bad season":      func(c *Config) { c.Season = 1999 },
		"bad team":        func(c *Config) { c.TeamID = 0 },
		"bad driver":      func(c *Config) { c.DBDriver = "mysql" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), league.ErrConfig)
		})
	}
}
