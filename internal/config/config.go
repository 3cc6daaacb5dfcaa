// Package config loads gridiron settings from a .env file, a json5 config
// file with an optional local override, and the environment, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/fortuna/gridiron/internal/league"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "gridiron.json5"

// Config is the full process configuration. Field tags name the json5 key
// and the environment variable for each setting.
type Config struct {
	LeagueID int64  `json:"league_id" env:"LEAGUE_ID"`
	Season   int    `json:"season" env:"SEASON"`
	TeamID   int    `json:"team_id" env:"TEAM_ID"`
	ESPNS2   string `json:"espn_s2" env:"ESPN_S2"`
	SWID     string `json:"swid" env:"SWID"`

	ESPNBaseURL        string `json:"espn_base_url" env:"ESPN_BASE_URL"`
	ESPNTimeoutSeconds int    `json:"espn_timeout_seconds" env:"ESPN_TIMEOUT_SECONDS"`
	ESPNRetries        int    `json:"espn_retries" env:"ESPN_RETRIES"`

	ExportDir         string `json:"export_dir" env:"EXPORT_DIR"`
	Variant           string `json:"variant" env:"EXPORT_VARIANT"`
	FreeAgentSize     int    `json:"free_agent_size" env:"FREE_AGENT_SIZE"`
	FreeAgentPosition string `json:"free_agent_position" env:"FREE_AGENT_POSITION"`
	ActivitySize      int    `json:"activity_size" env:"ACTIVITY_SIZE"`
	ActivityType      string `json:"activity_type" env:"ACTIVITY_TYPE"`
	ExportSchedule    string `json:"export_schedule" env:"EXPORT_SCHEDULE"`

	LogLevel  string `json:"log_level" env:"LOG_LEVEL"`
	LogPretty bool   `json:"log_pretty" env:"LOG_PRETTY"`

	RedisURL        string `json:"redis_url" env:"REDIS_URL"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds" env:"CACHE_TTL_SECONDS"`

	DBDriver    string `json:"db_driver" env:"DB_DRIVER"`
	DatabaseURL string `json:"database_url" env:"DATABASE_URL"`

	S3Bucket          string `json:"s3_bucket" env:"S3_BUCKET"`
	S3Region          string `json:"s3_region" env:"S3_REGION"`
	S3Endpoint        string `json:"s3_endpoint" env:"S3_ENDPOINT"`
	S3Prefix          string `json:"s3_prefix" env:"S3_PREFIX"`
	S3AccessKeyID     string `json:"s3_access_key_id" env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `json:"s3_secret_access_key" env:"S3_SECRET_ACCESS_KEY"`

	HTTPAddr   string `json:"http_addr" env:"HTTP_ADDR"`
	CORSOrigin string `json:"cors_origin" env:"CORS_ORIGIN"`
}

// Load reads .env (if present), then path and its .local override (if
// present), then the environment, and fills defaults for anything unset.
// An empty path means DefaultFile.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: loading .env: %v", league.ErrConfig, err)
	}

	if path == "" {
		path = DefaultFile
	}
	cfg, err := ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	// Only variables that are set are applied, so LOG_PRETTY=false still
	// overrides a true from the file.
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse env: %v", league.ErrConfig, err)
	}

	if err := cfg.ApplyDefaults(time.Now()); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadFile reads a json5 config file and decodes name.local.ext over it.
// Keys present in the local file win, including false and zero values.
// Neither file is required.
func ReadFile(name string) (Config, error) {
	var out Config
	if err := decodeJSON5(name, &out); err != nil {
		return out, err
	}
	if err := decodeJSON5(localName(name), &out); err != nil {
		return out, err
	}
	return out, nil
}

// decodeJSON5 decodes name onto cfg, leaving keys the file omits alone.
func decodeJSON5(name string, cfg *Config) error {
	raw, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) || len(raw) == 0 {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", league.ErrConfig, name, err)
	}
	if err := json5.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", league.ErrConfig, name, err)
	}
	return nil
}

// localName turns dir/name.ext into dir/name.local.ext.
func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// defaults holds the fallback for every field with a static default.
func defaults() Config {
	return Config{
		TeamID:             1,
		ESPNTimeoutSeconds: 15,
		ExportDir:          "data_exports",
		Variant:            "full",
		FreeAgentSize:      10,
		ActivitySize:       25,
		LogLevel:           "info",
		CacheTTLSeconds:    300,
		DBDriver:           "sqlite",
		S3Region:           "us-east-1",
		S3Prefix:           "exports",
		HTTPAddr:           ":8080",
		CORSOrigin:         "*",
	}
}

// ApplyDefaults fills unset fields. Negative sizes and timeouts count as
// unset. The default season is the year the current NFL season started, so
// January and February count toward the previous year.
func (c *Config) ApplyDefaults(now time.Time) error {
	for _, v := range []*int{&c.ESPNTimeoutSeconds, &c.FreeAgentSize, &c.ActivitySize, &c.CacheTTLSeconds} {
		if *v < 0 {
			*v = 0
		}
	}
	if err := mergo.Merge(c, defaults()); err != nil {
		return fmt.Errorf("%w: applying defaults: %v", league.ErrConfig, err)
	}

	if c.Season == 0 {
		c.Season = now.Year()
		if now.Month() < time.March {
			c.Season--
		}
	}
	if c.DatabaseURL == "" && c.DBDriver == "sqlite" {
		c.DatabaseURL = "gridiron.db"
	}
	return nil
}

// Validate checks the settings every export needs. It never touches the network.
func (c Config) Validate() error {
	var problems []string
	if c.LeagueID <= 0 {
		problems = append(problems, "league_id is required")
	}
	if c.Season < 2000 {
		problems = append(problems, fmt.Sprintf("season %d is invalid", c.Season))
	}
	if strings.TrimSpace(c.ESPNS2) == "" {
		problems = append(problems, "espn_s2 is required")
	}
	if strings.TrimSpace(c.SWID) == "" {
		problems = append(problems, "swid is required")
	}
	if c.TeamID < 1 {
		problems = append(problems, "team_id must be positive")
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("db_driver %q is not sqlite or postgres", c.DBDriver))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", league.ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ESPNTimeout returns the upstream request timeout.
func (c Config) ESPNTimeout() time.Duration {
	return time.Duration(c.ESPNTimeoutSeconds) * time.Second
}

// CacheTTL returns the response cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
