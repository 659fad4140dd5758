// Package config loads K-Dle configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Sentinel errors returned by Validate.
var (
	// ErrMissingDatabaseURL is returned when DATABASE_URL is not set.
	ErrMissingDatabaseURL = errors.New("missing DATABASE_URL")

	// ErrMissingSpotifyCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
	ErrMissingSpotifyCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET")

	// ErrMissingAuth is returned when neither a JWT secret nor a Supabase URL is configured.
	ErrMissingAuth = errors.New("missing SUPABASE_JWT_SECRET or SUPABASE_URL")
)

// DefaultFile is read when no config path is given.
const DefaultFile = "kdle.yaml"

// Config is the full application configuration.
type Config struct {
	Addr         string   `yaml:"addr"`
	DatabaseURL  string   `yaml:"database_url"`
	AutoMigrate  bool     `yaml:"auto_migrate"`
	Timezone     string   `yaml:"timezone"`
	CookieSecret string   `yaml:"cookie_secret"`
	CookieSecure bool     `yaml:"cookie_secure"`
	AdminEmails  []string `yaml:"admin_emails"`
	CORSOrigins  []string `yaml:"cors_origins"`

	Spotify    SpotifyConfig    `yaml:"spotify"`
	Supabase   SupabaseConfig   `yaml:"supabase"`
	Preview    PreviewConfig    `yaml:"preview"`
	Redis      RedisConfig      `yaml:"redis"`
	RateLimits RateLimitsConfig `yaml:"rate_limits"`
	Log        LogConfig        `yaml:"log"`
}

// SpotifyConfig holds app-level catalog credentials.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Market       string `yaml:"market"`
}

// SupabaseConfig holds hosted auth settings.
type SupabaseConfig struct {
	URL            string `yaml:"url"`
	AnonKey        string `yaml:"anon_key"`
	ServiceRoleKey string `yaml:"service_role_key"`
	JWTSecret      string `yaml:"jwt_secret"`
}

// PreviewConfig controls the fallback preview finder.
type PreviewConfig struct {
	Enabled bool   `yaml:"enabled"`
	Country string `yaml:"country"`
}

// RedisConfig enables the shared rate-limit store when Addr is set.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// LimitConfig is one request budget.
type LimitConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// RateLimitsConfig holds per-endpoint budgets.
type RateLimitsConfig struct {
	Guess    LimitConfig `yaml:"guess"`
	Complete LimitConfig `yaml:"complete"`
	Profile  LimitConfig `yaml:"profile"`
	Search   LimitConfig `yaml:"search"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "console" or "json"
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used before the file and environment are applied.
func Default() *Config {
	return &Config{
		Addr:     "127.0.0.1:8080",
		Timezone: "America/Los_Angeles",
		Spotify:  SpotifyConfig{Market: "KR"},
		Preview:  PreviewConfig{Enabled: true, Country: "US"},
		RateLimits: RateLimitsConfig{
			Guess:    LimitConfig{Limit: 30, Window: time.Minute},
			Complete: LimitConfig{Limit: 5, Window: time.Minute},
			Profile:  LimitConfig{Limit: 3, Window: time.Minute},
			Search:   LimitConfig{Limit: 20, Window: time.Minute},
		},
		Log: LogConfig{Level: "info", Format: "console", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
	}
}

// Load reads .env, then the YAML file at path, then environment overrides.
// A missing .env or config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	c := Default()
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c.applyEnv()
	c.AdminEmails = normalizeEmails(c.AdminEmails)
	return c, nil
}

func (c *Config) applyEnv() {
	envOverride(&c.Addr, "ADDR")
	envOverride(&c.DatabaseURL, "DATABASE_URL")
	envOverrideBool(&c.AutoMigrate, "DB_AUTO_MIGRATE")
	envOverride(&c.Timezone, "DAILY_RESET_TZ")
	envOverride(&c.CookieSecret, "COOKIE_SECRET")
	envOverrideBool(&c.CookieSecure, "COOKIE_SECURE")
	envOverrideList(&c.AdminEmails, "ADMIN_EMAILS")
	envOverrideList(&c.CORSOrigins, "CORS_ORIGINS")

	envOverride(&c.Spotify.ClientID, "SPOTIFY_ID")
	envOverride(&c.Spotify.ClientSecret, "SPOTIFY_SECRET")
	envOverride(&c.Spotify.Market, "SPOTIFY_MARKET")

	envOverride(&c.Supabase.URL, "SUPABASE_URL")
	envOverride(&c.Supabase.AnonKey, "SUPABASE_ANON_KEY")
	envOverride(&c.Supabase.ServiceRoleKey, "SUPABASE_SERVICE_ROLE_KEY")
	envOverride(&c.Supabase.JWTSecret, "SUPABASE_JWT_SECRET")

	envOverrideBool(&c.Preview.Enabled, "PREVIEW_FALLBACK")
	envOverride(&c.Preview.Country, "PREVIEW_COUNTRY")
	envOverride(&c.Redis.Addr, "REDIS_ADDR")

	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.Format, "LOG_FORMAT")
	envOverride(&c.Log.File, "LOG_FILE")
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingSpotifyCredentials
	}
	if c.Supabase.JWTSecret == "" && c.Supabase.URL == "" {
		return ErrMissingAuth
	}
	return nil
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envOverrideList(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			out = append(out, e)
		}
	}
	return out
}
