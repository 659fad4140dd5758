package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Timezone != "America/Los_Angeles" {
		t.Errorf("Timezone = %q, want America/Los_Angeles", c.Timezone)
	}
	if c.RateLimits.Complete.Limit != 5 || c.RateLimits.Profile.Limit != 3 {
		t.Errorf("RateLimits = %+v, want complete 5 profile 3", c.RateLimits)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	clearEnv(t)

	path := filepath.Join(dir, "kdle.yaml")
	yamlText := `
addr: ":9000"
database_url: postgres://file
admin_emails: ["Boss@Example.com "]
spotify:
  client_id: file-id
  client_secret: file-secret
rate_limits:
  search:
    limit: 50
    window: 30s
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yamlText), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("SPOTIFY_SECRET", "env-secret")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", c.Addr)
	}
	if c.DatabaseURL != "postgres://env" {
		t.Errorf("DatabaseURL = %q, env should win", c.DatabaseURL)
	}
	if c.Spotify.ClientID != "file-id" || c.Spotify.ClientSecret != "env-secret" {
		t.Errorf("Spotify = %+v", c.Spotify)
	}
	if c.RateLimits.Search.Limit != 50 || c.RateLimits.Search.Window != 30*time.Second {
		t.Errorf("Search limit = %+v, want 50/30s", c.RateLimits.Search)
	}
	if c.RateLimits.Guess.Limit != 30 {
		t.Errorf("Guess limit = %d, default should survive", c.RateLimits.Guess.Limit)
	}
	if len(c.AdminEmails) != 1 || c.AdminEmails[0] != "boss@example.com" {
		t.Errorf("AdminEmails = %v, want [boss@example.com]", c.AdminEmails)
	}
}

func TestAdminEmailsFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)
	t.Setenv("ADMIN_EMAILS", " A@x.io, ,b@Y.io")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"a@x.io", "b@y.io"}
	if len(c.AdminEmails) != len(want) || c.AdminEmails[0] != want[0] || c.AdminEmails[1] != want[1] {
		t.Errorf("AdminEmails = %v, want %v", c.AdminEmails, want)
	}
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: ErrMissingDatabaseURL},
		{name: "missing spotify", mutate: func(c *Config) { c.Spotify.ClientSecret = "" }, wantErr: ErrMissingSpotifyCredentials},
		{name: "missing auth", mutate: func(c *Config) { c.Supabase = SupabaseConfig{} }, wantErr: ErrMissingAuth},
		{name: "valid", mutate: func(*Config) {}, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			c.DatabaseURL = "postgres://x"
			c.Spotify.ClientID = "id"
			c.Spotify.ClientSecret = "secret"
			c.Supabase.JWTSecret = "jwt"
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ADDR", "DATABASE_URL", "SPOTIFY_ID", "SPOTIFY_SECRET", "ADMIN_EMAILS",
		"SUPABASE_URL", "SUPABASE_JWT_SECRET", "LOG_LEVEL", "REDIS_ADDR",
	} {
		t.Setenv(key, "")
	}
}

// chdir changes the working directory for the duration of the test,
// like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
