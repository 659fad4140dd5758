// Command kdle runs the K-Dle daily song guessing game.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/admin"
	"github.com/justestif/kdle/internal/auth"
	"github.com/justestif/kdle/internal/catalog"
	"github.com/justestif/kdle/internal/config"
	"github.com/justestif/kdle/internal/dates"
	"github.com/justestif/kdle/internal/db"
	"github.com/justestif/kdle/internal/leaderboard"
	"github.com/justestif/kdle/internal/logging"
	"github.com/justestif/kdle/internal/preview"
	"github.com/justestif/kdle/internal/puzzle"
	"github.com/justestif/kdle/internal/ratelimit"
	"github.com/justestif/kdle/internal/spotify"
	"github.com/justestif/kdle/internal/stats"
	"github.com/justestif/kdle/internal/web"
	webfs "github.com/justestif/kdle/web"
)

// sweepInterval is how often the in-memory rate limiter drops expired windows.
const sweepInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("KDLE_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.Setup(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	clock, err := dates.NewClock(cfg.Timezone)
	if err != nil {
		return err
	}

	// Catalog
	catalogOpts := []catalog.Option{catalog.WithMarkets(markets(cfg.Spotify.Market)...)}
	if cfg.Preview.Enabled {
		catalogOpts = append(catalogOpts, catalog.WithPreviewFinder(preview.NewClient(&preview.Config{Country: cfg.Preview.Country})))
	}
	sp := spotify.NewWithCredentials(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	cat := catalog.NewService(sp, catalogOpts...)

	// Auth
	var verifier auth.Verifier
	if cfg.Supabase.JWTSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.Supabase.JWTSecret, auth.DefaultAudience)
	} else {
		verifier = auth.NewGoTrueVerifier(auth.NewGoTrueClient(cfg.Supabase.URL, cfg.Supabase.AnonKey))
	}

	var (
		emails   leaderboard.Directory
		accounts web.AccountDirectory
	)
	if cfg.Supabase.URL != "" && cfg.Supabase.ServiceRoleKey != "" {
		dir := auth.NewDirectory(auth.NewGoTrueClient(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey))
		emails, accounts = dir, dir
	} else {
		log.Warn().Msg("SUPABASE_SERVICE_ROLE_KEY not set; leaderboard names fall back to usernames and account deletion keeps the auth user")
	}

	admins := auth.NewAllowlist(cfg.AdminEmails)
	if admins.Len() == 0 {
		log.Warn().Msg("ADMIN_EMAILS is empty; admin endpoints are disabled")
	}

	// Rate limiting
	var limitStore ratelimit.Store
	if cfg.Redis.Addr != "" {
		rdb, err := ratelimit.Dial(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		limitStore = ratelimit.NewRedisStore(rdb, "kdle:rl:")
	} else {
		mem := ratelimit.NewMemoryStore()
		go mem.RunSweeper(ctx, sweepInterval)
		limitStore = mem
	}

	// Services
	puzzles := puzzle.NewService(store.Schedule(), store.Songs(), clock, puzzle.WithPreviewFallback(cat))
	statsSvc := stats.NewService(store.Stats(), store.Results(), clock)
	boards := leaderboard.NewService(store.Stats(), emails, clock)
	adminSvc := admin.NewService(admin.Deps{
		Songs:     store.Songs(),
		Schedule:  store.Schedule(),
		Catalog:   cat,
		Analytics: store.Analytics(),
		Streaks:   store.Stats(),
		Clock:     clock,
	})

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}
	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:        cfg.Addr,
		CORSOrigins: cfg.CORSOrigins,
		TemplatesFS: templates,
		StaticFS:    static,
	}, web.Deps{
		Puzzles:     puzzles,
		Stats:       statsSvc,
		Search:      cat,
		Leaderboard: boards,
		Admin:       adminSvc,
		PlayStates:  store.PlayStates(),
		Profiles:    store.Profiles(),
		Accounts:    store,
		Directory:   accounts,
		DB:          store,
		Cookies:     web.NewCookieCodec(cfg.CookieSecret, cfg.CookieSecure, clock.Now),
		Verifier:    verifier,
		Admins:      admins,
		Limiter:     ratelimit.New(limitStore),
		Limits: web.Limits{
			Guess:    rule("guess", cfg.RateLimits.Guess),
			Complete: rule("complete", cfg.RateLimits.Complete),
			Profile:  rule("profile", cfg.RateLimits.Profile),
			Search:   rule("search", cfg.RateLimits.Search),
		},
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// markets puts the configured market ahead of the defaults.
func markets(primary string) []string {
	if primary == "" {
		return catalog.DefaultMarkets
	}
	out := []string{primary}
	for _, m := range catalog.DefaultMarkets {
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func rule(name string, c config.LimitConfig) ratelimit.Rule {
	return ratelimit.Rule{Name: name, Limit: c.Limit, Window: c.Window}
}
