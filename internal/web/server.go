// Package web serves the K-Dle JSON API and the embedded game pages.
package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/auth"
	"github.com/justestif/kdle/internal/ratelimit"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
	TemplatesFS fs.FS
	StaticFS    fs.FS
}

// Limits are the per-endpoint request budgets.
type Limits struct {
	Guess    ratelimit.Rule
	Complete ratelimit.Rule
	Profile  ratelimit.Rule
	Search   ratelimit.Rule
}

// Server is the HTTP server for the game and its API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	verifier auth.Verifier
	admins   *auth.Allowlist
	limiter  *ratelimit.Limiter
	limits   Limits
	origins  []string
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig, deps Deps) (*Server, error) {
	templates, err := NewTemplates(cfg.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	if deps.Admins == nil {
		deps.Admins = auth.NewAllowlist(nil)
	}

	s := &Server{
		router:   chi.NewRouter(),
		handlers: NewHandlers(deps, templates),
		verifier: deps.Verifier,
		admins:   deps.Admins,
		limiter:  deps.Limiter,
		limits:   deps.Limits,
		origins:  cfg.CORSOrigins,
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.StaticFS)

	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(corsHandler(s.origins))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes(staticFS fs.FS) {
	h := s.handlers

	if staticFS != nil {
		fileServer := http.FileServer(http.FS(staticFS))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	s.router.Get("/healthz", h.Health)

	// Pages
	s.router.Get("/", h.Home)
	s.router.Get("/leaderboard", h.LeaderboardPage)

	s.router.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, "Not found", "")
		})

		// Guests can play; a valid token switches state and stats to the account.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth(s.verifier))
			r.Get("/game/today", h.Today)
			r.With(rateLimit(s.limiter, s.limits.Guess)).Post("/game/guess", h.Guess)
			r.Get("/game/hint", h.Hint)
			r.Get("/game/solution", h.Solution)
			r.With(rateLimit(s.limiter, s.limits.Complete)).Post("/game/complete", h.Complete)
			r.Post("/game/reset", h.Reset)
			r.Get("/user/stats", h.UserStats)
		})

		r.With(rateLimit(s.limiter, s.limits.Search)).Get("/search", h.Search)
		r.Get("/leaderboard", h.Leaderboard)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(s.verifier))
			r.Get("/game/stats", h.GameStats)
			r.Get("/user/profile", h.GetProfile)
			r.With(rateLimit(s.limiter, s.limits.Profile)).Put("/user/profile", h.UpdateProfile)
			r.Delete("/user/profile", h.DeleteProfile)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth(s.verifier))
			r.Use(requireAdmin(s.admins))
			r.Get("/songs", h.AdminSongs)
			r.Get("/calendar", h.AdminCalendar)
			r.Get("/analytics", h.AdminAnalytics)
			r.Post("/add-song", h.AdminAddSong)
			r.Post("/song", h.AdminInsertSong)
			r.Post("/enrich", h.AdminEnrich)
			r.Post("/schedule", h.AdminSchedule)
			r.Post("/unschedule", h.AdminUnschedule)
			r.Post("/search-spotify", h.AdminSearch)
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msgf("Starting server at http://%s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Info().Msg("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
