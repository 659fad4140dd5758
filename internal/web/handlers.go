package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/admin"
	"github.com/justestif/kdle/internal/auth"
	"github.com/justestif/kdle/internal/dates"
	"github.com/justestif/kdle/internal/db"
	"github.com/justestif/kdle/internal/game"
	"github.com/justestif/kdle/internal/leaderboard"
	"github.com/justestif/kdle/internal/puzzle"
	"github.com/justestif/kdle/internal/ratelimit"
	"github.com/justestif/kdle/internal/spotify"
	"github.com/justestif/kdle/internal/stats"
)

// Puzzles serves the daily puzzle.
type Puzzles interface {
	Clock() *dates.Clock
	Today(ctx context.Context) (*db.DailySong, error)
	Guess(ctx context.Context, state game.State, text string) (game.State, puzzle.Outcome, error)
	Hint(ctx context.Context, state game.State) (puzzle.HintView, error)
	Solution(ctx context.Context, state game.State) (*puzzle.Solution, error)
	Complete(ctx context.Context, userID uuid.UUID, state game.State, claim puzzle.Claim) (stats.Result, error)
	View(p *db.DailySong, state game.State) puzzle.View
}

// StatsService reads and records signed-in players' stats.
type StatsService interface {
	Get(ctx context.Context, userID uuid.UUID) (stats.Stats, error)
	Today(ctx context.Context, userID uuid.UUID) (*db.GameResult, error)
	Complete(ctx context.Context, r stats.Result) (stats.Stats, bool, error)
}

// Searcher returns autocomplete suggestions.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]spotify.Track, error)
}

// Leaderboards ranks players.
type Leaderboards interface {
	Get(ctx context.Context, t leaderboard.Type, limit int) (*leaderboard.Board, error)
}

// AdminService implements the admin endpoints.
type AdminService interface {
	Songs(ctx context.Context) (*admin.SongList, error)
	AddSong(ctx context.Context, spotifyID string) (*admin.SongView, error)
	InsertSong(ctx context.Context, in admin.SongInput) (*admin.SongView, error)
	Enrich(ctx context.Context, spotifyID string, overridePreview bool) (*admin.SongView, error)
	Schedule(ctx context.Context, req admin.ScheduleRequest) (*admin.ScheduledView, error)
	Unschedule(ctx context.Context, day string) error
	Calendar(ctx context.Context, year, month int) (*admin.Calendar, error)
	SearchCatalog(ctx context.Context, query string, limit int) ([]spotify.Track, error)
	Analytics(ctx context.Context) (*admin.Analytics, error)
}

// PlayStateStore persists signed-in players' guess state.
type PlayStateStore interface {
	Get(ctx context.Context, userID uuid.UUID, day string) ([]byte, error)
	Put(ctx context.Context, userID uuid.UUID, day string, state []byte) error
	Delete(ctx context.Context, userID uuid.UUID, day string) error
}

// ProfileStore persists usernames.
type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*db.Profile, error)
	Upsert(ctx context.Context, p *db.Profile) error
}

// AccountStore removes everything stored for a user.
type AccountStore interface {
	DeleteUserData(ctx context.Context, userID uuid.UUID) error
}

// AccountDirectory deletes accounts from the auth service.
type AccountDirectory interface {
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps groups the services the handlers call. Directory and Limiter may be nil.
type Deps struct {
	Puzzles     Puzzles
	Stats       StatsService
	Search      Searcher
	Leaderboard Leaderboards
	Admin       AdminService
	PlayStates  PlayStateStore
	Profiles    ProfileStore
	Accounts    AccountStore
	Directory   AccountDirectory
	DB          Pinger
	Cookies     *CookieCodec
	Verifier    auth.Verifier
	Admins      *auth.Allowlist
	Limiter     *ratelimit.Limiter
	Limits      Limits
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	puzzles     Puzzles
	stats       StatsService
	search      Searcher
	leaderboard Leaderboards
	admin       AdminService
	playStates  PlayStateStore
	profiles    ProfileStore
	accounts    AccountStore
	directory   AccountDirectory
	db          Pinger
	cookies     *CookieCodec
	templates   *Templates
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps, templates *Templates) *Handlers {
	return &Handlers{
		puzzles:     deps.Puzzles,
		stats:       deps.Stats,
		search:      deps.Search,
		leaderboard: deps.Leaderboard,
		admin:       deps.Admin,
		playStates:  deps.PlayStates,
		profiles:    deps.Profiles,
		accounts:    deps.Accounts,
		directory:   deps.Directory,
		db:          deps.DB,
		cookies:     deps.Cookies,
		templates:   templates,
	}
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			log.Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// loadState returns the caller's state for today. Signed-in players read
// their play_states row first and fall back to the cookie.
func (h *Handlers) loadState(r *http.Request, today string) game.State {
	if id := identityFrom(r.Context()); id != nil && h.playStates != nil {
		raw, err := h.playStates.Get(r.Context(), id.UserID, today)
		switch {
		case err == nil:
			return game.Decode(raw, today)
		case !errors.Is(err, db.ErrNotFound):
			log.Warn().Err(err).Str("user", id.UserID.String()).Msg("loading play state")
		}
	}
	return h.cookies.ReadState(r, today)
}

// saveState writes the state cookie and, for signed-in players, the
// play_states row.
func (h *Handlers) saveState(w http.ResponseWriter, r *http.Request, s game.State) error {
	if err := h.cookies.WriteState(w, s, h.puzzles.Clock().EndOfDay()); err != nil {
		return err
	}
	id := identityFrom(r.Context())
	if id == nil || h.playStates == nil {
		return nil
	}
	raw, err := game.Encode(s)
	if err != nil {
		return err
	}
	return h.playStates.Put(r.Context(), id.UserID, s.Date, raw)
}
