// Package puzzle serves the daily puzzle: today's song, guesses against it,
// hints, the solution and completed results.
package puzzle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/dates"
	"github.com/justestif/kdle/internal/db"
	"github.com/justestif/kdle/internal/game"
	"github.com/justestif/kdle/internal/stats"
)

// Sentinel errors.
var (
	// ErrNoPuzzle is returned when no song is scheduled for today.
	ErrNoPuzzle = errors.New("no puzzle scheduled for today")

	// ErrSolutionLocked is returned when the solution is requested before
	// the day's game is finished.
	ErrSolutionLocked = errors.New("solution is locked until the game is finished")

	// ErrNotFinished is returned when completing a game still in progress.
	ErrNotFinished = errors.New("game is not finished")

	// ErrInvalidClaim is returned when a completion claim is out of range or
	// disagrees with the recorded state.
	ErrInvalidClaim = errors.New("completion does not match game state")
)

// Schedule abstracts daily_song lookups.
type Schedule interface {
	Get(ctx context.Context, day string) (*db.DailySong, error)
}

// PreviewStore persists a preview URL found for a song.
type PreviewStore interface {
	SetPreviewURL(ctx context.Context, id uuid.UUID, previewURL string) error
}

// PreviewFallback finds a preview when the catalog had none.
type PreviewFallback interface {
	FallbackPreview(ctx context.Context, title, artist string) string
}

// Service implements the daily puzzle operations.
type Service struct {
	schedule Schedule
	songs    PreviewStore
	previews PreviewFallback
	clock    *dates.Clock
}

// Option configures a Service.
type Option func(*Service)

// WithPreviewFallback enables filling in missing previews for today's song.
func WithPreviewFallback(f PreviewFallback) Option {
	return func(s *Service) {
		s.previews = f
	}
}

// NewService creates a puzzle service.
func NewService(schedule Schedule, songs PreviewStore, clock *dates.Clock, opts ...Option) *Service {
	s := &Service{schedule: schedule, songs: songs, clock: clock}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the service's day clock.
func (s *Service) Clock() *dates.Clock {
	return s.clock
}

// Today returns today's assignment with its song.
func (s *Service) Today(ctx context.Context) (*db.DailySong, error) {
	day := s.clock.Today()
	ds, err := s.schedule.Get(ctx, day)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNoPuzzle
	}
	if err != nil {
		return nil, fmt.Errorf("loading puzzle for %s: %w", day, err)
	}
	if ds.Song == nil {
		return nil, ErrNoPuzzle
	}

	if (ds.Song.PreviewURL == nil || *ds.Song.PreviewURL == "") && s.previews != nil {
		if url := s.previews.FallbackPreview(ctx, ds.Song.Title, ds.Song.Artist); url != "" {
			ds.Song.PreviewURL = &url
			if err := s.songs.SetPreviewURL(ctx, ds.Song.ID, url); err != nil {
				log.Warn().Err(err).Str("song", ds.Song.ID.String()).Msg("persist fallback preview")
			}
		}
	}
	return ds, nil
}

// Guess evaluates text against today's song. A state for another day is
// replaced by a fresh one before the guess is applied.
func (s *Service) Guess(ctx context.Context, state game.State, text string) (game.State, Outcome, error) {
	p, err := s.Today(ctx)
	if err != nil {
		return state, Outcome{}, err
	}
	state = forDay(state, p.Date)

	next, attempt, err := game.Apply(state, text, p.Song.GameSong())
	if err != nil {
		return state, Outcome{}, err
	}

	out := Outcome{
		Correct:     attempt.TitleCorrect,
		ArtistMatch: attempt.ArtistCorrect,
		GuessesUsed: next.GuessesUsed(),
		Remaining:   next.Remaining(),
		HintLevel:   next.HintLevel,
		Finished:    next.Finished(),
		Won:         next.Won,
	}
	if next.HintLevel > state.HintLevel {
		h := game.BuildHint(next.HintLevel, p.Song.GameSong())
		out.Hint = &h
	}
	if out.Finished {
		out.Solution = solutionOf(p)
	}
	return next, out, nil
}

// Hint returns the hints unlocked by state.
func (s *Service) Hint(ctx context.Context, state game.State) (HintView, error) {
	p, err := s.Today(ctx)
	if err != nil {
		return HintView{}, err
	}
	state = forDay(state, p.Date)

	song := p.Song.GameSong()
	hv := HintView{
		Level:          state.HintLevel,
		Unlocked:       game.UnlockedHints(state.HintLevel, song),
		SnippetSeconds: game.SnippetLength(state.HintLevel),
	}
	if state.HintLevel > 0 {
		h := game.BuildHint(state.HintLevel, song)
		hv.Current = &h
	}
	return hv, nil
}

// Solution reveals today's answer once state is finished.
func (s *Service) Solution(ctx context.Context, state game.State) (*Solution, error) {
	p, err := s.Today(ctx)
	if err != nil {
		return nil, err
	}
	if state.Date != p.Date || !state.Finished() {
		return nil, ErrSolutionLocked
	}
	return solutionOf(p), nil
}

// Complete checks a client's completion claim against state and returns the
// result to record. Anonymous players pass uuid.Nil.
func (s *Service) Complete(ctx context.Context, userID uuid.UUID, state game.State, claim Claim) (stats.Result, error) {
	if claim.GuessesUsed < 0 || claim.GuessesUsed > game.MaxGuesses {
		return stats.Result{}, fmt.Errorf("%w: guesses_used %d out of range", ErrInvalidClaim, claim.GuessesUsed)
	}

	p, err := s.Today(ctx)
	if err != nil {
		return stats.Result{}, err
	}
	if state.Date != p.Date || !state.Finished() {
		return stats.Result{}, ErrNotFinished
	}
	if claim.GuessesUsed != state.GuessesUsed() || claim.Won != state.Won {
		return stats.Result{}, ErrInvalidClaim
	}

	return stats.Result{
		UserID:   userID,
		Date:     p.Date,
		SongID:   p.SongID,
		Attempts: state.Attempts,
		Won:      state.Won,
	}, nil
}

// View describes today's puzzle as the player sees it with state applied.
func (s *Service) View(p *db.DailySong, state game.State) View {
	state = forDay(state, p.Date)
	song := p.Song.GameSong()

	v := View{
		Date:           p.Date,
		SnippetSeconds: game.SnippetLength(state.HintLevel),
		MaxGuesses:     game.MaxGuesses,
		Attempts:       state.Attempts,
		GuessesUsed:    state.GuessesUsed(),
		Remaining:      state.Remaining(),
		HintLevel:      state.HintLevel,
		Hints:          game.UnlockedHints(state.HintLevel, song),
		Finished:       state.Finished(),
		Won:            state.Won,
	}
	if p.Song.PreviewURL != nil {
		v.PreviewURL = *p.Song.PreviewURL
	}
	if v.Attempts == nil {
		v.Attempts = []game.Attempt{}
	}
	if v.Finished {
		v.Solution = solutionOf(p)
	}
	return v
}

func forDay(state game.State, day string) game.State {
	if state.Date != day {
		return game.NewState(day)
	}
	return state
}

func solutionOf(p *db.DailySong) *Solution {
	sol := &Solution{
		SongID:    p.SongID,
		SpotifyID: p.Song.SpotifyID,
		Title:     p.Song.Title,
		Artist:    p.Song.Artist,
	}
	if p.Song.AlbumImage != nil {
		sol.AlbumImage = *p.Song.AlbumImage
	}
	if p.Song.ReleaseYear != nil {
		sol.ReleaseYear = *p.Song.ReleaseYear
	}
	if p.Song.PreviewURL != nil {
		sol.PreviewURL = *p.Song.PreviewURL
	}
	return sol
}
