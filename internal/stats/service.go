package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/dates"
	"github.com/justestif/kdle/internal/db"
	"github.com/justestif/kdle/internal/game"
)

// Store abstracts user_stats persistence.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (*db.UserStats, error)
	ResetStreak(ctx context.Context, userID uuid.UUID) error
}

// ResultStore abstracts game_results persistence.
type ResultStore interface {
	GetForDate(ctx context.Context, userID uuid.UUID, day string) (*db.GameResult, error)
	Record(ctx context.Context, res *db.GameResult, update func(*db.UserStats)) (*db.UserStats, bool, error)
}

// Result is a finished game ready to be recorded.
type Result struct {
	UserID   uuid.UUID
	Date     string
	SongID   uuid.UUID
	Attempts []game.Attempt
	Won      bool
}

// Service reads and updates signed-in players' stats.
type Service struct {
	stats   Store
	results ResultStore
	clock   *dates.Clock
}

// NewService creates a stats service.
func NewService(stats Store, results ResultStore, clock *dates.Clock) *Service {
	return &Service{stats: stats, results: results, clock: clock}
}

// Get returns a user's stats, applying and persisting the stale streak
// correction. Users without stats get zero values.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (Stats, error) {
	row, err := s.stats.Get(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("loading stats: %w", err)
	}
	st := FromRow(row)

	today := s.clock.Today()
	playedToday := st.LastResultDate == today
	if !playedToday {
		res, err := s.Today(ctx, userID)
		if err != nil {
			return Stats{}, err
		}
		playedToday = res != nil
	}

	corrected, changed := CorrectOnRead(st, s.clock.Now(), s.clock.Yesterday(), playedToday)
	if changed {
		if err := s.stats.ResetStreak(ctx, userID); err != nil {
			// The correction is re-applied on the next read.
			log.Warn().Err(err).Str("user", userID.String()).Msg("persist streak reset")
		}
	}
	return corrected, nil
}

// Today returns the user's result for the current day, or nil.
func (s *Service) Today(ctx context.Context, userID uuid.UUID) (*db.GameResult, error) {
	res, err := s.results.GetForDate(ctx, userID, s.clock.Today())
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading today's result: %w", err)
	}
	return res, nil
}

// Complete records a finished game and updates stats once per day. The
// returned bool is false when the day was already recorded.
func (s *Service) Complete(ctx context.Context, r Result) (Stats, bool, error) {
	row := &db.GameResult{
		UserID:    r.UserID,
		Date:      r.Date,
		SongID:    r.SongID,
		Guesses:   r.Attempts,
		Attempts:  len(r.Attempts),
		Completed: true,
		Won:       r.Won,
	}
	now := s.clock.Now()
	updated, inserted, err := s.results.Record(ctx, row, func(us *db.UserStats) {
		next := Apply(FromRow(us), r.Won, r.Date, now)
		next.apply(us)
	})
	if err != nil {
		return Stats{}, false, fmt.Errorf("recording result: %w", err)
	}
	return FromRow(updated), inserted, nil
}

// FromRow converts a database row.
func FromRow(row *db.UserStats) Stats {
	st := Stats{
		TotalGames:    row.TotalGames,
		TotalWins:     row.TotalWins,
		Streak:        row.Streak,
		LongestStreak: row.LongestStreak,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.LastResultDate != nil {
		st.LastResultDate = *row.LastResultDate
	}
	return st
}

func (st Stats) apply(row *db.UserStats) {
	row.TotalGames = st.TotalGames
	row.TotalWins = st.TotalWins
	row.Streak = st.Streak
	row.LongestStreak = st.LongestStreak
	row.UpdatedAt = st.UpdatedAt
	if st.LastResultDate != "" {
		day := st.LastResultDate
		row.LastResultDate = &day
	}
}
