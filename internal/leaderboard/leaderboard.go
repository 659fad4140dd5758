// Package leaderboard ranks signed-in players by their stats.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/dates"
	"github.com/justestif/kdle/internal/db"
	"github.com/justestif/kdle/internal/stats"
)

// Limits on the number of rows returned.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Anonymous is shown for players with no username or known email.
const Anonymous = "Anonymous"

// ErrInvalidType is returned for an unknown leaderboard type.
var ErrInvalidType = errors.New("invalid leaderboard type")

// Type selects how players are ranked.
type Type = db.LeaderboardOrder

// Store abstracts leaderboard queries.
type Store interface {
	Leaderboard(ctx context.Context, order db.LeaderboardOrder, activeSince string, limit int) ([]db.LeaderboardRow, error)
}

// Directory resolves account emails for display names.
type Directory interface {
	Emails(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Entry is one ranked player.
type Entry struct {
	Rank          int    `json:"rank"`
	DisplayName   string `json:"display_name"`
	Value         int    `json:"value"`
	TotalGames    int    `json:"total_games"`
	TotalWins     int    `json:"total_wins"`
	WinRate       int    `json:"win_rate"`
	Streak        int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

// Board is a ranked list for one type.
type Board struct {
	Type    Type    `json:"type"`
	Entries []Entry `json:"entries"`
}

// Service builds leaderboards.
type Service struct {
	store     Store
	directory Directory
	clock     *dates.Clock
}

// NewService creates a leaderboard service. directory may be nil, in which
// case players without a username are shown as Anonymous.
func NewService(store Store, directory Directory, clock *dates.Clock) *Service {
	return &Service{store: store, directory: directory, clock: clock}
}

// ParseType maps a query value to a Type. Empty selects current streak.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.TrimSpace(s)); t {
	case "":
		return db.OrderCurrentStreak, nil
	case db.OrderCurrentStreak, db.OrderLongestStreak, db.OrderTotalWins, db.OrderWinRate:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// ClampLimit applies the default and maximum row counts.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// Get returns the top players for t. The current streak board skips players
// who have not finished a game since yesterday, since their stored streak
// is already broken.
func (s *Service) Get(ctx context.Context, t Type, limit int) (*Board, error) {
	var activeSince string
	if t == db.OrderCurrentStreak {
		activeSince = s.clock.Yesterday()
	}
	rows, err := s.store.Leaderboard(ctx, t, activeSince, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}

	emails := s.emails(ctx, rows)
	board := &Board{Type: t, Entries: make([]Entry, 0, len(rows))}
	for i, r := range rows {
		e := Entry{
			Rank:          i + 1,
			DisplayName:   displayName(r, emails),
			TotalGames:    r.TotalGames,
			TotalWins:     r.TotalWins,
			WinRate:       stats.WinRate(r.TotalWins, r.TotalGames),
			Streak:        r.Streak,
			LongestStreak: r.LongestStreak,
		}
		e.Value = valueOf(t, e)
		board.Entries = append(board.Entries, e)
	}
	return board, nil
}

// emails looks up addresses only when some row lacks a username. Failures
// leave names anonymous.
func (s *Service) emails(ctx context.Context, rows []db.LeaderboardRow) map[uuid.UUID]string {
	if s.directory == nil {
		return nil
	}
	var ids []uuid.UUID
	for _, r := range rows {
		if r.Username == nil || *r.Username == "" {
			ids = append(ids, r.UserID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	emails, err := s.directory.Emails(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("leaderboard email lookup failed")
		return nil
	}
	return emails
}

func displayName(r db.LeaderboardRow, emails map[uuid.UUID]string) string {
	if r.Username != nil && *r.Username != "" {
		return *r.Username
	}
	if local, _, ok := strings.Cut(emails[r.UserID], "@"); ok && local != "" {
		return local
	}
	return Anonymous
}

func valueOf(t Type, e Entry) int {
	switch t {
	case db.OrderLongestStreak:
		return e.LongestStreak
	case db.OrderTotalWins:
		return e.TotalWins
	case db.OrderWinRate:
		return e.WinRate
	default:
		return e.Streak
	}
}
