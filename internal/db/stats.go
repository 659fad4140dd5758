package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeaderboardOrder selects the ranking column.
type LeaderboardOrder string

const (
	OrderCurrentStreak LeaderboardOrder = "current_streak"
	OrderLongestStreak LeaderboardOrder = "longest_streak"
	OrderTotalWins     LeaderboardOrder = "total_wins"
	OrderWinRate       LeaderboardOrder = "win_rate"
)

var leaderboardOrderBy = map[LeaderboardOrder]string{
	OrderCurrentStreak: "s.streak DESC, s.longest_streak DESC",
	OrderLongestStreak: "s.longest_streak DESC, s.streak DESC",
	OrderTotalWins:     "s.total_wins DESC, s.total_games ASC",
	OrderWinRate:       "(s.total_wins::float8 / s.total_games) DESC, s.total_games DESC",
}

// StatsRepository handles user_stats database operations.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves a user's stats.
func (r *StatsRepository) Get(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	query := `
		SELECT user_id, total_games, total_wins, streak, longest_streak, last_result_date::text, updated_at
		FROM user_stats
		WHERE user_id = $1
	`
	var s UserStats
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.TotalGames,
		&s.TotalWins,
		&s.Streak,
		&s.LongestStreak,
		&s.LastResultDate,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user stats: %w", err)
	}
	return &s, nil
}

// ResetStreak zeroes a user's current streak.
func (r *StatsRepository) ResetStreak(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE user_stats
		SET streak = 0, updated_at = NOW()
		WHERE user_id = $1
	`
	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("resetting streak: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Leaderboard returns the top players by order. Players without a finished
// game are excluded. When activeSince is set, the current streak board only
// ranks players whose last result is on or after that day.
func (r *StatsRepository) Leaderboard(ctx context.Context, order LeaderboardOrder, activeSince string, limit int) ([]LeaderboardRow, error) {
	orderBy, ok := leaderboardOrderBy[order]
	if !ok {
		order = OrderCurrentStreak
		orderBy = leaderboardOrderBy[order]
	}
	if order != OrderCurrentStreak {
		activeSince = ""
	}
	query := `
		SELECT s.user_id, p.username, s.total_games, s.total_wins, s.streak, s.longest_streak
		FROM user_stats s
		LEFT JOIN user_profiles p ON p.user_id = s.user_id
		WHERE s.total_games > 0
		  AND (NULLIF($2::text, '') IS NULL OR s.last_result_date >= NULLIF($2::text, '')::date)
		ORDER BY ` + orderBy + `, s.user_id
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit, activeSince)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardRow
	for rows.Next() {
		var e LeaderboardRow
		if err := rows.Scan(&e.UserID, &e.Username, &e.TotalGames, &e.TotalWins, &e.Streak, &e.LongestStreak); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leaderboard: %w", err)
	}
	return entries, nil
}
