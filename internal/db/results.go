package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository handles game result database operations.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// GetForDate returns a user's result for a day.
func (r *ResultRepository) GetForDate(ctx context.Context, userID uuid.UUID, day string) (*GameResult, error) {
	query := `
		SELECT user_id, date::text, song_id, guesses, attempts, completed, won, created_at
		FROM game_results
		WHERE user_id = $1 AND date = $2::date
	`
	var res GameResult
	var guesses []byte
	err := r.pool.QueryRow(ctx, query, userID, day).Scan(
		&res.UserID,
		&res.Date,
		&res.SongID,
		&guesses,
		&res.Attempts,
		&res.Completed,
		&res.Won,
		&res.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying game result: %w", err)
	}
	if err := json.Unmarshal(guesses, &res.Guesses); err != nil {
		return nil, fmt.Errorf("decoding guesses: %w", err)
	}
	return &res, nil
}

// Record inserts a result and, when it is the first for that user and day,
// applies update to the user's stats in the same transaction. The returned
// bool is false when a result already existed; stats are then returned as
// stored, untouched.
func (r *ResultRepository) Record(ctx context.Context, res *GameResult, update func(*UserStats)) (*UserStats, bool, error) {
	guesses, err := json.Marshal(res.Guesses)
	if err != nil {
		return nil, false, fmt.Errorf("encoding guesses: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	insert := `
		INSERT INTO game_results (user_id, date, song_id, guesses, attempts, completed, won)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, date) DO NOTHING
	`
	tag, err := tx.Exec(ctx, insert,
		res.UserID,
		res.Date,
		res.SongID,
		guesses,
		res.Attempts,
		res.Completed,
		res.Won,
	)
	if err != nil {
		return nil, false, fmt.Errorf("inserting game result: %w", err)
	}
	inserted := tag.RowsAffected() > 0

	stats, err := selectStats(ctx, tx, res.UserID, inserted)
	if err != nil {
		return nil, false, err
	}

	if inserted {
		update(stats)
		if err := upsertStats(ctx, tx, stats); err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("committing transaction: %w", err)
	}
	return stats, inserted, nil
}

// selectStats loads a user's stats inside tx, returning zeroed stats when the
// user has none. forUpdate locks the row.
func selectStats(ctx context.Context, tx pgx.Tx, userID uuid.UUID, forUpdate bool) (*UserStats, error) {
	query := `
		SELECT user_id, total_games, total_wins, streak, longest_streak, last_result_date::text, updated_at
		FROM user_stats
		WHERE user_id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s UserStats
	err := tx.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.TotalGames,
		&s.TotalWins,
		&s.Streak,
		&s.LongestStreak,
		&s.LastResultDate,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &UserStats{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user stats: %w", err)
	}
	return &s, nil
}

func upsertStats(ctx context.Context, tx pgx.Tx, s *UserStats) error {
	query := `
		INSERT INTO user_stats (user_id, total_games, total_wins, streak, longest_streak, last_result_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			total_games = EXCLUDED.total_games,
			total_wins = EXCLUDED.total_wins,
			streak = EXCLUDED.streak,
			longest_streak = EXCLUDED.longest_streak,
			last_result_date = EXCLUDED.last_result_date,
			updated_at = NOW()
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query,
		s.UserID,
		s.TotalGames,
		s.TotalWins,
		s.Streak,
		s.LongestStreak,
		s.LastResultDate,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting user stats: %w", err)
	}
	return nil
}
