package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlayStateRepository stores signed-in players' in-progress guess state.
type PlayStateRepository struct {
	pool *pgxpool.Pool
}

// Get returns the raw encoded state for a user and day.
func (r *PlayStateRepository) Get(ctx context.Context, userID uuid.UUID, day string) ([]byte, error) {
	query := `SELECT state FROM play_states WHERE user_id = $1 AND date = $2::date`
	var state []byte
	err := r.pool.QueryRow(ctx, query, userID, day).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying play state: %w", err)
	}
	return state, nil
}

// Put stores the encoded state. The last write wins.
func (r *PlayStateRepository) Put(ctx context.Context, userID uuid.UUID, day string, state []byte) error {
	query := `
		INSERT INTO play_states (user_id, date, state, updated_at)
		VALUES ($1, $2::date, $3, NOW())
		ON CONFLICT (user_id, date) DO UPDATE SET
			state = EXCLUDED.state,
			updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, userID, day, state); err != nil {
		return fmt.Errorf("upserting play state: %w", err)
	}
	return nil
}

// Delete removes a user's state for a day.
func (r *PlayStateRepository) Delete(ctx context.Context, userID uuid.UUID, day string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM play_states WHERE user_id = $1 AND date = $2::date`, userID, day); err != nil {
		return fmt.Errorf("deleting play state: %w", err)
	}
	return nil
}
