package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameTotals aggregates user_stats across all players.
type GameTotals struct {
	Players int
	Games   int
	Wins    int
}

// SongTotals counts catalog songs by scheduling status.
type SongTotals struct {
	Songs       int
	Scheduled   int
	Unscheduled int
}

// DailyActivity counts finished games on one day.
type DailyActivity struct {
	Date  string
	Games int
	Wins  int
}

// PlayerSummary is the per-player input to segmentation.
type PlayerSummary struct {
	UserID        uuid.UUID
	TotalGames    int
	TotalWins     int
	LongestStreak int
	AvgAttempts   float64
}

// AnalyticsRepository runs read-only reporting queries.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// GameTotals returns player, game and win counts.
func (r *AnalyticsRepository) GameTotals(ctx context.Context) (GameTotals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_games), 0), COALESCE(SUM(total_wins), 0)
		FROM user_stats
	`
	var t GameTotals
	if err := r.pool.QueryRow(ctx, query).Scan(&t.Players, &t.Games, &t.Wins); err != nil {
		return GameTotals{}, fmt.Errorf("querying game totals: %w", err)
	}
	return t, nil
}

// ActivePlayers counts distinct players with a result on or after since.
func (r *AnalyticsRepository) ActivePlayers(ctx context.Context, since string) (int, error) {
	query := `SELECT COUNT(DISTINCT user_id) FROM game_results WHERE date >= $1::date`
	var n int
	if err := r.pool.QueryRow(ctx, query, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("querying active players: %w", err)
	}
	return n, nil
}

// SongTotals returns catalog size and how much of it has been scheduled.
func (r *AnalyticsRepository) SongTotals(ctx context.Context) (SongTotals, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM daily_song d WHERE d.song_id = s.id))
		FROM songs s
	`
	var t SongTotals
	if err := r.pool.QueryRow(ctx, query).Scan(&t.Songs, &t.Scheduled); err != nil {
		return SongTotals{}, fmt.Errorf("querying song totals: %w", err)
	}
	t.Unscheduled = t.Songs - t.Scheduled
	return t, nil
}

// DailyActivity returns per-day game and win counts from since onward.
func (r *AnalyticsRepository) DailyActivity(ctx context.Context, since string) ([]DailyActivity, error) {
	query := `
		SELECT date::text, COUNT(*), COUNT(*) FILTER (WHERE won)
		FROM game_results
		WHERE date >= $1::date
		GROUP BY date
		ORDER BY date
	`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("querying daily activity: %w", err)
	}
	defer rows.Close()

	var days []DailyActivity
	for rows.Next() {
		var d DailyActivity
		if err := rows.Scan(&d.Date, &d.Games, &d.Wins); err != nil {
			return nil, fmt.Errorf("scanning daily activity: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily activity: %w", err)
	}
	return days, nil
}

// PlayerSummaries returns one row per player with at least one game.
func (r *AnalyticsRepository) PlayerSummaries(ctx context.Context) ([]PlayerSummary, error) {
	query := `
		SELECT s.user_id, s.total_games, s.total_wins, s.longest_streak,
			COALESCE(AVG(g.attempts), 0)::float8
		FROM user_stats s
		LEFT JOIN game_results g ON g.user_id = s.user_id
		WHERE s.total_games > 0
		GROUP BY s.user_id, s.total_games, s.total_wins, s.longest_streak
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying player summaries: %w", err)
	}
	defer rows.Close()

	var players []PlayerSummary
	for rows.Next() {
		var p PlayerSummary
		if err := rows.Scan(&p.UserID, &p.TotalGames, &p.TotalWins, &p.LongestStreak, &p.AvgAttempts); err != nil {
			return nil, fmt.Errorf("scanning player summary: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating player summaries: %w", err)
	}
	return players, nil
}
