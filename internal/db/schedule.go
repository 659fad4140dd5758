package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleRepository handles the date to song assignments in daily_song.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

const scheduledSongQuery = `
	SELECT d.date::text, s.id, s.spotify_id, s.title, s.artist, s.album_image, s.release_year,
		s.preview_url, s.difficulty_tag, s.created_at, s.updated_at
	FROM daily_song d
	JOIN songs s ON s.id = d.song_id
`

func scanDailySong(row pgx.Row) (*DailySong, error) {
	var d DailySong
	var s Song
	err := row.Scan(
		&d.Date,
		&s.ID,
		&s.SpotifyID,
		&s.Title,
		&s.Artist,
		&s.AlbumImage,
		&s.ReleaseYear,
		&s.PreviewURL,
		&s.DifficultyTag,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.SongID = s.ID
	d.Song = &s
	return &d, nil
}

// Get returns the song assigned to a day.
func (r *ScheduleRepository) Get(ctx context.Context, day string) (*DailySong, error) {
	query := scheduledSongQuery + ` WHERE d.date = $1::date`
	d, err := scanDailySong(r.pool.QueryRow(ctx, query, day))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying daily song: %w", err)
	}
	return d, nil
}

// Set assigns a song to a day, replacing any existing assignment.
func (r *ScheduleRepository) Set(ctx context.Context, day string, songID uuid.UUID) error {
	query := `
		INSERT INTO daily_song (date, song_id, created_at)
		VALUES ($1::date, $2, NOW())
		ON CONFLICT (date) DO UPDATE SET
			song_id = EXCLUDED.song_id,
			created_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, day, songID); err != nil {
		return fmt.Errorf("scheduling song: %w", err)
	}
	return nil
}

// Delete removes the assignment for a day.
func (r *ScheduleRepository) Delete(ctx context.Context, day string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM daily_song WHERE date = $1::date`, day)
	if err != nil {
		return fmt.Errorf("unscheduling song: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Range returns assignments between two days inclusive, ordered by date.
func (r *ScheduleRepository) Range(ctx context.Context, first, last string) ([]DailySong, error) {
	query := scheduledSongQuery + ` WHERE d.date BETWEEN $1::date AND $2::date ORDER BY d.date`
	rows, err := r.pool.Query(ctx, query, first, last)
	if err != nil {
		return nil, fmt.Errorf("querying schedule: %w", err)
	}
	defer rows.Close()

	var days []DailySong
	for rows.Next() {
		d, err := scanDailySong(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning daily song: %w", err)
		}
		days = append(days, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule: %w", err)
	}
	return days, nil
}
