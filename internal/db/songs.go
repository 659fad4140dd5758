package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const songColumns = `id, spotify_id, title, artist, album_image, release_year, preview_url, difficulty_tag, created_at, updated_at`

// SongRepository handles song database operations.
type SongRepository struct {
	pool *pgxpool.Pool
}

func scanSong(row pgx.Row) (*Song, error) {
	var s Song
	err := row.Scan(
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
	return &s, nil
}

// Get retrieves a song by ID.
func (r *SongRepository) Get(ctx context.Context, id uuid.UUID) (*Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = $1`
	song, err := scanSong(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return song, nil
}

// GetBySpotifyID retrieves a song by its catalog ID.
func (r *SongRepository) GetBySpotifyID(ctx context.Context, spotifyID string) (*Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE spotify_id = $1`
	song, err := scanSong(r.pool.QueryRow(ctx, query, spotifyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song by spotify id: %w", err)
	}
	return song, nil
}

// Upsert creates a song or refreshes its metadata, keyed by spotify_id.
// A nil preview URL keeps the stored one.
func (r *SongRepository) Upsert(ctx context.Context, song *Song) error {
	if song.DifficultyTag == "" {
		song.DifficultyTag = "easy"
	}
	query := `
		INSERT INTO songs (spotify_id, title, artist, album_image, release_year, preview_url, difficulty_tag)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (spotify_id) DO UPDATE SET
			title = EXCLUDED.title,
			artist = EXCLUDED.artist,
			album_image = EXCLUDED.album_image,
			release_year = EXCLUDED.release_year,
			preview_url = COALESCE(EXCLUDED.preview_url, songs.preview_url),
			updated_at = NOW()
		RETURNING id, preview_url, difficulty_tag, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		song.SpotifyID,
		song.Title,
		song.Artist,
		song.AlbumImage,
		song.ReleaseYear,
		song.PreviewURL,
		song.DifficultyTag,
	).Scan(&song.ID, &song.PreviewURL, &song.DifficultyTag, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting song: %w", err)
	}
	return nil
}

// SetPreviewURL stores a preview URL for a song.
func (r *SongRepository) SetPreviewURL(ctx context.Context, id uuid.UUID, previewURL string) error {
	query := `
		UPDATE songs
		SET preview_url = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, previewURL)
	if err != nil {
		return fmt.Errorf("updating preview url: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Recent returns the most recently added songs, newest first.
func (r *SongRepository) Recent(ctx context.Context, limit int) ([]Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		songs = append(songs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating songs: %w", err)
	}
	return songs, nil
}
