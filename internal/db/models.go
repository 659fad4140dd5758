package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/justestif/kdle/internal/game"
)

// Song is a catalog entry that can be scheduled as a daily puzzle.
type Song struct {
	ID            uuid.UUID
	SpotifyID     string
	Title         string
	Artist        string
	AlbumImage    *string // nullable
	ReleaseYear   *int    // nullable
	PreviewURL    *string // nullable
	DifficultyTag string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GameSong converts the row into the answer the guess engine evaluates.
func (s *Song) GameSong() game.Song {
	gs := game.Song{Title: s.Title, Artist: s.Artist}
	if s.AlbumImage != nil {
		gs.AlbumImage = *s.AlbumImage
	}
	if s.ReleaseYear != nil {
		gs.ReleaseYear = *s.ReleaseYear
	}
	return gs
}

// DailySong assigns a song to a calendar day.
type DailySong struct {
	Date   string // YYYY-MM-DD
	SongID uuid.UUID
	Song   *Song
}

// GameResult is a user's finished game for one day.
type GameResult struct {
	UserID    uuid.UUID
	Date      string
	SongID    uuid.UUID
	Guesses   []game.Attempt
	Attempts  int
	Completed bool
	Won       bool
	CreatedAt time.Time
}

// UserStats holds a user's aggregate results.
type UserStats struct {
	UserID         uuid.UUID
	TotalGames     int
	TotalWins      int
	Streak         int
	LongestStreak  int
	LastResultDate *string // nullable
	UpdatedAt      time.Time
}

// Profile maps a user to their public username.
type Profile struct {
	UserID    uuid.UUID
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaderboardRow is a user's stats joined with their username.
type LeaderboardRow struct {
	UserID        uuid.UUID
	Username      *string // nullable
	TotalGames    int
	TotalWins     int
	Streak        int
	LongestStreak int
}
