package puzzle

import (
	"github.com/google/uuid"

	"github.com/justestif/kdle/internal/game"
)

// Outcome is the response to one guess.
type Outcome struct {
	Correct     bool       `json:"correct"`
	ArtistMatch bool       `json:"artist_match"`
	GuessesUsed int        `json:"guesses_used"`
	Remaining   int        `json:"remaining_guesses"`
	HintLevel   int        `json:"hint_level"`
	Hint        *game.Hint `json:"hint,omitempty"` // set when the level advanced
	Finished    bool       `json:"finished"`
	Won         bool       `json:"won"`
	Solution    *Solution  `json:"solution,omitempty"`
}

// HintView lists the current and unlocked hints.
type HintView struct {
	Level          int         `json:"hint_level"`
	Current        *game.Hint  `json:"current,omitempty"`
	Unlocked       []game.Hint `json:"unlocked"`
	SnippetSeconds int         `json:"snippet_seconds"`
}

// Solution is the day's answer.
type Solution struct {
	SongID      uuid.UUID `json:"song_id"`
	SpotifyID   string    `json:"spotify_id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	AlbumImage  string    `json:"album_image,omitempty"`
	ReleaseYear int       `json:"release_year,omitempty"`
	PreviewURL  string    `json:"preview_url,omitempty"`
}

// Claim is what the client reports when it finishes a game.
type Claim struct {
	GuessesUsed int  `json:"guesses_used"`
	Won         bool `json:"won"`
}

// View is today's puzzle with a player's progress applied.
type View struct {
	Date           string         `json:"date"`
	PreviewURL     string         `json:"preview_url,omitempty"`
	SnippetSeconds int            `json:"snippet_seconds"`
	MaxGuesses     int            `json:"max_guesses"`
	Attempts       []game.Attempt `json:"attempts"`
	GuessesUsed    int            `json:"guesses_used"`
	Remaining      int            `json:"remaining_guesses"`
	HintLevel      int            `json:"hint_level"`
	Hints          []game.Hint    `json:"hints"`
	Finished       bool           `json:"finished"`
	Won            bool           `json:"won"`
	Solution       *Solution      `json:"solution,omitempty"`
}
