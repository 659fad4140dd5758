package game

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Snippet lengths in seconds.
const (
	SnippetSeconds     = 5
	LongSnippetSeconds = 15
)

// HintKind names the clue a level reveals.
type HintKind string

const (
	HintYear        HintKind = "year"
	HintAlbumArt    HintKind = "album_art"
	HintArtist      HintKind = "artist"
	HintFirstLetter HintKind = "first_letter"
	HintSnippet     HintKind = "snippet"
)

// Hint is one revealed clue.
type Hint struct {
	Level          int      `json:"level"`
	Kind           HintKind `json:"kind"`
	Text           string   `json:"text"`
	AlbumImage     string   `json:"album_image,omitempty"`
	SnippetSeconds int      `json:"snippet_seconds,omitempty"`
}

// BuildHint returns the clue for level, clamped to [1, MaxHintLevel].
func BuildHint(level int, song Song) Hint {
	level = min(max(level, 1), MaxHintLevel)
	h := Hint{Level: level}

	switch level {
	case 1:
		h.Kind = HintYear
		year := "????"
		if song.ReleaseYear > 0 {
			year = fmt.Sprintf("%d", song.ReleaseYear)
		}
		h.Text = "Released in " + year
	case 2:
		h.Kind = HintAlbumArt
		if song.AlbumImage != "" {
			h.Text = "Album art unlocked (blurred)"
			h.AlbumImage = song.AlbumImage
		} else {
			h.Text = "Album art unavailable"
		}
	case 3:
		h.Kind = HintArtist
		h.Text = "Artist: " + song.Artist
	case 4:
		h.Kind = HintFirstLetter
		h.Text = "First letter of title: " + firstLetter(song.Title)
	default:
		h.Kind = HintSnippet
		h.Text = "Longer snippet unlocked"
		h.SnippetSeconds = LongSnippetSeconds
	}
	return h
}

// UnlockedHints returns every clue up to level, in order.
func UnlockedHints(level int, song Song) []Hint {
	level = min(level, MaxHintLevel)
	hints := make([]Hint, 0, max(level, 0))
	for l := 1; l <= level; l++ {
		hints = append(hints, BuildHint(l, song))
	}
	return hints
}

// SnippetLength returns the audio snippet length unlocked at level.
func SnippetLength(level int) int {
	if level >= MaxHintLevel {
		return LongSnippetSeconds
	}
	return SnippetSeconds
}

func firstLetter(title string) string {
	title = strings.TrimSpace(title)
	r, _ := utf8.DecodeRuneInString(title)
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}
