package game

import (
	"errors"
	"slices"
)

const (
	// MaxGuesses is the number of attempts per day.
	MaxGuesses = 6
	// MaxHintLevel is the highest hint level.
	MaxHintLevel = 5
	// StateVersion is the current encoding version of State.
	StateVersion = 1
)

// Sentinel errors for guess submission.
var (
	// ErrGameOver is returned when the day's game is already won or out of guesses.
	ErrGameOver = errors.New("game is already finished")

	// ErrEmptyGuess is returned when a guess has no comparable characters.
	ErrEmptyGuess = errors.New("guess is empty")
)

// Phase tags which variant a State is.
type Phase string

const (
	PhaseFresh      Phase = "fresh"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// Song is the answer a day's state is evaluated against.
type Song struct {
	Title       string
	Artist      string
	AlbumImage  string
	ReleaseYear int // 0 when unknown
}

// Attempt is one submitted guess and what it matched.
type Attempt struct {
	Guess         string `json:"guess"`
	TitleCorrect  bool   `json:"title_correct"`
	ArtistCorrect bool   `json:"artist_correct"`
}

// State is a player's progress on one day's puzzle.
type State struct {
	Version   int       `json:"v"`
	Date      string    `json:"date"`
	Phase     Phase     `json:"phase"`
	Attempts  []Attempt `json:"attempts,omitempty"`
	HintLevel int       `json:"hint_level"`
	Won       bool      `json:"won"`
}

// NewState returns the zero state for a day.
func NewState(day string) State {
	return State{
		Version: StateVersion,
		Date:    day,
		Phase:   PhaseFresh,
	}
}

// GuessesUsed returns the number of attempts made.
func (s State) GuessesUsed() int {
	return len(s.Attempts)
}

// Remaining returns the number of attempts left.
func (s State) Remaining() int {
	return max(MaxGuesses-len(s.Attempts), 0)
}

// Finished reports whether the game is won or out of guesses.
func (s State) Finished() bool {
	return s.Won || len(s.Attempts) >= MaxGuesses
}

// phaseOf derives the variant from the contents.
func phaseOf(attempts int, won bool) Phase {
	switch {
	case won || attempts >= MaxGuesses:
		return PhaseCompleted
	case attempts > 0:
		return PhaseInProgress
	default:
		return PhaseFresh
	}
}

// Apply evaluates guess against song and returns the next state. On error
// the returned state is s, unchanged.
func Apply(s State, guess string, song Song) (State, Attempt, error) {
	if s.Finished() {
		return s, Attempt{}, ErrGameOver
	}
	if Normalize(guess) == "" {
		return s, Attempt{}, ErrEmptyGuess
	}

	attempt := Attempt{
		Guess:         guess,
		TitleCorrect:  IsCorrectGuess(guess, song.Title, song.Artist),
		ArtistCorrect: IsArtistMatch(guess, song.Artist),
	}

	next := s
	next.Attempts = append(slices.Clone(s.Attempts), attempt)
	if attempt.TitleCorrect {
		next.Won = true
	} else {
		next.HintLevel = min(s.HintLevel+1, MaxHintLevel)
	}
	next.Phase = phaseOf(len(next.Attempts), next.Won)
	return next, attempt, nil
}
