// Package stats computes streaks and aggregate results for players.
package stats

import (
	"math"
	"time"

	"github.com/justestif/kdle/internal/dates"
)

// StaleAfter is how long stats may go without an update before a read
// zeroes the current streak.
const StaleAfter = 24 * time.Hour

// Stats is a player's aggregate record. The JSON shape is shared by the API
// and the anonymous stats cookie.
type Stats struct {
	TotalGames     int       `json:"total_games"`
	TotalWins      int       `json:"total_wins"`
	Streak         int       `json:"streak"`
	LongestStreak  int       `json:"longest_streak"`
	LastResultDate string    `json:"last_result_date,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitzero"`
}

// Apply folds one finished game on day into prev. A second result for the
// same day leaves prev unchanged.
func Apply(prev Stats, won bool, day string, now time.Time) Stats {
	prev = Sanitize(prev)
	if prev.LastResultDate == day {
		return prev
	}

	next := prev
	next.TotalGames++
	switch {
	case won && prev.LastResultDate == dates.AddDays(day, -1):
		next.TotalWins++
		next.Streak = prev.Streak + 1
	case won:
		next.TotalWins++
		next.Streak = 1
	default:
		next.Streak = 0
	}
	next.LongestStreak = max(prev.LongestStreak, next.Streak)
	next.LastResultDate = day
	next.UpdatedAt = now
	return next
}

// CorrectOnRead zeroes the streak of a player who skipped a day: the last
// result is older than yesterday and there is no result today. Stats without
// a last result date fall back to the update time, stale after StaleAfter.
// It reports whether s changed and needs to be persisted.
func CorrectOnRead(s Stats, now time.Time, yesterday string, playedToday bool) (Stats, bool) {
	if playedToday || s.Streak == 0 {
		return s, false
	}
	switch {
	case s.LastResultDate != "":
		// Day strings order lexically.
		if s.LastResultDate >= yesterday {
			return s, false
		}
	case s.UpdatedAt.IsZero() || now.Sub(s.UpdatedAt) <= StaleAfter:
		return s, false
	}
	s.Streak = 0
	s.UpdatedAt = now
	return s, true
}

// Sanitize clamps counters to non-negative values and restores
// LongestStreak >= Streak and TotalWins <= TotalGames.
func Sanitize(s Stats) Stats {
	s.TotalGames = max(s.TotalGames, 0)
	s.TotalWins = min(max(s.TotalWins, 0), s.TotalGames)
	s.Streak = max(s.Streak, 0)
	s.LongestStreak = max(s.LongestStreak, s.Streak)
	if s.LastResultDate != "" && !dates.Valid(s.LastResultDate) {
		s.LastResultDate = ""
	}
	return s
}

// WinRate returns the rounded win percentage, 0 when no games were played.
func WinRate(totalWins, totalGames int) int {
	if totalGames <= 0 {
		return 0
	}
	return int(math.Round(float64(totalWins) * 100 / float64(totalGames)))
}
