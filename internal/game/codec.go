package game

import (
	"encoding/json"
)

// Encode serializes a state for storage in a cookie or a play_states row.
func Encode(s State) ([]byte, error) {
	s.Version = StateVersion
	s.Phase = phaseOf(len(s.Attempts), s.Won)
	return json.Marshal(s)
}

// Decode parses stored state for today. Anything that does not decode to a
// consistent state for today yields a fresh state; it never fails.
func Decode(raw []byte, today string) State {
	if len(raw) == 0 {
		return NewState(today)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return NewState(today)
	}
	return Sanitize(s, today)
}

// Sanitize returns s if it is a valid state for today and a fresh state otherwise.
func Sanitize(s State, today string) State {
	if !valid(s, today) {
		return NewState(today)
	}
	return s
}

func valid(s State, today string) bool {
	if s.Version != StateVersion || s.Date != today {
		return false
	}
	n := len(s.Attempts)
	if n > MaxGuesses || s.HintLevel < 0 || s.HintLevel > MaxHintLevel {
		return false
	}
	if s.Phase != phaseOf(n, s.Won) {
		return false
	}

	misses := 0
	for i, a := range s.Attempts {
		if a.TitleCorrect {
			// Only the final attempt may be correct, and only if won.
			if i != n-1 || !s.Won {
				return false
			}
			continue
		}
		misses++
	}
	if s.Won && (n == 0 || !s.Attempts[n-1].TitleCorrect) {
		return false
	}
	return s.HintLevel == min(misses, MaxHintLevel)
}
