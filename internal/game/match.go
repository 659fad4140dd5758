// Package game implements guess evaluation, hints and the per-day guess state.
package game

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds text for comparison: lowercase, diacritics stripped, every
// run of non-alphanumerics collapsed to a single space, trimmed.
//
// Letters from any script survive, so Hangul titles compare by syllable.
func Normalize(text string) string {
	// transform.Chain is stateful, build one per call.
	strip := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(strip, strings.ToLower(text))
	if err != nil {
		folded = text
	}
	folded = norm.NFC.String(strings.ToLower(folded))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsCorrectGuess reports whether guess names the title. A guess naming only
// the artist is never correct.
func IsCorrectGuess(guess, title, artist string) bool {
	g := Normalize(guess)
	t := Normalize(title)
	if g == "" || t == "" {
		return false
	}
	if g == t || strings.Contains(g, t) {
		return true
	}
	a := Normalize(artist)
	return a != "" && strings.Contains(g, a) && strings.Contains(g, t)
}

// IsArtistMatch reports whether guess names the artist.
func IsArtistMatch(guess, artist string) bool {
	g := Normalize(guess)
	a := Normalize(artist)
	if g == "" || a == "" {
		return false
	}
	return g == a || strings.Contains(g, a)
}
