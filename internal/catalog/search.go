package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/game"
	"github.com/justestif/kdle/internal/spotify"
)

// MaxSuggestions caps guess autocomplete results.
const MaxSuggestions = 10

// variantTerms mark non-official versions. Matched as substrings of the
// normalized "artists title" label.
var variantTerms = []string{
	"remix", "sped up", "speed up", "slowed", "nightcore", "8d", "cover",
	"karaoke", "reverb", "mashup", "edit", "instrumental", "lofi",
}

// Search returns guess suggestions for query. Non-official variants are
// filtered out unless filtering leaves fewer than min(3, limit) results, in
// which case the unfiltered list is returned instead.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]spotify.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []spotify.Track{}, nil
	}
	limit = min(max(limit, 1), MaxSuggestions)
	artist, title := splitArtistTitle(query)

	want := min(limit*3, spotify.MaxSearchLimit)
	var candidates []spotify.Track
	seen := make(map[string]bool)
	var lastErr error
	for _, q := range s.queries(query, artist, title) {
		if len(candidates) >= want {
			break
		}
		tracks, err := s.tracks.Search(ctx, q.text, want, q.market)
		if err != nil {
			log.Debug().Err(err).Str("query", q.text).Str("market", q.market).Msg("suggestion search failed")
			lastErr = err
			continue
		}
		for _, t := range tracks {
			if t.ID == "" || seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 && lastErr != nil {
		return nil, fmt.Errorf("searching suggestions: %w", lastErr)
	}

	filtered := filterVariants(candidates, artist, title)
	if len(filtered) < min(3, limit) {
		filtered = candidates
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	if filtered == nil {
		filtered = []spotify.Track{}
	}
	return filtered, nil
}

type searchQuery struct {
	text   string
	market string
}

// queries builds the search passes: a k-pop biased pass, then field queries
// when the input looks like "Artist - Title", then the raw text, each across
// the configured markets.
func (s *Service) queries(query, artist, title string) []searchQuery {
	qs := []searchQuery{{text: query + " genre:k-pop", market: s.markets[0]}}
	if artist != "" && title != "" {
		field := fmt.Sprintf("track:%q artist:%q", title, artist)
		for _, m := range s.markets {
			qs = append(qs, searchQuery{text: field, market: m})
		}
	}
	for _, m := range s.markets {
		qs = append(qs, searchQuery{text: query, market: m})
	}
	return qs
}

// splitArtistTitle parses "Artist - Title". Either part is empty when the
// input has no separator.
func splitArtistTitle(query string) (artist, title string) {
	before, after, ok := strings.Cut(query, " - ")
	if !ok {
		return "", ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

func filterVariants(tracks []spotify.Track, artist, title string) []spotify.Track {
	normArtist := game.Normalize(artist)
	normTitle := game.Normalize(title)

	var out []spotify.Track
	for _, t := range tracks {
		name := game.Normalize(t.Name)
		if isVariant(game.Normalize(t.Artist + " " + t.Name)) {
			continue
		}
		if normTitle != "" && normArtist != "" {
			if !strings.Contains(name, normTitle) || !strings.Contains(game.Normalize(t.Artist), normArtist) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// isVariant reports whether a normalized label contains a variant term.
func isVariant(label string) bool {
	for _, term := range variantTerms {
		if strings.Contains(label, term) {
			return true
		}
	}
	return false
}
