// Package catalog resolves song metadata and autocomplete suggestions on top
// of the Spotify client and the preview finder.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/spotify"
)

// MinIDLength is the shortest accepted catalog ID.
const MinIDLength = 5

// Sentinel errors.
var (
	// ErrTrackNotFound is returned when the catalog has no track for an ID.
	ErrTrackNotFound = spotify.ErrNotFound

	// ErrInvalidID is returned for IDs that cannot be catalog IDs.
	ErrInvalidID = errors.New("invalid catalog id")
)

// DefaultMarkets are searched in order when building suggestions.
var DefaultMarkets = []string{"KR", "US", "JP"}

// TrackSource abstracts the Spotify client for testing.
type TrackSource interface {
	Track(ctx context.Context, id string) (*spotify.Track, error)
	Search(ctx context.Context, query string, limit int, market string) ([]spotify.Track, error)
}

// PreviewFinder abstracts the fallback preview lookup.
type PreviewFinder interface {
	FindPreviewURLs(ctx context.Context, title, artist string, limit int) ([]string, error)
}

// Service implements catalog lookups.
type Service struct {
	tracks   TrackSource
	previews PreviewFinder
	markets  []string
}

// Option configures a Service.
type Option func(*Service)

// WithPreviewFinder enables the fallback preview lookup.
func WithPreviewFinder(f PreviewFinder) Option {
	return func(s *Service) {
		s.previews = f
	}
}

// WithMarkets sets the markets searched for suggestions. The first market is
// also used for admin searches.
func WithMarkets(markets ...string) Option {
	return func(s *Service) {
		if len(markets) > 0 {
			s.markets = markets
		}
	}
}

// NewService creates a catalog service.
func NewService(tracks TrackSource, opts ...Option) *Service {
	s := &Service{
		tracks:  tracks,
		markets: DefaultMarkets,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup fetches a track by ID. When the track has no preview, or
// forcePreview is set, the fallback finder supplies one if it can.
func (s *Service) Lookup(ctx context.Context, id string, forcePreview bool) (*spotify.Track, error) {
	id = strings.TrimSpace(id)
	if len(id) < MinIDLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	track, err := s.tracks.Track(ctx, id)
	if err != nil {
		return nil, err
	}

	if track.PreviewURL == "" || forcePreview {
		if url := s.FallbackPreview(ctx, track.Name, track.Artist); url != "" {
			track.PreviewURL = url
		}
	}
	return track, nil
}

// FallbackPreview returns the first fallback preview URL, or "" when none is
// found or the lookup fails.
func (s *Service) FallbackPreview(ctx context.Context, title, artist string) string {
	if s.previews == nil {
		return ""
	}
	urls, err := s.previews.FindPreviewURLs(ctx, title, artist, 1)
	if err != nil {
		log.Warn().Err(err).Str("title", title).Str("artist", artist).Msg("preview fallback failed")
		return ""
	}
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// AdminSearch runs a single unfiltered search in the primary market.
func (s *Service) AdminSearch(ctx context.Context, query string, limit int) ([]spotify.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []spotify.Track{}, nil
	}
	return s.tracks.Search(ctx, query, limit, s.markets[0])
}
