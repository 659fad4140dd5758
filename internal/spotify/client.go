// Package spotify provides a catalog client over the Spotify Web API using
// app-level credentials.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// MaxSearchLimit is the largest page the search endpoint returns.
const MaxSearchLimit = 50

// tokenExpiryDelta refreshes the app token this long before it expires.
const tokenExpiryDelta = 60 * time.Second

// ErrNotFound is returned when a track ID does not exist.
var ErrNotFound = errors.New("track not found")

// Client wraps the Spotify API client with catalog lookups.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// NewWithCredentials creates a client authenticated with the client
// credentials flow. The token is cached and reused until shortly before it
// expires.
func NewWithCredentials(clientID, clientSecret string) *Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	// Token refreshes outlive any single request.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: 10 * time.Second})
	ts := oauth2.ReuseTokenSourceWithExpiry(nil, cfg.TokenSource(ctx), tokenExpiryDelta)
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = 15 * time.Second
	return New(spotify.New(httpClient))
}

// Track fetches a track by ID.
func (c *Client) Track(ctx context.Context, id string) (*Track, error) {
	full, err := c.api.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("fetching track %s: %w", id, err)
	}
	t := convertTrack(*full)
	return &t, nil
}

// Search returns up to limit tracks matching query. An empty market searches
// without a market restriction.
func (c *Client) Search(ctx context.Context, query string, limit int, market string) ([]Track, error) {
	limit = min(max(limit, 1), MaxSearchLimit)
	opts := []spotify.RequestOption{spotify.Limit(limit)}
	if market != "" {
		opts = append(opts, spotify.Market(market))
	}

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, opts...)
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	if result.Tracks == nil {
		return []Track{}, nil
	}

	tracks := make([]Track, 0, len(result.Tracks.Tracks))
	for _, full := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(full))
	}
	return tracks, nil
}

func isNotFound(err error) bool {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Status == http.StatusNotFound
	}
	return false
}
