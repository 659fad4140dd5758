package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/justestif/kdle/internal/game"
)

const (
	baseURL   = "https://itunes.apple.com/search"
	userAgent = "kdle/1.0"

	// searchLimit is how many candidates are requested per lookup.
	searchLimit = 10
)

// failureTTL is how long a failed lookup is remembered before the API is
// asked again.
const failureTTL = 5 * time.Minute

// Sentinel errors.
var (
	// ErrRateLimited is returned when the API answers 429 or 503.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrRecentlyFailed is returned without a request while an earlier
	// failure for the same song is remembered.
	ErrRecentlyFailed = errors.New("preview lookup failed recently")
)

// Client looks up preview URLs with an in-memory cache. Each lookup is a
// single request; failures are cached for failureTTL instead of retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	country    string
	now        func() time.Time

	// key = normalized "title|artist"
	cache    map[string][]string
	failures map[string]time.Time
	cacheMu  sync.RWMutex
}

// NewClient creates a preview finder from the provided configuration.
func NewClient(cfg *Config) *Client {
	country := cfg.Country
	if country == "" {
		country = DefaultCountry
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  baseURL,
		country:  country,
		now:      time.Now,
		cache:    make(map[string][]string),
		failures: make(map[string]time.Time),
	}
}

// FindPreviewURLs returns up to limit preview URLs for songs whose name
// contains title. Matches by the same artist come first. Returns an empty
// slice (not nil) when nothing matches.
func (c *Client) FindPreviewURLs(ctx context.Context, title, artist string, limit int) ([]string, error) {
	normTitle := game.Normalize(title)
	normArtist := game.Normalize(artist)
	if normTitle == "" {
		return []string{}, nil
	}
	cacheKey := normTitle + "|" + normArtist

	// Check cache
	c.cacheMu.RLock()
	if cached, ok := c.cache[cacheKey]; ok {
		c.cacheMu.RUnlock()
		return truncate(cached, limit), nil
	}
	failedAt, failed := c.failures[cacheKey]
	c.cacheMu.RUnlock()
	if failed && c.now().Sub(failedAt) < failureTTL {
		return nil, ErrRecentlyFailed
	}

	params := url.Values{
		"term":    {strings.TrimSpace(title + " " + artist)},
		"media":   {"music"},
		"entity":  {"song"},
		"limit":   {strconv.Itoa(searchLimit)},
		"country": {c.country},
	}

	body, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		c.rememberFailure(cacheKey)
		return nil, fmt.Errorf("searching previews: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.rememberFailure(cacheKey)
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	urls := rank(resp.Results, normTitle, normArtist)

	// Cache result
	c.cacheMu.Lock()
	c.cache[cacheKey] = urls
	delete(c.failures, cacheKey)
	c.cacheMu.Unlock()

	return truncate(urls, limit), nil
}

// rank keeps results whose track name contains the title, same-artist first.
func rank(results []result, normTitle, normArtist string) []string {
	var sameArtist, other []string
	seen := make(map[string]bool)
	for _, r := range results {
		if r.PreviewURL == "" || seen[r.PreviewURL] {
			continue
		}
		if !strings.Contains(game.Normalize(r.TrackName), normTitle) {
			continue
		}
		seen[r.PreviewURL] = true
		name := game.Normalize(r.ArtistName)
		if normArtist != "" && name != "" && (strings.Contains(name, normArtist) || strings.Contains(normArtist, name)) {
			sameArtist = append(sameArtist, r.PreviewURL)
		} else {
			other = append(other, r.PreviewURL)
		}
	}
	return append(append([]string{}, sameArtist...), other...)
}

func truncate(urls []string, limit int) []string {
	if limit > 0 && len(urls) > limit {
		return urls[:limit]
	}
	return urls
}

func (c *Client) rememberFailure(key string) {
	c.cacheMu.Lock()
	c.failures[key] = c.now()
	c.cacheMu.Unlock()
}

// doRequest performs a single HTTP GET request.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusServiceUnavailable:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
