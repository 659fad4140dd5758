package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		httpClient: server.Client(),
		baseURL:    server.URL + "/search",
		country:    "US",
		now:        time.Now,
		cache:      make(map[string][]string),
		failures:   make(map[string]time.Time),
	}
}

func TestFindPreviewURLs(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		artist  string
		limit   int
		results []result
		want    []string
	}{
		{
			name:   "same artist ranked first",
			title:  "Dynamite",
			artist: "BTS",
			limit:  5,
			results: []result{
				{TrackName: "Dynamite", ArtistName: "Taio Cruz", PreviewURL: "https://a/taio"},
				{TrackName: "Dynamite", ArtistName: "BTS", PreviewURL: "https://a/bts"},
			},
			want: []string{"https://a/bts", "https://a/taio"},
		},
		{
			name:   "non matching titles dropped",
			title:  "Hype Boy",
			artist: "NewJeans",
			limit:  5,
			results: []result{
				{TrackName: "Attention", ArtistName: "NewJeans", PreviewURL: "https://a/attention"},
				{TrackName: "Hype Boy (Instrumental)", ArtistName: "NewJeans", PreviewURL: "https://a/hype"},
			},
			want: []string{"https://a/hype"},
		},
		{
			name:   "missing preview and duplicates skipped",
			title:  "Gee",
			artist: "Girls' Generation",
			limit:  5,
			results: []result{
				{TrackName: "Gee", ArtistName: "Girls' Generation"},
				{TrackName: "Gee", ArtistName: "Girls' Generation", PreviewURL: "https://a/gee"},
				{TrackName: "Gee", ArtistName: "Girls' Generation", PreviewURL: "https://a/gee"},
			},
			want: []string{"https://a/gee"},
		},
		{
			name:   "limit applied",
			title:  "Love",
			artist: "",
			limit:  1,
			results: []result{
				{TrackName: "Love", ArtistName: "X", PreviewURL: "https://a/1"},
				{TrackName: "Love", ArtistName: "Y", PreviewURL: "https://a/2"},
			},
			want: []string{"https://a/1"},
		},
		{
			name:    "no results",
			title:   "Unknown",
			artist:  "Nobody",
			limit:   5,
			results: nil,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("entity") != "song" {
					t.Errorf("entity = %q, want song", r.URL.Query().Get("entity"))
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(searchResponse{ResultCount: len(tt.results), Results: tt.results})
			}))
			defer server.Close()

			got, err := newTestClient(server).FindPreviewURLs(context.Background(), tt.title, tt.artist, tt.limit)
			if err != nil {
				t.Fatalf("FindPreviewURLs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("FindPreviewURLs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("FindPreviewURLs()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFindPreviewURLs_Caching(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		json.NewEncoder(w).Encode(searchResponse{Results: []result{
			{TrackName: "Dynamite", ArtistName: "BTS", PreviewURL: "https://a/bts"},
		}})
	}))
	defer server.Close()

	client := newTestClient(server)
	for i := 0; i < 3; i++ {
		if _, err := client.FindPreviewURLs(context.Background(), "Dynamite", "BTS", 1); err != nil {
			t.Fatalf("FindPreviewURLs() error = %v", err)
		}
	}
	// Normalization makes these the same cache key.
	if _, err := client.FindPreviewURLs(context.Background(), "DYNAMITE!", "bts", 1); err != nil {
		t.Fatalf("FindPreviewURLs() error = %v", err)
	}
	if got := requestCount.Load(); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
}

func TestFindPreviewURLs_RateLimitNotRetried(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server).FindPreviewURLs(context.Background(), "Dynamite", "BTS", 1)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("FindPreviewURLs() error = %v, want ErrRateLimited", err)
	}
	if got := requestCount.Load(); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
}

func TestFindPreviewURLs_RemembersFailures(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestCount.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(searchResponse{Results: []result{
			{TrackName: "Dynamite", ArtistName: "BTS", PreviewURL: "https://a/bts"},
		}})
	}))
	defer server.Close()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	client := newTestClient(server)
	client.now = func() time.Time { return now }

	if _, err := client.FindPreviewURLs(context.Background(), "Dynamite", "BTS", 1); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("first FindPreviewURLs() error = %v, want ErrRateLimited", err)
	}
	if _, err := client.FindPreviewURLs(context.Background(), "Dynamite", "BTS", 1); !errors.Is(err, ErrRecentlyFailed) {
		t.Errorf("second FindPreviewURLs() error = %v, want ErrRecentlyFailed", err)
	}
	if got := requestCount.Load(); got != 1 {
		t.Errorf("request count = %d, want 1 while the failure is remembered", got)
	}

	now = now.Add(failureTTL + time.Second)
	got, err := client.FindPreviewURLs(context.Background(), "Dynamite", "BTS", 1)
	if err != nil || len(got) != 1 {
		t.Errorf("FindPreviewURLs() after ttl = %v, %v; want 1 url", got, err)
	}
}

func TestFindPreviewURLs_EmptyTitle(t *testing.T) {
	client := NewClient(&Config{})
	got, err := client.FindPreviewURLs(context.Background(), "  ", "BTS", 1)
	if err != nil || len(got) != 0 {
		t.Errorf("FindPreviewURLs(empty) = %v, %v; want empty, nil", got, err)
	}
}
