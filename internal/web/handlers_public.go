package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/catalog"
	"github.com/justestif/kdle/internal/game"
	"github.com/justestif/kdle/internal/leaderboard"
	"github.com/justestif/kdle/internal/spotify"
)

// minQueryLength is the shortest query sent to the catalog.
const minQueryLength = 2

// trackView is a catalog track in API responses.
type trackView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album,omitempty"`
	AlbumImage  string `json:"album_image,omitempty"`
	ReleaseYear int    `json:"release_year,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty"`
	Popularity  int    `json:"popularity,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
}

func trackViews(tracks []spotify.Track) []trackView {
	out := make([]trackView, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackView{
			ID:          t.ID,
			Name:        t.Name,
			Artist:      t.Artist,
			Album:       t.Album,
			AlbumImage:  t.AlbumImage,
			ReleaseYear: t.ReleaseYear,
			PreviewURL:  t.PreviewURL,
			Popularity:  t.Popularity,
			ExternalURL: t.ExternalURL,
		})
	}
	return out
}

type searchResponse struct {
	Tracks []trackView `json:"tracks"`
}

// Search handles GET /api/search. Catalog failures return no suggestions.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(q)) < minQueryLength {
		writeJSON(w, http.StatusOK, searchResponse{Tracks: []trackView{}})
		return
	}
	limit := catalog.MaxSuggestions
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, catalog.MaxSuggestions)
	}

	tracks, err := h.search.Search(r.Context(), q, limit)
	if err != nil {
		log.Warn().Err(err).Str("query", q).Msg("search failed")
		tracks = nil
	}
	writeJSON(w, http.StatusOK, searchResponse{Tracks: trackViews(tracks)})
}

// Leaderboard handles GET /api/leaderboard.
func (h *Handlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	t, err := leaderboard.ParseType(r.URL.Query().Get("type"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	board, err := h.leaderboard.Get(r.Context(), t, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// Home handles the game page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	data := HomePageData{
		PageData: PageData{
			Title:       "K-Dle",
			CurrentPath: r.URL.Path,
		},
		Date:       h.puzzles.Clock().Today(),
		MaxGuesses: game.MaxGuesses,
	}
	h.render(w, "home", data)
}

// LeaderboardPage handles GET /leaderboard.
func (h *Handlers) LeaderboardPage(w http.ResponseWriter, r *http.Request) {
	t, err := leaderboard.ParseType(r.URL.Query().Get("type"))
	if err != nil {
		t, _ = leaderboard.ParseType("")
	}

	data := LeaderboardPageData{
		PageData: PageData{
			Title:       "K-Dle Leaderboard",
			CurrentPath: r.URL.Path,
		},
		Type:  string(t),
		Types: leaderboardTabs,
	}
	board, err := h.leaderboard.Get(r.Context(), t, leaderboard.DefaultLimit)
	if err != nil {
		log.Error().Err(err).Msg("loading leaderboard page")
		data.Flash = &FlashMessage{Type: "error", Message: "The leaderboard is unavailable right now."}
	} else {
		data.Entries = board.Entries
	}
	h.render(w, "leaderboard", data)
}

func (h *Handlers) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, page, data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("rendering template")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}
