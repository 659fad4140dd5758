package web

import (
	"net/http"
	"strconv"

	"github.com/justestif/kdle/internal/admin"
)

type spotifyIDRequest struct {
	SpotifyID string `json:"spotify_id"`
}

type enrichRequest struct {
	SpotifyID       string `json:"spotify_id"`
	OverridePreview bool   `json:"override_preview"`
}

type unscheduleRequest struct {
	Date string `json:"date"`
}

type adminSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type songResponse struct {
	OK   bool            `json:"ok"`
	Song *admin.SongView `json:"song"`
}

// AdminSongs handles GET /api/admin/songs.
func (h *Handlers) AdminSongs(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.Songs(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AdminAddSong handles POST /api/admin/add-song.
func (h *Handlers) AdminAddSong(w http.ResponseWriter, r *http.Request) {
	var req spotifyIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	song, err := h.admin.AddSong(r.Context(), req.SpotifyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songResponse{OK: true, Song: song})
}

// AdminInsertSong handles POST /api/admin/song.
func (h *Handlers) AdminInsertSong(w http.ResponseWriter, r *http.Request) {
	var in admin.SongInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	song, err := h.admin.InsertSong(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songResponse{OK: true, Song: song})
}

// AdminEnrich handles POST /api/admin/enrich.
func (h *Handlers) AdminEnrich(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	song, err := h.admin.Enrich(r.Context(), req.SpotifyID, req.OverridePreview)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songResponse{OK: true, Song: song})
}

// AdminSchedule handles POST /api/admin/schedule.
func (h *Handlers) AdminSchedule(w http.ResponseWriter, r *http.Request) {
	var req admin.ScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	day, err := h.admin.Schedule(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// AdminUnschedule handles POST /api/admin/unschedule.
func (h *Handlers) AdminUnschedule(w http.ResponseWriter, r *http.Request) {
	var req unscheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.admin.Unschedule(r.Context(), req.Date); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "date": req.Date})
}

// AdminCalendar handles GET /api/admin/calendar?year=&month=.
func (h *Handlers) AdminCalendar(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(r.URL.Query().Get("year"))
	month, merr := strconv.Atoi(r.URL.Query().Get("month"))
	if yerr != nil || merr != nil {
		writeError(w, http.StatusBadRequest, "Invalid year/month", "")
		return
	}
	cal, err := h.admin.Calendar(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

// AdminSearch handles POST /api/admin/search-spotify.
func (h *Handlers) AdminSearch(w http.ResponseWriter, r *http.Request) {
	var req adminSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	tracks, err := h.admin.SearchCatalog(r.Context(), req.Query, req.Limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Tracks: trackViews(tracks)})
}

// AdminAnalytics handles GET /api/admin/analytics.
func (h *Handlers) AdminAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.admin.Analytics(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
