package web

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/db"
	"github.com/justestif/kdle/internal/game"
	"github.com/justestif/kdle/internal/puzzle"
	"github.com/justestif/kdle/internal/stats"
)

// maxGuessLength bounds guess text in runes.
const maxGuessLength = 200

type guessRequest struct {
	Guess string `json:"guess"`
}

// statsResponse is a player's stats with the derived win rate.
type statsResponse struct {
	stats.Stats
	WinRate int `json:"win_rate"`
}

func newStatsResponse(st stats.Stats) statsResponse {
	return statsResponse{Stats: st, WinRate: stats.WinRate(st.TotalWins, st.TotalGames)}
}

type completeResponse struct {
	Stats    statsResponse `json:"stats"`
	Recorded bool          `json:"recorded"`
}

// Today handles GET /api/game/today.
func (h *Handlers) Today(w http.ResponseWriter, r *http.Request) {
	p, err := h.puzzles.Today(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	state := h.loadState(r, p.Date)
	writeJSON(w, http.StatusOK, h.puzzles.View(p, state))
}

// Guess handles POST /api/game/guess.
func (h *Handlers) Guess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.Guess = strings.TrimSpace(req.Guess)
	if req.Guess == "" || utf8.RuneCountInString(req.Guess) > maxGuessLength {
		writeError(w, http.StatusBadRequest, "Invalid payload", "")
		return
	}

	today := h.puzzles.Clock().Today()
	state := h.loadState(r, today)

	next, out, err := h.puzzles.Guess(r.Context(), state, req.Guess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.saveState(w, r, next); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Hint handles GET /api/game/hint.
func (h *Handlers) Hint(w http.ResponseWriter, r *http.Request) {
	state := h.loadState(r, h.puzzles.Clock().Today())
	hv, err := h.puzzles.Hint(r.Context(), state)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hv)
}

// Solution handles GET /api/game/solution.
func (h *Handlers) Solution(w http.ResponseWriter, r *http.Request) {
	state := h.loadState(r, h.puzzles.Clock().Today())
	sol, err := h.puzzles.Solution(r.Context(), state)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sol)
}

// Complete handles POST /api/game/complete. Signed-in results go to the
// database; guests keep their stats in a cookie. Repeats for the same day
// return the current stats without changing them.
func (h *Handlers) Complete(w http.ResponseWriter, r *http.Request) {
	var claim puzzle.Claim
	if err := decodeJSON(r, &claim); err != nil {
		writeServiceError(w, r, err)
		return
	}

	id := identityFrom(r.Context())
	userID := uuid.Nil
	if id != nil {
		userID = id.UserID
	}

	state := h.loadState(r, h.puzzles.Clock().Today())
	res, err := h.puzzles.Complete(r.Context(), userID, state, claim)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if id != nil {
		st, recorded, err := h.stats.Complete(r.Context(), res)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, completeResponse{Stats: newStatsResponse(st), Recorded: recorded})
		return
	}

	prev := h.cookies.ReadStats(r)
	if prev.LastResultDate == res.Date {
		writeJSON(w, http.StatusOK, completeResponse{Stats: newStatsResponse(prev)})
		return
	}
	next := stats.Apply(prev, res.Won, res.Date, h.puzzles.Clock().Now())
	if err := h.cookies.WriteStats(w, next); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{Stats: newStatsResponse(next), Recorded: true})
}

// Reset handles POST /api/game/reset by clearing today's state.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w, StateCookie)
	if id := identityFrom(r.Context()); id != nil && h.playStates != nil {
		err := h.playStates.Delete(r.Context(), id.UserID, h.puzzles.Clock().Today())
		if err != nil && !isNotFound(err) {
			log.Warn().Err(err).Str("user", id.UserID.String()).Msg("deleting play state")
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type gameStatsResponse struct {
	Stats statsResponse    `json:"stats"`
	Today *todayResultView `json:"today"`
}

type todayResultView struct {
	Date     string         `json:"date"`
	Attempts int            `json:"attempts"`
	Won      bool           `json:"won"`
	Guesses  []game.Attempt `json:"guesses"`
}

// GameStats handles GET /api/game/stats for signed-in players.
func (h *Handlers) GameStats(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	st, err := h.stats.Get(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.stats.Today(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := gameStatsResponse{Stats: newStatsResponse(st)}
	if res != nil {
		resp.Today = todayResult(res)
	}
	writeJSON(w, http.StatusOK, resp)
}

func todayResult(res *db.GameResult) *todayResultView {
	v := &todayResultView{Date: res.Date, Attempts: res.Attempts, Won: res.Won, Guesses: res.Guesses}
	if v.Guesses == nil {
		v.Guesses = []game.Attempt{}
	}
	return v
}

// UserStats handles GET /api/user/stats. Guests read the stats cookie,
// which gets the same stale-streak correction as stored stats.
func (h *Handlers) UserStats(w http.ResponseWriter, r *http.Request) {
	if id := identityFrom(r.Context()); id != nil {
		st, err := h.stats.Get(r.Context(), id.UserID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newStatsResponse(st))
		return
	}

	clock := h.puzzles.Clock()
	st := h.cookies.ReadStats(r)
	corrected, changed := stats.CorrectOnRead(st, clock.Now(), clock.Yesterday(), st.LastResultDate == clock.Today())
	if changed {
		if err := h.cookies.WriteStats(w, corrected); err != nil {
			log.Warn().Err(err).Msg("rewriting stats cookie")
		}
	}
	writeJSON(w, http.StatusOK, newStatsResponse(corrected))
}
