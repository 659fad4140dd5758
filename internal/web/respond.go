package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/admin"
	"github.com/justestif/kdle/internal/game"
	"github.com/justestif/kdle/internal/leaderboard"
	"github.com/justestif/kdle/internal/puzzle"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// errInvalidPayload is reported for any malformed request body.
var errInvalidPayload = errors.New("invalid payload")

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errInvalidPayload
	}
	return nil
}

// writeServiceError maps service errors to HTTP responses. Unexpected
// errors are logged; only admin routes see their message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errInvalidPayload), errors.Is(err, game.ErrEmptyGuess):
		writeError(w, http.StatusBadRequest, "Invalid payload", "")
	case errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusBadRequest, "Game over", "No guesses remain for today")
	case errors.Is(err, puzzle.ErrNoPuzzle):
		writeError(w, http.StatusNotFound, "No song scheduled for today", "")
	case errors.Is(err, puzzle.ErrSolutionLocked):
		writeError(w, http.StatusForbidden, "Solution locked", "Finish today's game first")
	case errors.Is(err, puzzle.ErrNotFinished):
		writeError(w, http.StatusBadRequest, "Game not finished", "")
	case errors.Is(err, puzzle.ErrInvalidClaim):
		writeError(w, http.StatusBadRequest, "Invalid payload", err.Error())
	case errors.Is(err, leaderboard.ErrInvalidType):
		writeError(w, http.StatusBadRequest, "Invalid leaderboard type", "")
	case errors.Is(err, ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, "Invalid username", usernameRules)
	case errors.Is(err, ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username taken", "")
	case errors.Is(err, admin.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid payload", err.Error())
	case errors.Is(err, admin.ErrSongNotFound):
		writeError(w, http.StatusNotFound, "Song not found", "")
	case errors.Is(err, admin.ErrNotScheduled):
		writeError(w, http.StatusNotFound, "Nothing scheduled for date", "")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		details := ""
		if identityFrom(r.Context()) != nil && isAdminPath(r.URL.Path) {
			details = err.Error()
		}
		writeError(w, http.StatusInternalServerError, "Internal server error", details)
	}
}

func isAdminPath(path string) bool {
	return strings.HasPrefix(path, "/api/admin/")
}
