package web

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/db"
)

const usernameRules = "3 to 20 letters, digits or underscores"

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// Profile errors.
var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrUsernameTaken   = errors.New("username taken")
)

type profileRequest struct {
	Username string `json:"username"`
}

type profileResponse struct {
	Username *string `json:"username"`
}

// ValidateUsername trims and checks a requested username.
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !usernamePattern.MatchString(name) {
		return "", ErrInvalidUsername
	}
	return name, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}

// GetProfile handles GET /api/user/profile.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	p, err := h.profiles.Get(r.Context(), id.UserID)
	if isNotFound(err) {
		writeJSON(w, http.StatusOK, profileResponse{})
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Username: &p.Username})
}

// UpdateProfile handles PUT /api/user/profile.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	name, err := ValidateUsername(req.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	id := identityFrom(r.Context())
	err = h.profiles.Upsert(r.Context(), &db.Profile{UserID: id.UserID, Username: name})
	if errors.Is(err, db.ErrConflict) {
		err = ErrUsernameTaken
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Username: &name})
}

// DeleteProfile handles DELETE /api/user/profile. It removes the player's
// rows and, when an auth directory is configured, the account itself.
func (h *Handlers) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	if err := h.accounts.DeleteUserData(r.Context(), id.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	accountDeleted := false
	if h.directory != nil {
		if err := h.directory.DeleteUser(r.Context(), id.UserID); err != nil {
			log.Error().Err(err).Str("user", id.UserID.String()).Msg("deleting auth account")
		} else {
			accountDeleted = true
		}
	}

	h.cookies.Clear(w, StateCookie)
	h.cookies.Clear(w, StatsCookie)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true, "account_deleted": accountDeleted})
}
