package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/justestif/kdle/internal/game"
	"github.com/justestif/kdle/internal/stats"
)

// Cookie names.
const (
	StateCookie = "kdle_state"
	StatsCookie = "kdle_stats"
)

// statsCookieTTL is how long anonymous stats are kept.
const statsCookieTTL = 365 * 24 * time.Hour

// cookieClaims wraps a JSON payload in a signed token.
type cookieClaims struct {
	Payload json.RawMessage `json:"p"`
	jwt.RegisteredClaims
}

// CookieCodec signs and verifies the state and stats cookies.
type CookieCodec struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// NewCookieCodec creates a codec. An empty secret is replaced by a random
// one, which invalidates cookies on every restart.
func NewCookieCodec(secret string, secure bool, now func() time.Time) *CookieCodec {
	if secret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			panic(fmt.Sprintf("generating cookie secret: %v", err))
		}
		secret = hex.EncodeToString(b)
		log.Warn().Msg("COOKIE_SECRET not set; using a random secret, cookies will not survive restarts")
	}
	if now == nil {
		now = time.Now
	}
	return &CookieCodec{secret: []byte(secret), secure: secure, now: now}
}

func (c *CookieCodec) sign(payload []byte, exp time.Time) (string, error) {
	claims := cookieClaims{
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(c.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *CookieCodec) verify(value string) ([]byte, error) {
	claims := &cookieClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, err
	}
	return claims.Payload, nil
}

func (c *CookieCodec) read(r *http.Request, name string) []byte {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return nil
	}
	payload, err := c.verify(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Str("cookie", name).Msg("discarding cookie")
		return nil
	}
	return payload
}

func (c *CookieCodec) write(w http.ResponseWriter, name string, payload []byte, exp time.Time) error {
	value, err := c.sign(payload, exp)
	if err != nil {
		return fmt.Errorf("signing %s cookie: %w", name, err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
	return nil
}

// Clear deletes a cookie.
func (c *CookieCodec) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// ReadState returns the guess state for today from the request. Missing,
// forged, stale or malformed cookies yield a fresh state.
func (c *CookieCodec) ReadState(r *http.Request, today string) game.State {
	return game.Decode(c.read(r, StateCookie), today)
}

// WriteState stores s until exp, normally the end of the day.
func (c *CookieCodec) WriteState(w http.ResponseWriter, s game.State, exp time.Time) error {
	payload, err := game.Encode(s)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	return c.write(w, StateCookie, payload, exp)
}

// ReadStats returns anonymous stats from the request, or zero stats.
func (c *CookieCodec) ReadStats(r *http.Request) stats.Stats {
	payload := c.read(r, StatsCookie)
	if payload == nil {
		return stats.Stats{}
	}
	var st stats.Stats
	if err := json.Unmarshal(payload, &st); err != nil {
		return stats.Stats{}
	}
	return stats.Sanitize(st)
}

// WriteStats stores anonymous stats for a year.
func (c *CookieCodec) WriteStats(w http.ResponseWriter, st stats.Stats) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	return c.write(w, StatsCookie, payload, c.now().Add(statsCookieTTL))
}
