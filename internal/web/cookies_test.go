package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/justestif/kdle/internal/game"
	"github.com/justestif/kdle/internal/stats"
)

func roundTrip(t *testing.T, write func(w http.ResponseWriter)) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	write(rec)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestCookieStateRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	codec := NewCookieCodec("secret", false, func() time.Time { return now })

	s, _, err := game.Apply(game.NewState("2026-03-10"), "Ditto", game.Song{Title: "Hype Boy", Artist: "NewJeans"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	req := roundTrip(t, func(w http.ResponseWriter) {
		if err := codec.WriteState(w, s, now.Add(time.Hour)); err != nil {
			t.Fatalf("WriteState() error = %v", err)
		}
	})

	got := codec.ReadState(req, "2026-03-10")
	if got.GuessesUsed() != 1 || got.HintLevel != 1 {
		t.Errorf("ReadState() = %+v, want one attempt at hint level 1", got)
	}

	if stale := codec.ReadState(req, "2026-03-11"); stale.GuessesUsed() != 0 {
		t.Errorf("ReadState(next day) guesses = %d, want 0", stale.GuessesUsed())
	}
}

func TestCookieRejectsTampering(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	codec := NewCookieCodec("secret", false, func() time.Time { return now })
	other := NewCookieCodec("other-secret", false, func() time.Time { return now })

	st := stats.Stats{TotalGames: 9, TotalWins: 9, Streak: 9, LongestStreak: 9, LastResultDate: "2026-03-09"}
	req := roundTrip(t, func(w http.ResponseWriter) {
		if err := other.WriteStats(w, st); err != nil {
			t.Fatalf("WriteStats() error = %v", err)
		}
	})
	if got := codec.ReadStats(req); got.TotalGames != 0 {
		t.Errorf("ReadStats() with foreign signature = %+v, want zero", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: StatsCookie, Value: "not-a-token"})
	if got := codec.ReadStats(req); got.TotalGames != 0 {
		t.Errorf("ReadStats() with garbage = %+v, want zero", got)
	}
}

func TestCookieExpiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := now
	codec := NewCookieCodec("secret", false, func() time.Time { return clock })

	req := roundTrip(t, func(w http.ResponseWriter) {
		if err := codec.WriteState(w, game.NewState("2026-03-10"), now.Add(time.Minute)); err != nil {
			t.Fatalf("WriteState() error = %v", err)
		}
	})
	if codec.read(req, StateCookie) == nil {
		t.Fatal("read() before expiry = nil")
	}

	clock = now.Add(2 * time.Minute)
	if codec.read(req, StateCookie) != nil {
		t.Error("read() after expiry returned a payload")
	}
}

func TestCookieStats(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	codec := NewCookieCodec("secret", true, func() time.Time { return now })

	st := stats.Apply(stats.Stats{}, true, "2026-03-10", now)
	rec := httptest.NewRecorder()
	if err := codec.WriteStats(rec, st); err != nil {
		t.Fatalf("WriteStats() error = %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags = httponly %v secure %v samesite %v", c.HttpOnly, c.Secure, c.SameSite)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	got := codec.ReadStats(req)
	if got.TotalGames != 1 || got.Streak != 1 || got.LastResultDate != "2026-03-10" {
		t.Errorf("ReadStats() = %+v", got)
	}
}

func TestNewCookieCodecRandomSecret(t *testing.T) {
	a := NewCookieCodec("", false, nil)
	b := NewCookieCodec("", false, nil)
	if string(a.secret) == "" || string(a.secret) == string(b.secret) {
		t.Error("expected distinct random secrets")
	}
}
