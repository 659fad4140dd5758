package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return tok
}

func validClaims(sub string) Claims {
	return Claims{
		Email: "fan@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Audience:  jwt.ClaimStrings{DefaultAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestJWTVerifier(t *testing.T) {
	userID := uuid.New()
	v := NewJWTVerifier(testSecret, DefaultAudience)

	expired := validClaims(userID.String())
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := validClaims(userID.String())
	noExpiry.ExpiresAt = nil

	wrongAud := validClaims(userID.String())
	wrongAud.Audience = jwt.ClaimStrings{"anon"}

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid", token: signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(userID.String()))},
		{name: "wrong secret", token: signToken(t, jwt.SigningMethodHS256, []byte("another-secret"), validClaims(userID.String())), wantErr: true},
		{name: "wrong algorithm", token: signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(userID.String())), wantErr: true},
		{name: "expired", token: signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired), wantErr: true},
		{name: "no expiry", token: signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry), wantErr: true},
		{name: "wrong audience", token: signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAud), wantErr: true},
		{name: "subject not uuid", token: signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user-1")), wantErr: true},
		{name: "garbage", token: "not.a.token", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.Verify(context.Background(), tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if id.UserID != userID || id.Email != "fan@example.com" {
				t.Errorf("Verify() = %+v, want %s fan@example.com", id, userID)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "bearer abc", want: "abc"},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer ", wantErr: true},
		{header: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if tt.wantErr {
			if !errors.Is(err, ErrMissingToken) {
				t.Errorf("BearerToken(%q) error = %v, want ErrMissingToken", tt.header, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("BearerToken(%q) = %q, %v; want %q", tt.header, got, err, tt.want)
		}
	}
}

func TestAllowlist(t *testing.T) {
	a := NewAllowlist([]string{" Admin@Example.com", "", "ops@kdle.app"})
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
	tests := map[string]bool{
		"admin@example.com":  true,
		"ADMIN@EXAMPLE.COM ": true,
		"ops@kdle.app":       true,
		"fan@example.com":    false,
		"":                   false,
	}
	for email, want := range tests {
		if got := a.Allowed(email); got != want {
			t.Errorf("Allowed(%q) = %v, want %v", email, got, want)
		}
	}

	if NewAllowlist(nil).Allowed("admin@example.com") {
		t.Error("empty allowlist admitted an email")
	}
}

func TestGoTrueVerifier(t *testing.T) {
	userID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/user") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":401,"msg":"invalid JWT"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    userID.String(),
			"email": "fan@example.com",
			"aud":   "authenticated",
		})
	}))
	defer server.Close()

	v := NewGoTrueVerifier(NewGoTrueClient(server.URL, "anon-key"))

	id, err := v.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.UserID != userID || id.Email != "fan@example.com" {
		t.Errorf("Verify() = %+v", id)
	}

	if _, err := v.Verify(context.Background(), "bad-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(bad) error = %v, want ErrInvalidToken", err)
	}
}

func TestDirectoryEmails(t *testing.T) {
	known := uuid.New()
	missing := uuid.New()
	var listed bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/admin/users") {
			listed = true
		}
		if r.URL.Path != "/auth/v1/admin/users/"+known.String() {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"code":404,"msg":"User not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    known.String(),
			"email": "stay@example.com",
			"aud":   "authenticated",
		})
	}))
	defer server.Close()

	dir := NewDirectory(NewGoTrueClient(server.URL, "service-role-key"))

	emails, err := dir.Emails(context.Background(), []uuid.UUID{known, missing})
	if err != nil {
		t.Fatalf("Emails() error = %v", err)
	}
	if len(emails) != 1 || emails[known] != "stay@example.com" {
		t.Errorf("Emails() = %v", emails)
	}
	if listed {
		t.Error("Emails() used the paged user list")
	}

	if _, err := dir.Emails(context.Background(), []uuid.UUID{missing}); err == nil {
		t.Error("Emails(missing) error = nil, want error")
	}
}
