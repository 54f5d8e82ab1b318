package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const testSecret = "unit-test-secret-0123456789"

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, ttl, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManagerRejectsEmptySecret(t *testing.T) {
	if _, err := NewManager("", time.Hour, zap.NewNop()); err == nil {
		t.Error("empty secret accepted")
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)

	raw, err := m.Issue("507f1f77bcf86cd799439011", "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	u, err := m.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if u.ID != "507f1f77bcf86cd799439011" || u.Name != "Ada" || u.Email != "ada@example.com" {
		t.Errorf("claims = %+v", u)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := newTestManager(t, time.Hour)
	m.ttl = -time.Minute
	raw, err := m.Issue("id", "n", "e")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := newTestManager(t, time.Hour)
	other, _ := NewManager("a-different-secret-9876543210", time.Hour, zap.NewNop())
	raw, _ := other.Issue("id", "n", "e")
	if _, err := m.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign token: err = %v, want ErrInvalidToken", err)
	}
}

func TestFromRequestHeaderOnly(t *testing.T) {
	m := newTestManager(t, time.Hour)
	raw, _ := m.Issue("id", "n", "e")

	// Query-string tokens must not be honored.
	req := httptest.NewRequest(http.MethodGet, "/?token="+raw, nil)
	if _, err := m.FromRequest(req); !errors.Is(err, ErrNoToken) {
		t.Errorf("query token: err = %v, want ErrNoToken", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	u, err := m.FromRequest(req)
	if err != nil || u.ID != "id" {
		t.Errorf("header token: %+v, %v", u, err)
	}

	req.Header.Set("Authorization", "Basic abc")
	if _, err := m.FromRequest(req); !errors.Is(err, ErrNoToken) {
		t.Errorf("basic scheme: err = %v, want ErrNoToken", err)
	}
}

func TestLoadUserAndRequireSignedIn(t *testing.T) {
	m := newTestManager(t, time.Hour)
	raw, _ := m.Issue("u1", "Ada", "ada@example.com")

	var seen *TokenUser
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r)
		w.WriteHeader(http.StatusNoContent)
	})
	h := m.LoadUser(RequireSignedIn(inner))

	// No token: 401 before the inner handler.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status %d, want 401", rec.Code)
	}

	// Valid token: user lands in context.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authenticated: status %d", rec.Code)
	}
	if seen == nil || seen.ID != "u1" {
		t.Errorf("context user = %+v", seen)
	}

	// Garbage token: anonymous pass-through, then 401 at the gate.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status %d, want 401", rec.Code)
	}
}
