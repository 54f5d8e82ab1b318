// internal/app/system/auth/auth.go
//
// Bearer-token authentication for the TaskFlow API. Tokens are HS256 JWTs
// signed with a shared secret; there are no cookie sessions.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// TokenUser is what a verified token resolves to and what handlers see.
type TokenUser struct {
	ID    string
	Name  string
	Email string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

var (
	// ErrNoToken means the Authorization header was absent or malformed.
	ErrNoToken = errors.New("missing bearer token")
	// ErrInvalidToken means the token failed signature or claim validation.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Manager issues and verifies tokens and provides the request middleware.
type Manager struct {
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
}

// NewManager constructs a token manager. The secret must be non-empty.
func NewManager(secret string, ttl time.Duration, logger *zap.Logger) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, log: logger}, nil
}

type claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for the given user.
func (m *Manager) Issue(userID, name, email string) (string, error) {
	now := time.Now().UTC()
	c := claims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

// Verify parses and validates a raw token string.
func (m *Manager) Verify(raw string) (*TokenUser, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &TokenUser{ID: c.Subject, Name: c.Name, Email: c.Email}, nil
}

// FromRequest extracts and verifies the bearer token on a request.
// Tokens are accepted from the Authorization header only; query-string
// tokens are deliberately not supported.
func (m *Manager) FromRequest(r *http.Request) (*TokenUser, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return nil, ErrNoToken
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, ErrNoToken
	}
	return m.Verify(parts[1])
}

// LoadUser injects the verified user into context when a valid bearer
// token is present. Requests without a token pass through anonymously;
// RequireSignedIn gates the protected routes.
func (m *Manager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := m.FromRequest(r)
		if err == nil {
			r = withUser(r, u)
		} else if !errors.Is(err, ErrNoToken) {
			m.log.Debug("rejected bearer token", zap.Error(err))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a verified user in context
// (set by LoadUser). API callers get a plain 401 JSON body.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the user and "found?" flag.
func CurrentUser(r *http.Request) (*TokenUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*TokenUser)
	return u, ok
}

func withUser(r *http.Request, u *TokenUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a user directly into the request context,
// bypassing token verification. For tests only.
func WithTestUser(r *http.Request, u *TokenUser) *http.Request {
	return withUser(r, u)
}
