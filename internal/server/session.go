package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lazypower/bananimon/internal/config"
)

const sessionIssuer = "bananimon"

var errNoSession = errors.New("no valid session")

type ctxKey int

const userIDKey ctxKey = iota

// WithUserID returns a context carrying the authenticated player.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated player stored by the session middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// Sessions issues and verifies HS256 session tokens. The token travels in
// a cookie for the browser and as a bearer token for other clients.
type Sessions struct {
	secret []byte
	cookie string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions builds a session signer. An empty secret gets a random one,
// which invalidates sessions on every restart.
func NewSessions(cfg config.SessionConfig) (*Sessions, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	cookie := cfg.CookieName
	if cookie == "" {
		cookie = "bananimon_session"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 90 * 24 * time.Hour
	}
	return &Sessions{secret: secret, cookie: cookie, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for userID.
func (s *Sessions) Issue(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its subject.
func (s *Sessions) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errNoSession, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", errNoSession
	}
	return claims.Subject, nil
}

// SetCookie issues a token for userID and attaches it to the response.
func (s *Sessions) SetCookie(w http.ResponseWriter, userID string) (string, error) {
	token, err := s.Issue(userID)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func (s *Sessions) tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(s.cookie); err == nil {
		return c.Value
	}
	return ""
}

// Require rejects requests without a valid session and stores the user id
// in the request context for the handlers below it.
func (s *Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.tokenFrom(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "session required")
			return
		}
		userID, err := s.Parse(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}
