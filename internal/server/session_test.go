package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/bananimon/internal/config"
)

func TestSessionRoundTrip(t *testing.T) {
	s, err := NewSessions(config.SessionConfig{Secret: "k"})
	require.NoError(t, err)

	token, err := s.Issue("user-1")
	require.NoError(t, err)
	got, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got)
}

func TestSessionRejectsForeignSecret(t *testing.T) {
	a, _ := NewSessions(config.SessionConfig{Secret: "a"})
	b, _ := NewSessions(config.SessionConfig{Secret: "b"})

	token, err := a.Issue("user-1")
	require.NoError(t, err)
	_, err = b.Parse(token)
	assert.ErrorIs(t, err, errNoSession)
}

func TestSessionExpires(t *testing.T) {
	s, _ := NewSessions(config.SessionConfig{Secret: "k", TTL: time.Hour})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	token, err := s.Issue("user-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, errNoSession)
}

func TestSessionRejectsOtherAlgorithms(t *testing.T) {
	s, _ := NewSessions(config.SessionConfig{Secret: "k"})
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: sessionIssuer, Subject: "user-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Parse(signed)
	assert.Error(t, err)
}

func TestRequirePutsUserInContext(t *testing.T) {
	s, _ := NewSessions(config.SessionConfig{})
	token, err := s.Issue("user-7")
	require.NoError(t, err)

	var seen string
	h := s.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "bananimon_session", Value: token})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "user-7", seen)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
