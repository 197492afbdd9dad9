package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/user"
)

func newTestMiddleware(t *testing.T) (*Middleware, *fakeUserStore, *JWTService) {
	t.Helper()
	tokens, err := NewJWTService("test-secret", "HS256", 15*time.Minute, time.Hour)
	require.NoError(t, err)
	users := newFakeUserStore()
	return NewMiddleware(tokens, users), users, tokens
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	m, users, tokens := newTestMiddleware(t)

	u, err := users.Create(t.Context(), "user@example.com", "hash")
	require.NoError(t, err)
	accessToken, err := tokens.MintAccessToken(u.ID)
	require.NoError(t, err)

	var resolved *user.User
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved, _ = GetUserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resolved)
	assert.Equal(t, u.ID, resolved.ID)
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	m, users, tokens := newTestMiddleware(t)

	u, err := users.Create(t.Context(), "user@example.com", "hash")
	require.NoError(t, err)
	accessToken, err := tokens.MintAccessToken(u.ID)
	require.NoError(t, err)

	called := false
	handler := m.RequireAuth(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: accessToken})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireAuth_Rejections(t *testing.T) {
	m, users, tokens := newTestMiddleware(t)

	u, err := users.Create(t.Context(), "user@example.com", "hash")
	require.NoError(t, err)
	validToken, err := tokens.MintAccessToken(u.ID)
	require.NoError(t, err)

	ghost, err := users.Create(t.Context(), "ghost@example.com", "hash")
	require.NoError(t, err)
	ghostToken, err := tokens.MintAccessToken(ghost.ID)
	require.NoError(t, err)
	users.remove(ghost.ID)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no credentials", func(r *http.Request) {}},
		{"malformed header", func(r *http.Request) {
			r.Header.Set("Authorization", "Token "+validToken)
		}},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer garbage")
		}},
		{"token for deleted user", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+ghostToken)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := m.RequireAuth(okHandler(&called))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
		})
	}
}

func TestStatusGates(t *testing.T) {
	m, users, tokens := newTestMiddleware(t)

	u, err := users.Create(t.Context(), "user@example.com", "hash")
	require.NoError(t, err)
	accessToken, err := tokens.MintAccessToken(u.ID)
	require.NoError(t, err)

	run := func(gate func(http.Handler) http.Handler) int {
		called := false
		handler := m.RequireAuth(gate(okHandler(&called)))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// Fresh account: active, not verified, not superuser.
	assert.Equal(t, http.StatusOK, run(m.RequireActive))
	assert.Equal(t, http.StatusForbidden, run(m.RequireVerified))
	assert.Equal(t, http.StatusForbidden, run(m.RequireSuperuser))

	u.IsVerified = true
	assert.Equal(t, http.StatusOK, run(m.RequireVerified))

	u.IsActive = false
	assert.Equal(t, http.StatusForbidden, run(m.RequireActive))

	u.IsSuperuser = true
	assert.Equal(t, http.StatusOK, run(m.RequireSuperuser))
}
