package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/finance"
	"fintrack/internal/logging"
	"fintrack/internal/metrics"
	"fintrack/internal/ratelimit"
	"fintrack/internal/user"
)

// Prometheus collectors register globally, so the instruments are shared
// across the tests in this package.
var testMetrics = metrics.New()

var anyQuery = sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
	return nil
})

type routerEnv struct {
	router  http.Handler
	mock    sqlmock.Sqlmock
	tokens  *auth.JWTService
	cleanup func()
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(anyQuery))
	require.NoError(t, err)
	bunDB := database.NewBunDB(db)

	logger := logging.NewLogger(true)
	tokens, err := auth.NewJWTService("test-secret", "HS256", 15*time.Minute, time.Hour)
	require.NoError(t, err)

	userRepo := user.NewRepository(bunDB)
	profileRepo := user.NewProfileRepository(bunDB)
	sessionRepo := auth.NewRepository(bunDB)
	financeService := finance.NewService(finance.NewRepository(bunDB), logger)

	authService := auth.NewService(userRepo, sessionRepo, tokens, nil, nil, logger, 30*24*time.Hour)
	authHandler := auth.NewHandler(authService, ratelimit.NewLimiter(nil), logger, false, 15*time.Minute, 30*24*time.Hour)
	authMiddleware := auth.NewMiddleware(tokens, userRepo)
	userHandler := user.NewHandler(userRepo, profileRepo, authService, auth.HashPassword, auth.GetUserFromContext)
	financeHandler := finance.NewHandler(financeService)

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "prod"},
	}

	router := NewRouter(cfg, authHandler, authMiddleware, userHandler, financeHandler, testMetrics, logger)

	return &routerEnv{
		router:  router,
		mock:    mock,
		tokens:  tokens,
		cleanup: func() { db.Close() },
	}
}

func (e *routerEnv) expectUserLookup(userID uuid.UUID, isActive bool) {
	now := time.Now().UTC()
	e.mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "password_hash", "is_active", "is_verified", "is_superuser", "created_at", "updated_at"}).
			AddRow(userID, "user@example.com", "hash", isActive, true, false, now, now),
	)
}

func TestLogout_RequiresAuthentication(t *testing.T) {
	env := newRouterEnv(t)
	defer env.cleanup()

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_auth")
}

func TestLogout_Authenticated(t *testing.T) {
	env := newRouterEnv(t)
	defer env.cleanup()

	userID := uuid.New()
	accessToken, err := env.tokens.MintAccessToken(userID)
	require.NoError(t, err)
	env.expectUserLookup(userID, true)

	// No refresh cookie: logout still succeeds and clears both cookies.
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	cleared := 0
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "access_token" || cookie.Name == "refresh_token" {
			assert.Equal(t, -1, cookie.MaxAge)
			cleared++
		}
	}
	assert.Equal(t, 2, cleared)
}

func TestLogout_InactiveUser(t *testing.T) {
	env := newRouterEnv(t)
	defer env.cleanup()

	userID := uuid.New()
	accessToken, err := env.tokens.MintAccessToken(userID)
	require.NoError(t, err)
	env.expectUserLookup(userID, false)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_active")
}

func TestProfileRoutes_RequireAuthentication(t *testing.T) {
	env := newRouterEnv(t)
	defer env.cleanup()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/users/me/profile", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, method)
	}
}
