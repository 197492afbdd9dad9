package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/database"
)

type fakeRevoker struct {
	revoked []uuid.UUID
}

func (f *fakeRevoker) AbortAllSessions(ctx context.Context, userID uuid.UUID) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

func newTestHandler(t *testing.T, current *User) (*Handler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(anyQuery))
	require.NoError(t, err)

	bunDB := database.NewBunDB(db)
	handler := NewHandler(
		NewRepository(bunDB),
		NewProfileRepository(bunDB),
		&fakeRevoker{},
		func(password string) (string, error) { return "hashed:" + password, nil },
		func(ctx context.Context) (*User, bool) { return current, current != nil },
	)
	return handler, mock, func() { db.Close() }
}

func TestCreateProfile(t *testing.T) {
	current := &User{ID: uuid.New(), Email: "user@example.com", IsActive: true}
	handler, mock, cleanup := newTestHandler(t, current)
	defer cleanup()

	mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/users/me/profile",
		strings.NewReader(`{"username":"John","currency_code":"USD"}`))
	rec := httptest.NewRecorder()
	handler.CreateProfile(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"John"`)
}

func TestCreateProfile_Conflict(t *testing.T) {
	current := &User{ID: uuid.New(), IsActive: true}
	handler, mock, cleanup := newTestHandler(t, current)
	defer cleanup()

	mock.ExpectExec("INSERT").WillReturnError(
		errors.New(`pq: duplicate key value violates unique constraint "profiles_pkey"`),
	)

	req := httptest.NewRequest(http.MethodPost, "/users/me/profile",
		strings.NewReader(`{"username":"John","currency_code":"USD"}`))
	rec := httptest.NewRecorder()
	handler.CreateProfile(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "profile_exists")
}

func TestCreateProfile_Validation(t *testing.T) {
	current := &User{ID: uuid.New(), IsActive: true}
	handler, _, cleanup := newTestHandler(t, current)
	defer cleanup()

	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"currency_code":"USD"}`},
		{"missing currency", `{"username":"John"}`},
		{"username too long", `{"username":"` + strings.Repeat("a", 33) + `","currency_code":"USD"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users/me/profile", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.CreateProfile(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	current := &User{ID: uuid.New(), IsActive: true, IsVerified: true}
	handler, mock, cleanup := newTestHandler(t, current)
	defer cleanup()

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodPut, "/users/me/profile",
		strings.NewReader(`{"username":"John","currency_code":"EUR"}`))
	rec := httptest.NewRecorder()
	handler.UpdateProfile(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProfile(t *testing.T) {
	current := &User{ID: uuid.New(), IsActive: true, IsVerified: true}
	handler, mock, cleanup := newTestHandler(t, current)
	defer cleanup()

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/users/me/profile", nil)
	rec := httptest.NewRecorder()
	handler.DeleteProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "profile has been deleted")
}

func TestDeleteProfile_NotFound(t *testing.T) {
	current := &User{ID: uuid.New(), IsActive: true, IsVerified: true}
	handler, mock, cleanup := newTestHandler(t, current)
	defer cleanup()

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodDelete, "/users/me/profile", nil)
	rec := httptest.NewRecorder()
	handler.DeleteProfile(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
