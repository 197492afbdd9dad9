package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/database"
)

// anyQuery accepts whatever SQL bun generates; the tests assert on
// behavior (results, affected rows), not on query text.
var anyQuery = sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
	return nil
})

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(anyQuery))
	require.NoError(t, err)
	return NewRepository(database.NewBunDB(db)), mock, func() { db.Close() }
}

func sessionColumns() []string {
	return []string{"id", "user_id", "refresh_token", "expires_in", "created_at"}
}

func TestRepository_GetByToken(t *testing.T) {
	repo, mock, cleanup := newMockRepository(t)
	defer cleanup()

	sessionID := uuid.New()
	userID := uuid.New()
	token := uuid.New()
	createdAt := time.Now().UTC()

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows(sessionColumns()).
			AddRow(sessionID, userID, token, int64(2592000), createdAt),
	)

	session, err := repo.GetByToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, sessionID, session.ID)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, token, session.RefreshToken)
	assert.Equal(t, int64(2592000), session.ExpiresIn)
}

func TestRepository_GetByToken_NotFound(t *testing.T) {
	repo, mock, cleanup := newMockRepository(t)
	defer cleanup()

	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByToken(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRepository_Rotate_Wins(t *testing.T) {
	repo, mock, cleanup := newMockRepository(t)
	defer cleanup()

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Rotate(context.Background(), uuid.New(), uuid.New(), uuid.New(), 2592000)
	assert.NoError(t, err)
}

func TestRepository_Rotate_LosesRace(t *testing.T) {
	// Zero affected rows means another rotation consumed the old token
	// first; the caller must treat the presented token as invalid.
	repo, mock, cleanup := newMockRepository(t)
	defer cleanup()

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Rotate(context.Background(), uuid.New(), uuid.New(), uuid.New(), 2592000)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRepository_DeleteByToken_Idempotent(t *testing.T) {
	repo, mock, cleanup := newMockRepository(t)
	defer cleanup()

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteByToken(context.Background(), uuid.New()))
}
