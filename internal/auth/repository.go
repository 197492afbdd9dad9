package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"fintrack/internal/database"
)

// Repository persists refresh sessions.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new refresh session row.
func (r *Repository) Create(ctx context.Context, userID, refreshToken uuid.UUID, expiresIn int64) error {
	session := &database.RefreshSession{
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}

	_, err := r.db.NewInsert().
		Model(session).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create refresh session: %w", err)
	}

	return nil
}

// GetByToken looks a session up by its opaque refresh token.
func (r *Repository) GetByToken(ctx context.Context, refreshToken uuid.UUID) (*Session, error) {
	dbSession := new(database.RefreshSession)
	err := r.db.NewSelect().
		Model(dbSession).
		Where("refresh_token = ?", refreshToken).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get refresh session: %w", err)
	}

	return mapDBSessionToModel(dbSession), nil
}

// Rotate swaps the session's token in place, guarded by a compare-and-swap
// on the old token value: of two concurrent rotations presenting the same
// token, exactly one matches the row and wins; the other sees
// ErrSessionNotFound. created_at is reset so rotation opens a fresh
// validity window.
func (r *Repository) Rotate(ctx context.Context, sessionID, oldToken, newToken uuid.UUID, expiresIn int64) error {
	result, err := r.db.NewUpdate().
		Model((*database.RefreshSession)(nil)).
		Set("refresh_token = ?", newToken).
		Set("expires_in = ?", expiresIn).
		Set("created_at = NOW()").
		Where("id = ?", sessionID).
		Where("refresh_token = ?", oldToken).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to rotate refresh session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteByToken removes the session matching the token. Deleting a token
// that matches nothing is a no-op, which makes logout idempotent.
func (r *Repository) DeleteByToken(ctx context.Context, refreshToken uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*database.RefreshSession)(nil)).
		Where("refresh_token = ?", refreshToken).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete refresh session: %w", err)
	}

	return nil
}

// DeleteByID removes a session row by primary key (lazy expiry cleanup).
func (r *Repository) DeleteByID(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*database.RefreshSession)(nil)).
		Where("id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete refresh session: %w", err)
	}

	return nil
}

// DeleteAllForUser removes every session owned by the user ("log out
// everywhere").
func (r *Repository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*database.RefreshSession)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	return nil
}

func mapDBSessionToModel(dbs *database.RefreshSession) *Session {
	return &Session{
		ID:           dbs.ID,
		UserID:       dbs.UserID,
		RefreshToken: dbs.RefreshToken,
		ExpiresIn:    dbs.ExpiresIn,
		CreatedAt:    dbs.CreatedAt,
	}
}
