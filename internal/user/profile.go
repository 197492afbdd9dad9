package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"fintrack/internal/database"
)

var (
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile not found")
)

// Profile is a user's display profile: a username and the currency they
// think in. One per user.
type Profile struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	CurrencyCode string    `json:"currency_code"`
}

// ProfileRepository handles profile data persistence
type ProfileRepository struct {
	db *bun.DB
}

func NewProfileRepository(db *bun.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a profile for the user. The user id is the primary key,
// so a second insert maps to ErrProfileExists.
func (r *ProfileRepository) Create(ctx context.Context, userID uuid.UUID, username, currencyCode string) (*Profile, error) {
	dbProfile := &database.Profile{
		UserID:       userID,
		Username:     username,
		CurrencyCode: currencyCode,
	}

	_, err := r.db.NewInsert().
		Model(dbProfile).
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return mapDBProfileToModel(dbProfile), nil
}

// Get retrieves the user's profile
func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	dbProfile := new(database.Profile)
	err := r.db.NewSelect().
		Model(dbProfile).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return mapDBProfileToModel(dbProfile), nil
}

// Update replaces the profile's fields. A user without a profile gets
// ErrProfileNotFound, not an upsert.
func (r *ProfileRepository) Update(ctx context.Context, userID uuid.UUID, username, currencyCode string) (*Profile, error) {
	result, err := r.db.NewUpdate().
		Model((*database.Profile)(nil)).
		Set("username = ?", username).
		Set("currency_code = ?", currencyCode).
		Where("user_id = ?", userID).
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrProfileNotFound
	}

	return &Profile{UserID: userID, Username: username, CurrencyCode: currencyCode}, nil
}

// Delete removes the user's profile
func (r *ProfileRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Profile)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func mapDBProfileToModel(dbp *database.Profile) *Profile {
	return &Profile{
		UserID:       dbp.UserID,
		Username:     dbp.Username,
		CurrencyCode: dbp.CurrencyCode,
	}
}
