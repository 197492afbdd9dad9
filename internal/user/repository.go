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
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. The email stays claimed by soft-deleted
// accounts too, so a unique violation always maps to ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	dbUser := &database.User{
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// List returns users ordered by creation time.
func (r *Repository) List(ctx context.Context, offset, limit int) ([]*User, error) {
	var dbUsers []database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, mapDBUserToModel(&dbUsers[i]))
	}
	return users, nil
}

// MarkVerified flips is_verified for the user with the given email.
func (r *Repository) MarkVerified(ctx context.Context, email string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_verified = ?", true).
		Set("updated_at = NOW()").
		Where("email = ?", email).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	return requireRowsAffected(result)
}

// UpdatePassword replaces a user's password hash.
func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return requireRowsAffected(result)
}

// Deactivate soft-deletes a user. The row and its claimed email persist;
// existing refresh sessions are revoked separately by the caller.
func (r *Repository) Deactivate(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_active = ?", false).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	return requireRowsAffected(result)
}

// SetFlags updates the status flags on the superuser admin path.
func (r *Repository) SetFlags(ctx context.Context, userID uuid.UUID, isActive, isVerified, isSuperuser bool) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_active = ?", isActive).
		Set("is_verified = ?", isVerified).
		Set("is_superuser = ?", isSuperuser).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update user flags: %w", err)
	}

	return requireRowsAffected(result)
}

// HardDelete removes a user row entirely. Refresh sessions and finance rows
// go with it via ON DELETE CASCADE. Superuser-only path.
func (r *Repository) HardDelete(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return requireRowsAffected(result)
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		IsActive:     dbu.IsActive,
		IsVerified:   dbu.IsVerified,
		IsSuperuser:  dbu.IsSuperuser,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
