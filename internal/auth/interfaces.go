package auth

import (
	"context"

	"github.com/google/uuid"

	"fintrack/internal/user"
)

// SessionStore is the persistence contract for refresh sessions.
type SessionStore interface {
	Create(ctx context.Context, userID, refreshToken uuid.UUID, expiresIn int64) error
	GetByToken(ctx context.Context, refreshToken uuid.UUID) (*Session, error)
	Rotate(ctx context.Context, sessionID, oldToken, newToken uuid.UUID, expiresIn int64) error
	DeleteByToken(ctx context.Context, refreshToken uuid.UUID) error
	DeleteByID(ctx context.Context, sessionID uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	MarkVerified(ctx context.Context, email string) error
}

// TokenService mints and validates signed tokens. Implemented by JWTService.
type TokenService interface {
	MintAccessToken(userID uuid.UUID) (string, error)
	VerifyAccessToken(tokenStr string) (uuid.UUID, error)
	MintVerificationToken(email string) (string, error)
	VerifyEmailToken(tokenStr string) (string, error)
}

// VerificationMailer hands a verification mail job to the background queue.
// Enqueueing succeeds independently of delivery; the worker owns retries.
type VerificationMailer interface {
	EnqueueVerification(ctx context.Context, email, token string) error
}

// CategorySeeder installs a new user's default finance categories.
type CategorySeeder interface {
	SeedDefaults(ctx context.Context, userID uuid.UUID) error
}
