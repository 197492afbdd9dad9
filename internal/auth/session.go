package auth

import (
	"time"

	"github.com/google/uuid"
)

// Session is one refresh grant. Many sessions may exist per user
// (multi-device); exactly one valid refresh token exists per row.
type Session struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	RefreshToken uuid.UUID
	ExpiresIn    int64 // seconds
	CreatedAt    time.Time
}

// ExpiresAt is the absolute end of the session's validity window.
func (s *Session) ExpiresAt() time.Time {
	return s.CreatedAt.Add(time.Duration(s.ExpiresIn) * time.Second)
}

// Expired reports whether the window has passed at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt())
}

// Tokens is the pair handed to clients after login or refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// VerifyResult is the status payload returned by the verification endpoint.
type VerifyResult struct {
	Status  string `json:"status"`
	Data    any    `json:"data"`
	Details string `json:"details"`
}
