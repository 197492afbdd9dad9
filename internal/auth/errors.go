package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken covers malformed, forged, expired-signature and
	// unresolvable tokens alike, so failure modes do not leak.
	ErrInvalidToken = errors.New("invalid token")

	// ErrSessionNotFound means the opaque refresh token matches no session
	// row. The HTTP layer collapses it into ErrInvalidToken.
	ErrSessionNotFound = errors.New("refresh session not found")

	// ErrSessionExpired means the session row existed but its window has
	// passed. The stale row is removed as a side effect of detection.
	ErrSessionExpired = errors.New("refresh token has expired")

	// ErrAlreadyVerified is the conflict on re-requesting verification.
	// Verifying twice, by contrast, is an idempotent success.
	ErrAlreadyVerified = errors.New("user already verified")

	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)
