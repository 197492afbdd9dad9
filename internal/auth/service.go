package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/logging"
	"fintrack/internal/user"
)

// Service is the auth facade: it composes the session manager, the
// verification flow and password hashing behind one API consumed by the
// HTTP handlers.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   TokenService
	mailer   VerificationMailer
	seeder   CategorySeeder
	logger   *logging.Logger

	refreshTokenTTL time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func NewService(
	users UserStore,
	sessions SessionStore,
	tokens TokenService,
	mailer VerificationMailer,
	seeder CategorySeeder,
	logger *logging.Logger,
	refreshTokenTTL time.Duration,
) *Service {
	return &Service{
		users:           users,
		sessions:        sessions,
		tokens:          tokens,
		mailer:          mailer,
		seeder:          seeder,
		logger:          logger,
		refreshTokenTTL: refreshTokenTTL,
		now:             time.Now,
	}
}

// Register creates a new unverified account and seeds its default finance
// categories. A claimed email fails with user.ErrDuplicateEmail, whether the
// claiming account is active or soft-deleted.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.seeder != nil {
		if err := s.seeder.SeedDefaults(ctx, newUser.ID); err != nil {
			// The account exists either way; category seeding can be
			// repaired on first category write.
			s.logger.Warn("failed to seed default categories", "user_id", newUser.ID, "error", err)
		}
	}

	return newUser, nil
}

// Authenticate resolves credentials to a user. An unknown email and a wrong
// password produce the same ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !CheckPassword(existing.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return existing, nil
}

// Login authenticates and opens a fresh session.
func (s *Service) Login(ctx context.Context, email, password string) (*Tokens, error) {
	existing, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.CreateSession(ctx, existing.ID)
}

// CreateSession mints an access token and a fresh opaque refresh token and
// persists the session row.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID) (*Tokens, error) {
	accessToken, err := s.tokens.MintAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint access token: %w", err)
	}

	refreshToken := uuid.New()
	expiresIn := int64(s.refreshTokenTTL.Seconds())

	if err := s.sessions.Create(ctx, userID, refreshToken, expiresIn); err != nil {
		return nil, fmt.Errorf("failed to store refresh session: %w", err)
	}

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.String(),
		TokenType:    "bearer",
	}, nil
}

// Refresh exchanges a refresh token for a new token pair, rotating the
// session row in place.
//
// Failure modes, in order of detection:
//   - token not parseable / no matching row / row rotated away concurrently
//     / owner gone: ErrInvalidToken
//   - row found but window passed: ErrSessionExpired, and the stale row is
//     deleted so a retry with the same token fails as invalid, not expired
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	token, err := uuid.Parse(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up refresh session: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.sessions.DeleteByID(ctx, session.ID); err != nil {
			s.logger.Warn("failed to remove expired session", "session_id", session.ID, "error", err)
		}
		return nil, ErrSessionExpired
	}

	owner, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve session owner: %w", err)
	}

	accessToken, err := s.tokens.MintAccessToken(owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint access token: %w", err)
	}

	newToken := uuid.New()
	expiresIn := int64(s.refreshTokenTTL.Seconds())

	err = s.sessions.Rotate(ctx, session.ID, token, newToken, expiresIn)
	if err != nil {
		// A concurrent refresh with the same token already rotated the row.
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to rotate refresh session: %w", err)
	}

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: newToken.String(),
		TokenType:    "bearer",
	}, nil
}

// Logout revokes the session matching the presented refresh token. Unknown,
// already-revoked and malformed tokens are all quiet no-ops.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	token, err := uuid.Parse(refreshToken)
	if err != nil {
		return nil
	}
	return s.sessions.DeleteByToken(ctx, token)
}

// AbortAllSessions revokes every session the user owns.
func (s *Service) AbortAllSessions(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.DeleteAllForUser(ctx, userID)
}

// RequestVerification mints a verification token for the user and enqueues
// the mail. Requesting for an already-verified user is a conflict.
func (s *Service) RequestVerification(ctx context.Context, u *user.User) error {
	if u.IsVerified {
		return ErrAlreadyVerified
	}

	token, err := s.tokens.MintVerificationToken(u.Email)
	if err != nil {
		return fmt.Errorf("failed to mint verification token: %w", err)
	}

	if err := s.mailer.EnqueueVerification(ctx, u.Email, token); err != nil {
		return fmt.Errorf("failed to enqueue verification mail: %w", err)
	}

	return nil
}

// Verify validates a verification token and flips the account to verified.
// A second verification of the same account is an idempotent success, not
// an error.
func (s *Service) Verify(ctx context.Context, tokenStr string) (*VerifyResult, error) {
	email, err := s.tokens.VerifyEmailToken(tokenStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if existing.IsVerified {
		return &VerifyResult{
			Status:  "already_verified",
			Details: "user already verified",
		}, nil
	}

	if err := s.users.MarkVerified(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to mark user verified: %w", err)
	}

	return &VerifyResult{
		Status:  "success",
		Details: "verification successful",
	}, nil
}
