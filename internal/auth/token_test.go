package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService("test-secret", "HS256", 15*time.Minute, 5*24*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsNonHMAC(t *testing.T) {
	_, err := NewJWTService("test-secret", "RS256", time.Minute, time.Minute)
	require.Error(t, err)

	_, err = NewJWTService("test-secret", "nonsense", time.Minute, time.Minute)
	require.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.MintAccessToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	svc := newTestJWTService(t)
	other, err := NewJWTService("different-secret", "HS256", 15*time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := svc.MintAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	svc, err := NewJWTService("test-secret", "HS256", -time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := svc.MintAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	svc := newTestJWTService(t)

	for _, tokenStr := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.VerifyAccessToken(tokenStr)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerificationToken_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.MintVerificationToken("user@example.com")
	require.NoError(t, err)

	email, err := svc.VerifyEmailToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestVerifyEmailToken_RejectsAccessToken(t *testing.T) {
	// An access token carries no email claim, so it must not pass as a
	// verification token.
	svc := newTestJWTService(t)

	token, err := svc.MintAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.VerifyEmailToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyEmailToken_Expired(t *testing.T) {
	svc, err := NewJWTService("test-secret", "HS256", time.Minute, -time.Minute)
	require.NoError(t, err)

	token, err := svc.MintVerificationToken("user@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyEmailToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
