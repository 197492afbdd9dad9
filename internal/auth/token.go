package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTService mints and validates the two signed token kinds: short-lived
// access tokens carrying a user id subject, and long-lived verification
// tokens carrying an email claim. Refresh tokens are not signed tokens and
// never pass through here.
type JWTService struct {
	secret    []byte
	method    jwt.SigningMethod
	algorithm string
	accessTTL time.Duration
	verifyTTL time.Duration
}

type verificationClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func NewJWTService(secret, algorithm string, accessTTL, verifyTTL time.Duration) (*JWTService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}

	return &JWTService{
		secret:    []byte(secret),
		method:    method,
		algorithm: algorithm,
		accessTTL: accessTTL,
		verifyTTL: verifyTTL,
	}, nil
}

// MintAccessToken creates a signed access token with sub=userID.
func (s *JWTService) MintAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(s.method, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates a signed access token and returns the user id.
// Signature failure, malformed payload and expiry all come back as
// ErrInvalidToken.
func (s *JWTService) VerifyAccessToken(tokenStr string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, s.keyFunc,
		jwt.WithValidMethods([]string{s.algorithm}))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// MintVerificationToken creates a signed, email-scoped verification token.
func (s *JWTService) MintVerificationToken(email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(s.method, verificationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.verifyTTL)),
		},
		Email: email,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign verification token: %w", err)
	}
	return signed, nil
}

// VerifyEmailToken validates a verification token and returns the embedded
// email. All failure modes collapse into ErrInvalidToken.
func (s *JWTService) VerifyEmailToken(tokenStr string) (string, error) {
	claims := &verificationClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, s.keyFunc,
		jwt.WithValidMethods([]string{s.algorithm}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

func (s *JWTService) keyFunc(t *jwt.Token) (interface{}, error) {
	return s.secret, nil
}
