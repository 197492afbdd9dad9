package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 5*24*time.Hour, cfg.Auth.VerifyTokenTTL)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.True(t, cfg.Server.IsDevelopment())
}

func TestLoad_TTLOverrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "7")
	t.Setenv("VERIFY_TOKEN_EXPIRE_DAYS", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.VerifyTokenTTL)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsNonHMACAlgorithm(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")
	t.Setenv("AUTH_ALGORITHM", "RS256")

	_, err := Load()
	require.Error(t, err)
}

func TestDatabaseConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p",
		DBName: "fintrack", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=fintrack sslmode=disable",
		cfg.ConnectionString(),
	)
}
