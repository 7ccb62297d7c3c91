package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/inkwell")
	t.Setenv("JWT_SECRET", validSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "24h0m0s", cfg.AccessTokenTTL.String())
	assert.Equal(t, 100, cfg.MaxClientsPerTopic)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", validSecret)
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/inkwell")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/inkwell")
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load()
	assert.ErrorContains(t, err, "at least 32 characters")
}

func TestLoad_TTL(t *testing.T) {
	setRequired(t)

	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "15m0s", cfg.AccessTokenTTL.String())

	t.Setenv("ACCESS_TOKEN_TTL", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "ACCESS_TOKEN_TTL")

	t.Setenv("ACCESS_TOKEN_TTL", "-1h")
	_, err = Load()
	assert.ErrorContains(t, err, "positive")
}

func TestLoad_MaxClientsPerTopic(t *testing.T) {
	setRequired(t)

	t.Setenv("MAX_CLIENTS_PER_TOPIC", "5")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxClientsPerTopic)

	t.Setenv("MAX_CLIENTS_PER_TOPIC", "zero")
	_, err = Load()
	assert.ErrorContains(t, err, "integer")

	t.Setenv("MAX_CLIENTS_PER_TOPIC", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "at least 1")
}
