package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const minJWTSecretLength = 32

type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	JWTSecret          string
	AccessTokenTTL     time.Duration
	LogLevel           string
	LogFormat          string
	MaxClientsPerTopic int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters, got %d", minJWTSecretLength, len(cfg.JWTSecret))
	}

	ttl, err := time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be a valid duration: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	cfg.AccessTokenTTL = ttl

	maxClients, err := strconv.Atoi(getEnv("MAX_CLIENTS_PER_TOPIC", "100"))
	if err != nil {
		return nil, fmt.Errorf("MAX_CLIENTS_PER_TOPIC must be an integer: %w", err)
	}
	if maxClients < 1 {
		return nil, fmt.Errorf("MAX_CLIENTS_PER_TOPIC must be at least 1")
	}
	cfg.MaxClientsPerTopic = maxClients

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
