// Package config centraliza o carregamento de configurações da aplicação.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kaificial/likes-service/internal/core/domain"
)

type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	RateLimiter RateLimiterConfig
	Likes       LikesConfig
	Stats       StatsConfig
}

type ServerConfig struct {
	Port string
}

type StorageConfig struct {
	Type     string
	Redis    RedisConfig
	Postgres PostgresConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	DSN string
}

type RateLimiterConfig struct {
	Rule domain.RateLimitRule
}

type LikesConfig struct {
	// TTL do marcador de dedup por identidade.
	TTL time.Duration
}

type StatsConfig struct {
	Enabled bool
	Prefix  string
	TTL     time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	storageType := getEnv("STORAGE_TYPE", "redis")

	redisConfig, err := buildRedisConfig()
	if err != nil {
		return Config{}, err
	}

	rateLimiterConfig, err := buildRateLimiterConfig()
	if err != nil {
		return Config{}, err
	}

	likesConfig, err := buildLikesConfig()
	if err != nil {
		return Config{}, err
	}

	statsConfig, err := buildStatsConfig()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{Port: getEnv("SERVER_PORT", "8080")},
		Storage: StorageConfig{
			Type:     storageType,
			Redis:    redisConfig,
			Postgres: PostgresConfig{DSN: strings.TrimSpace(os.Getenv("POSTGRES_DSN"))},
		},
		RateLimiter: rateLimiterConfig,
		Likes:       likesConfig,
		Stats:       statsConfig,
	}

	if cfg.Storage.Type == "postgres" && cfg.Storage.Postgres.DSN == "" {
		return Config{}, fmt.Errorf("POSTGRES_DSN is required when STORAGE_TYPE=postgres")
	}

	return cfg, nil
}

func buildRedisConfig() (RedisConfig, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return RedisConfig{
		Host:     host,
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}

func buildRateLimiterConfig() (RateLimiterConfig, error) {
	requests, err := strconv.ParseInt(getEnv("RATE_LIMIT_REQUESTS", "5"), 10, 64)
	if err != nil {
		return RateLimiterConfig{}, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}
	windowSeconds, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil {
		return RateLimiterConfig{}, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}
	if requests <= 0 || windowSeconds <= 0 {
		return RateLimiterConfig{}, fmt.Errorf("rate limit values must be positive")
	}

	return RateLimiterConfig{
		Rule: domain.RateLimitRule{
			Requests: requests,
			Window:   time.Duration(windowSeconds) * time.Second,
		},
	}, nil
}

func buildLikesConfig() (LikesConfig, error) {
	ttlHours, err := strconv.Atoi(getEnv("LIKE_TTL_HOURS", "24"))
	if err != nil {
		return LikesConfig{}, fmt.Errorf("invalid LIKE_TTL_HOURS: %w", err)
	}
	if ttlHours <= 0 {
		return LikesConfig{}, fmt.Errorf("LIKE_TTL_HOURS must be positive")
	}

	return LikesConfig{TTL: time.Duration(ttlHours) * time.Hour}, nil
}

func buildStatsConfig() (StatsConfig, error) {
	enabled, err := strconv.ParseBool(getEnv("STATS_ENABLED", "false"))
	if err != nil {
		return StatsConfig{}, fmt.Errorf("invalid STATS_ENABLED: %w", err)
	}
	ttlHours, err := strconv.Atoi(getEnv("STATS_TTL_HOURS", "24"))
	if err != nil {
		return StatsConfig{}, fmt.Errorf("invalid STATS_TTL_HOURS: %w", err)
	}

	return StatsConfig{
		Enabled: enabled,
		Prefix:  getEnv("STATS_PREFIX", "likes:stats"),
		TTL:     time.Duration(ttlHours) * time.Hour,
	}, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
