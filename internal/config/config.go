package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime settings, read once at startup from the
// environment.
type Config struct {
	DatabaseURL string
	Port        int

	JWTSecret string
	// JWKSURL, when set, switches token verification from the HMAC secret
	// to RS256 keys fetched from this endpoint.
	JWKSURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	ReportBucket   string

	StatsRefreshEnabled bool
}

// Load reads configuration from environment variables. DATABASE_URL is the
// only hard requirement; everything else has a development default.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           8080,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWKSURL:        os.Getenv("JWKS_URL"),
		RedisAddr:      getEnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MinioEndpoint:  getEnvDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnvDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnvDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		ReportBucket:   getEnvDefault("REPORT_BUCKET", "attendance-reports"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.RedisDB = db
		}
	}

	cfg.StatsRefreshEnabled = os.Getenv("STATS_REFRESH_DISABLED") != "true"

	return cfg, nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
