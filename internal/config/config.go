package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	JWTSecret   string
	Location    *time.Location
	MetricsUser string
	MetricsPass string

	BadgeTimeout   time.Duration
	CatalogRefresh time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the environment, after merging a .env file when one exists.
func Load() (*Config, error) {
	return load(true)
}

// LoadDB is Load for tools that never verify tokens, such as badgectl.
func LoadDB() (*Config, error) {
	return load(false)
}

func load(requireJWT bool) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "3333"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("SUPABASE_JWT_SECRET"),
		MetricsUser:    os.Getenv("METRICS_USER"),
		MetricsPass:    os.Getenv("METRICS_PASS"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if requireJWT && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET environment variable is not set")
	}

	var err error
	cfg.Location, err = loadLocation(os.Getenv("APP_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.BadgeTimeout, err = time.ParseDuration(getEnv("BADGE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BADGE_TIMEOUT: %w", err)
	}
	cfg.CatalogRefresh, err = time.ParseDuration(getEnv("CATALOG_REFRESH", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_REFRESH: %w", err)
	}
	cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	if minConns > maxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", minConns, maxConns)
	}
	cfg.DBMaxConns = int32(maxConns)
	cfg.DBMinConns = int32(minConns)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
