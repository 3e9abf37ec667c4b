package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External sources
	Holiday HolidayConfig
	Pool    PoolConfig

	// Calendar cache
	Calendar CalendarConfig

	// SourcesFile points to the upstream endpoint registry (YAML, optional)
	SourcesFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// HolidayConfig holds the holiday calendar source configuration
type HolidayConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PoolConfig holds the limit-up pool source configuration
type PoolConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec int
}

// CalendarConfig controls the calendar cache
type CalendarConfig struct {
	CacheTTL time.Duration // L2 (redis) TTL, 0이면 L2 미사용

	// RefreshInterval expires the in-process copy so another process's sync
	// (scheduler, CLI) becomes visible. 0 keeps it until restart
	RefreshInterval time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Holiday: HolidayConfig{
			BaseURL: getEnv("HOLIDAY_BASE_URL", "https://timor.tech"),
			Timeout: getEnvAsDuration("HOLIDAY_TIMEOUT", "15s"),
		},

		Pool: PoolConfig{
			BaseURL:    getEnv("POOL_BASE_URL", "https://flash-api.xuangubao.com.cn"),
			Timeout:    getEnvAsDuration("POOL_TIMEOUT", "15s"),
			RatePerSec: getEnvAsInt("POOL_RATE_PER_SEC", 2),
		},

		Calendar: CalendarConfig{
			CacheTTL:        getEnvAsDuration("CALENDAR_CACHE_TTL", "24h"),
			RefreshInterval: getEnvAsDuration("CALENDAR_REFRESH_INTERVAL", "1h"),
		},

		SourcesFile: getEnv("SOURCES_FILE", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Holiday.Timeout <= 0 {
		return fmt.Errorf("HOLIDAY_TIMEOUT must be positive")
	}

	if c.Pool.RatePerSec <= 0 {
		return fmt.Errorf("POOL_RATE_PER_SEC must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
