package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Single source of truth: every environment variable is read in this package
// and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External services
	EarthEngine EarthEngineConfig
	Catalog     CatalogConfig

	// Analysis defaults
	Analysis AnalysisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// EarthEngineConfig holds the remote geospatial platform configuration.
type EarthEngineConfig struct {
	BaseURL        string
	Project        string
	AccessToken    string
	WatershedAsset string
	SnowCollection string

	// Requests per second allowed against the platform
	RateLimit float64
}

// CatalogConfig holds the public dataset catalog configuration.
type CatalogConfig struct {
	BaseURL string
}

// AnalysisConfig holds analysis defaults and limits.
type AnalysisConfig struct {
	CacheTTL        time.Duration
	ReportRetention time.Duration
	DefaultBufferM  float64
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
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
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// External services
		EarthEngine: EarthEngineConfig{
			BaseURL:        getEnv("EE_BASE_URL", "https://earthengine.googleapis.com"),
			Project:        getEnv("EE_PROJECT", "ee-koppengeiger"),
			AccessToken:    getEnv("EE_ACCESS_TOKEN", ""),
			WatershedAsset: getEnv("EE_WATERSHED_ASSET", "projects/ee-koppengeiger/assets/merged_lumped"),
			SnowCollection: getEnv("EE_SNOW_COLLECTION", "MODIS/061/MOD10A1"),
			RateLimit:      getEnvAsFloat("EE_RATE_LIMIT", 5.0),
		},

		Catalog: CatalogConfig{
			BaseURL: getEnv("CATALOG_BASE_URL", "https://developers.google.com/earth-engine/datasets/catalog"),
		},

		// Analysis
		Analysis: AnalysisConfig{
			CacheTTL:        getEnvAsDuration("ANALYSIS_CACHE_TTL", "1h"),
			ReportRetention: getEnvAsDuration("REPORT_RETENTION", "2160h"), // 90 days
			DefaultBufferM:  getEnvAsFloat("ANALYSIS_DEFAULT_BUFFER_M", 1000),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.EarthEngine.Project == "" {
		return fmt.Errorf("EE_PROJECT is required")
	}

	if c.Analysis.DefaultBufferM < 500 || c.Analysis.DefaultBufferM > 5000 {
		return fmt.Errorf("ANALYSIS_DEFAULT_BUFFER_M must be between 500 and 5000")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
