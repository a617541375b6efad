// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Base directory for the cache database (always absolute)
	RoboAPIURL     string // Base URL of the robo scoring/portfolio backend
	FinnhubAPIURL  string // Base URL of the Finnhub symbol search API
	FinnhubAPIKey  string // Finnhub API token (empty disables symbol search)
	LogLevel       string
	Port           int
	DevMode        bool
	IncomeStep     bool          // Whether new sessions include the annual income step
	SessionTTL     time.Duration // Idle time after which a session is expired
	DefaultIncome  int64         // Annual income pre-filled on the income step
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic:
	// ADVISOR_DATA_DIR env var, falling back to ./data, always absolute.
	dataDir := getEnv("ADVISOR_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:       absDataDir,
		Port:          getEnvAsInt("ADVISOR_PORT", 8080),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		RoboAPIURL:    getEnv("ROBO_API_URL", "http://localhost:8000"),
		FinnhubAPIURL: getEnv("FINNHUB_API_URL", "https://finnhub.io/api/v1"),
		FinnhubAPIKey: getEnv("FINNHUB_API_KEY", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		IncomeStep:    getEnvAsBool("INCOME_STEP", true),
		SessionTTL:    time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		DefaultIncome: int64(getEnvAsFloat("DEFAULT_ANNUAL_INCOME", 0)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.RoboAPIURL == "" {
		return fmt.Errorf("ROBO_API_URL must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	// Note: Finnhub credentials optional - symbol search is disabled without them
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
