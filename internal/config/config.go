package config

import (
	"os"
	"strconv"

	"tolninja/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Report   ReportConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings. An empty URL means
// the service runs with the in-memory store.
type DatabaseConfig struct {
	URL string
}

// EngineConfig holds Monte Carlo engine defaults
type EngineConfig struct {
	// NumSamples applies to stackups that do not set their own count;
	// 0 uses the engine default.
	NumSamples int
	// MaxRounds overrides the truncation round budget; 0 uses the engine
	// default.
	MaxRounds int
}

// ReportConfig holds report output settings
type ReportConfig struct {
	Dir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", ""),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Report: ReportConfig{
			Dir: getEnv("REPORT_DIR", "reports"),
		},
	}

	numSamples, err := getEnvInt("STACK_NUM_SAMPLES", 0)
	if err != nil {
		return nil, err
	}
	maxRounds, err := getEnvInt("STACK_MAX_ROUNDS", 0)
	if err != nil {
		return nil, err
	}
	if numSamples < 0 {
		return nil, errors.ConfigInvalid("STACK_NUM_SAMPLES must be positive")
	}
	if maxRounds < 0 {
		return nil, errors.ConfigInvalid("STACK_MAX_ROUNDS must be positive")
	}
	config.Engine = EngineConfig{NumSamples: numSamples, MaxRounds: maxRounds}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", key)
	}
	return parsed, nil
}
