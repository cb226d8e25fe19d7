// Package config loads service settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	HTTPAddr         string
	MetricsNamespace string
	PostgresDSN      string
	PostgresMaxConns int32 // 0 keeps the pgxpool default
	ClickhouseDSN    string
	UseMemory        bool
	RandomSeed       uint64 // 0 seeds from the clock
	ShutdownTimeout  time.Duration
	LogLevel         string
	LogPretty        bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:         getEnv("SCM_HTTP_ADDR", ":8080"),
		MetricsNamespace: getEnv("SCM_METRICS_NAMESPACE", "scm_simulation"),
		PostgresDSN:      getEnv("POSTGRES_DSN", ""),
		PostgresMaxConns: int32(getEnvAsInt("POSTGRES_MAX_CONNS", 0)),
		ClickhouseDSN:    getEnv("CLICKHOUSE_DSN", ""),
		UseMemory:        getEnvAsBool("SCM_USE_MEMORY", true),
		RandomSeed:       getEnvAsUint64("SCM_RANDOM_SEED", 0),
		ShutdownTimeout:  time.Duration(getEnvAsInt("SCM_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogPretty:        getEnvAsBool("LOG_PRETTY", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("SCM_HTTP_ADDR is required")
	}
	if !c.UseMemory && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required when SCM_USE_MEMORY is false")
	}
	if c.PostgresMaxConns < 0 {
		return fmt.Errorf("POSTGRES_MAX_CONNS must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: got %q", c.LogLevel)
	}
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

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
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
