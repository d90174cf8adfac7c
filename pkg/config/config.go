// Package config provides configuration management for the reconciliation
// service. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Server ServerConfig
	Ledger LedgerConfig
	Debug  bool
}

// ServerConfig represents the HTTP server configuration.
type ServerConfig struct {
	Port string
}

// LedgerConfig represents storage and accounting data configuration.
type LedgerConfig struct {
	// DBPath is the sqlite ledger database.
	DBPath string
	// SnapshotPath is the bbolt proposal snapshot database.
	SnapshotPath string
	// CurrenciesPath is the YAML currency and rate table.
	CurrenciesPath string
	// ModelsPath is the YAML reconcile model configuration.
	ModelsPath string
}

// Load loads configuration from environment variables.
// It automatically loads a .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Ledger: LedgerConfig{
			DBPath:         getEnvOrDefault("LEDGER_DB_PATH", "./data/ledger.db"),
			SnapshotPath:   getEnvOrDefault("SNAPSHOT_DB_PATH", "./data/proposals.db"),
			CurrenciesPath: getEnvOrDefault("CURRENCIES_PATH", "./config/currencies.yaml"),
			ModelsPath:     os.Getenv("MODELS_PATH"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}
	return config, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	var missing []string
	if c.Ledger.DBPath == "" {
		missing = append(missing, "LEDGER_DB_PATH")
	}
	if c.Ledger.SnapshotPath == "" {
		missing = append(missing, "SNAPSHOT_DB_PATH")
	}
	if c.Ledger.CurrenciesPath == "" {
		missing = append(missing, "CURRENCIES_PATH")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}
	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default
// value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
