// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/money"
)

type Config struct {
	// Web Server
	Port           int
	AllowedOrigins []string

	// Database
	DBPath string

	// Logging
	LogLevel string

	// Ledger
	DefaultCurrency string
	Tolerance       calculator.Tolerance
}

// Load reads the configuration. Values in a .env file in the working
// directory are used for variables not already set.
func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:          getEnvDefault("DB_PATH", "./data/ledger.db"),
		LogLevel:        getEnvDefault("LOG_LEVEL", "info"),
		DefaultCurrency: getEnvDefault("DEFAULT_CURRENCY", "INR"),
		AllowedOrigins:  strings.Split(getEnvDefault("CORS_ORIGINS", "*"), ","),
	}

	port, err := strconv.Atoi(getEnvDefault("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT must be a TCP port number, got %q", os.Getenv("PORT"))
	}
	cfg.Port = port

	if _, err := money.LookupCurrency(cfg.DefaultCurrency); err != nil {
		return nil, fmt.Errorf("DEFAULT_CURRENCY: %w", err)
	}

	minor, err := strconv.ParseInt(getEnvDefault("TOLERANCE_MINOR", "1"), 10, 64)
	if err != nil || minor < 0 {
		return nil, fmt.Errorf("TOLERANCE_MINOR must be a non-negative integer, got %q", os.Getenv("TOLERANCE_MINOR"))
	}
	percent, err := decimal.NewFromString(getEnvDefault("PERCENT_TOLERANCE", "0.1"))
	if err != nil || percent.IsNegative() {
		return nil, fmt.Errorf("PERCENT_TOLERANCE must be a non-negative decimal, got %q", os.Getenv("PERCENT_TOLERANCE"))
	}
	cfg.Tolerance = calculator.Tolerance{Minor: money.Amount(minor), Percent: percent}

	return cfg, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
