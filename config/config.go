package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"go-currency-converter/ratesapi"
)

// Config holds application configuration.
type Config struct {
	Port string

	// RatesAPIURL base url of the exchange rate API, the base currency code is appended
	RatesAPIURL string

	// HTTPTimeout for the outbound rates request, zero leaves it to the request context
	HTTPTimeout time.Duration

	// RefreshOnStart fetch the latest rates once at startup
	RefreshOnStart bool

	// LogLevel one of debug, info, warn, error
	LogLevel string
}

// Load loads configuration from environment variables and a .env file if present.
func Load() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("RATES_API_URL", ratesapi.ApiUrlBase)
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("REFRESH_ON_START", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("HTTP_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %v is negative", timeout)
	}

	level := v.GetString("LOG_LEVEL")
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q", level)
	}

	return &Config{
		Port:           v.GetString("PORT"),
		RatesAPIURL:    v.GetString("RATES_API_URL"),
		HTTPTimeout:    timeout,
		RefreshOnStart: v.GetBool("REFRESH_ON_START"),
		LogLevel:       level,
	}, nil
}
