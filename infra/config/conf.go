// Package config loads the demo server configuration from the
// environment. Gateway credentials are read per gateway with a
// NAME_KEY convention, e.g. PAYTR_MERCHANT_ID becomes merchant_id.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/armagangokce/arpay-go/gateway"
)

// AppConfig represents the application configuration
type AppConfig struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"required,oneof=development production"`
	LogLevel    string `validate:"required,oneof=debug info warn error"`
	Validator   *validator.Validate `validate:"-"`
}

var instance *AppConfig

// App returns the application configuration singleton
func App() *AppConfig {
	if instance == nil {
		instance = &AppConfig{
			Port:        GetEnv("APP_PORT", "9999"),
			Environment: GetEnv("APP_ENV", "development"),
			LogLevel:    GetEnv("LOG_LEVEL", "info"),
			Validator:   validator.New(),
		}
	}
	return instance
}

// Validate checks the loaded configuration against its constraints
func (c *AppConfig) Validate() error {
	return c.Validator.Struct(c)
}

// Development reports whether the server runs in development mode
func (c *AppConfig) Development() bool {
	return c.Environment == "development"
}

// GatewayConfig collects the credentials for a gateway from the
// environment. PAYTR_MERCHANT_ID=... yields {"merchant_id": "..."}.
func GatewayConfig(name string) gateway.Config {
	prefix := strings.ToUpper(name) + "_"
	cfg := gateway.Config{}

	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		cfg[strings.ToLower(strings.TrimPrefix(key, prefix))] = value
	}

	return cfg
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
