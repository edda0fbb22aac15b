package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	LogLevel slog.Level

	// Azure OpenAI
	APIKey              string
	APIKeyParam         string
	Endpoint            string
	Deployment          string
	APIVersion          string
	MaxCompletionTokens int
	Temperature         float64

	// Persona
	PersonaFile string
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:                getEnvOrDefault("PORT", "8000"),
		LogLevel:            parseLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		APIKey:              strings.TrimSpace(os.Getenv("AZURE_API_KEY")),
		APIKeyParam:         strings.TrimSpace(os.Getenv("AZURE_API_KEY_PARAM")),
		Endpoint:            strings.TrimSpace(os.Getenv("AZURE_ENDPOINT")),
		Deployment:          getEnvOrDefault("DEPLOYMENT_NAME", "gpt-4o"),
		APIVersion:          getEnvOrDefault("API_VERSION", "2024-08-01-preview"),
		MaxCompletionTokens: getEnvAsIntOrDefault("MAX_COMPLETION_TOKENS", 500),
		Temperature:         getEnvAsFloatOrDefault("TEMPERATURE", 1.0),
		PersonaFile:         strings.TrimSpace(os.Getenv("PERSONA_FILE")),
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%s", c.Port)
}

// Validate checks values that would make every request fail. A missing API
// key is not checked here; it is reported per request.
func (c Config) Validate() error {
	if c.Deployment == "" {
		return fmt.Errorf("DEPLOYMENT_NAME must not be empty")
	}
	if c.APIVersion == "" {
		return fmt.Errorf("API_VERSION must not be empty")
	}
	if c.MaxCompletionTokens <= 0 {
		return fmt.Errorf("MAX_COMPLETION_TOKENS must be positive, got %d", c.MaxCompletionTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("TEMPERATURE must be within [0, 2], got %v", c.Temperature)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
