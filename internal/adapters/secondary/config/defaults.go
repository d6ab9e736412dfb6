package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
)

// DefaultLabBaseURL is the OpenAI-compatible endpoint the lab talks to.
const DefaultLabBaseURL = "https://api.deepseek.com"

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	config := &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("PROMPTDECK_HOST", "localhost"),
			Port:            getEnvIntOrDefault("PROMPTDECK_PORT", 1000),
			ReadTimeout:     getEnvIntOrDefault("PROMPTDECK_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("PROMPTDECK_WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault("PROMPTDECK_SHUTDOWN_TIMEOUT", 5),
			Environment:     getEnvOrDefault("PROMPTDECK_ENV", "development"),
			CORSOrigins: getEnvSliceOrDefault("PROMPTDECK_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:8080",
				"http://127.0.0.1:8080",
			}),
		},
		Theme: entities.ThemeConfig{
			Name: getEnvOrDefault("PROMPTDECK_THEME", "default"),
		},
		Browser: entities.BrowserConfig{
			AutoOpen: getEnvBoolOrDefault("PROMPTDECK_BROWSER_AUTO_OPEN", true),
			Browser:  getEnvOrDefault("PROMPTDECK_BROWSER", "default"),
		},
		Watcher: entities.WatcherConfig{
			IntervalMs:   getEnvIntOrDefault("PROMPTDECK_WATCH_INTERVAL", 200),
			DebounceMs:   getEnvIntOrDefault("PROMPTDECK_WATCH_DEBOUNCE", 500),
			MaxRetries:   3,
			RetryDelayMs: 100,
		},
		Lab: entities.LabConfig{
			Enabled:             getEnvBoolOrDefault("PROMPTDECK_LAB_ENABLED", false),
			BaseURL:             getEnvOrDefault("PROMPTDECK_LAB_BASE_URL", DefaultLabBaseURL),
			Model:               getEnvOrDefault("PROMPTDECK_LAB_MODEL", "deepseek-chat"),
			EmbeddingModel:      getEnvOrDefault("PROMPTDECK_LAB_EMBEDDING_MODEL", "text-embedding-3-small"),
			SimilarityThreshold: 0.80,
			F1Threshold:         0.50,
		},
		Metadata: entities.Metadata{
			Author:  getEnvOrDefault("PROMPTDECK_AUTHOR", ""),
			Email:   getEnvOrDefault("PROMPTDECK_EMAIL", ""),
			Company: getEnvOrDefault("PROMPTDECK_COMPANY", ""),
		},
		Logging: entities.LoggingConfig{
			Level:      getEnvOrDefault("PROMPTDECK_LOG_LEVEL", "info"),
			Verbose:    getEnvBoolOrDefault("PROMPTDECK_LOG_VERBOSE", false),
			JSONFormat: getEnvBoolOrDefault("PROMPTDECK_LOG_JSON", false),
			File:       getEnvOrDefault("PROMPTDECK_LOG_FILE", ""),
		},
	}

	return config
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns environment variable as comma-separated slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
