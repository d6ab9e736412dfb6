package config

import (
	"os"
	"strconv"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

// ConfigMerger combines configuration sources with later sources winning
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if theme, ok := flags["theme"].(string); ok && theme != "" {
		result.Theme.Name = theme
	}

	if noBrowser, ok := flags["no-browser"].(bool); ok {
		result.Browser.AutoOpen = !noBrowser
	}

	if watch, ok := flags["watch"].(bool); ok && watch {
		// Watching is always available; the flag only forces it on
		if result.Watcher.IntervalMs == 0 {
			result.Watcher.IntervalMs = 200
		}
	}

	if lab, ok := flags["lab"].(bool); ok && lab {
		result.Lab.Enabled = true
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	if host := os.Getenv("PROMPTDECK_HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv("PROMPTDECK_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			result.Server.Port = port
		}
	}

	if theme := os.Getenv("PROMPTDECK_THEME"); theme != "" {
		result.Theme.Name = theme
	}

	if noBrowserStr := os.Getenv("PROMPTDECK_NO_BROWSER"); noBrowserStr != "" {
		if noBrowser, err := strconv.ParseBool(noBrowserStr); err == nil {
			result.Browser.AutoOpen = !noBrowser
		}
	}

	if browser := os.Getenv("PROMPTDECK_BROWSER"); browser != "" {
		result.Browser.Browser = browser
	}

	if intervalStr := os.Getenv("PROMPTDECK_WATCH_INTERVAL"); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			result.Watcher.IntervalMs = interval
		}
	}

	if debounceStr := os.Getenv("PROMPTDECK_WATCH_DEBOUNCE"); debounceStr != "" {
		if debounce, err := strconv.Atoi(debounceStr); err == nil && debounce >= 0 {
			result.Watcher.DebounceMs = debounce
		}
	}

	if enabledStr := os.Getenv("PROMPTDECK_LAB_ENABLED"); enabledStr != "" {
		if enabled, err := strconv.ParseBool(enabledStr); err == nil {
			result.Lab.Enabled = enabled
		}
	}

	if baseURL := os.Getenv("PROMPTDECK_LAB_BASE_URL"); baseURL != "" {
		result.Lab.BaseURL = baseURL
	}

	if model := os.Getenv("PROMPTDECK_LAB_MODEL"); model != "" {
		result.Lab.Model = model
	}

	if author := os.Getenv("PROMPTDECK_AUTHOR"); author != "" {
		result.Metadata.Author = author
	}

	if email := os.Getenv("PROMPTDECK_EMAIL"); email != "" {
		result.Metadata.Email = email
	}

	if company := os.Getenv("PROMPTDECK_COMPANY"); company != "" {
		result.Metadata.Company = company
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = make([]string, len(source.Server.CORSOrigins))
		copy(target.Server.CORSOrigins, source.Server.CORSOrigins)
	}

	// Theme config
	if source.Theme.Name != "" {
		target.Theme.Name = source.Theme.Name
	}

	// Browser config
	if source.Browser.Browser != "" {
		target.Browser.Browser = source.Browser.Browser
	}
	// TOML cannot distinguish false from unset, so booleans always merge
	target.Browser.AutoOpen = source.Browser.AutoOpen

	// Watcher config
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}
	if source.Watcher.MaxRetries != 0 {
		target.Watcher.MaxRetries = source.Watcher.MaxRetries
	}
	if source.Watcher.RetryDelayMs != 0 {
		target.Watcher.RetryDelayMs = source.Watcher.RetryDelayMs
	}

	// Lab config
	target.Lab.Enabled = source.Lab.Enabled
	if source.Lab.BaseURL != "" {
		target.Lab.BaseURL = source.Lab.BaseURL
	}
	if source.Lab.Model != "" {
		target.Lab.Model = source.Lab.Model
	}
	if source.Lab.EmbeddingModel != "" {
		target.Lab.EmbeddingModel = source.Lab.EmbeddingModel
	}
	if source.Lab.SimilarityThreshold != 0 {
		target.Lab.SimilarityThreshold = source.Lab.SimilarityThreshold
	}
	if source.Lab.F1Threshold != 0 {
		target.Lab.F1Threshold = source.Lab.F1Threshold
	}

	// Metadata config
	if source.Metadata.Author != "" {
		target.Metadata.Author = source.Metadata.Author
	}
	if source.Metadata.Email != "" {
		target.Metadata.Email = source.Metadata.Email
	}
	if source.Metadata.Company != "" {
		target.Metadata.Company = source.Metadata.Company
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
	target.Logging.Verbose = source.Logging.Verbose
	target.Logging.JSONFormat = source.Logging.JSONFormat
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := &entities.Config{
		Server:   src.Server,
		Theme:    src.Theme,
		Browser:  src.Browser,
		Watcher:  src.Watcher,
		Lab:      src.Lab,
		Metadata: src.Metadata,
		Logging:  src.Logging,
	}

	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}

	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
