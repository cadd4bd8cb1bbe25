package driving

import "github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, config file, then environment.
	Get() (*domain.AppSettings, error)

	// Set persists one dotted key (e.g. "retrieval.top_n") to the config file.
	Set(key, value string) error

	// Keys returns every settable key.
	Keys() []string

	// Validate checks the effective settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
