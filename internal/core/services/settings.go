package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// keyEmbedDims is consulted to decide whether dimensions follow the model.
const keyEmbedDims = "embedding.dimensions"

// settingFields maps config keys to pointers into AppSettings.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
func settingFields(s *domain.AppSettings) map[string]any {
	return map[string]any{
		"llm.provider":    &s.LLM.Provider,
		"llm.model":       &s.LLM.Model,
		"llm.base_url":    &s.LLM.BaseURL,
		"llm.api_key":     &s.LLM.APIKey,
		"llm.temperature": &s.LLM.Temperature,
		"llm.max_tokens":  &s.LLM.MaxTokens,
		"llm.timeout":     &s.LLM.Timeout,

		"embedding.provider":  &s.Embedding.Provider,
		"embedding.model":     &s.Embedding.Model,
		"embedding.base_url":  &s.Embedding.BaseURL,
		"embedding.api_key":   &s.Embedding.APIKey,
		keyEmbedDims:          &s.Embedding.Dimensions,
		"embedding.cache_ttl": &s.Embedding.CacheTTL,

		"rerank.provider": &s.Rerank.Provider,
		"rerank.base_url": &s.Rerank.BaseURL,
		"rerank.model":    &s.Rerank.Model,
		"rerank.api_key":  &s.Rerank.APIKey,

		"retrieval.dense_k":        &s.Retrieval.DenseK,
		"retrieval.lexical_k":      &s.Retrieval.LexicalK,
		"retrieval.top_n":          &s.Retrieval.TopN,
		"retrieval.lexical_weight": &s.Retrieval.LexicalWeight,
		"retrieval.dense_weight":   &s.Retrieval.DenseWeight,
		"retrieval.chunk_size":     &s.Retrieval.ChunkSize,
		"retrieval.chunk_overlap":  &s.Retrieval.ChunkOverlap,

		"agents.rag_max_retrievals": &s.Agents.RAGMaxRetrievals,
		"agents.sql_max_queries":    &s.Agents.SQLMaxQueries,
		"agents.max_steps":          &s.Agents.MaxSteps,

		"storage.knowledge_db_path": &s.Storage.KnowledgeDBPath,
		"storage.support_db_path":   &s.Storage.SupportDBPath,
		"storage.policy_dir":        &s.Storage.PolicyDir,
		"storage.thread_backend":    &s.Storage.ThreadBackend,
		"storage.redis_addr":        &s.Storage.RedisAddr,
		"storage.redis_password":    &s.Storage.RedisPassword,
		"storage.redis_db":          &s.Storage.RedisDB,

		"transport.retry_attempts":      &s.Transport.RetryAttempts,
		"transport.retry_delay":         &s.Transport.RetryDelay,
		"transport.requests_per_minute": &s.Transport.RequestsPerMinute,
	}
}

// SettingsService manages layered application settings:
// defaults, then the config file, then the overlay (environment).
type SettingsService struct {
	configStore driven.ConfigStore
	overlay     driven.SettingsOverlay
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// The overlay and aiValidator are optional.
func NewSettingsService(
	configStore driven.ConfigStore,
	overlay driven.SettingsOverlay,
	aiValidator driven.AIConfigValidator,
) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		overlay:     overlay,
		aiValidator: aiValidator,
	}
}

// Get returns the effective settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	if s.configStore != nil {
		for key, field := range settingFields(&settings) {
			val, ok := s.configStore.Get(key)
			if !ok {
				continue
			}
			if err := assignSetting(field, fmt.Sprint(val)); err != nil {
				return nil, fmt.Errorf("config %s: %w", key, err)
			}
		}
	}

	dimsFromFile := false
	if s.configStore != nil {
		_, dimsFromFile = s.configStore.Get(keyEmbedDims)
	}
	before := settings.Embedding.Dimensions

	if s.overlay != nil {
		if err := s.overlay.Apply(&settings); err != nil {
			return nil, fmt.Errorf("apply environment: %w", err)
		}
	}

	// Dimensions follow the model unless set explicitly.
	if !dimsFromFile && settings.Embedding.Dimensions == before {
		if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
			settings.Embedding.Dimensions = d
		}
	}

	return &settings, nil
}

// Set parses value for key, validates the result and persists it.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	field, ok := settingFields(settings)[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := assignSetting(field, value); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	return s.configStore.Set(key, storedValue(field))
}

// Keys returns every settable key in sorted order.
func (s *SettingsService) Keys() []string {
	var scratch domain.AppSettings
	fields := settingFields(&scratch)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// assignSetting parses raw into the field pointer.
func assignSetting(field any, raw string) error {
	raw = strings.TrimSpace(raw)
	switch p := field.(type) {
	case *string:
		*p = raw
	case *domain.AIProvider:
		*p = domain.AIProvider(strings.ToLower(raw))
	case *domain.RerankProvider:
		*p = domain.RerankProvider(strings.ToLower(raw))
	case *domain.ThreadBackend:
		*p = domain.ThreadBackend(strings.ToLower(raw))
	case *int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", raw)
		}
		*p = v
	case *uint:
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("expected a non-negative integer, got %q", raw)
		}
		*p = uint(v)
	case *float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("expected a number, got %q", raw)
		}
		*p = v
	case *time.Duration:
		v, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("expected a duration like 30s, got %q", raw)
		}
		*p = v
	default:
		return fmt.Errorf("unsupported setting type %T", field)
	}
	return nil
}

// storedValue returns the TOML-friendly value behind a field pointer.
func storedValue(field any) any {
	switch p := field.(type) {
	case *string:
		return *p
	case *domain.AIProvider:
		return string(*p)
	case *domain.RerankProvider:
		return string(*p)
	case *domain.ThreadBackend:
		return string(*p)
	case *int:
		return *p
	case *uint:
		return int(*p)
	case *float64:
		return *p
	case *time.Duration:
		return p.String()
	default:
		return nil
	}
}

// FormatSetting renders a field for display, masking secrets.
func FormatSetting(key string, settings *domain.AppSettings) string {
	field, ok := settingFields(settings)[key]
	if !ok {
		return ""
	}
	val := fmt.Sprint(storedValue(field))
	if strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "password") {
		if val == "" {
			return "(not set)"
		}
		return "********"
	}
	return val
}
