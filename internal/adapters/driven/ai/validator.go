package ai

import (
	"context"
	"fmt"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations by pinging them.
type ConfigValidator struct {
	transport domain.TransportSettings
}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator(transport domain.TransportSettings) *ConfigValidator {
	return &ConfigValidator{transport: transport}
}

// ValidateEmbedding builds the embedding service and pings it.
// An unconfigured provider is not an error.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil {
		return nil
	}
	svc, err := NewEmbeddingService(*config, v.transport)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLM builds the chat model and pings it.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil {
		return nil
	}
	svc, err := NewLLMService(*config, v.transport)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return nil
}
