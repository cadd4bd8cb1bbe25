package driven

import "github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"

// AIConfigValidator checks provider settings by contacting the provider.
// Both methods accept nil and unconfigured settings as valid.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
