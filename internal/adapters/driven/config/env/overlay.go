// Package env overlays settings from the process environment and .env files.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.SettingsOverlay = (*Overlay)(nil)

// Provider-wide API key variables used when no LLM_/EMBEDDING_/RERANK_ key is set.
const (
	openAIKeyVar    = "OPENAI_API_KEY"
	anthropicKeyVar = "ANTHROPIC_API_KEY"
)

// Overlay applies environment variables on top of file settings.
// Only variables that are set override a field.
type Overlay struct {
	lookup func(string) (string, bool)
	envMap map[string]string
}

// NewOverlay loads the given .env files, if present, into the process
// environment and returns an overlay over it. Variables already set in
// the environment win over .env values.
func NewOverlay(envFiles ...string) (*Overlay, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return &Overlay{lookup: os.LookupEnv}, nil
}

// NewMapOverlay returns an overlay over a fixed set of variables.
func NewMapOverlay(vars map[string]string) *Overlay {
	return &Overlay{
		lookup: func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		},
		envMap: vars,
	}
}

// Apply parses the environment into settings.
func (o *Overlay) Apply(settings *domain.AppSettings) error {
	opts := env.Options{}
	if o.envMap != nil {
		opts.Environment = o.envMap
	}
	if err := env.ParseWithOptions(settings, opts); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	settings.LLM.APIKey = o.fallbackKey(settings.LLM.APIKey, settings.LLM.Provider)
	settings.Embedding.APIKey = o.fallbackKey(settings.Embedding.APIKey, settings.Embedding.Provider)
	if settings.Rerank.Provider == domain.RerankProviderLLM && settings.Rerank.APIKey == "" {
		settings.Rerank.APIKey = settings.LLM.APIKey
	}
	return nil
}

// fallbackKey returns key, or the provider-wide key when key is empty.
func (o *Overlay) fallbackKey(key string, provider domain.AIProvider) string {
	if key != "" {
		return key
	}
	var name string
	switch provider {
	case domain.AIProviderOpenAI:
		name = openAIKeyVar
	case domain.AIProviderAnthropic:
		name = anthropicKeyVar
	default:
		return key
	}
	if v, ok := o.lookup(name); ok {
		return v
	}
	return key
}
