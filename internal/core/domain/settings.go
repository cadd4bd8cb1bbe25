package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or chat.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// RerankProvider selects the pairwise relevance model used by the retriever.
type RerankProvider string

// Available rerank providers.
const (
	// RerankProviderNone disables reranking.
	RerankProviderNone RerankProvider = "none"

	// RerankProviderLLM scores pairs with the chat model.
	RerankProviderLLM RerankProvider = "llm"

	// RerankProviderRemote calls a cross-encoder /rerank endpoint.
	RerankProviderRemote RerankProvider = "remote"
)

// IsValid returns true if the rerank provider is recognised.
func (p RerankProvider) IsValid() bool {
	switch p {
	case RerankProviderNone, RerankProviderLLM, RerankProviderRemote:
		return true
	default:
		return false
	}
}

// ThreadBackend selects where conversation memory lives.
type ThreadBackend string

// Available thread backends.
const (
	ThreadBackendMemory ThreadBackend = "memory"
	ThreadBackendRedis  ThreadBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b ThreadBackend) IsValid() bool {
	return b == ThreadBackendMemory || b == ThreadBackendRedis
}

// LLMSettings holds chat model configuration.
type LLMSettings struct {
	Provider    AIProvider    `env:"PROVIDER"`
	Model       string        `env:"MODEL"`
	BaseURL     string        `env:"BASE_URL"`
	APIKey      string        `env:"API_KEY"`
	Temperature float64       `env:"TEMPERATURE"`
	MaxTokens   int           `env:"MAX_TOKENS"`
	Timeout     time.Duration `env:"TIMEOUT"`
}

// IsConfigured returns true if the chat model provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider   AIProvider    `env:"PROVIDER"`
	Model      string        `env:"MODEL"`
	BaseURL    string        `env:"BASE_URL"`
	APIKey     string        `env:"API_KEY"`
	Dimensions int           `env:"DIMENSIONS"`
	CacheTTL   time.Duration `env:"CACHE_TTL"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// RerankSettings holds reranker configuration.
type RerankSettings struct {
	Provider RerankProvider `env:"PROVIDER"`
	BaseURL  string         `env:"BASE_URL"`
	Model    string         `env:"MODEL"`
	APIKey   string         `env:"API_KEY"`
}

// RetrievalSettings tunes the hybrid retriever and the ingestion splitter.
type RetrievalSettings struct {
	DenseK        int     `env:"DENSE_K"`
	LexicalK      int     `env:"LEXICAL_K"`
	TopN          int     `env:"TOP_N"`
	LexicalWeight float64 `env:"LEXICAL_WEIGHT"`
	DenseWeight   float64 `env:"DENSE_WEIGHT"`
	ChunkSize     int     `env:"CHUNK_SIZE"`
	ChunkOverlap  int     `env:"CHUNK_OVERLAP"`
}

// AgentSettings bounds the specialist tool loops.
type AgentSettings struct {
	// RAGMaxRetrievals caps retrieval calls per turn.
	RAGMaxRetrievals int `env:"RAG_MAX_RETRIEVALS"`

	// SQLMaxQueries caps run_query calls per turn.
	SQLMaxQueries int `env:"SQL_MAX_QUERIES"`

	// MaxSteps caps model calls in a single tool loop.
	MaxSteps int `env:"MAX_STEPS"`
}

// StorageSettings locates the stores.
type StorageSettings struct {
	KnowledgeDBPath string        `env:"KNOWLEDGE_DB_PATH"`
	SupportDBPath   string        `env:"SQLITE_DB_PATH"`
	PolicyDir       string        `env:"POLICY_DIR"`
	ThreadBackend   ThreadBackend `env:"THREAD_BACKEND"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB"`
}

// TransportSettings tunes outbound model calls.
type TransportSettings struct {
	// RetryAttempts is the total number of attempts per call; 1 disables retry.
	RetryAttempts uint `env:"MODEL_RETRY_ATTEMPTS"`

	// RetryDelay is the initial backoff between attempts.
	RetryDelay time.Duration `env:"MODEL_RETRY_DELAY"`

	// RequestsPerMinute limits model calls; 0 is unlimited.
	RequestsPerMinute int `env:"MODEL_REQUESTS_PER_MINUTE"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM       LLMSettings       `envPrefix:"LLM_"`
	Embedding EmbeddingSettings `envPrefix:"EMBEDDING_"`
	Rerank    RerankSettings    `envPrefix:"RERANK_"`
	Retrieval RetrievalSettings `envPrefix:"RETRIEVAL_"`
	Agents    AgentSettings     `envPrefix:"AGENT_"`
	Storage   StorageSettings
	Transport TransportSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:    AIProviderAnthropic,
			Model:       DefaultLLMModels()[AIProviderAnthropic],
			Temperature: 0,
			MaxTokens:   1024,
			Timeout:     120 * time.Second,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      DefaultEmbeddingModels()[AIProviderOllama],
			BaseURL:    "http://localhost:11434",
			Dimensions: EmbeddingDimensions()[DefaultEmbeddingModels()[AIProviderOllama]],
			CacheTTL:   10 * time.Minute,
		},
		Rerank: RerankSettings{
			Provider: RerankProviderLLM,
		},
		Retrieval: RetrievalSettings{
			DenseK:        20,
			LexicalK:      20,
			TopN:          5,
			LexicalWeight: 0.4,
			DenseWeight:   0.6,
			ChunkSize:     512,
			ChunkOverlap:  50,
		},
		Agents: AgentSettings{
			RAGMaxRetrievals: 2,
			SQLMaxQueries:    8,
			MaxSteps:         10,
		},
		Storage: StorageSettings{
			KnowledgeDBPath: "data/knowledge.db",
			SupportDBPath:   "data/customer_support.db",
			PolicyDir:       "data/policies",
			ThreadBackend:   ThreadBackendMemory,
		},
		Transport: TransportSettings{
			RetryAttempts: 1,
			RetryDelay:    500 * time.Millisecond,
		},
	}
}

// Validate checks settings for internal consistency.
func (s *AppSettings) Validate() error {
	r := s.Retrieval
	switch {
	case r.LexicalWeight < 0 || r.DenseWeight < 0:
		return fmt.Errorf("%w: fusion weights must be non-negative", ErrInvalidInput)
	case r.LexicalWeight == 0 && r.DenseWeight == 0:
		return fmt.Errorf("%w: fusion weights cannot both be zero", ErrInvalidInput)
	case r.TopN <= 0:
		return fmt.Errorf("%w: retrieval top_n must be positive", ErrInvalidInput)
	case r.DenseK <= 0 || r.LexicalK <= 0:
		return fmt.Errorf("%w: retrieval candidate counts must be positive", ErrInvalidInput)
	case r.ChunkSize <= 0 || r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize:
		return fmt.Errorf("%w: chunk overlap must be smaller than chunk size", ErrInvalidInput)
	}

	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidInput, s.LLM.Provider)
	}
	if s.Embedding.Provider != "" && !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if !s.Rerank.Provider.IsValid() {
		return fmt.Errorf("%w: unknown rerank provider %q", ErrInvalidInput, s.Rerank.Provider)
	}
	if s.Rerank.Provider == RerankProviderRemote && s.Rerank.BaseURL == "" {
		return fmt.Errorf("%w: remote reranker needs a base url", ErrInvalidInput)
	}
	if !s.Storage.ThreadBackend.IsValid() {
		return fmt.Errorf("%w: unknown thread backend %q", ErrInvalidInput, s.Storage.ThreadBackend)
	}
	if s.Storage.ThreadBackend == ThreadBackendRedis && s.Storage.RedisAddr == "" {
		return fmt.Errorf("%w: redis thread backend needs an address", ErrInvalidInput)
	}
	if s.Agents.RAGMaxRetrievals <= 0 || s.Agents.SQLMaxQueries <= 0 || s.Agents.MaxSteps <= 0 {
		return fmt.Errorf("%w: agent budgets must be positive", ErrInvalidInput)
	}
	return nil
}

// AllLLMProviders returns providers that support chat.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each chat provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-sonnet-4-5-20250929",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
