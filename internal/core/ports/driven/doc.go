// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - LLMService: Chat model used by the router and every specialist agent
//   - ChunkStore: Policy document and chunk persistence
//   - LexicalIndex: BM25 keyword search over chunks
//   - SupportStore: Relational customer, product and ticket data
//   - ThreadStore: Conversation memory keyed by thread id
//   - ConfigStore: Application configuration
//   - Normaliser, PostProcessorPipeline: Ingestion of policy files
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, dense retrieval is disabled.
//   - VectorIndex: Cosine similarity search. Only used when EmbeddingService is configured.
//   - Reranker: Pairwise relevance scoring. Without it, fused order is final.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
