// Package sqlite provides SQLite-backed implementations of driven ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Two independent databases are served:
//
//   - ChunkStore: ingested policy documents and chunks (knowledge.db)
//   - SupportStore: customers, products and tickets (customer_support.db)
//
// # Schema
//
// Each database has versioned migrations in migrations/<name>/, applied in
// order on open and recorded in schema_migrations.
//
// # Embeddings
//
// Chunk embeddings are stored as little-endian float32 BLOBs.
//
// # Read-only queries
//
// SupportStore.Query runs on a second connection opened with mode=ro and
// query_only, so the relational query tool cannot write even if a statement
// slips past its keyword guard.
package sqlite
