// Package domain defines the core business entities for supportdesk.
//
// This package is the innermost layer of the hexagonal architecture and
// defines the fundamental types:
//
//   - Message, Thread: conversation state routed between agents
//   - Category: the routing decision for one user turn
//   - Document, Chunk: ingested policy text
//   - Customer, Product, Ticket: relational support records
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
