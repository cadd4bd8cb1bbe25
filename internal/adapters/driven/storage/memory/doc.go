// Package memory provides in-memory implementations of the driven ports.
//
// The vector index and thread store back production runs; the chunk store
// and config store are used by tests and ephemeral sessions.
package memory
