// Package mcp exposes the support assistant as a Model Context Protocol server,
// so MCP clients can ask questions, search policies and work with customer records.
package mcp

import "errors"

// ErrMissingAssistant is returned when the assistant is not provided.
var ErrMissingAssistant = errors.New("mcp: assistant is required")
