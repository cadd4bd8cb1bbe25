package mcp

import (
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server exposes.
type Ports struct {
	// Assistant answers turns. Required.
	Assistant driving.Assistant

	// Retriever backs search_policies. Optional.
	Retriever driving.Retriever

	// Support backs the customer and ticket tools. Optional.
	Support driving.SupportService

	// Query provides the schema resource. Optional.
	Query driving.QueryRunner
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
