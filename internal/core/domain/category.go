package domain

import (
	"fmt"
	"strings"
)

// Category is the routing decision for one user turn.
type Category string

// Routing categories. Exactly one is assigned per turn.
const (
	// CategorySQL covers lookups and aggregates over customers, tickets and products.
	CategorySQL Category = "sql"

	// CategoryRAG covers questions about policies, pricing tiers, procedures and rules.
	CategoryRAG Category = "rag"

	// CategoryGeneral covers greetings, meta-questions and courtesy.
	CategoryGeneral Category = "general"
)

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategorySQL, CategoryRAG, CategoryGeneral:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// AgentName returns the name of the specialist that handles the category.
func (c Category) AgentName() string {
	switch c {
	case CategorySQL:
		return "sql_agent"
	case CategoryRAG:
		return "rag_agent"
	case CategoryGeneral:
		return "general_agent"
	default:
		return unknownDescription
	}
}

// Description returns a human-readable description of the category.
func (c Category) Description() string {
	switch c {
	case CategorySQL:
		return "Customer, ticket and product data"
	case CategoryRAG:
		return "Company policy documents"
	case CategoryGeneral:
		return "General conversation"
	default:
		return unknownDescription
	}
}

// AllCategories returns every routing category in a stable order.
func AllCategories() []Category {
	return []Category{CategorySQL, CategoryRAG, CategoryGeneral}
}

// ParseCategory parses a routing label. Agent names ("sql_agent",
// "rag_agent", "general_agent") are accepted as aliases.
func ParseCategory(s string) (Category, error) {
	label := strings.ToLower(strings.TrimSpace(s))
	label = strings.Trim(label, "\"'`.")
	switch label {
	case "sql", "sql_agent":
		return CategorySQL, nil
	case "rag", "rag_agent":
		return CategoryRAG, nil
	case "general", "general_agent":
		return CategoryGeneral, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
	}
}
