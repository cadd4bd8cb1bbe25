package driving

import (
	"context"
	"io"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// SupportService exposes operator actions on the support database.
// Results are rendered as text for tool and terminal output.
type SupportService interface {
	// LookupCustomer finds customers by partial name.
	LookupCustomer(ctx context.Context, name string) (string, error)

	// TicketHistory lists a customer's tickets, newest first.
	TicketHistory(ctx context.Context, customerID int64) (string, error)

	// CreateTicket opens a new ticket for an existing customer.
	CreateTicket(ctx context.Context, draft domain.TicketDraft) (string, error)

	// ImportCSV appends validated CSV rows to the matching table.
	ImportCSV(ctx context.Context, r io.Reader) (*ImportReport, error)

	// InitSchema creates the support tables if they are missing.
	InitSchema(ctx context.Context) error
}

// ImportReport summarises a CSV import.
type ImportReport struct {
	Table       string
	Inserted    int
	CountBefore int
	CountAfter  int
}

// QueryRunner runs guarded read-only SQL.
type QueryRunner interface {
	// Run executes a read-only statement.
	// Mutating statements are rejected with domain.ErrPolicyViolation.
	Run(ctx context.Context, query string) (*domain.QueryResult, error)

	// Schema returns the static table description given to the SQL agent.
	Schema(ctx context.Context) string
}
