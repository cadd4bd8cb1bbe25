package driven

import (
	"context"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// SupportStore provides access to the relational support database
// (customers, products, tickets).
type SupportStore interface {
	// Query runs a statement on a read-only connection.
	// Driver errors are returned unwrapped.
	Query(ctx context.Context, query string) (*domain.QueryResult, error)

	// SampleRows returns up to n rows of a table for schema context.
	SampleRows(ctx context.Context, table string, n int) (*domain.QueryResult, error)

	// FindCustomers returns customers whose name contains fragment.
	FindCustomers(ctx context.Context, fragment string) ([]domain.Customer, error)

	// GetCustomer returns a customer by id or domain.ErrNotFound.
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)

	// ListTickets returns a customer's tickets, newest first.
	ListTickets(ctx context.Context, customerID int64) ([]domain.Ticket, error)

	// CreateTicket inserts a ticket and returns its id.
	CreateTicket(ctx context.Context, ticket *domain.Ticket) (int64, error)

	// InsertRows appends rows to table, assigning primary keys
	// after the current maximum. Returns the number of rows inserted.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int, error)

	// CountRows returns the number of rows in table.
	CountRows(ctx context.Context, table string) (int, error)

	// InitSchema creates the support tables if they are missing.
	InitSchema(ctx context.Context) error

	// Close releases resources.
	Close() error
}
