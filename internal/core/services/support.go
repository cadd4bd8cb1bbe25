package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// Ensure SupportService implements the interface.
var _ driving.SupportService = (*SupportService)(nil)

// maxReportedImportErrors caps validation messages in an import error.
const maxReportedImportErrors = 5

// importSchema describes how CSV columns map onto a support table.
type importSchema struct {
	table    string
	required []string
	// columns excludes the auto-assigned primary key.
	columns []string
}

var importSchemas = []importSchema{
	{
		table:    "customers",
		required: []string{"name", "email"},
		columns: []string{
			"name", "email", "phone", "account_type", "subscription_tier",
			"join_date", "address", "account_status",
		},
	},
	{
		table:    "products",
		required: []string{"name", "category", "price"},
		columns:  []string{"name", "category", "price", "description"},
	},
	{
		table:    "tickets",
		required: []string{"customer_id", "subject", "description"},
		columns: []string{
			"customer_id", "subject", "description", "category", "priority", "status",
			"channel", "assigned_agent", "created_at", "resolved_at", "resolution", "satisfaction_rating",
		},
	},
}

// SupportService provides operator actions on the support database.
type SupportService struct {
	store driven.SupportStore
	now   func() time.Time
}

// NewSupportService creates a new support service.
func NewSupportService(store driven.SupportStore) *SupportService {
	return &SupportService{store: store, now: time.Now}
}

// LookupCustomer finds customers whose name contains name.
func (s *SupportService) LookupCustomer(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: customer name is required", domain.ErrInvalidInput)
	}

	customers, err := s.store.FindCustomers(ctx, name)
	if err != nil {
		return "", fmt.Errorf("find customers: %w", err)
	}
	if len(customers) == 0 {
		return fmt.Sprintf("No customer found matching '%s'", name), nil
	}

	profiles := make([]string, len(customers))
	for i, c := range customers {
		profiles[i] = fmt.Sprintf(
			"Customer ID: %d\nName: %s\nEmail: %s\nPhone: %s\nAccount Type: %s\nSubscription: %s\nStatus: %s\nJoin Date: %s",
			c.ID, c.Name, c.Email, c.Phone, c.AccountType, c.SubscriptionTier, c.AccountStatus, c.JoinDate,
		)
	}
	return strings.Join(profiles, "\n\n---\n\n"), nil
}

// TicketHistory lists a customer's tickets, newest first.
func (s *SupportService) TicketHistory(ctx context.Context, customerID int64) (string, error) {
	tickets, err := s.store.ListTickets(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("list tickets: %w", err)
	}
	if len(tickets) == 0 {
		return fmt.Sprintf("No tickets found for customer ID %d", customerID), nil
	}

	entries := make([]string, len(tickets))
	for i, t := range tickets {
		entries[i] = fmt.Sprintf(
			"Ticket #%d: %s\n  Category: %s | Priority: %s\n  Status: %s | Channel: %s\n  Created: %s\n  Agent: %s",
			t.ID, t.Subject, t.Category, t.Priority, t.Status, t.Channel, t.CreatedAt, t.AssignedAgent,
		)
	}
	return fmt.Sprintf("Found %d tickets:\n\n%s", len(tickets), strings.Join(entries, "\n\n")), nil
}

// CreateTicket opens a ticket for an existing customer with status open,
// channel chat and the assistant as assigned agent.
func (s *SupportService) CreateTicket(ctx context.Context, draft domain.TicketDraft) (string, error) {
	if err := draft.Normalise(); err != nil {
		return "", err
	}

	customer, err := s.store.GetCustomer(ctx, draft.CustomerID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("customer ID %d %w", draft.CustomerID, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get customer: %w", err)
	}

	ticket := &domain.Ticket{
		CustomerID:    draft.CustomerID,
		Subject:       draft.Subject,
		Description:   draft.Description,
		Category:      draft.Category,
		Priority:      draft.Priority,
		Status:        domain.TicketStatusOpen,
		Channel:       domain.TicketChannelChat,
		AssignedAgent: domain.TicketAgentAssistant,
		CreatedAt:     s.now().Format("2006-01-02T15:04:05"),
	}
	id, err := s.store.CreateTicket(ctx, ticket)
	if err != nil {
		return "", fmt.Errorf("create ticket: %w", err)
	}
	logger.Info("Created ticket #%d for customer %d", id, customer.ID)

	return fmt.Sprintf(
		"Ticket #%d created successfully!\n  Customer: %s (ID: %d)\n  Subject: %s\n  Priority: %s\n  Category: %s\n  Status: open",
		id, customer.Name, customer.ID, ticket.Subject, ticket.Priority, ticket.Category,
	), nil
}

// ImportCSV detects the target table from the CSV headers, validates every
// row and appends them with freshly assigned ids.
func (s *SupportService) ImportCSV(ctx context.Context, r io.Reader) (*driving.ImportReport, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %w", domain.ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: csv has no header row", domain.ErrInvalidInput)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	schema, ok := detectImportTable(headers)
	if !ok {
		return nil, fmt.Errorf("%w: could not match columns to any known table: %v", domain.ErrInvalidInput, records[0])
	}
	logger.Debug("CSV matched table %s", schema.table)

	rows, problems := buildImportRows(schema, headers, records[1:])
	if len(problems) > 0 {
		if len(problems) > maxReportedImportErrors {
			problems = problems[:maxReportedImportErrors]
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}

	before, err := s.store.CountRows(ctx, schema.table)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", schema.table, err)
	}
	inserted, err := s.store.InsertRows(ctx, schema.table, schema.columns, rows)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", schema.table, err)
	}
	after, err := s.store.CountRows(ctx, schema.table)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", schema.table, err)
	}

	logger.Info("Imported %d rows into %s (%d -> %d)", inserted, schema.table, before, after)
	return &driving.ImportReport{Table: schema.table, Inserted: inserted, CountBefore: before, CountAfter: after}, nil
}

// InitSchema creates the support tables if they are missing.
func (s *SupportService) InitSchema(ctx context.Context) error {
	return s.store.InitSchema(ctx)
}

// detectImportTable picks the table whose required columns are all present
// and whose columns overlap the headers most.
func detectImportTable(headers []string) (importSchema, bool) {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	best, bestScore := importSchema{}, 0
	for _, schema := range importSchemas {
		complete := true
		for _, col := range schema.required {
			if !present[col] {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}

		score := 0
		for _, col := range schema.columns {
			if present[col] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = schema, score
		}
	}
	return best, bestScore > 0
}

// buildImportRows converts records to typed values in schema column order.
// Empty cells become NULL. Problems are reported with 1-based row numbers.
func buildImportRows(schema importSchema, headers []string, records [][]string) ([][]any, []string) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	required := make(map[string]bool, len(schema.required))
	for _, col := range schema.required {
		required[col] = true
	}

	rows := make([][]any, 0, len(records))
	var problems []string
	for n, record := range records {
		row := make([]any, len(schema.columns))
		for i, col := range schema.columns {
			var cell string
			if j, ok := index[col]; ok && j < len(record) {
				cell = strings.TrimSpace(record[j])
			}
			if cell == "" {
				if required[col] {
					problems = append(problems, fmt.Sprintf("Row %d: missing required field '%s'", n+1, col))
				}
				continue
			}

			switch {
			case schema.table == "products" && col == "price":
				price, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					problems = append(problems, fmt.Sprintf("Row %d: 'price' must be numeric, got '%s'", n+1, cell))
					continue
				}
				row[i] = price
			case schema.table == "tickets" && col == "customer_id":
				id, err := strconv.ParseInt(cell, 10, 64)
				if err != nil {
					problems = append(problems, fmt.Sprintf("Row %d: 'customer_id' must be integer, got '%s'", n+1, cell))
					continue
				}
				row[i] = id
			default:
				row[i] = cell
			}
		}
		rows = append(rows, row)
	}
	return rows, problems
}
