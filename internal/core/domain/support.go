package domain

import (
	"fmt"
	"strings"
)

// Customer is a row of the customers table.
type Customer struct {
	ID               int64
	Name             string
	Email            string
	Phone            string
	AccountType      string
	SubscriptionTier string
	JoinDate         string
	Address          string
	AccountStatus    string
}

// Product is a row of the products table.
type Product struct {
	ID          int64
	Name        string
	Category    string
	Price       float64
	Description string
}

// Ticket is a row of the tickets table.
type Ticket struct {
	ID                 int64
	CustomerID         int64
	Subject            string
	Description        string
	Category           string
	Priority           string
	Status             string
	Channel            string
	AssignedAgent      string
	CreatedAt          string
	ResolvedAt         string
	Resolution         string
	SatisfactionRating *int
}

// Ticket priorities accepted for new tickets.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Defaults applied to tickets opened by the assistant.
const (
	DefaultTicketPriority = PriorityMedium
	DefaultTicketCategory = "general"
	TicketStatusOpen      = "open"
	TicketChannelChat     = "chat"
	TicketAgentAssistant  = "AI Assistant"
)

// TicketDraft is the input for opening a new ticket.
type TicketDraft struct {
	CustomerID  int64
	Subject     string
	Description string
	Priority    string
	Category    string
}

// Normalise fills defaults and validates the draft.
func (d *TicketDraft) Normalise() error {
	d.Subject = strings.TrimSpace(d.Subject)
	d.Description = strings.TrimSpace(d.Description)
	d.Priority = strings.ToLower(strings.TrimSpace(d.Priority))
	d.Category = strings.ToLower(strings.TrimSpace(d.Category))

	if d.CustomerID <= 0 {
		return fmt.Errorf("%w: customer id must be positive", ErrInvalidInput)
	}
	if d.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if d.Priority == "" {
		d.Priority = DefaultTicketPriority
	}
	if d.Category == "" {
		d.Category = DefaultTicketCategory
	}
	switch d.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
	default:
		return fmt.Errorf("%w: priority must be low, medium, high or critical", ErrInvalidInput)
	}
	return nil
}

// QueryResult is the tabular output of a read-only query.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// Format renders the result as a pipe-separated table.
// NULL values render as "NULL"; an empty result renders as "(no rows)".
func (r *QueryResult) Format() string {
	if r == nil || len(r.Rows) == 0 {
		return "(no rows)"
	}

	var b strings.Builder
	b.WriteString(strings.Join(r.Columns, " | "))
	for _, row := range r.Rows {
		b.WriteByte('\n')
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		b.WriteString(strings.Join(cells, " | "))
	}
	return b.String()
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", t), "0"), ".")
	default:
		return fmt.Sprint(t)
	}
}
