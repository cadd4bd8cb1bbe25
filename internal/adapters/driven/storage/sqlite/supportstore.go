package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure SupportStore implements the interface.
var _ driven.SupportStore = (*SupportStore)(nil)

// primaryKeys lists the tables SupportStore writes to and their id column.
var primaryKeys = map[string]string{
	"customers": "customer_id",
	"products":  "product_id",
	"tickets":   "ticket_id",
}

const customerColumns = `customer_id, name, COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(account_type, ''), COALESCE(subscription_tier, ''),
	COALESCE(CAST(join_date AS TEXT), ''), COALESCE(address, ''), COALESCE(account_status, '')`

const ticketColumns = `ticket_id, customer_id, COALESCE(subject, ''), COALESCE(description, ''),
	COALESCE(category, ''), COALESCE(priority, ''), COALESCE(status, ''), COALESCE(channel, ''),
	COALESCE(assigned_agent, ''), COALESCE(CAST(created_at AS TEXT), ''),
	COALESCE(CAST(resolved_at AS TEXT), ''), COALESCE(resolution, ''), satisfaction_rating`

// SupportStore is the customer support database. Writes go through the
// primary connection; Query and SampleRows use a read-only one.
type SupportStore struct {
	db   *sql.DB
	ro   *sql.DB
	path string
}

// NewSupportStore opens (or creates) the support database at path,
// applies migrations and opens the read-only query connection.
func NewSupportStore(ctx context.Context, path string) (*SupportStore, error) {
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	s := &SupportStore{db: db, path: path}

	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	ro, err := openReadOnly(path)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ro = ro
	return s, nil
}

// InitSchema creates the support tables if they are missing.
func (s *SupportStore) InitSchema(ctx context.Context) error {
	sub, err := fs.Sub(migrations.Support, "support")
	if err != nil {
		return err
	}
	if err := migrate(ctx, s.db, sub); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes both connections.
func (s *SupportStore) Close() error {
	var roErr error
	if s.ro != nil {
		roErr = s.ro.Close()
	}
	return errors.Join(roErr, s.db.Close())
}

// Path returns the database file path.
func (s *SupportStore) Path() string {
	return s.path
}

// Query runs a statement on the read-only connection. Engine errors are
// returned unwrapped so callers can show them verbatim.
func (s *SupportStore) Query(ctx context.Context, query string) (*domain.QueryResult, error) {
	rows, err := s.ro.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

// SampleRows returns the first n rows of a known table.
func (s *SupportStore) SampleRows(ctx context.Context, table string, n int) (*domain.QueryResult, error) {
	if _, ok := primaryKeys[table]; !ok {
		return nil, fmt.Errorf("%w: unknown table %q", domain.ErrInvalidInput, table)
	}
	rows, err := s.ro.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT ?", table), n)
	if err != nil {
		return nil, fmt.Errorf("sampling %s: %w", table, err)
	}
	return collectRows(rows)
}

// FindCustomers returns customers whose name contains fragment.
func (s *SupportStore) FindCustomers(ctx context.Context, fragment string) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE name LIKE ? ORDER BY customer_id",
		"%"+fragment+"%")
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// GetCustomer returns a customer by id.
func (s *SupportStore) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return scanCustomer(s.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE customer_id = ?", id))
}

// ListTickets returns a customer's tickets, newest first.
func (s *SupportStore) ListTickets(ctx context.Context, customerID int64) ([]domain.Ticket, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE customer_id = ? ORDER BY created_at DESC, ticket_id DESC",
		customerID)
	if err != nil {
		return nil, fmt.Errorf("querying tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		var rating sql.NullInt64
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Subject, &t.Description, &t.Category, &t.Priority,
			&t.Status, &t.Channel, &t.AssignedAgent, &t.CreatedAt, &t.ResolvedAt, &t.Resolution, &rating); err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		if rating.Valid {
			r := int(rating.Int64)
			t.SatisfactionRating = &r
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// CreateTicket inserts a ticket with the next free id and returns it.
func (s *SupportStore) CreateTicket(ctx context.Context, t *domain.Ticket) (int64, error) {
	var rating any
	if t.SatisfactionRating != nil {
		rating = *t.SatisfactionRating
	}
	row := []any{
		t.CustomerID, t.Subject, t.Description, t.Category, t.Priority, t.Status, t.Channel,
		t.AssignedAgent, nullIfEmpty(t.CreatedAt), nullIfEmpty(t.ResolvedAt), nullIfEmpty(t.Resolution), rating,
	}
	columns := []string{
		"customer_id", "subject", "description", "category", "priority", "status", "channel",
		"assigned_agent", "created_at", "resolved_at", "resolution", "satisfaction_rating",
	}

	ids, err := s.insert(ctx, "tickets", columns, [][]any{row})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// InsertRows appends rows to table with ids assigned from MAX(id)+1.
func (s *SupportStore) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int, error) {
	ids, err := s.insert(ctx, table, columns, rows)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *SupportStore) insert(ctx context.Context, table string, columns []string, rows [][]any) ([]int64, error) {
	pk, ok := primaryKeys[table]
	if !ok {
		return nil, fmt.Errorf("%w: unknown table %q", domain.ErrInvalidInput, table)
	}
	for _, col := range columns {
		if !isIdentifier(col) || col == pk {
			return nil, fmt.Errorf("%w: invalid column %q", domain.ErrInvalidInput, col)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var next int64
	if err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s", pk, table)).Scan(&next); err != nil {
		return nil, fmt.Errorf("next %s: %w", pk, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)+1), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s)",
		table, pk, strings.Join(columns, ", "), placeholders))
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns", domain.ErrInvalidInput, i+1, len(row), len(columns))
		}
		args := append([]any{next}, row...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, fmt.Errorf("inserting row %d: %w", i+1, err)
		}
		ids = append(ids, next)
		next++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing insert: %w", err)
	}
	return ids, nil
}

// CountRows returns the row count of a known table.
func (s *SupportStore) CountRows(ctx context.Context, table string) (int, error) {
	if _, ok := primaryKeys[table]; !ok {
		return 0, fmt.Errorf("%w: unknown table %q", domain.ErrInvalidInput, table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.AccountType, &c.SubscriptionTier,
		&c.JoinDate, &c.Address, &c.AccountStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning customer: %w", err)
	}
	return &c, nil
}

// collectRows reads a result set into a QueryResult. Date and time values
// the driver parsed are rendered back to SQLite text form.
func collectRows(rows *sql.Rows) (*domain.QueryResult, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	result := &domain.QueryResult{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normaliseValue(v, types[i].DatabaseTypeName())
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

func normaliseValue(v any, declType string) any {
	switch t := v.(type) {
	case time.Time:
		if strings.EqualFold(declType, "DATE") {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.DateTime)
	case []byte:
		return string(t)
	default:
		return v
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
