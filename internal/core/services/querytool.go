package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// Ensure QueryTool implements the interface.
var _ driving.QueryRunner = (*QueryTool)(nil)

// mutatingKeyword matches any statement keyword that can change data or schema.
var mutatingKeyword = regexp.MustCompile(
	`(?i)\b(INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|REPLACE|TRUNCATE|ATTACH|DETACH|PRAGMA|VACUUM|REINDEX|GRANT|REVOKE|MERGE|UPSERT)\b`,
)

// schemaSampleRows is the number of example rows shown per table.
const schemaSampleRows = 3

// tableSchema describes one support table for the SQL agent.
type tableSchema struct {
	name    string
	columns []string
}

// supportTables lists the read-only schema visible to the SQL agent.
var supportTables = []tableSchema{
	{
		name: "customers",
		columns: []string{
			"customer_id INTEGER PRIMARY KEY",
			"name VARCHAR(255) NOT NULL",
			"email VARCHAR(255) UNIQUE",
			"phone VARCHAR(20)",
			"account_type VARCHAR(50)",
			"subscription_tier VARCHAR(50)",
			"join_date DATE",
			"address TEXT",
			"account_status VARCHAR(50)",
		},
	},
	{
		name: "products",
		columns: []string{
			"product_id INTEGER PRIMARY KEY",
			"name VARCHAR(255)",
			"category VARCHAR(100)",
			"price DECIMAL(10,2)",
			"description TEXT",
		},
	},
	{
		name: "tickets",
		columns: []string{
			"ticket_id INTEGER PRIMARY KEY",
			"customer_id INTEGER REFERENCES customers(customer_id)",
			"subject VARCHAR(255)",
			"description TEXT",
			"category VARCHAR(100)",
			"priority VARCHAR(50)",
			"status VARCHAR(50)",
			"channel VARCHAR(50)",
			"assigned_agent VARCHAR(100)",
			"created_at TIMESTAMP",
			"resolved_at TIMESTAMP",
			"resolution TEXT",
			"satisfaction_rating INTEGER",
		},
	},
}

// QueryTool runs guarded read-only SQL against the support database.
type QueryTool struct {
	store driven.SupportStore

	mu     sync.Mutex
	schema string // cached once every table was sampled
}

// NewQueryTool creates a query tool over the support store.
func NewQueryTool(store driven.SupportStore) *QueryTool {
	return &QueryTool{store: store}
}

// Run checks the statement and executes it on the read-only connection.
// Rejected statements return domain.ErrPolicyViolation without reaching the
// database. Database errors are returned unwrapped so the caller sees the
// engine's own message.
func (t *QueryTool) Run(ctx context.Context, query string) (*domain.QueryResult, error) {
	if err := CheckReadOnly(query); err != nil {
		logger.Warn("Rejected query: %v", err)
		return nil, err
	}
	logger.Debug("Running query: %s", query)
	return t.store.Query(ctx, query)
}

// Schema returns the table listing with sample rows. The result is cached
// once sampling succeeds for every table; until then it is rebuilt per call.
func (t *QueryTool) Schema(ctx context.Context) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.schema != "" {
		return t.schema
	}

	schema, complete := t.buildSchema(ctx)
	if complete {
		t.schema = schema
	}
	return schema
}

// buildSchema reports whether every table could be sampled.
func (t *QueryTool) buildSchema(ctx context.Context) (string, bool) {
	complete := true
	var b strings.Builder
	b.WriteString("Database schema:\n")
	for _, table := range supportTables {
		fmt.Fprintf(&b, "\nTable %s (\n  %s\n)\n", table.name, strings.Join(table.columns, ",\n  "))

		sample, err := t.store.SampleRows(ctx, table.name, schemaSampleRows)
		if err != nil {
			logger.Warn("Sample rows for %s unavailable: %v", table.name, err)
			complete = false
			continue
		}
		if len(sample.Rows) > 0 {
			fmt.Fprintf(&b, "/* %d example rows from %s:\n%s\n*/\n", len(sample.Rows), table.name, sample.Format())
		}
	}
	return strings.TrimRight(b.String(), "\n"), complete
}

// CheckReadOnly rejects anything other than a single SELECT (or WITH ... SELECT)
// statement. Mutating keywords are rejected wherever they appear, including
// inside comments, so "created_at" passes but "-- then DROP it" does not.
func CheckReadOnly(query string) error {
	body := strings.TrimSpace(stripLeadingComments(query))
	if body == "" {
		return fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	if m := mutatingKeyword.FindString(query); m != "" {
		return fmt.Errorf("%w: %s statements are not allowed, only SELECT queries can be run",
			domain.ErrPolicyViolation, strings.ToUpper(m))
	}

	first := strings.ToUpper(leadingWord(body))
	if first != "SELECT" && first != "WITH" {
		return fmt.Errorf("%w: only SELECT queries can be run", domain.ErrPolicyViolation)
	}

	if statementCount(body) > 1 {
		return fmt.Errorf("%w: only one statement can be run at a time", domain.ErrPolicyViolation)
	}
	return nil
}

// stripLeadingComments removes leading "--" and "/* */" comments and whitespace.
func stripLeadingComments(query string) string {
	s := strings.TrimSpace(query)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = strings.TrimSpace(s[i+1:])
			} else {
				return ""
			}
		case strings.HasPrefix(s, "/*"):
			if i := strings.Index(s, "*/"); i >= 0 {
				s = strings.TrimSpace(s[i+2:])
			} else {
				return ""
			}
		default:
			return s
		}
	}
}

// leadingWord returns the first run of letters.
func leadingWord(s string) string {
	end := 0
	for end < len(s) {
		c := s[end]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		end++
	}
	return s[:end]
}

// statementCount counts non-empty statements separated by semicolons
// outside quoted strings.
func statementCount(s string) int {
	count := 0
	var quote rune
	var current strings.Builder
	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			count++
		}
		current.Reset()
	}

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()
	return count
}
