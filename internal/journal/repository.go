package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/pmc-config/internal/pmc"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	// timeFormat is fixed width so created_at sorts as text.
	timeFormat = "2006-01-02T15:04:05.000000000Z07:00"
)

// SQLiteRepository stores entries in the changes table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new journal repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts an entry. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = "chg-" + uuid.NewString()[:8]
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	created := 0
	if e.Created {
		created = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO changes (id, file, device, variable, scope, old_value, new_value, created, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.File, e.Device, e.Variable, e.Scope.String(),
		nullableString(e.OldValue), e.NewValue, created, e.Source,
		e.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseScope(s string) pmc.Scope {
	switch s {
	case pmc.ScopeDevice.String():
		return pmc.ScopeDevice
	case pmc.ScopeSDR.String():
		return pmc.ScopeSDR
	default:
		return pmc.ScopeNone
	}
}

// List returns entries matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.File != "" {
		conditions = append(conditions, "file = ?")
		args = append(args, filter.File)
	}
	if filter.Device != "" {
		conditions = append(conditions, "device = ?")
		args = append(args, filter.Device)
	}
	if filter.Variable != "" {
		conditions = append(conditions, "variable = ?")
		args = append(args, filter.Variable)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM changes %s", where) //nolint:gosec // WHERE built from parameterised conditions
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting journal entries: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions
		`SELECT id, file, device, variable, scope, old_value, new_value, created, source, created_at
		 FROM changes %s ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			scope     string
			oldValue  sql.NullString
			created   int
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.File, &e.Device, &e.Variable, &scope,
			&oldValue, &e.NewValue, &created, &e.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.Scope = parseScope(scope)
		e.OldValue = oldValue.String
		e.Created = created != 0

		t, err := time.Parse(timeFormat, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing journal timestamp %q: %w", createdAt, err)
		}
		e.CreatedAt = t

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
