// Package dataset loads shipyard snapshot JSON into Postgres. A snapshot
// maps table names to row objects, e.g.
//
//	{"vessels": [{"id": "v-1", "vesselName": "Aurora", ...}], ...}
//
// Each table is loaded in its own transaction; a failing table is rolled
// back and reported without aborting the remaining tables.
package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	datePattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timestampPattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})?$`)
)

// tableOrder lists the shipyard tables in foreign-key dependency order.
// Snapshot tables outside this list load afterwards, alphabetically.
var tableOrder = []string{
	"assets",
	"financials",
	"cradles",
	"vessels",
	"inventory",
	"rails",
	"trolleys",
	"lifts",
	"assets_maintenance",
	"work_orders",
	"wheels_load",
	"wheels_temperature",
}

type TableReport struct {
	Table    string
	Inserted int
	Err      error
}

type Summary struct {
	Tables []TableReport
}

// Failed reports whether any table load was rolled back.
func (s Summary) Failed() bool {
	for _, report := range s.Tables {
		if report.Err != nil {
			return true
		}
	}
	return false
}

func (s Summary) TotalInserted() int {
	total := 0
	for _, report := range s.Tables {
		total += report.Inserted
	}
	return total
}

type Loader struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLoader(db *sql.DB, logger *slog.Logger) (*Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{db: db, logger: logger}, nil
}

// Load decodes a snapshot and inserts its rows table by table.
func (l *Loader) Load(ctx context.Context, snapshot io.Reader) (Summary, error) {
	var data map[string][]map[string]any
	decoder := json.NewDecoder(snapshot)
	decoder.UseNumber()
	if err := decoder.Decode(&data); err != nil {
		return Summary{}, fmt.Errorf("decode snapshot: %w", err)
	}

	summary := Summary{}
	for _, table := range orderTables(data) {
		report := TableReport{Table: table}
		inserted, err := l.loadTable(ctx, table, data[table])
		report.Inserted = inserted
		report.Err = err
		if err != nil {
			l.logger.Error("table load rolled back", "table", table, "error", err)
		} else {
			l.logger.Info("table loaded", "table", table, "rows", inserted)
		}
		summary.Tables = append(summary.Tables, report)
	}
	return summary, nil
}

func (l *Loader) loadTable(ctx context.Context, table string, rows []map[string]any) (int, error) {
	if !identifierPattern.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, row := range rows {
		query, args, err := buildInsert(table, row)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", table, err)
	}
	return inserted, nil
}

// buildInsert renders a placeholder insert. Columns are sorted so the
// statement is deterministic for a given row shape.
func buildInsert(table string, row map[string]any) (string, []any, error) {
	if len(row) == 0 {
		return "", nil, fmt.Errorf("empty row for table %q", table)
	}

	columns := make([]string, 0, len(row))
	for column := range row {
		if !identifierPattern.MatchString(column) {
			return "", nil, fmt.Errorf("invalid column name %q in table %q", column, table)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	placeholders := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for i, column := range columns {
		value, cast, err := normalizeValue(row[column])
		if err != nil {
			return "", nil, fmt.Errorf("column %q in table %q: %w", column, table, err)
		}
		placeholders = append(placeholders, fmt.Sprintf("$%d%s", i+1, cast))
		args = append(args, value)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args, nil
}

// normalizeValue maps a decoded JSON value to a driver argument plus an
// optional cast suffix. ISO dates become ::date, ISO timestamps lose any
// timezone suffix and become ::timestamp.
func normalizeValue(value any) (any, string, error) {
	switch v := value.(type) {
	case nil:
		return nil, "", nil
	case string:
		if datePattern.MatchString(v) {
			return v, "::date", nil
		}
		if timestampPattern.MatchString(v) {
			return stripTimezone(v), "::timestamp", nil
		}
		return v, "", nil
	case json.Number:
		return v.String(), "::numeric", nil
	case bool:
		return v, "", nil
	default:
		return nil, "", fmt.Errorf("unsupported value type %T", value)
	}
}

func stripTimezone(value string) string {
	if idx := strings.IndexAny(value, "Z+"); idx >= 0 {
		return value[:idx]
	}
	return value
}

func orderTables(data map[string][]map[string]any) []string {
	ordered := make([]string, 0, len(data))
	seen := make(map[string]struct{}, len(data))
	for _, table := range tableOrder {
		if _, ok := data[table]; ok {
			ordered = append(ordered, table)
			seen[table] = struct{}{}
		}
	}

	var rest []string
	for table := range data {
		if _, ok := seen[table]; !ok {
			rest = append(rest, table)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}
