package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PostgresDescriber reads table and column definitions for the public schema
// and renders them as CREATE TABLE style text. Column names come back exactly
// as stored, so the generation backend can quote them verbatim.
type PostgresDescriber struct {
	db *sql.DB
}

func NewPostgresDescriber(db *sql.DB) *PostgresDescriber {
	return &PostgresDescriber{db: db}
}

func (d *PostgresDescriber) HealthCheck(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

const columnsQuery = `
SELECT table_name, column_name, data_type, COALESCE(character_maximum_length, 0), is_nullable
FROM information_schema.columns
WHERE table_schema = 'public'
ORDER BY table_name, ordinal_position`

func (d *PostgresDescriber) Describe(ctx context.Context) (string, error) {
	rows, err := d.db.QueryContext(ctx, columnsQuery)
	if err != nil {
		return "", fmt.Errorf("query information_schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		builder      strings.Builder
		currentTable string
		columnCount  int
	)
	for rows.Next() {
		var (
			tableName  string
			columnName string
			dataType   string
			maxLength  int
			isNullable string
		)
		if err := rows.Scan(&tableName, &columnName, &dataType, &maxLength, &isNullable); err != nil {
			return "", fmt.Errorf("scan column definition: %w", err)
		}

		if tableName != currentTable {
			if currentTable != "" {
				builder.WriteString("\n)\n\n")
			}
			builder.WriteString(fmt.Sprintf("CREATE TABLE %q (", tableName))
			currentTable = tableName
			columnCount = 0
		}
		if columnCount > 0 {
			builder.WriteString(",")
		}
		builder.WriteString(fmt.Sprintf("\n\t%q %s", columnName, renderType(dataType, maxLength)))
		if strings.EqualFold(isNullable, "NO") {
			builder.WriteString(" NOT NULL")
		}
		columnCount++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate column definitions: %w", err)
	}
	if currentTable == "" {
		return "", fmt.Errorf("no tables found in public schema")
	}
	builder.WriteString("\n)")
	return builder.String(), nil
}

func renderType(dataType string, maxLength int) string {
	if maxLength > 0 {
		return fmt.Sprintf("%s(%d)", dataType, maxLength)
	}
	return dataType
}
