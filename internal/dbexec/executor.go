// Package dbexec runs synthesized SQL against the operational database and
// renders result sets as text for the response body and the summarization
// prompt.
package dbexec

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Result struct {
	Columns []string
	Rows    [][]any
	// Text is the tuple-list rendering of all rows, empty when the statement
	// returned nothing.
	Text string
}

// Sample renders at most n rows for use as summarization input.
func (r Result) Sample(n int) string {
	if len(r.Rows) == 0 || n <= 0 {
		return ""
	}
	if n > len(r.Rows) {
		n = len(r.Rows)
	}
	return RenderRows(r.Rows[:n])
}

type Executor interface {
	Run(ctx context.Context, sqlText string) (Result, error)
}

// RenderRows formats rows as a list of tuples, e.g. [('c-1', 120), ('c-2', 80)].
// NULLs render as NULL, strings are single-quoted with quotes doubled.
func RenderRows(rows [][]any) string {
	if len(rows) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("[")
	for i, row := range rows {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString("(")
		for j, value := range row {
			if j > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString(renderValue(value))
		}
		builder.WriteString(")")
	}
	builder.WriteString("]")
	return builder.String()
}

func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05") + "'"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
