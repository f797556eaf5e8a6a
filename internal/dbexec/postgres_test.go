package dbexec

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestRunReturnsColumnsRowsAndText(t *testing.T) {
	db, mock := newSQLMock(t)
	executor := NewPostgresExecutor(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "cradlename", "capacity" FROM "cradles"`)).
		WillReturnRows(sqlmock.NewRows([]string{"cradlename", "capacity"}).
			AddRow("Cradle A", 120.5).
			AddRow("Cradle B", nil))

	result, err := executor.Run(context.Background(), `SELECT "cradlename", "capacity" FROM "cradles"`)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Columns) != 2 || result.Columns[0] != "cradlename" {
		t.Fatalf("Columns = %v", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("Rows = %v", result.Rows)
	}
	if result.Text != "[('Cradle A', 120.5), ('Cradle B', NULL)]" {
		t.Fatalf("Text = %q", result.Text)
	}
	assertSQLMock(t, mock)
}

func TestRunEmptyResultHasEmptyText(t *testing.T) {
	db, mock := newSQLMock(t)
	executor := NewPostgresExecutor(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "vessels"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	result, err := executor.Run(context.Background(), `SELECT * FROM "vessels"`)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Text != "" {
		t.Fatalf("Text = %q, want empty", result.Text)
	}
	if len(result.Rows) != 0 {
		t.Fatalf("Rows = %v", result.Rows)
	}
	assertSQLMock(t, mock)
}

func TestRunPropagatesDatabaseError(t *testing.T) {
	db, mock := newSQLMock(t)
	executor := NewPostgresExecutor(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "nope"`)).
		WillReturnError(errors.New(`relation "nope" does not exist`))

	if _, err := executor.Run(context.Background(), `SELECT * FROM "nope"`); err == nil {
		t.Fatal("expected execution error")
	}
	assertSQLMock(t, mock)
}

func TestRenderRowsValueFormatting(t *testing.T) {
	when := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	got := RenderRows([][]any{
		{"it's", []byte("bytes"), when, int64(7), true, nil},
	})
	want := "[('it''s', 'bytes', '2025-03-14 09:30:00', 7, true, NULL)]"
	if got != want {
		t.Fatalf("RenderRows() = %q, want %q", got, want)
	}
}

func TestSampleBoundsRowCount(t *testing.T) {
	result := Result{Rows: [][]any{{1}, {2}, {3}, {4}, {5}, {6}, {7}}}
	got := result.Sample(5)
	if got != "[(1), (2), (3), (4), (5)]" {
		t.Fatalf("Sample(5) = %q", got)
	}
	if result.Sample(0) != "" {
		t.Fatal("Sample(0) should be empty")
	}
	if (Result{}).Sample(5) != "" {
		t.Fatal("Sample of empty result should be empty")
	}
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
