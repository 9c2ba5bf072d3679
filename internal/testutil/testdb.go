package testutil

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/alexanderramin/ganttly/internal/db"
)

// ErrInjected is returned by statements a FailingDBTX is told to fail.
var ErrInjected = errors.New("injected statement failure")

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// FailingDBTX passes statements through to the wrapped handle, except Exec
// and Query calls whose SQL starts with Prefix, which fail with ErrInjected.
type FailingDBTX struct {
	db.DBTX
	Prefix string
}

// FailOn returns a db.WithTxWrapper-compatible decorator that fails every
// statement starting with prefix, compared case-insensitively.
func FailOn(prefix string) func(db.DBTX) db.DBTX {
	return func(tx db.DBTX) db.DBTX {
		return &FailingDBTX{DBTX: tx, Prefix: prefix}
	}
}

func (f *FailingDBTX) matches(query string) bool {
	q := strings.TrimSpace(query)
	return len(q) >= len(f.Prefix) && strings.EqualFold(q[:len(f.Prefix)], f.Prefix)
}

func (f *FailingDBTX) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.matches(query) {
		return nil, ErrInjected
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

func (f *FailingDBTX) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if f.matches(query) {
		return nil, ErrInjected
	}
	return f.DBTX.QueryContext(ctx, query, args...)
}
