// Package test opens throwaway databases for the db packages' tests.
package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/soft-mail/pkg/db"
)

// sqlitePragmas match the pragmas of the default data source so that
// cascading deletes of email addresses behave like in production.
const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// OpenSqlite opens an SQLite database in tb.TempDir and closes it when the
// test ends. A nil ctx means context.TODO().
func OpenSqlite(ctx context.Context, tb testing.TB) (*db.DB, error) {
	tb.Helper()
	if ctx == nil {
		ctx = context.TODO()
	}
	dbx, err := db.Open(ctx, "sqlite", filepath.Join(tb.TempDir(), "soft-mail.db")+sqlitePragmas)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	tb.Cleanup(func() {
		if err := dbx.Close(); err != nil {
			tb.Error(err)
		}
	})
	return dbx, nil
}
