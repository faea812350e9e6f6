package db_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/internal/test"
	"github.com/matryer/is"
)

func TestOpenUnknownDriver(t *testing.T) {
	_, err := db.Open(context.TODO(), "invalid", "")
	if err == nil {
		t.Fatal("Open(invalid) => nil, want error")
	}
	if !strings.Contains(err.Error(), "unknown driver") {
		t.Errorf("Open(invalid) => %v, want error containing 'unknown driver'", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)

	_, err = dbx.ExecContext(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT UNIQUE)`)
	is.NoErr(err)

	boom := errors.New("boom")
	err = dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO t (name) VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})
	is.True(errors.Is(err, boom))

	var count int
	is.NoErr(dbx.GetContext(ctx, &count, `SELECT COUNT(*) FROM t`))
	is.Equal(count, 0) // insert rolled back
}

func TestTransactionDuplicateKey(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)

	_, err = dbx.ExecContext(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT UNIQUE)`)
	is.NoErr(err)

	err = dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		for i := 0; i < 2; i++ {
			if _, err := tx.ExecContext(ctx, `INSERT INTO t (name) VALUES ('a')`); err != nil {
				return db.WrapError(err)
			}
		}
		return nil
	})
	is.Equal(err, db.ErrDuplicateKey)
}
