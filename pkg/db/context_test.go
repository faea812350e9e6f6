package db_test

import (
	"context"
	"testing"

	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/internal/test"
	"github.com/matryer/is"
)

func TestFromContextMissing(t *testing.T) {
	is := is.New(t)
	is.True(db.FromContext(context.TODO()) == nil)
}

func TestFromContext(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)

	c := db.FromContext(db.WithContext(ctx, dbx))
	is.True(c == dbx)
	is.NoErr(c.PingContext(ctx))

	var fk int
	is.NoErr(c.GetContext(ctx, &fk, `PRAGMA foreign_keys;`))
	is.Equal(fk, 1) // email addresses are deleted with their user
}
