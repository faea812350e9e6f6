package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/soft-mail/pkg/db/internal/test"
	"github.com/matryer/is"
)

func TestMigrate(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)
	is.NoErr(Migrate(ctx, dbx))

	v, err := Version(ctx, dbx)
	is.NoErr(err)
	is.Equal(v, int64(len(migrations)))

	// Running again is a no-op.
	is.NoErr(Migrate(ctx, dbx))
}

func TestRollback(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)

	is.True(errors.Is(Rollback(ctx, dbx), ErrNoRollback))
	is.NoErr(Migrate(ctx, dbx))
	is.NoErr(Rollback(ctx, dbx))

	v, err := Version(ctx, dbx)
	is.NoErr(err)
	is.Equal(v, int64(len(migrations)-1))

	// Re-applying the rolled back migration works.
	is.NoErr(Migrate(ctx, dbx))
}

func TestSinglePrimaryIndex(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)
	is.NoErr(Migrate(ctx, dbx))

	_, err = dbx.ExecContext(ctx, `INSERT INTO users (username, updated_at) VALUES ('jane', CURRENT_TIMESTAMP)`)
	is.NoErr(err)
	_, err = dbx.ExecContext(ctx, `INSERT INTO email_addresses (user_id, email, normalized_email, "primary", updated_at) VALUES (1, 'a@example.com', 'a@example.com', true, CURRENT_TIMESTAMP)`)
	is.NoErr(err)
	_, err = dbx.ExecContext(ctx, `INSERT INTO email_addresses (user_id, email, normalized_email, "primary", updated_at) VALUES (1, 'b@example.com', 'b@example.com', true, CURRENT_TIMESTAMP)`)
	is.True(err != nil) // second primary rejected
	_, err = dbx.ExecContext(ctx, `INSERT INTO email_addresses (user_id, email, normalized_email, updated_at) VALUES (1, 'A@example.com', 'a@example.com', CURRENT_TIMESTAMP)`)
	is.True(err != nil) // same normalized address
}

func TestToSnakeCase(t *testing.T) {
	is := is.New(t)
	is.Equal(toSnakeCase("create email tables"), "create_email_tables")
	is.Equal(toSnakeCase("CreateTables"), "create_tables")
}
