package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
)

var queryReplacer = strings.NewReplacer("\t", "", "\n", " ")

// trace logs a query once it finished. It's a no-op unless verbose mode set
// a logger on the handle.
func trace(l *log.Logger, start time.Time, query string, args ...interface{}) {
	if l == nil {
		return
	}
	query = strings.TrimSpace(queryReplacer.Replace(query))
	l.Debug("trace", "query", query, "args", args, "took", time.Since(start))
}

// SelectContext logs and runs sqlx.SelectContext.
func (d *DB) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	defer trace(d.logger, time.Now(), query, args...)
	return d.DB.SelectContext(ctx, dest, query, args...)
}

// GetContext logs and runs sqlx.GetContext.
func (d *DB) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	defer trace(d.logger, time.Now(), query, args...)
	return d.DB.GetContext(ctx, dest, query, args...)
}

// QueryxContext logs and runs sqlx.QueryxContext.
func (d *DB) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	defer trace(d.logger, time.Now(), query, args...)
	return d.DB.QueryxContext(ctx, query, args...)
}

// QueryRowxContext logs and runs sqlx.QueryRowxContext.
func (d *DB) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	defer trace(d.logger, time.Now(), query, args...)
	return d.DB.QueryRowxContext(ctx, query, args...)
}

// ExecContext logs and runs sqlx.ExecContext.
func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer trace(d.logger, time.Now(), query, args...)
	return d.DB.ExecContext(ctx, query, args...)
}

// SelectContext logs and runs sqlx.Tx.SelectContext.
func (t *Tx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	defer trace(t.logger, time.Now(), query, args...)
	return t.Tx.SelectContext(ctx, dest, query, args...)
}

// GetContext logs and runs sqlx.Tx.GetContext.
func (t *Tx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	defer trace(t.logger, time.Now(), query, args...)
	return t.Tx.GetContext(ctx, dest, query, args...)
}

// QueryxContext logs and runs sqlx.Tx.QueryxContext.
func (t *Tx) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	defer trace(t.logger, time.Now(), query, args...)
	return t.Tx.QueryxContext(ctx, query, args...)
}

// QueryRowxContext logs and runs sqlx.Tx.QueryRowxContext.
func (t *Tx) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	defer trace(t.logger, time.Now(), query, args...)
	return t.Tx.QueryRowxContext(ctx, query, args...)
}

// ExecContext logs and runs sqlx.Tx.ExecContext.
func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer trace(t.logger, time.Now(), query, args...)
	return t.Tx.ExecContext(ctx, query, args...)
}
