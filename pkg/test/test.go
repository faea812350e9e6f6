// Package test provides helpers for tests that need a running backend.
package test

import (
	"context"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/migrate"
	"github.com/charmbracelet/soft-mail/pkg/store"
	"github.com/charmbracelet/soft-mail/pkg/store/database"
)

var (
	used = map[int]struct{}{}
	lock sync.Mutex
)

// RandomPort returns a random port number.
// This is mainly used for testing.
func RandomPort() int {
	addr, _ := net.Listen("tcp", ":0") //nolint:gosec
	_ = addr.Close()
	port := addr.Addr().(*net.TCPAddr).Port
	lock.Lock()

	if _, ok := used[port]; ok {
		lock.Unlock()
		return RandomPort()
	}

	used[port] = struct{}{}
	lock.Unlock()
	return port
}

// Config returns a validated default config rooted in a temporary directory.
func Config(tb testing.TB) *config.Config {
	tb.Helper()
	cfg := config.DefaultConfig()
	cfg.DataPath = tb.TempDir()
	if err := cfg.Validate(); err != nil {
		tb.Fatal(err)
	}
	return cfg
}

// Env is a migrated database with a backend on top of it.
type Env struct {
	Ctx     context.Context
	Config  *config.Config
	DB      *db.DB
	Store   store.Store
	Backend *backend.Backend
}

// NewEnv opens a temporary SQLite database, migrates it, and builds a
// backend with opts. The database is closed when the test ends.
func NewEnv(tb testing.TB, cfg *config.Config, opts ...backend.Option) *Env {
	tb.Helper()
	if cfg == nil {
		cfg = Config(tb)
	}

	logger := log.New(io.Discard)
	ctx := config.WithContext(context.Background(), cfg)
	ctx = log.WithContext(ctx, logger)

	dbx, err := db.Open(ctx, "sqlite", filepath.Join(tb.TempDir(), "soft-mail.db")+
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() {
		if err := dbx.Close(); err != nil {
			tb.Error(err)
		}
	})

	if err := migrate.Migrate(ctx, dbx); err != nil {
		tb.Fatal(err)
	}

	st := database.New(ctx, dbx)
	be := backend.New(ctx, cfg, dbx, st, opts...)

	ctx = db.WithContext(ctx, dbx)
	ctx = store.WithContext(ctx, st)
	ctx = backend.WithContext(ctx, be)

	return &Env{
		Ctx:     ctx,
		Config:  cfg,
		DB:      dbx,
		Store:   st,
		Backend: be,
	}
}
