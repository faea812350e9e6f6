// Package database implements the stores on top of a SQL database.
package database

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/store"
)

type datastore struct {
	ctx    context.Context
	cfg    *config.Config
	db     *db.DB
	logger *log.Logger

	*userStore
	*accessTokenStore
	*emailAddressStore
	*emailConfirmationStore
}

// New returns a new store.Store database.
func New(ctx context.Context, db *db.DB) store.Store {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("store")

	s := &datastore{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		logger: logger,

		userStore:              &userStore{},
		accessTokenStore:       &accessTokenStore{},
		emailAddressStore:      &emailAddressStore{},
		emailConfirmationStore: &emailConfirmationStore{},
	}

	return s
}
