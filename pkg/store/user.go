package store

import (
	"context"

	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/models"
)

// UserStore is an interface for managing users.
type UserStore interface {
	GetUserByID(ctx context.Context, h db.Handler, id int64) (models.User, error)
	FindUserByUsername(ctx context.Context, h db.Handler, username string) (models.User, error)
	FindUserByAccessToken(ctx context.Context, h db.Handler, token string) (models.User, error)
	FindUserByPrimaryEmail(ctx context.Context, h db.Handler, email string) (models.User, error)
	GetAllUsers(ctx context.Context, h db.Handler) ([]models.User, error)
	CreateUser(ctx context.Context, h db.Handler, username string, isAdmin bool) (models.User, error)
	DeleteUserByUsername(ctx context.Context, h db.Handler, username string) error
	SetAdminByUsername(ctx context.Context, h db.Handler, username string, isAdmin bool) error
	SetUserPassword(ctx context.Context, h db.Handler, userID int64, password string) error
	SetUserPasswordByUsername(ctx context.Context, h db.Handler, username string, password string) error
	SetUserEmail(ctx context.Context, h db.Handler, userID int64, email string) error
}
