// Package storage declares the persistence contract shared by every
// storage backend of the service.
package storage

import (
	"context"

	"github.com/avoronkov42/backoffice/internal/models"
)

// Storage is the full persistence surface: users and sessions for the
// authenticator, categories for the category store.
type Storage interface {
	CreateUser(ctx context.Context, usr *models.User) (*models.User, error)

	GetUserByMail(ctx context.Context, mail string) (*models.User, error)

	CreateSession(ctx context.Context, session *models.Session) error

	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	DeleteSession(ctx context.Context, sessionID string) error

	GetCategories(ctx context.Context) ([]models.Category, error)

	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)

	FindCategoriesByName(ctx context.Context, substring string) ([]models.Category, error)

	InsertCategory(ctx context.Context, category *models.Category) (*models.Category, error)

	UpdateCategory(ctx context.Context, category *models.Category) error

	Ping(ctx context.Context) error

	Close() error
}
