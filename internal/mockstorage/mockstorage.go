// Package mockstorage provides a testify-based mock implementation
// of the storage interface. It is used for unit testing HTTP handlers
// and services by simulating storage behavior, including failures the
// real backends only produce under fault conditions.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/avoronkov42/backoffice/internal/db/storage"
	"github.com/avoronkov42/backoffice/internal/models"
)

// StorageMock is a testify mock implementing the full storage interface.
type StorageMock struct {
	mock.Mock
}

var _ storage.Storage = (*StorageMock)(nil)

// CreateUser mocks inserting a user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *models.User) (*models.User, error) {
	args := m.Called(ctx, usr)
	result, _ := args.Get(0).(*models.User)
	return result, args.Error(1)
}

// GetUserByMail mocks the user lookup by mail.
func (m *StorageMock) GetUserByMail(ctx context.Context, mail string) (*models.User, error) {
	args := m.Called(ctx, mail)
	result, _ := args.Get(0).(*models.User)
	return result, args.Error(1)
}

// CreateSession mocks storing a session.
func (m *StorageMock) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// GetSession mocks the session lookup.
func (m *StorageMock) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	result, _ := args.Get(0).(*models.Session)
	return result, args.Error(1)
}

// DeleteSession mocks the session removal.
func (m *StorageMock) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// GetCategories mocks listing non-deleted categories.
func (m *StorageMock) GetCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).([]models.Category)
	return result, args.Error(1)
}

// GetCategoryByID mocks the category lookup by ID.
func (m *StorageMock) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	result, _ := args.Get(0).(*models.Category)
	return result, args.Error(1)
}

// FindCategoriesByName mocks the case-insensitive substring search.
func (m *StorageMock) FindCategoriesByName(
	ctx context.Context,
	substring string,
) ([]models.Category, error) {
	args := m.Called(ctx, substring)
	result, _ := args.Get(0).([]models.Category)
	return result, args.Error(1)
}

// InsertCategory mocks persisting a new category.
func (m *StorageMock) InsertCategory(
	ctx context.Context,
	category *models.Category,
) (*models.Category, error) {
	args := m.Called(ctx, category)
	result, _ := args.Get(0).(*models.Category)
	return result, args.Error(1)
}

// UpdateCategory mocks replacing a stored category.
func (m *StorageMock) UpdateCategory(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

// Ping mocks the connectivity check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
