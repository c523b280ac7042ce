// Package service implements the category store rules on top of a storage
// backend: name validation, soft-delete visibility and the guard against
// updating deleted records.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avoronkov42/backoffice/internal/models"
)

type categoriesKeeper interface {
	GetCategories(ctx context.Context) ([]models.Category, error)

	FindCategoriesByName(ctx context.Context, substring string) ([]models.Category, error)

	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)

	InsertCategory(ctx context.Context, category *models.Category) (*models.Category, error)

	UpdateCategory(ctx context.Context, category *models.Category) error
}

// Service exposes the category operations used by the HTTP layer.
type Service struct {
	db categoriesKeeper
}

// New creates a Service bound to the given storage.
func New(db categoriesKeeper) *Service {
	return &Service{db: db}
}

// List returns every category that is not soft-deleted, in persisted order.
func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	return s.db.GetCategories(ctx)
}

// SearchByName returns non-deleted categories whose name contains the given
// substring, case-insensitively.
func (s *Service) SearchByName(ctx context.Context, substring string) ([]models.Category, error) {
	return s.db.FindCategoriesByName(ctx, substring)
}

// GetByID returns the category with the given ID, soft-deleted or not.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	return s.db.GetCategoryByID(ctx, id)
}

// Create persists a new active category. A blank name is rejected with
// models.ErrEmptyName.
func (s *Service) Create(ctx context.Context, name string) (*models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.ErrEmptyName
	}

	category, err := s.db.InsertCategory(ctx, &models.Category{Name: name})
	if err != nil {
		return nil, fmt.Errorf("error saving the new category: %w", err)
	}

	return category, nil
}

// Update renames the category with the given ID. It fails with
// models.ErrNotFound when the ID is unknown, models.ErrCategoryDeleted when
// the target is soft-deleted and models.ErrEmptyName on a blank name.
// A storage write failure is surfaced as a wrapped storage error, distinct
// from the not-found case.
func (s *Service) Update(ctx context.Context, id int64, newName string) (*models.Category, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, models.ErrEmptyName
	}

	category, err := s.db.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if category.IsDeleted() {
		return nil, models.ErrCategoryDeleted
	}

	category.Name = newName
	if err := s.db.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("error saving the category: %w", err)
	}

	return category, nil
}

// SoftDelete marks the category as deleted and stamps the deletion time.
// The operation is idempotent: deleting an already-deleted category returns
// it unchanged without re-stamping the timestamp.
func (s *Service) SoftDelete(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.db.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if category.IsDeleted() {
		return category, nil
	}

	deletedAt := time.Now().UTC()
	category.DeletedAt = &deletedAt
	category.Deleted = true

	if err := s.db.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("error saving the category: %w", err)
	}

	return category, nil
}
