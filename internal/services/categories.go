package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"saldo/internal/core"
	"saldo/internal/storage"
)

// CategoryService manages the categories of an owner.
type CategoryService struct {
	store storage.CategoryStore
}

func NewCategoryService(store storage.CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

// List returns the owner's categories sorted by name.
func (s *CategoryService) List(ctx context.Context, ownerID string) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Create adds a category. Names are unique per owner.
func (s *CategoryService) Create(ctx context.Context, ownerID, name string) (core.Category, error) {
	name, err := core.NormalizeCategoryName(name)
	if err != nil {
		return core.Category{}, err
	}

	c := core.Category{ID: uuid.NewString(), OwnerID: ownerID, Name: name}
	if err := s.store.InsertCategory(ctx, c); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			return core.Category{}, fmt.Errorf("%w: category %q already exists", core.ErrDuplicateName, name)
		case errors.Is(err, storage.ErrInvalidReference):
			return core.Category{}, fmt.Errorf("%w: unknown owner", core.ErrInvalidInput)
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "category_id", c.ID, "name", c.Name)
	return c, nil
}

// Delete removes a category. Its transactions become uncategorized.
// Deleting a missing category succeeds.
func (s *CategoryService) Delete(ctx context.Context, ownerID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: category id is required", core.ErrInvalidInput)
	}
	if err := s.store.DeleteCategory(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	slog.InfoContext(ctx, "Category deleted", "category_id", id)
	return nil
}
