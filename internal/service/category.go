package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baraza/baraza-server/internal/authz"
	"github.com/baraza/baraza-server/internal/domain"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/id"
	"github.com/baraza/baraza-server/internal/store"
	"github.com/baraza/baraza-server/internal/validation"
)

// CategoryService manages categories.
type CategoryService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCategoryService creates a category service.
func NewCategoryService(store store.Store, validator *validation.Validator, logger *slog.Logger) *CategoryService {
	return &CategoryService{store: store, validator: validator, logger: logger}
}

// CreateCategoryRequest is the payload for a new category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreateCategory adds a category. Names that produce an existing slug are
// rejected.
func (s *CategoryService) CreateCategory(ctx context.Context, actor *domain.User, req CreateCategoryRequest) (*domain.Category, error) {
	if err := authorize(actor, authz.ResourceCategories, authz.ActionCreate, authz.Attrs{}); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	slug := domain.Slugify(req.Name)
	if slug == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed: name",
			map[string]string{"name": "must contain letters or digits"})
	}

	categoryID, err := id.Generate(id.PrefixCategory)
	if err != nil {
		return nil, err
	}
	category := &domain.Category{Record: domain.Record{ID: categoryID}, Name: req.Name, Slug: slug}
	category.InitTimestamps()

	if err := s.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists(fmt.Sprintf("category %q already exists", slug))
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.Info("category created", slog.String("category_id", category.ID), slog.String("slug", slug))
	return category, nil
}

// GetCategory returns a category by ID or slug.
func (s *CategoryService) GetCategory(ctx context.Context, actor *domain.User, idOrSlug string) (*domain.Category, error) {
	if err := authorize(actor, authz.ResourceCategories, authz.ActionIndex, authz.Attrs{}); err != nil {
		return nil, err
	}
	category, err := s.store.GetCategory(ctx, idOrSlug)
	if errors.Is(err, store.ErrNotFound) {
		category, err = s.store.GetCategoryBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, notFound(err, "category", idOrSlug)
	}
	return category, nil
}

// ListCategories returns all categories ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context, actor *domain.User) ([]*domain.Category, error) {
	if err := authorize(actor, authz.ResourceCategories, authz.ActionIndex, authz.Attrs{}); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx)
}
