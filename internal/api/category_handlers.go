package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Get category",
		Description: "Looks a category up by ID or slug",
		Tags:        []string{"Categories"},
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCategory",
		Method:        http.MethodPost,
		Path:          "/api/v1/categories",
		Summary:       "Create category",
		Tags:          []string{"Categories"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCategory)
}

// CategoryResponse contains category data in API responses.
type CategoryResponse struct {
	ID        string    `json:"id" doc:"Category ID"`
	Name      string    `json:"name" doc:"Display name"`
	Slug      string    `json:"slug" doc:"URL-safe slug"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

func mapCategory(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, CreatedAt: c.CreatedAt}
}

// CategoryOutput wraps a category for Huma.
type CategoryOutput struct {
	Body CategoryResponse
}

// ListCategoriesOutput wraps a list of categories for Huma.
type ListCategoriesOutput struct {
	Body struct {
		Categories []CategoryResponse `json:"categories" doc:"All categories"`
	}
}

// GetCategoryInput addresses one category.
type GetCategoryInput struct {
	ID string `path:"id" doc:"Category ID or slug"`
}

// CreateCategoryInput wraps the create category request for Huma.
type CreateCategoryInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"100" doc:"Display name"`
	}
}

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	categories, err := s.services.Category.ListCategories(ctx, currentUser(ctx))
	if err != nil {
		return nil, err
	}
	out := &ListCategoriesOutput{}
	out.Body.Categories = make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out.Body.Categories[i] = mapCategory(c)
	}
	return out, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *GetCategoryInput) (*CategoryOutput, error) {
	c, err := s.services.Category.GetCategory(ctx, currentUser(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategory(c)}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	c, err := s.services.Category.CreateCategory(ctx, currentUser(ctx), service.CreateCategoryRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategory(c)}, nil
}
