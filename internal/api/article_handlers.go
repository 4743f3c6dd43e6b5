package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/service"
	"github.com/baraza/baraza-server/internal/store"
)

func (s *Server) registerArticleRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listArticles",
		Method:      http.MethodGet,
		Path:        "/api/v1/articles",
		Summary:     "List articles",
		Description: "Returns a page of articles, newest first",
		Tags:        []string{"Articles"},
	}, s.handleListArticles)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchArticles",
		Method:      http.MethodGet,
		Path:        "/api/v1/articles/search",
		Summary:     "Search articles",
		Description: "Searches by exact tag, exact category name, or free text over title, content, tags and categories. Exactly one of tag, category or q is used, in that order.",
		Tags:        []string{"Articles"},
	}, s.handleSearchArticles)

	huma.Register(s.api, huma.Operation{
		OperationID: "getArticle",
		Method:      http.MethodGet,
		Path:        "/api/v1/articles/{id}",
		Summary:     "Get article",
		Tags:        []string{"Articles"},
	}, s.handleGetArticle)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createArticle",
		Method:        http.MethodPost,
		Path:          "/api/v1/articles",
		Summary:       "Create article",
		Tags:          []string{"Articles"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateArticle)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateArticle",
		Method:      http.MethodPatch,
		Path:        "/api/v1/articles/{id}",
		Summary:     "Update article",
		Description: "Updates an article owned by the caller. tag_list and category_ids replace the whole set.",
		Tags:        []string{"Articles"},
		Security:    bearer,
	}, s.handleUpdateArticle)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteArticle",
		Method:        http.MethodDelete,
		Path:          "/api/v1/articles/{id}",
		Summary:       "Delete article",
		Tags:          []string{"Articles"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteArticle)
}

// === DTOs ===

// NamedRef is a tag or category as embedded in an article.
type NamedRef struct {
	ID   string `json:"id" doc:"ID"`
	Name string `json:"name" doc:"Name"`
}

// ArticleResponse contains article data in API responses.
type ArticleResponse struct {
	ID         string     `json:"id" doc:"Article ID"`
	Title      string     `json:"title" doc:"Title"`
	Content    string     `json:"content" doc:"Body"`
	Summary    string     `json:"summary,omitempty" doc:"Short summary"`
	CoverImage string     `json:"cover_image,omitempty" doc:"Cover image URL"`
	UserID     string     `json:"user_id" doc:"Author"`
	TagList    string     `json:"tag_list" doc:"Comma-separated tag names in link order"`
	Tags       []NamedRef `json:"tags" doc:"Tags in link order"`
	Categories []NamedRef `json:"categories" doc:"Categories in link order"`
	CreatedAt  time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt  time.Time  `json:"updated_at" doc:"Last update time"`
}

func mapArticle(a *domain.Article) ArticleResponse {
	resp := ArticleResponse{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		Summary:    a.Summary,
		CoverImage: a.CoverImage,
		UserID:     a.UserID,
		TagList:    a.TagList(),
		Tags:       make([]NamedRef, len(a.Tags)),
		Categories: make([]NamedRef, len(a.Categories)),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	for i, t := range a.Tags {
		resp.Tags[i] = NamedRef{ID: t.ID, Name: t.Name}
	}
	for i, c := range a.Categories {
		resp.Categories[i] = NamedRef{ID: c.ID, Name: c.Name}
	}
	return resp
}

func mapArticles(articles []*domain.Article) []ArticleResponse {
	out := make([]ArticleResponse, len(articles))
	for i, a := range articles {
		out[i] = mapArticle(a)
	}
	return out
}

// ArticleOutput wraps an article for Huma.
type ArticleOutput struct {
	Body ArticleResponse
}

// ListArticlesInput contains pagination parameters.
type ListArticlesInput struct {
	Limit  int    `query:"limit" minimum:"0" maximum:"200" doc:"Page size"`
	Cursor string `query:"cursor" doc:"Cursor from the previous page"`
}

// ListArticlesResponse is one page of articles.
type ListArticlesResponse struct {
	Articles   []ArticleResponse `json:"articles" doc:"Articles, newest first"`
	NextCursor string            `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool              `json:"has_more" doc:"Whether another page exists"`
}

// ListArticlesOutput wraps a page for Huma.
type ListArticlesOutput struct {
	Body ListArticlesResponse
}

// SearchArticlesInput selects one search shape.
type SearchArticlesInput struct {
	Q        string `query:"q" doc:"Free text"`
	Tag      string `query:"tag" doc:"Exact tag name"`
	Category string `query:"category" doc:"Exact category name"`
	Limit    int    `query:"limit" minimum:"0" maximum:"1000" doc:"Maximum results"`
}

// SearchArticlesOutput wraps search results for Huma.
type SearchArticlesOutput struct {
	Body struct {
		Articles []ArticleResponse `json:"articles" doc:"Matching articles in relevance order"`
	}
}

// ArticleIDInput addresses one article.
type ArticleIDInput struct {
	ID string `path:"id" doc:"Article ID"`
}

// CreateArticleRequest is the request body for creating an article.
type CreateArticleRequest struct {
	Title       string   `json:"title" maxLength:"255" doc:"Title"`
	Content     string   `json:"content" doc:"Body"`
	Summary     string   `json:"summary,omitempty" doc:"Short summary"`
	CoverImage  string   `json:"cover_image,omitempty" doc:"Cover image URL"`
	TagList     string   `json:"tag_list,omitempty" doc:"Comma-separated tag names" example:"politics, kenya"`
	CategoryIDs []string `json:"category_ids,omitempty" doc:"Category IDs"`
}

// CreateArticleInput wraps the create article request for Huma.
type CreateArticleInput struct {
	Body CreateArticleRequest
}

// UpdateArticleRequest is the request body for updating an article.
type UpdateArticleRequest struct {
	Title       *string   `json:"title,omitempty" doc:"Title"`
	Content     *string   `json:"content,omitempty" doc:"Body"`
	Summary     *string   `json:"summary,omitempty" doc:"Short summary"`
	CoverImage  *string   `json:"cover_image,omitempty" doc:"Cover image URL"`
	TagList     *string   `json:"tag_list,omitempty" doc:"Replaces all tags"`
	CategoryIDs *[]string `json:"category_ids,omitempty" doc:"Replaces all categories"`
}

// UpdateArticleInput wraps the update article request for Huma.
type UpdateArticleInput struct {
	ID   string `path:"id" doc:"Article ID"`
	Body UpdateArticleRequest
}

// === Handlers ===

func (s *Server) handleListArticles(ctx context.Context, input *ListArticlesInput) (*ListArticlesOutput, error) {
	page, err := s.services.Article.ListArticles(ctx, currentUser(ctx), store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, err
	}
	return &ListArticlesOutput{Body: ListArticlesResponse{
		Articles:   mapArticles(page.Items),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}}, nil
}

func (s *Server) handleSearchArticles(ctx context.Context, input *SearchArticlesInput) (*SearchArticlesOutput, error) {
	articles, err := s.services.Article.SearchArticles(ctx, currentUser(ctx), service.SearchArticlesRequest{
		Query:    input.Q,
		Tag:      input.Tag,
		Category: input.Category,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := &SearchArticlesOutput{}
	out.Body.Articles = mapArticles(articles)
	return out, nil
}

func (s *Server) handleGetArticle(ctx context.Context, input *ArticleIDInput) (*ArticleOutput, error) {
	a, err := s.services.Article.GetArticle(ctx, currentUser(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &ArticleOutput{Body: mapArticle(a)}, nil
}

func (s *Server) handleCreateArticle(ctx context.Context, input *CreateArticleInput) (*ArticleOutput, error) {
	a, err := s.services.Article.CreateArticle(ctx, currentUser(ctx), service.CreateArticleRequest{
		Title:       input.Body.Title,
		Content:     input.Body.Content,
		Summary:     input.Body.Summary,
		CoverImage:  input.Body.CoverImage,
		TagList:     input.Body.TagList,
		CategoryIDs: input.Body.CategoryIDs,
	})
	if err != nil {
		return nil, err
	}
	return &ArticleOutput{Body: mapArticle(a)}, nil
}

func (s *Server) handleUpdateArticle(ctx context.Context, input *UpdateArticleInput) (*ArticleOutput, error) {
	a, err := s.services.Article.UpdateArticle(ctx, currentUser(ctx), input.ID, service.UpdateArticleRequest{
		Title:       input.Body.Title,
		Content:     input.Body.Content,
		Summary:     input.Body.Summary,
		CoverImage:  input.Body.CoverImage,
		TagList:     input.Body.TagList,
		CategoryIDs: input.Body.CategoryIDs,
	})
	if err != nil {
		return nil, err
	}
	return &ArticleOutput{Body: mapArticle(a)}, nil
}

func (s *Server) handleDeleteArticle(ctx context.Context, input *ArticleIDInput) (*struct{}, error) {
	if err := s.services.Article.DeleteArticle(ctx, currentUser(ctx), input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
