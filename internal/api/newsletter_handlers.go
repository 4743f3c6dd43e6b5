package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/service"
)

func (s *Server) registerNewsletterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNewsletters",
		Method:      http.MethodGet,
		Path:        "/api/v1/newsletters",
		Summary:     "List newsletters",
		Tags:        []string{"Newsletters"},
		Security:    bearer,
	}, s.handleListNewsletters)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createNewsletter",
		Method:        http.MethodPost,
		Path:          "/api/v1/newsletters",
		Summary:       "Create newsletter",
		Description:   "Starts a draft with categories in the given order and a pool of candidate articles",
		Tags:          []string{"Newsletters"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateNewsletter)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNewsletter",
		Method:      http.MethodGet,
		Path:        "/api/v1/newsletters/{id}",
		Summary:     "Get newsletter",
		Tags:        []string{"Newsletters"},
		Security:    bearer,
	}, s.handleGetNewsletter)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateNewsletter",
		Method:      http.MethodPatch,
		Path:        "/api/v1/newsletters/{id}",
		Summary:     "Update newsletter",
		Description: "Reorders categories, narrows and reorders the article pool, and approves when commit is \"Approve\". All or nothing.",
		Tags:        []string{"Newsletters"},
		Security:    bearer,
	}, s.handleUpdateNewsletter)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectNewsletter",
		Method:      http.MethodPost,
		Path:        "/api/v1/newsletters/{id}/reject",
		Summary:     "Reject newsletter",
		Tags:        []string{"Newsletters"},
		Security:    bearer,
	}, s.handleRejectNewsletter)

	huma.Register(s.api, huma.Operation{
		OperationID: "attachNewsletterArticles",
		Method:      http.MethodPost,
		Path:        "/api/v1/newsletters/{id}/articles",
		Summary:     "Attach articles",
		Description: "Adds existing articles to the end of the candidate pool",
		Tags:        []string{"Newsletters"},
		Security:    bearer,
	}, s.handleAttachArticles)

	huma.Register(s.api, huma.Operation{
		OperationID: "addNewsletterCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/newsletters/{id}/categories",
		Summary:     "Add category",
		Description: "Gives an existing category a slot after the current ones",
		Tags:        []string{"Newsletters"},
		Security:    bearer,
	}, s.handleAddCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "setNewsletterCategoryArticles",
		Method:      http.MethodPut,
		Path:        "/api/v1/newsletters/{id}/categories/{categoryID}/articles",
		Summary:     "Set category articles",
		Description: "Replaces the articles listed under one category. Every article must be in the pool.",
		Tags:        []string{"Newsletters"},
		Security:    bearer,
	}, s.handleSetCategoryArticles)

	huma.Register(s.api, huma.Operation{
		OperationID: "sendNewsletter",
		Method:      http.MethodPost,
		Path:        "/api/v1/newsletters/{id}/send",
		Summary:     "Send newsletter",
		Description: "Mails an approved newsletter to every subscriber",
		Tags:        []string{"Newsletters"},
		Security:    bearer,
	}, s.handleSendNewsletter)
}

// === DTOs ===

// PoolArticle is one entry of the candidate pool.
type PoolArticle struct {
	ArticleID string `json:"article_id" doc:"Article ID"`
	Position  int    `json:"position_in_newsletter" doc:"Position in the pool"`
}

// CategorySlot is one category's place in a newsletter.
type CategorySlot struct {
	ID         string   `json:"id" doc:"Slot ID"`
	CategoryID string   `json:"category_id" doc:"Category ID"`
	Position   int      `json:"position_in_newsletter" doc:"Display position"`
	ArticleIDs []string `json:"article_ids" doc:"Articles listed under the category, in order"`
}

// NewsletterResponse contains newsletter data in API responses.
type NewsletterResponse struct {
	ID                  string         `json:"id" doc:"Newsletter ID"`
	Status              string         `json:"status" doc:"draft, approved or rejected"`
	Articles            []PoolArticle  `json:"articles" doc:"Candidate pool by position"`
	CategoryNewsletters []CategorySlot `json:"category_newsletters" doc:"Category slots by position"`
	ApprovedAt          *time.Time     `json:"approved_at,omitempty" doc:"Approval time"`
	RejectedAt          *time.Time     `json:"rejected_at,omitempty" doc:"Rejection time"`
	SentAt              *time.Time     `json:"sent_at,omitempty" doc:"Last delivery time"`
	CreatedAt           time.Time      `json:"created_at" doc:"Creation time"`
	UpdatedAt           time.Time      `json:"updated_at" doc:"Last update time"`
}

func mapNewsletter(n *domain.Newsletter) NewsletterResponse {
	resp := NewsletterResponse{
		ID:                  n.ID,
		Status:              string(n.Status),
		Articles:            make([]PoolArticle, len(n.Articles)),
		CategoryNewsletters: make([]CategorySlot, 0, len(n.Categories)),
		ApprovedAt:          n.ApprovedAt,
		RejectedAt:          n.RejectedAt,
		SentAt:              n.SentAt,
		CreatedAt:           n.CreatedAt,
		UpdatedAt:           n.UpdatedAt,
	}
	for i, a := range n.Articles {
		resp.Articles[i] = PoolArticle{ArticleID: a.ArticleID, Position: a.Position}
	}
	for _, c := range n.OrderedCategories() {
		resp.CategoryNewsletters = append(resp.CategoryNewsletters, CategorySlot{
			ID:         c.ID,
			CategoryID: c.CategoryID,
			Position:   c.Position,
			ArticleIDs: append([]string{}, c.ArticleIDs...),
		})
	}
	return resp
}

// NewsletterOutput wraps a newsletter for Huma.
type NewsletterOutput struct {
	Body NewsletterResponse
}

// ListNewslettersInput filters newsletters by status.
type ListNewslettersInput struct {
	Status string `query:"status" enum:"draft,approved,rejected" doc:"Only newsletters in this status"`
}

// ListNewslettersOutput wraps a list of newsletters for Huma.
type ListNewslettersOutput struct {
	Body struct {
		Newsletters []NewsletterResponse `json:"newsletters" doc:"Newsletters, newest first"`
	}
}

// NewsletterIDInput addresses one newsletter.
type NewsletterIDInput struct {
	ID string `path:"id" doc:"Newsletter ID"`
}

// CreateNewsletterInput wraps the create newsletter request for Huma.
type CreateNewsletterInput struct {
	Body struct {
		CategoryIDs []string `json:"category_ids,omitempty" doc:"Categories in display order"`
		ArticleIDs  []string `json:"article_ids,omitempty" doc:"Candidate articles in order"`
	}
}

// CategoryOrderRequest moves one category slot.
type CategoryOrderRequest struct {
	ID         string `json:"id,omitempty" doc:"Slot ID; checked against category_id when given"`
	CategoryID string `json:"category_id" doc:"Category ID"`
	Position   int    `json:"position_in_newsletter" doc:"New position"`
}

// ArticlePositionRequest moves one pool article.
type ArticlePositionRequest struct {
	ID       string `json:"id" doc:"Article ID"`
	Position int    `json:"position_in_newsletter" doc:"New position"`
}

// UpdateNewsletterRequest is a full editor submission.
type UpdateNewsletterRequest struct {
	CategoryNewslettersAttributes []CategoryOrderRequest   `json:"category_newsletters_attributes,omitempty" doc:"Category positions, applied in order"`
	ArticleIDs                    []string                 `json:"article_ids,omitempty" doc:"Articles to keep in the pool"`
	ArticlesAttributes            []ArticlePositionRequest `json:"articles_attributes,omitempty" doc:"Article positions; entries for articles not kept are ignored"`
	Commit                        string                   `json:"commit,omitempty" doc:"\"Approve\" approves the newsletter"`
}

// UpdateNewsletterInput wraps the update newsletter request for Huma.
type UpdateNewsletterInput struct {
	ID   string `path:"id" doc:"Newsletter ID"`
	Body UpdateNewsletterRequest
}

func (r UpdateNewsletterRequest) toDomain() domain.NewsletterUpdate {
	u := domain.NewsletterUpdate{
		CategoryOrders:   make([]domain.CategoryOrderUpdate, len(r.CategoryNewslettersAttributes)),
		ArticleIDs:       r.ArticleIDs,
		ArticlePositions: make([]domain.ArticlePositionUpdate, len(r.ArticlesAttributes)),
		Commit:           r.Commit,
	}
	for i, c := range r.CategoryNewslettersAttributes {
		u.CategoryOrders[i] = domain.CategoryOrderUpdate{ID: c.ID, CategoryID: c.CategoryID, Position: c.Position}
	}
	for i, a := range r.ArticlesAttributes {
		u.ArticlePositions[i] = domain.ArticlePositionUpdate{ID: a.ID, Position: a.Position}
	}
	return u
}

// ArticleIDsInput carries a list of article IDs for one newsletter.
type ArticleIDsInput struct {
	ID   string `path:"id" doc:"Newsletter ID"`
	Body struct {
		ArticleIDs []string `json:"article_ids" doc:"Article IDs"`
	}
}

// AddCategoryInput carries one category for a newsletter.
type AddCategoryInput struct {
	ID   string `path:"id" doc:"Newsletter ID"`
	Body struct {
		CategoryID string `json:"category_id" doc:"Category ID"`
	}
}

// SetCategoryArticlesInput replaces one category's articles.
type SetCategoryArticlesInput struct {
	ID         string `path:"id" doc:"Newsletter ID"`
	CategoryID string `path:"categoryID" doc:"Category ID"`
	Body       struct {
		ArticleIDs []string `json:"article_ids" doc:"Articles in display order"`
	}
}

// === Handlers ===

func (s *Server) handleListNewsletters(ctx context.Context, input *ListNewslettersInput) (*ListNewslettersOutput, error) {
	list, err := s.services.Newsletter.ListNewsletters(ctx, currentUser(ctx), domain.NewsletterStatus(input.Status))
	if err != nil {
		return nil, err
	}
	out := &ListNewslettersOutput{}
	out.Body.Newsletters = make([]NewsletterResponse, len(list))
	for i, n := range list {
		out.Body.Newsletters[i] = mapNewsletter(n)
	}
	return out, nil
}

func (s *Server) handleCreateNewsletter(ctx context.Context, input *CreateNewsletterInput) (*NewsletterOutput, error) {
	n, err := s.services.Newsletter.CreateNewsletter(ctx, currentUser(ctx), service.CreateNewsletterRequest{
		CategoryIDs: input.Body.CategoryIDs,
		ArticleIDs:  input.Body.ArticleIDs,
	})
	return newsletterOutput(n, err)
}

func (s *Server) handleGetNewsletter(ctx context.Context, input *NewsletterIDInput) (*NewsletterOutput, error) {
	return newsletterOutput(s.services.Newsletter.GetNewsletter(ctx, currentUser(ctx), input.ID))
}

func (s *Server) handleUpdateNewsletter(ctx context.Context, input *UpdateNewsletterInput) (*NewsletterOutput, error) {
	return newsletterOutput(s.services.Newsletter.UpdateNewsletter(ctx, currentUser(ctx), input.ID, input.Body.toDomain()))
}

func (s *Server) handleRejectNewsletter(ctx context.Context, input *NewsletterIDInput) (*NewsletterOutput, error) {
	return newsletterOutput(s.services.Newsletter.RejectNewsletter(ctx, currentUser(ctx), input.ID))
}

func (s *Server) handleAttachArticles(ctx context.Context, input *ArticleIDsInput) (*NewsletterOutput, error) {
	return newsletterOutput(s.services.Newsletter.AttachArticles(ctx, currentUser(ctx), input.ID, input.Body.ArticleIDs))
}

func (s *Server) handleAddCategory(ctx context.Context, input *AddCategoryInput) (*NewsletterOutput, error) {
	return newsletterOutput(s.services.Newsletter.AddCategory(ctx, currentUser(ctx), input.ID, input.Body.CategoryID))
}

func (s *Server) handleSetCategoryArticles(ctx context.Context, input *SetCategoryArticlesInput) (*NewsletterOutput, error) {
	return newsletterOutput(s.services.Newsletter.SetCategoryArticles(ctx, currentUser(ctx), input.ID, input.CategoryID, input.Body.ArticleIDs))
}

func (s *Server) handleSendNewsletter(ctx context.Context, input *NewsletterIDInput) (*NewsletterOutput, error) {
	return newsletterOutput(s.services.Newsletter.SendNewsletter(ctx, currentUser(ctx), input.ID))
}

func newsletterOutput(n *domain.Newsletter, err error) (*NewsletterOutput, error) {
	if err != nil {
		return nil, err
	}
	return &NewsletterOutput{Body: mapNewsletter(n)}, nil
}
