package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/baraza/baraza-server/internal/authz"
	"github.com/baraza/baraza-server/internal/domain"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/id"
	"github.com/baraza/baraza-server/internal/store"
	"github.com/baraza/baraza-server/internal/validation"
)

// ArticleSearcher is the query side of the search index.
type ArticleSearcher interface {
	SearchByTag(ctx context.Context, name string, limit int) ([]string, error)
	SearchByCategory(ctx context.Context, name string, limit int) ([]string, error)
	SearchAll(ctx context.Context, term string, limit int) ([]string, error)
}

// ArticleService manages articles and keeps their tag and category sets
// in step with the search index.
type ArticleService struct {
	store     store.Store
	sync      *IndexSync
	searcher  ArticleSearcher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewArticleService creates an article service.
func NewArticleService(store store.Store, sync *IndexSync, searcher ArticleSearcher, validator *validation.Validator, logger *slog.Logger) *ArticleService {
	return &ArticleService{
		store:     store,
		sync:      sync,
		searcher:  searcher,
		validator: validator,
		logger:    logger,
	}
}

// CreateArticleRequest is the payload for a new article.
type CreateArticleRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Content     string   `json:"content" validate:"required"`
	Summary     string   `json:"summary" validate:"max=1000"`
	CoverImage  string   `json:"cover_image,omitempty" validate:"omitempty,url"`
	TagList     string   `json:"tag_list"`
	CategoryIDs []string `json:"category_ids"`
}

// UpdateArticleRequest changes the fields that are set. TagList and
// CategoryIDs, when present, replace the whole set.
type UpdateArticleRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Content     *string   `json:"content,omitempty" validate:"omitempty,min=1"`
	Summary     *string   `json:"summary,omitempty" validate:"omitempty,max=1000"`
	CoverImage  *string   `json:"cover_image,omitempty" validate:"omitempty,url"`
	TagList     *string   `json:"tag_list,omitempty"`
	CategoryIDs *[]string `json:"category_ids,omitempty"`
}

// SearchArticlesRequest selects one query shape: Tag, then Category, then Query.
type SearchArticlesRequest struct {
	Query    string
	Tag      string
	Category string
	Limit    int
}

// CreateArticle stores a new article owned by actor.
func (s *ArticleService) CreateArticle(ctx context.Context, actor *domain.User, req CreateArticleRequest) (*domain.Article, error) {
	if err := authorize(actor, authz.ResourceArticles, authz.ActionCreate, authz.Attrs{}); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	articleID, err := id.Generate(id.PrefixArticle)
	if err != nil {
		return nil, err
	}
	article := &domain.Article{
		Record:     domain.Record{ID: articleID},
		Title:      req.Title,
		Content:    req.Content,
		Summary:    req.Summary,
		CoverImage: req.CoverImage,
		UserID:     actor.ID,
		Tags:       []domain.Tag{},
		Categories: []domain.Category{},
	}
	article.InitTimestamps()

	var saved *domain.Article
	err = s.store.InTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateArticle(ctx, article); err != nil {
			return fmt.Errorf("create article: %w", err)
		}
		if _, err := reconcileTags(ctx, tx, article, req.TagList); err != nil {
			return err
		}
		if _, err := reconcileCategories(ctx, tx, article, req.CategoryIDs); err != nil {
			return err
		}
		saved, err = tx.GetArticle(ctx, article.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sync.Sync(ctx, saved)

	s.logger.Info("article created",
		slog.String("article_id", saved.ID),
		slog.String("user_id", actor.ID),
		slog.String("tag_list", saved.TagList()),
	)
	return saved, nil
}

// UpdateArticle applies req to an article the actor owns. The search
// document is refreshed when any indexed field changed.
func (s *ArticleService) UpdateArticle(ctx context.Context, actor *domain.User, articleID string, req UpdateArticleRequest) (*domain.Article, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		saved   *domain.Article
		reindex bool
	)
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		article, err := tx.GetArticle(ctx, articleID)
		if err != nil {
			return notFound(err, "article", articleID)
		}
		if err := authorize(actor, authz.ResourceArticles, authz.ActionUpdate, authz.Attrs{ID: article.ID, OwnerID: article.UserID}); err != nil {
			return err
		}

		if req.Title != nil && *req.Title != article.Title {
			article.Title = *req.Title
			reindex = true
		}
		if req.Content != nil && *req.Content != article.Content {
			article.Content = *req.Content
			reindex = true
		}
		if req.Summary != nil {
			article.Summary = *req.Summary
		}
		if req.CoverImage != nil {
			article.CoverImage = *req.CoverImage
		}
		article.Touch()
		if err := tx.UpdateArticle(ctx, article); err != nil {
			return fmt.Errorf("update article: %w", err)
		}

		if req.TagList != nil {
			changed, err := reconcileTags(ctx, tx, article, *req.TagList)
			if err != nil {
				return err
			}
			reindex = reindex || changed
		}
		if req.CategoryIDs != nil {
			changed, err := reconcileCategories(ctx, tx, article, *req.CategoryIDs)
			if err != nil {
				return err
			}
			reindex = reindex || changed
		}

		saved, err = tx.GetArticle(ctx, article.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if reindex {
		s.sync.Sync(ctx, saved)
	}
	return saved, nil
}

// DeleteArticle removes an article the actor owns and its document.
func (s *ArticleService) DeleteArticle(ctx context.Context, actor *domain.User, articleID string) error {
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		article, err := tx.GetArticle(ctx, articleID)
		if err != nil {
			return notFound(err, "article", articleID)
		}
		if err := authorize(actor, authz.ResourceArticles, authz.ActionDestroy, authz.Attrs{ID: article.ID, OwnerID: article.UserID}); err != nil {
			return err
		}
		return tx.DeleteArticle(ctx, articleID)
	})
	if err != nil {
		return err
	}

	s.sync.Remove(ctx, articleID)
	s.logger.Info("article deleted", slog.String("article_id", articleID))
	return nil
}

// GetArticle returns one article. Guests may read.
func (s *ArticleService) GetArticle(ctx context.Context, actor *domain.User, articleID string) (*domain.Article, error) {
	if err := authorize(actor, authz.ResourceArticles, authz.ActionShow, authz.Attrs{ID: articleID}); err != nil {
		return nil, err
	}
	article, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, notFound(err, "article", articleID)
	}
	return article, nil
}

// ListArticles returns a page of articles, newest first.
func (s *ArticleService) ListArticles(ctx context.Context, actor *domain.User, params store.PaginationParams) (*store.PaginatedResult[*domain.Article], error) {
	if err := authorize(actor, authz.ResourceArticles, authz.ActionIndex, authz.Attrs{}); err != nil {
		return nil, err
	}
	result, err := s.store.ListArticles(ctx, params)
	if errorsIsInvalidCursor(err) {
		return nil, domainerrors.Validation("invalid cursor")
	}
	return result, err
}

// SearchArticles runs one index query and loads the matching articles in
// result order.
func (s *ArticleService) SearchArticles(ctx context.Context, actor *domain.User, req SearchArticlesRequest) ([]*domain.Article, error) {
	if err := authorize(actor, authz.ResourceArticles, authz.ActionSearch, authz.Attrs{}); err != nil {
		return nil, err
	}

	var (
		ids []string
		err error
	)
	switch {
	case req.Tag != "":
		ids, err = s.searcher.SearchByTag(ctx, req.Tag, req.Limit)
	case req.Category != "":
		ids, err = s.searcher.SearchByCategory(ctx, req.Category, req.Limit)
	case req.Query != "":
		ids, err = s.searcher.SearchAll(ctx, req.Query, req.Limit)
	default:
		return nil, domainerrors.Validation("one of q, tag or category is required")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}
	if len(ids) == 0 {
		return []*domain.Article{}, nil
	}

	// The index can briefly hold documents for deleted articles; those IDs
	// are simply absent from the result.
	return s.store.GetArticlesByIDs(ctx, ids)
}

// reconcileTags makes the article's tags equal to the names in raw.
// Existing links keep their order and new ones are appended. Tag rows are
// created on demand and never deleted. It reports whether the set changed.
func reconcileTags(ctx context.Context, tx store.Tx, article *domain.Article, raw string) (bool, error) {
	desired := domain.ParseTagList(raw)
	toLink, toUnlink := domain.DiffNames(domain.TagNames(article.Tags), desired)

	byName := make(map[string]*domain.Tag, len(desired))
	for _, name := range desired {
		tag, _, err := tx.FindOrCreateTagByName(ctx, name)
		if err != nil {
			return false, fmt.Errorf("find or create tag %q: %w", name, err)
		}
		byName[name] = tag
	}

	for _, name := range toUnlink {
		i := slices.IndexFunc(article.Tags, func(t domain.Tag) bool { return t.Name == name })
		if err := tx.UnlinkArticleTag(ctx, article.ID, article.Tags[i].ID); err != nil {
			return false, fmt.Errorf("unlink tag %q: %w", name, err)
		}
	}
	for _, name := range toLink {
		if err := tx.LinkArticleTag(ctx, article.ID, byName[name].ID); err != nil {
			return false, fmt.Errorf("link tag %q: %w", name, err)
		}
	}

	return len(toLink)+len(toUnlink) > 0, nil
}

// reconcileCategories makes the article's categories equal to categoryIDs
// with the same ordering rules as tags. Unknown IDs are invalid references.
func reconcileCategories(ctx context.Context, tx store.Tx, article *domain.Article, categoryIDs []string) (bool, error) {
	desired := make([]string, 0, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		if categoryID == "" || slices.Contains(desired, categoryID) {
			continue
		}
		if _, err := tx.GetCategory(ctx, categoryID); err != nil {
			return false, invalidReference(err, "category", categoryID)
		}
		desired = append(desired, categoryID)
	}

	toLink, toUnlink := domain.DiffNames(article.CategoryIDs(), desired)
	for _, categoryID := range toUnlink {
		if err := tx.UnlinkArticleCategory(ctx, article.ID, categoryID); err != nil {
			return false, fmt.Errorf("unlink category %s: %w", categoryID, err)
		}
	}
	for _, categoryID := range toLink {
		if err := tx.LinkArticleCategory(ctx, article.ID, categoryID); err != nil {
			return false, fmt.Errorf("link category %s: %w", categoryID, err)
		}
	}
	return len(toLink)+len(toUnlink) > 0, nil
}
