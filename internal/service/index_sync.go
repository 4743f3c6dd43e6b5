package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/baraza/baraza-server/internal/domain"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/search"
	"github.com/baraza/baraza-server/internal/store"
)

// ArticleIndexer is the write side of the search index.
type ArticleIndexer interface {
	IndexArticle(doc *search.ArticleDocument) error
	IndexArticles(docs []*search.ArticleDocument) error
	DeleteArticle(id string) error
}

// reindexChunk bounds how many articles are loaded at once by ReindexAll.
const reindexChunk = 200

// IndexSync pushes article documents to the search index after the
// database has committed. Index failures are logged and swallowed: the
// database stays the source of truth.
type IndexSync struct {
	store  store.Store
	index  ArticleIndexer
	logger *slog.Logger
}

// NewIndexSync creates the index synchronizer.
func NewIndexSync(store store.Store, index ArticleIndexer, logger *slog.Logger) *IndexSync {
	return &IndexSync{store: store, index: index, logger: logger}
}

// Sync replaces the article's document and waits for the write.
func (s *IndexSync) Sync(_ context.Context, article *domain.Article) {
	if err := s.index.IndexArticle(search.FromArticle(article)); err != nil {
		s.warn(domainerrors.IndexWrite(err, "index article "+article.ID), article.ID)
	}
}

// Remove drops the article's document.
func (s *IndexSync) Remove(_ context.Context, articleID string) {
	if err := s.index.DeleteArticle(articleID); err != nil {
		s.warn(domainerrors.IndexWrite(err, "delete article "+articleID), articleID)
	}
}

func (s *IndexSync) warn(err error, articleID string) {
	s.logger.Warn("search index write failed",
		slog.String("article_id", articleID),
		slog.String("error", err.Error()),
	)
}

// ReindexAll rebuilds every document from the store and returns how many
// were written. Unlike Sync it reports failure, since it runs at startup.
func (s *IndexSync) ReindexAll(ctx context.Context) (int, error) {
	ids, err := s.store.ListAllArticleIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list article ids: %w", err)
	}

	written := 0
	for start := 0; start < len(ids); start += reindexChunk {
		end := min(start+reindexChunk, len(ids))
		articles, err := s.store.GetArticlesByIDs(ctx, ids[start:end])
		if err != nil {
			return written, fmt.Errorf("load articles: %w", err)
		}
		docs := make([]*search.ArticleDocument, 0, len(articles))
		for _, a := range articles {
			docs = append(docs, search.FromArticle(a))
		}
		if err := s.index.IndexArticles(docs); err != nil {
			return written, domainerrors.IndexWrite(err, "reindex articles")
		}
		written += len(docs)
	}

	s.logger.Info("search index rebuilt", slog.Int("articles", written))
	return written, nil
}
