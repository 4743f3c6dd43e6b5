package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit caps the number of IDs a query returns when limit <= 0.
const DefaultLimit = 100

// SearchByTag returns IDs of articles carrying a tag with exactly this name.
func (s *SearchIndex) SearchByTag(ctx context.Context, name string, limit int) ([]string, error) {
	q := bleve.NewTermQuery(name)
	q.SetField("tags.name")
	return s.ids(ctx, q, limit)
}

// SearchByCategory returns IDs of articles in the category with exactly this name.
func (s *SearchIndex) SearchByCategory(ctx context.Context, name string, limit int) ([]string, error) {
	q := bleve.NewTermQuery(name)
	q.SetField("categories.name")
	return s.ids(ctx, q, limit)
}

// SearchAll matches term against title and content (stemmed) and against
// tag and category names (exact). Results come back best match first.
func (s *SearchIndex) SearchAll(ctx context.Context, term string, limit int) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []string{}, nil
	}

	title := bleve.NewMatchQuery(term)
	title.SetField("title")
	title.SetBoost(2.0)

	content := bleve.NewMatchQuery(term)
	content.SetField("content")

	tag := bleve.NewTermQuery(term)
	tag.SetField("tags.name")

	category := bleve.NewTermQuery(term)
	category.SetField("categories.name")

	return s.ids(ctx, bleve.NewDisjunctionQuery(title, content, tag, category), limit)
}

func (s *SearchIndex) ids(ctx context.Context, q query.Query, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
