package search

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{
		DataPath:    t.TempDir(),
		Environment: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func testArticle(id, title, content string, tags []string, categories []string) *domain.Article {
	a := &domain.Article{Record: domain.Record{ID: id}, Title: title, Content: content}
	for _, name := range tags {
		a.Tags = append(a.Tags, domain.Tag{Name: name})
	}
	for _, name := range categories {
		a.Categories = append(a.Categories, domain.Category{Name: name})
	}
	return a
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	assert.True(t, index.Created())
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
	assert.Equal(t, "articles_test.bleve", filepath.Base(index.path))
}

func TestNewSearchIndex_ReopenKeepsDocuments(t *testing.T) {
	dir := t.TempDir()

	index, err := NewSearchIndex(Options{DataPath: dir, Environment: "test"})
	require.NoError(t, err)
	require.NoError(t, index.IndexArticle(FromArticle(testArticle("art-1", "Tides", "", nil, nil))))
	require.NoError(t, index.Close())

	reopened, err := NewSearchIndex(Options{DataPath: dir, Environment: "test"})
	require.NoError(t, err)
	defer reopened.Close()

	assert.False(t, reopened.Created())
	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestNewSearchIndex_VersionMismatchRecreates(t *testing.T) {
	dir := t.TempDir()

	index, err := NewSearchIndex(Options{DataPath: dir, Environment: "test"})
	require.NoError(t, err)
	require.NoError(t, index.IndexArticle(FromArticle(testArticle("art-1", "Tides", "", nil, nil))))
	require.NoError(t, index.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "articles_test.version"), []byte("0"), 0o644))

	reopened, err := NewSearchIndex(Options{DataPath: dir, Environment: "test"})
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, reopened.Created())
	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, "articles_production", IndexName("production"))
	assert.Equal(t, "articles_development", IndexName(""))
}

func TestFromArticle_DocumentShape(t *testing.T) {
	a := testArticle("art-1", "On Rivers", "Water moves.", []string{"history", "science"}, []string{"Nature"})
	a.Summary = "not indexed"

	raw, err := json.Marshal(FromArticle(a))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "art-1",
		"title": "On Rivers",
		"content": "Water moves.",
		"tags": [{"name": "history"}, {"name": "science"}],
		"categories": [{"name": "Nature"}]
	}`, string(raw))
}

func TestFromArticle_EmptyAssociations(t *testing.T) {
	doc := FromArticle(testArticle("art-1", "t", "c", nil, nil))

	m := doc.ToMap()
	assert.Equal(t, []any{}, m["tags"])
	assert.Equal(t, []any{}, m["categories"])
	assert.Len(t, m, 5)
}

func TestSearchIndex_IndexArticle_Replaces(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexArticle(FromArticle(testArticle("art-1", "t", "c", []string{"history"}, nil))))
	require.NoError(t, index.IndexArticle(FromArticle(testArticle("art-1", "t", "c", []string{"science"}, nil))))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ids, err := index.SearchByTag(ctx, "history", 0)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = index.SearchByTag(ctx, "science", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"art-1"}, ids)
}

func TestSearchIndex_IndexArticle_RequiresID(t *testing.T) {
	index := setupTestIndex(t)
	assert.Error(t, index.IndexArticle(&ArticleDocument{Title: "orphan"}))
}

func TestSearchIndex_SearchByTag_ExactName(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexArticles([]*ArticleDocument{
		FromArticle(testArticle("art-1", "a", "", []string{"Cold War"}, nil)),
		FromArticle(testArticle("art-2", "b", "", []string{"cold"}, nil)),
	}))

	ids, err := index.SearchByTag(ctx, "Cold War", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"art-1"}, ids)

	ids, err = index.SearchByTag(ctx, "cold war", 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchIndex_SearchByCategory(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexArticles([]*ArticleDocument{
		FromArticle(testArticle("art-1", "a", "", nil, []string{"Arts & Culture"})),
		FromArticle(testArticle("art-2", "b", "", nil, []string{"Arts & Culture", "Science"})),
		FromArticle(testArticle("art-3", "c", "", nil, []string{"Science"})),
	}))

	ids, err := index.SearchByCategory(ctx, "Arts & Culture", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"art-1", "art-2"}, ids)
}

func TestSearchIndex_SearchAll(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexArticles([]*ArticleDocument{
		FromArticle(testArticle("art-1", "Running rivers", "", nil, nil)),
		FromArticle(testArticle("art-2", "Maps", "The runner crossed a river.", nil, nil)),
		FromArticle(testArticle("art-3", "Other", "", []string{"rivers"}, nil)),
		FromArticle(testArticle("art-4", "Unrelated", "Mountains only.", nil, nil)),
	}))

	ids, err := index.SearchAll(ctx, "rivers", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"art-1", "art-2", "art-3"}, ids)

	ids, err = index.SearchAll(ctx, "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchIndex_DeleteArticle(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexArticle(FromArticle(testArticle("art-1", "t", "", nil, nil))))
	require.NoError(t, index.DeleteArticle("art-1"))
	require.NoError(t, index.DeleteArticle("art-missing"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexArticle(FromArticle(testArticle("art-1", "t", "", nil, nil))))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
