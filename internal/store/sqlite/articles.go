package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/store"
)

// articleColumns must match the scan order in scanArticle.
const articleColumns = `id, title, content, summary, cover_image, user_id, created_at, updated_at`

func scanArticle(scanner interface{ Scan(dest ...any) error }) (*domain.Article, error) {
	var (
		a                    domain.Article
		createdAt, updatedAt string
	)
	err := scanner.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Summary,
		&a.CoverImage,
		&a.UserID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	a.Tags = []domain.Tag{}
	a.Categories = []domain.Category{}
	return &a, nil
}

// CreateArticle inserts the article row. Tags and categories are linked
// separately.
func (q *queries) CreateArticle(ctx context.Context, a *domain.Article) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Title,
		a.Content,
		a.Summary,
		a.CoverImage,
		a.UserID,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// UpdateArticle overwrites the article row.
func (q *queries) UpdateArticle(ctx context.Context, a *domain.Article) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE articles SET title = ?, content = ?, summary = ?, cover_image = ?, updated_at = ?
		WHERE id = ?`,
		a.Title, a.Content, a.Summary, a.CoverImage, formatTime(a.UpdatedAt), a.ID)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return expectOneRow(res)
}

// GetArticle retrieves an article with its tags and categories.
func (q *queries) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := q.loadAssociations(ctx, []*domain.Article{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// GetArticlesByIDs returns the articles that exist, in the order of ids.
func (q *queries) GetArticlesByIDs(ctx context.Context, ids []string) ([]*domain.Article, error) {
	if len(ids) == 0 {
		return []*domain.Article{}, nil
	}
	in, args := inClause(ids)
	articles, err := q.queryArticles(ctx, `SELECT `+articleColumns+` FROM articles WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	ordered := make([]*domain.Article, 0, len(articles))
	for _, articleID := range ids {
		if a, ok := byID[articleID]; ok {
			ordered = append(ordered, a)
			delete(byID, articleID)
		}
	}
	return ordered, nil
}

// ListArticles returns one page of articles, newest first.
func (q *queries) ListArticles(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Article], error) {
	params.Normalize()
	cursor, err := store.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	args := []any{}
	if cursor != nil {
		ts := formatTime(cursor.CreatedAt)
		query += ` WHERE created_at < ? OR (created_at = ? AND id < ?)`
		args = append(args, ts, ts, cursor.ID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, params.Limit+1)

	articles, err := q.queryArticles(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	result := &store.PaginatedResult[*domain.Article]{Items: articles}
	if len(articles) > params.Limit {
		result.Items = articles[:params.Limit]
		last := result.Items[len(result.Items)-1]
		result.HasMore = true
		result.NextCursor = store.EncodeCursor(store.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// ListAllArticleIDs returns every article ID. Used to rebuild the search index.
func (q *queries) ListAllArticleIDs(ctx context.Context) ([]string, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT id FROM articles ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var articleID string
		if err := rows.Scan(&articleID); err != nil {
			return nil, err
		}
		ids = append(ids, articleID)
	}
	return ids, rows.Err()
}

// DeleteArticle removes an article; its links cascade.
func (q *queries) DeleteArticle(ctx context.Context, id string) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return expectOneRow(res)
}

// LinkArticleTag appends a tag to the article. Linking twice is a no-op.
func (q *queries) LinkArticleTag(ctx context.Context, articleID, tagID string) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO article_tags (article_id, tag_id) VALUES (?, ?)`, articleID, tagID)
	if err != nil {
		return fmt.Errorf("link tag: %w", err)
	}
	return nil
}

// UnlinkArticleTag removes the association only; the tag row stays.
func (q *queries) UnlinkArticleTag(ctx context.Context, articleID, tagID string) error {
	_, err := q.q.ExecContext(ctx,
		`DELETE FROM article_tags WHERE article_id = ? AND tag_id = ?`, articleID, tagID)
	if err != nil {
		return fmt.Errorf("unlink tag: %w", err)
	}
	return nil
}

// LinkArticleCategory appends a category to the article.
func (q *queries) LinkArticleCategory(ctx context.Context, articleID, categoryID string) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO article_categories (article_id, category_id) VALUES (?, ?)`, articleID, categoryID)
	if err != nil {
		return fmt.Errorf("link category: %w", err)
	}
	return nil
}

// UnlinkArticleCategory removes a category from the article.
func (q *queries) UnlinkArticleCategory(ctx context.Context, articleID, categoryID string) error {
	_, err := q.q.ExecContext(ctx,
		`DELETE FROM article_categories WHERE article_id = ? AND category_id = ?`, articleID, categoryID)
	if err != nil {
		return fmt.Errorf("unlink category: %w", err)
	}
	return nil
}

func (q *queries) queryArticles(ctx context.Context, query string, args ...any) ([]*domain.Article, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	articles := []*domain.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := q.loadAssociations(ctx, articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// loadAssociations fills Tags and Categories in link order with two queries.
func (q *queries) loadAssociations(ctx context.Context, articles []*domain.Article) error {
	if len(articles) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Article, len(articles))
	ids := make([]string, len(articles))
	for i, a := range articles {
		byID[a.ID] = a
		ids[i] = a.ID
	}
	in, args := inClause(ids)

	tagRows, err := q.q.QueryContext(ctx, `
		SELECT at.article_id, t.id, t.name, t.created_at
		FROM article_tags at JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id IN (`+in+`)
		ORDER BY at.seq ASC`, args...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for tagRows.Next() {
		var (
			articleID string
			t         domain.Tag
			createdAt string
		)
		if err := tagRows.Scan(&articleID, &t.ID, &t.Name, &createdAt); err != nil {
			tagRows.Close()
			return err
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			tagRows.Close()
			return err
		}
		byID[articleID].Tags = append(byID[articleID].Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		tagRows.Close()
		return err
	}
	tagRows.Close()

	catRows, err := q.q.QueryContext(ctx, `
		SELECT ac.article_id, c.id, c.name, c.slug, c.created_at, c.updated_at
		FROM article_categories ac JOIN categories c ON c.id = ac.category_id
		WHERE ac.article_id IN (`+in+`)
		ORDER BY ac.seq ASC`, args...)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var articleID string
		c, err := scanCategory(prefixed{catRows, &articleID})
		if err != nil {
			return err
		}
		byID[articleID].Categories = append(byID[articleID].Categories, *c)
	}
	return catRows.Err()
}

// prefixed scans one leading column into head before handing the rest to
// a row scanner written for the unprefixed column list.
type prefixed struct {
	rows *sql.Rows
	head *string
}

func (p prefixed) Scan(dest ...any) error {
	return p.rows.Scan(append([]any{p.head}, dest...)...)
}
