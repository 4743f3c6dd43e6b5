package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/store"
)

const newsletterColumns = `id, status, approved_at, rejected_at, sent_at, created_at, updated_at`

func scanNewsletter(scanner interface{ Scan(dest ...any) error }) (*domain.Newsletter, error) {
	var (
		n                              domain.Newsletter
		status                         string
		approvedAt, rejectedAt, sentAt sql.NullString
		createdAt, updatedAt           string
	)
	err := scanner.Scan(&n.ID, &status, &approvedAt, &rejectedAt, &sentAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	n.Status = domain.NewsletterStatus(status)
	if n.ApprovedAt, err = parseNullableTime(approvedAt); err != nil {
		return nil, err
	}
	if n.RejectedAt, err = parseNullableTime(rejectedAt); err != nil {
		return nil, err
	}
	if n.SentAt, err = parseNullableTime(sentAt); err != nil {
		return nil, err
	}
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	n.Articles = []domain.NewsletterArticle{}
	n.Categories = []domain.CategoryNewsletter{}
	return &n, nil
}

// CreateNewsletter inserts the newsletter and its composition.
func (q *queries) CreateNewsletter(ctx context.Context, n *domain.Newsletter) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO newsletters (`+newsletterColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		string(n.Status),
		nullTimeString(n.ApprovedAt),
		nullTimeString(n.RejectedAt),
		nullTimeString(n.SentAt),
		formatTime(n.CreatedAt),
		formatTime(n.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert newsletter: %w", err)
	}
	return q.writeComposition(ctx, n)
}

// SaveNewsletter updates the status row and replaces the composition.
// Callers run it inside InTx so the replacement is atomic.
func (q *queries) SaveNewsletter(ctx context.Context, n *domain.Newsletter) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE newsletters SET status = ?, approved_at = ?, rejected_at = ?, sent_at = ?, updated_at = ?
		WHERE id = ?`,
		string(n.Status),
		nullTimeString(n.ApprovedAt),
		nullTimeString(n.RejectedAt),
		nullTimeString(n.SentAt),
		formatTime(n.UpdatedAt),
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("update newsletter: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}

	for _, stmt := range []string{
		`DELETE FROM newsletter_articles WHERE newsletter_id = ?`,
		`DELETE FROM category_newsletters WHERE newsletter_id = ?`,
	} {
		if _, err := q.q.ExecContext(ctx, stmt, n.ID); err != nil {
			return fmt.Errorf("clear newsletter composition: %w", err)
		}
	}
	return q.writeComposition(ctx, n)
}

func (q *queries) writeComposition(ctx context.Context, n *domain.Newsletter) error {
	for seq, a := range n.Articles {
		_, err := q.q.ExecContext(ctx, `
			INSERT INTO newsletter_articles (newsletter_id, article_id, position_in_newsletter, seq)
			VALUES (?, ?, ?, ?)`,
			n.ID, a.ArticleID, a.Position, seq)
		if err != nil {
			return fmt.Errorf("insert newsletter article %s: %w", a.ArticleID, err)
		}
	}

	for seq, c := range n.Categories {
		_, err := q.q.ExecContext(ctx, `
			INSERT INTO category_newsletters (id, newsletter_id, category_id, position_in_newsletter, seq)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID, n.ID, c.CategoryID, c.Position, seq)
		if err != nil {
			return fmt.Errorf("insert category newsletter %s: %w", c.CategoryID, err)
		}
		for articleSeq, articleID := range c.ArticleIDs {
			_, err := q.q.ExecContext(ctx, `
				INSERT INTO category_newsletter_articles (category_newsletter_id, article_id, seq)
				VALUES (?, ?, ?)`,
				c.ID, articleID, articleSeq)
			if err != nil {
				return fmt.Errorf("insert category newsletter article %s: %w", articleID, err)
			}
		}
	}
	return nil
}

// GetNewsletter loads the full aggregate.
func (q *queries) GetNewsletter(ctx context.Context, id string) (*domain.Newsletter, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+newsletterColumns+` FROM newsletters WHERE id = ?`, id)
	n, err := scanNewsletter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := q.loadComposition(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// ListNewsletters returns newsletters newest first, optionally filtered by
// status. An empty status lists all of them.
func (q *queries) ListNewsletters(ctx context.Context, status domain.NewsletterStatus) ([]*domain.Newsletter, error) {
	query := `SELECT ` + newsletterColumns + ` FROM newsletters`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out := []*domain.Newsletter{}
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, n := range out {
		if err := q.loadComposition(ctx, n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (q *queries) loadComposition(ctx context.Context, n *domain.Newsletter) error {
	rows, err := q.q.QueryContext(ctx, `
		SELECT article_id, position_in_newsletter FROM newsletter_articles
		WHERE newsletter_id = ? ORDER BY position_in_newsletter ASC, seq ASC`, n.ID)
	if err != nil {
		return fmt.Errorf("load newsletter articles: %w", err)
	}
	for rows.Next() {
		var a domain.NewsletterArticle
		if err := rows.Scan(&a.ArticleID, &a.Position); err != nil {
			rows.Close()
			return err
		}
		n.Articles = append(n.Articles, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = q.q.QueryContext(ctx, `
		SELECT id, category_id, position_in_newsletter FROM category_newsletters
		WHERE newsletter_id = ? ORDER BY seq ASC`, n.ID)
	if err != nil {
		return fmt.Errorf("load category newsletters: %w", err)
	}
	for rows.Next() {
		c := domain.CategoryNewsletter{ArticleIDs: []string{}}
		if err := rows.Scan(&c.ID, &c.CategoryID, &c.Position); err != nil {
			rows.Close()
			return err
		}
		n.Categories = append(n.Categories, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for i := range n.Categories {
		c := &n.Categories[i]
		rows, err := q.q.QueryContext(ctx, `
			SELECT article_id FROM category_newsletter_articles
			WHERE category_newsletter_id = ? ORDER BY seq ASC`, c.ID)
		if err != nil {
			return fmt.Errorf("load category newsletter articles: %w", err)
		}
		for rows.Next() {
			var articleID string
			if err := rows.Scan(&articleID); err != nil {
				rows.Close()
				return err
			}
			c.ArticleIDs = append(c.ArticleIDs, articleID)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}
