package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/store"
)

const categoryColumns = `id, name, slug, created_at, updated_at`

func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var (
		c                    domain.Category
		createdAt, updatedAt string
	)
	if err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts a category. Name and slug are unique.
func (q *queries) CreateCategory(ctx context.Context, c *domain.Category) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (q *queries) getCategoryWhere(ctx context.Context, where string, arg any) (*domain.Category, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE `+where, arg)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return c, err
}

// GetCategory retrieves a category by ID.
func (q *queries) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return q.getCategoryWhere(ctx, "id = ?", id)
}

// GetCategoryBySlug retrieves a category by slug.
func (q *queries) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return q.getCategoryWhere(ctx, "slug = ?", slug)
}

// ListCategories returns all categories ordered by name.
func (q *queries) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
