package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/id"
	"github.com/baraza/baraza-server/internal/store"
)

const tagColumns = `id, name, created_at`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)
	if err := scanner.Scan(&t.ID, &t.Name, &createdAt); err != nil {
		return nil, err
	}
	var err error
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTag inserts a tag. Returns store.ErrAlreadyExists on duplicate name.
func (q *queries) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, formatTime(t.CreatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetTagByName looks a tag up by exact, case-sensitive name.
func (q *queries) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE name = ?`, name)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return t, err
}

// FindOrCreateTagByName finds the tag named name or creates it.
func (q *queries) FindOrCreateTagByName(ctx context.Context, name string) (*domain.Tag, bool, error) {
	existing, err := q.GetTagByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, false, fmt.Errorf("generate tag id: %w", err)
	}
	t := &domain.Tag{ID: tagID, Name: name, CreatedAt: time.Now().UTC()}

	if err := q.CreateTag(ctx, t); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent writer.
			existing, err := q.GetTagByName(ctx, name)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return t, true, nil
}

// ListTags returns all tags ordered by name.
func (q *queries) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CountTags returns the number of tag rows.
func (q *queries) CountTags(ctx context.Context) (int, error) {
	var n int
	err := q.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n)
	return n, err
}
