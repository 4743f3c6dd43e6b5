package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/store"
)

func scanSubscriber(scanner interface{ Scan(dest ...any) error }) (*domain.Subscriber, error) {
	var (
		s         domain.Subscriber
		createdAt string
	)
	if err := scanner.Scan(&s.ID, &s.Email, &createdAt); err != nil {
		return nil, err
	}
	var err error
	s.CreatedAt, err = parseTime(createdAt)
	return &s, err
}

// CreateSubscriber inserts a subscriber. Emails are unique ignoring case.
func (q *queries) CreateSubscriber(ctx context.Context, s *domain.Subscriber) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO subscribers (id, email, created_at) VALUES (?, ?, ?)`,
		s.ID, s.Email, formatTime(s.CreatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetSubscriberByEmail looks a subscriber up ignoring case.
func (q *queries) GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	row := q.q.QueryRowContext(ctx, `SELECT id, email, created_at FROM subscribers WHERE email = ?`, email)
	s, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return s, err
}

// ListSubscribers returns all subscribers, oldest first.
func (q *queries) ListSubscribers(ctx context.Context) ([]*domain.Subscriber, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT id, email, created_at FROM subscribers ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Subscriber{}
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSubscriber removes a subscriber.
func (q *queries) DeleteSubscriber(ctx context.Context, id string) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM subscribers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return expectOneRow(res)
}
