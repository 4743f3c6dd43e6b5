package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ContentCheckpoint returns the latest updated_at across articles,
// categories and newsletters, or the zero time for an empty database.
func (s *Store) ContentCheckpoint(ctx context.Context) (time.Time, error) {
	var maxUpdated sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(updated_at) FROM (
			SELECT updated_at FROM articles
			UNION ALL
			SELECT updated_at FROM categories
			UNION ALL
			SELECT updated_at FROM newsletters
		)`).Scan(&maxUpdated)
	if err != nil {
		return time.Time{}, fmt.Errorf("query content checkpoint: %w", err)
	}
	if !maxUpdated.Valid || maxUpdated.String == "" {
		return time.Time{}, nil
	}

	t, err := parseTime(maxUpdated.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse checkpoint time: %w", err)
	}
	return t, nil
}
