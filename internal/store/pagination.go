package store

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Pagination bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// PaginationParams requests one page of a keyset-paginated listing.
type PaginationParams struct {
	Limit  int
	Cursor string
}

// PaginatedResult contains one page of data.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// Normalize clamps Limit into range.
func (p *PaginationParams) Normalize() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
}

// Cursor is the position after which the next page starts. Listings are
// ordered newest first with ID as the tie breaker.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor makes an opaque cursor.
func EncodeCursor(c Cursor) string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor. An empty cursor decodes to nil.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor.WithCause(err)
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor.WithCause(fmt.Errorf("malformed cursor %q", raw))
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor.WithCause(err)
	}
	return &Cursor{CreatedAt: createdAt, ID: id}, nil
}
