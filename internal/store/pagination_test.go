package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 123, time.UTC), ID: "art-abc"}

	out, err := DecodeCursor(EncodeCursor(in))
	require.NoError(t, err)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	got, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor("bm8tc2VwYXJhdG9y")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestPaginationParams_Normalize(t *testing.T) {
	p := PaginationParams{}
	p.Normalize()
	assert.Equal(t, DefaultPageSize, p.Limit)

	p = PaginationParams{Limit: 10_000}
	p.Normalize()
	assert.Equal(t, MaxPageSize, p.Limit)
}
