package service

import (
	"context"

	"github.com/baraza/baraza-server/internal/authz"
	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/store"
)

// TagService exposes the global tag list. Tags are created and linked
// only through article saves.
type TagService struct {
	store store.Store
}

// NewTagService creates a tag service.
func NewTagService(store store.Store) *TagService {
	return &TagService{store: store}
}

// ListTags returns all tags ordered by name.
func (s *TagService) ListTags(ctx context.Context, actor *domain.User) ([]*domain.Tag, error) {
	if err := authorize(actor, authz.ResourceTags, authz.ActionIndex, authz.Attrs{}); err != nil {
		return nil, err
	}
	return s.store.ListTags(ctx)
}
