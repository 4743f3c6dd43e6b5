package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns every tag ever used, including tags no article links to anymore",
		Tags:        []string{"Tags"},
		Security:    bearer,
	}, s.handleListTags)
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID"`
	Name      string    `json:"name" doc:"Tag name, case-sensitive"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// ListTagsOutput wraps a list of tags for Huma.
type ListTagsOutput struct {
	Body struct {
		Tags []TagResponse `json:"tags" doc:"List of tags"`
	}
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.ListTags(ctx, currentUser(ctx))
	if err != nil {
		return nil, err
	}
	out := &ListTagsOutput{}
	out.Body.Tags = make([]TagResponse, len(tags))
	for i, t := range tags {
		out.Body.Tags[i] = TagResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
	}
	return out, nil
}
