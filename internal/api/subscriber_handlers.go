package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSubscriberRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "subscribe",
		Method:        http.MethodPost,
		Path:          "/api/v1/subscribers",
		Summary:       "Subscribe",
		Description:   "Adds an email address to the newsletter list. Subscribing twice is harmless.",
		Tags:          []string{"Subscribers"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimited},
	}, s.handleSubscribe)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSubscribers",
		Method:      http.MethodGet,
		Path:        "/api/v1/subscribers",
		Summary:     "List subscribers",
		Tags:        []string{"Subscribers"},
		Security:    bearer,
	}, s.handleListSubscribers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSubscriber",
		Method:        http.MethodDelete,
		Path:          "/api/v1/subscribers/{id}",
		Summary:       "Remove subscriber",
		Tags:          []string{"Subscribers"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteSubscriber)
}

// SubscriberResponse contains subscriber data in API responses.
type SubscriberResponse struct {
	ID        string    `json:"id" doc:"Subscriber ID"`
	Email     string    `json:"email" doc:"Email address"`
	CreatedAt time.Time `json:"created_at" doc:"Subscription time"`
}

// SubscribeInput wraps the subscribe request for Huma.
type SubscribeInput struct {
	Body struct {
		Email string `json:"email" doc:"Email address"`
	}
}

// SubscriberOutput wraps a subscriber for Huma.
type SubscriberOutput struct {
	Body SubscriberResponse
}

// ListSubscribersOutput wraps the mailing list for Huma.
type ListSubscribersOutput struct {
	Body struct {
		Subscribers []SubscriberResponse `json:"subscribers" doc:"All subscribers"`
	}
}

// SubscriberIDInput addresses one subscriber.
type SubscriberIDInput struct {
	ID string `path:"id" doc:"Subscriber ID"`
}

func (s *Server) handleSubscribe(ctx context.Context, input *SubscribeInput) (*SubscriberOutput, error) {
	sub, err := s.services.Subscriber.Subscribe(ctx, currentUser(ctx), input.Body.Email)
	if err != nil {
		return nil, err
	}
	return &SubscriberOutput{Body: SubscriberResponse{ID: sub.ID, Email: sub.Email, CreatedAt: sub.CreatedAt}}, nil
}

func (s *Server) handleListSubscribers(ctx context.Context, _ *struct{}) (*ListSubscribersOutput, error) {
	subs, err := s.services.Subscriber.ListSubscribers(ctx, currentUser(ctx))
	if err != nil {
		return nil, err
	}
	out := &ListSubscribersOutput{}
	out.Body.Subscribers = make([]SubscriberResponse, len(subs))
	for i, sub := range subs {
		out.Body.Subscribers[i] = SubscriberResponse{ID: sub.ID, Email: sub.Email, CreatedAt: sub.CreatedAt}
	}
	return out, nil
}

func (s *Server) handleDeleteSubscriber(ctx context.Context, input *SubscriberIDInput) (*struct{}, error) {
	if err := s.services.Subscriber.DeleteSubscriber(ctx, currentUser(ctx), input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
