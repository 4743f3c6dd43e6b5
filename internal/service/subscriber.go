package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/baraza/baraza-server/internal/authz"
	"github.com/baraza/baraza-server/internal/domain"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/id"
	"github.com/baraza/baraza-server/internal/store"
	"github.com/baraza/baraza-server/internal/validation"
)

// SubscriberService manages the newsletter mailing list.
type SubscriberService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSubscriberService creates a subscriber service.
func NewSubscriberService(store store.Store, validator *validation.Validator, logger *slog.Logger) *SubscriberService {
	return &SubscriberService{store: store, validator: validator, logger: logger}
}

// Subscribe adds email to the list. Subscribing twice returns the
// existing subscription.
func (s *SubscriberService) Subscribe(ctx context.Context, actor *domain.User, email string) (*domain.Subscriber, error) {
	if err := authorize(actor, authz.ResourceSubscribers, authz.ActionCreate, authz.Attrs{}); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if err := s.validator.Var("email", email, "required,email"); err != nil {
		return nil, err
	}

	if existing, err := s.store.GetSubscriberByEmail(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	subscriberID, err := id.Generate(id.PrefixSubscriber)
	if err != nil {
		return nil, err
	}
	sub := &domain.Subscriber{ID: subscriberID, Email: email}
	sub.CreatedAt = nowUTC()

	if err := s.store.CreateSubscriber(ctx, sub); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.store.GetSubscriberByEmail(ctx, email)
		}
		return nil, err
	}
	s.logger.Info("subscriber added", slog.String("subscriber_id", sub.ID))
	return sub, nil
}

// ListSubscribers returns the list to an administrator.
func (s *SubscriberService) ListSubscribers(ctx context.Context, actor *domain.User) ([]*domain.Subscriber, error) {
	if err := authorize(actor, authz.ResourceSubscribers, authz.ActionIndex, authz.Attrs{}); err != nil {
		return nil, err
	}
	return s.store.ListSubscribers(ctx)
}

// DeleteSubscriber removes a subscriber.
func (s *SubscriberService) DeleteSubscriber(ctx context.Context, actor *domain.User, subscriberID string) error {
	if err := authorize(actor, authz.ResourceSubscribers, authz.ActionDestroy, authz.Attrs{ID: subscriberID}); err != nil {
		return err
	}
	if err := s.store.DeleteSubscriber(ctx, subscriberID); err != nil {
		return notFound(err, "subscriber", subscriberID)
	}
	return nil
}

var errNoEmail = domainerrors.Validation("user has no email address")
