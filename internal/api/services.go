package api

import (
	"github.com/baraza/baraza-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth       *service.AuthService
	User       *service.UserService
	Article    *service.ArticleService
	Tag        *service.TagService
	Category   *service.CategoryService
	Newsletter *service.NewsletterService
	Subscriber *service.SubscriberService
}

// IndexStats reports the size of the search index.
type IndexStats interface {
	DocumentCount() (uint64, error)
}
