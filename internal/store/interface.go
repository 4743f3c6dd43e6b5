// Package store defines the persistence interface for the Baraza server.
package store

import (
	"context"
	"time"

	"github.com/baraza/baraza-server/internal/domain"
)

// Store is the persistence root. Every operation of Tx is also available
// directly, running in its own implicit transaction.
type Store interface {
	Tx

	// InTx runs fn in one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise, including on panic.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// ContentCheckpoint is the latest update time across articles,
	// categories and newsletters.
	ContentCheckpoint(ctx context.Context) (time.Time, error)

	Close() error
}

// Tx groups the operations that may take part in a transaction.
type Tx interface {
	UserStore
	ArticleStore
	TagStore
	CategoryStore
	NewsletterStore
	SubscriberStore
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// ArticleStore persists articles and their tag and category links.
// Reads return articles with Tags and Categories in association order.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article *domain.Article) error
	UpdateArticle(ctx context.Context, article *domain.Article) error
	GetArticle(ctx context.Context, id string) (*domain.Article, error)
	GetArticlesByIDs(ctx context.Context, ids []string) ([]*domain.Article, error)
	ListArticles(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Article], error)
	ListAllArticleIDs(ctx context.Context) ([]string, error)
	DeleteArticle(ctx context.Context, id string) error

	LinkArticleTag(ctx context.Context, articleID, tagID string) error
	UnlinkArticleTag(ctx context.Context, articleID, tagID string) error
	LinkArticleCategory(ctx context.Context, articleID, categoryID string) error
	UnlinkArticleCategory(ctx context.Context, articleID, categoryID string) error
}

// TagStore persists tags. Tag rows are never deleted.
type TagStore interface {
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	// FindOrCreateTagByName returns the tag with exactly name, creating it
	// when missing. created reports whether a row was inserted.
	FindOrCreateTagByName(ctx context.Context, name string) (tag *domain.Tag, created bool, err error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	CountTags(ctx context.Context) (int, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// NewsletterStore persists the newsletter aggregate as a whole: the
// status row, the article pool and every category slot with its articles.
type NewsletterStore interface {
	CreateNewsletter(ctx context.Context, n *domain.Newsletter) error
	GetNewsletter(ctx context.Context, id string) (*domain.Newsletter, error)
	ListNewsletters(ctx context.Context, status domain.NewsletterStatus) ([]*domain.Newsletter, error)
	SaveNewsletter(ctx context.Context, n *domain.Newsletter) error
}

// SubscriberStore persists newsletter subscribers.
type SubscriberStore interface {
	CreateSubscriber(ctx context.Context, s *domain.Subscriber) error
	GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	ListSubscribers(ctx context.Context) ([]*domain.Subscriber, error)
	DeleteSubscriber(ctx context.Context, id string) error
}
