package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/baraza/baraza-server/internal/authz"
	"github.com/baraza/baraza-server/internal/domain"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/id"
	"github.com/baraza/baraza-server/internal/mail"
	"github.com/baraza/baraza-server/internal/store"
	"github.com/baraza/baraza-server/internal/validation"
)

// NewsletterMailer delivers an approved newsletter.
type NewsletterMailer interface {
	SendNewsletter(ctx context.Context, sections []mail.CategorySection, subscribers []string) (string, error)
}

// NewsletterService curates newsletters. Every write loads the aggregate,
// applies domain operations to it and saves it whole inside one
// transaction, so a failed step leaves the stored newsletter untouched.
type NewsletterService struct {
	store     store.Store
	mailer    NewsletterMailer
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewNewsletterService creates a newsletter service.
func NewNewsletterService(store store.Store, mailer NewsletterMailer, validator *validation.Validator, logger *slog.Logger) *NewsletterService {
	return &NewsletterService{
		store:     store,
		mailer:    mailer,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateNewsletterRequest starts a draft with its categories and
// candidate articles.
type CreateNewsletterRequest struct {
	CategoryIDs []string `json:"category_ids" validate:"dive,required"`
	ArticleIDs  []string `json:"article_ids" validate:"dive,required"`
}

// CreateNewsletter stores a new draft.
func (s *NewsletterService) CreateNewsletter(ctx context.Context, actor *domain.User, req CreateNewsletterRequest) (*domain.Newsletter, error) {
	if err := authorize(actor, authz.ResourceNewsletters, authz.ActionCreate, authz.Attrs{}); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	newsletterID, err := id.Generate(id.PrefixNewsletter)
	if err != nil {
		return nil, err
	}
	n := domain.NewNewsletter(newsletterID)

	err = s.store.InTx(ctx, func(tx store.Tx) error {
		if err := addCategories(ctx, tx, n, req.CategoryIDs); err != nil {
			return err
		}
		if err := attachArticles(ctx, tx, n, req.ArticleIDs); err != nil {
			return err
		}
		return tx.CreateNewsletter(ctx, n)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("newsletter created",
		slog.String("newsletter_id", n.ID),
		slog.Int("categories", len(n.Categories)),
		slog.Int("articles", len(n.Articles)),
	)
	return n, nil
}

// GetNewsletter returns one newsletter.
func (s *NewsletterService) GetNewsletter(ctx context.Context, actor *domain.User, newsletterID string) (*domain.Newsletter, error) {
	if err := authorize(actor, authz.ResourceNewsletters, authz.ActionShow, authz.Attrs{ID: newsletterID}); err != nil {
		return nil, err
	}
	n, err := s.store.GetNewsletter(ctx, newsletterID)
	if err != nil {
		return nil, notFound(err, "newsletter", newsletterID)
	}
	return n, nil
}

// ListNewsletters returns newsletters, newest first. An empty status lists all.
func (s *NewsletterService) ListNewsletters(ctx context.Context, actor *domain.User, status domain.NewsletterStatus) ([]*domain.Newsletter, error) {
	if err := authorize(actor, authz.ResourceNewsletters, authz.ActionIndex, authz.Attrs{}); err != nil {
		return nil, err
	}
	switch status {
	case "", domain.NewsletterDraft, domain.NewsletterApproved, domain.NewsletterRejected:
	default:
		return nil, domainerrors.Validationf("unknown status %q", status)
	}
	return s.store.ListNewsletters(ctx, status)
}

// UpdateNewsletter applies an editor submission: category order, the
// article pool with positions, and approval when commit is "Approve".
func (s *NewsletterService) UpdateNewsletter(ctx context.Context, actor *domain.User, newsletterID string, update domain.NewsletterUpdate) (*domain.Newsletter, error) {
	if err := authorize(actor, authz.ResourceNewsletters, authz.ActionUpdate, authz.Attrs{ID: newsletterID}); err != nil {
		return nil, err
	}
	if update.Approves() {
		if err := authorize(actor, authz.ResourceNewsletters, authz.ActionApprove, authz.Attrs{ID: newsletterID}); err != nil {
			return nil, err
		}
	}

	n, err := s.modify(ctx, newsletterID, func(_ store.Tx, n *domain.Newsletter) error {
		return n.ApplyUpdate(update)
	})
	if err != nil {
		return nil, err
	}

	if update.Approves() {
		s.logger.Info("newsletter approved", slog.String("newsletter_id", n.ID), slog.String("user_id", actor.ID))
	}
	return n, nil
}

// RejectNewsletter moves a draft to rejected.
func (s *NewsletterService) RejectNewsletter(ctx context.Context, actor *domain.User, newsletterID string) (*domain.Newsletter, error) {
	if err := authorize(actor, authz.ResourceNewsletters, authz.ActionReject, authz.Attrs{ID: newsletterID}); err != nil {
		return nil, err
	}
	n, err := s.modify(ctx, newsletterID, func(_ store.Tx, n *domain.Newsletter) error {
		return n.Reject()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("newsletter rejected", slog.String("newsletter_id", n.ID), slog.String("user_id", actor.ID))
	return n, nil
}

// SetCategoryArticles replaces the articles listed under one category.
func (s *NewsletterService) SetCategoryArticles(ctx context.Context, actor *domain.User, newsletterID, categoryID string, articleIDs []string) (*domain.Newsletter, error) {
	if err := authorize(actor, authz.ResourceNewsletters, authz.ActionUpdate, authz.Attrs{ID: newsletterID}); err != nil {
		return nil, err
	}
	return s.modify(ctx, newsletterID, func(_ store.Tx, n *domain.Newsletter) error {
		return n.SetArticles(categoryID, articleIDs)
	})
}

// AttachArticles adds existing articles to the candidate pool.
func (s *NewsletterService) AttachArticles(ctx context.Context, actor *domain.User, newsletterID string, articleIDs []string) (*domain.Newsletter, error) {
	if err := authorize(actor, authz.ResourceNewsletters, authz.ActionUpdate, authz.Attrs{ID: newsletterID}); err != nil {
		return nil, err
	}
	return s.modify(ctx, newsletterID, func(tx store.Tx, n *domain.Newsletter) error {
		return attachArticles(ctx, tx, n, articleIDs)
	})
}

// AddCategory gives an existing category a slot after the current ones.
func (s *NewsletterService) AddCategory(ctx context.Context, actor *domain.User, newsletterID, categoryID string) (*domain.Newsletter, error) {
	if err := authorize(actor, authz.ResourceNewsletters, authz.ActionUpdate, authz.Attrs{ID: newsletterID}); err != nil {
		return nil, err
	}
	return s.modify(ctx, newsletterID, func(tx store.Tx, n *domain.Newsletter) error {
		return addCategories(ctx, tx, n, []string{categoryID})
	})
}

// SendNewsletter mails an approved newsletter to every subscriber as one
// message and records when it went out.
func (s *NewsletterService) SendNewsletter(ctx context.Context, actor *domain.User, newsletterID string) (*domain.Newsletter, error) {
	if err := authorize(actor, authz.ResourceNewsletters, authz.ActionSend, authz.Attrs{ID: newsletterID}); err != nil {
		return nil, err
	}

	n, err := s.store.GetNewsletter(ctx, newsletterID)
	if err != nil {
		return nil, notFound(err, "newsletter", newsletterID)
	}
	if n.Status != domain.NewsletterApproved {
		return nil, domainerrors.InvalidTransitionf("newsletter %s is %s; only approved newsletters are sent", n.ID, n.Status)
	}

	sections, err := s.sections(ctx, n)
	if err != nil {
		return nil, err
	}
	subscribers, err := s.store.ListSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	emails := make([]string, 0, len(subscribers))
	for _, sub := range subscribers {
		emails = append(emails, sub.Email)
	}

	messageID, err := s.mailer.SendNewsletter(ctx, sections, emails)
	if err != nil {
		return nil, err
	}

	sentAt := s.now().UTC()
	n, err = s.modify(ctx, newsletterID, func(_ store.Tx, n *domain.Newsletter) error {
		n.MarkSent(sentAt)
		return nil
	})
	if err != nil {
		s.logger.Error("newsletter delivered but not marked sent",
			slog.String("newsletter_id", newsletterID),
			slog.String("message_id", messageID),
			slog.Time("sent_at", sentAt),
			slog.Int("subscribers", len(emails)),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.Info("newsletter sent",
		slog.String("newsletter_id", n.ID),
		slog.String("message_id", messageID),
		slog.Int("subscribers", len(emails)),
	)
	return n, nil
}

// sections lays the newsletter out for the mail template: categories by
// position, each with its listed articles.
func (s *NewsletterService) sections(ctx context.Context, n *domain.Newsletter) ([]mail.CategorySection, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	out := make([]mail.CategorySection, 0, len(n.Categories))
	for _, entry := range n.OrderedCategories() {
		articles, err := s.store.GetArticlesByIDs(ctx, entry.ArticleIDs)
		if err != nil {
			return nil, fmt.Errorf("load articles for %s: %w", entry.CategoryID, err)
		}
		section := mail.CategorySection{Name: names[entry.CategoryID], Articles: make([]mail.ArticleView, 0, len(articles))}
		for _, a := range articles {
			section.Articles = append(section.Articles, mail.ArticleView{
				Title:      a.Title,
				Summary:    a.Summary,
				CoverImage: a.CoverImage,
			})
		}
		out = append(out, section)
	}
	return out, nil
}

// modify runs fn against the stored newsletter and saves the result in
// one transaction.
func (s *NewsletterService) modify(ctx context.Context, newsletterID string, fn func(tx store.Tx, n *domain.Newsletter) error) (*domain.Newsletter, error) {
	var out *domain.Newsletter
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		n, err := tx.GetNewsletter(ctx, newsletterID)
		if err != nil {
			return notFound(err, "newsletter", newsletterID)
		}
		if err := fn(tx, n); err != nil {
			return err
		}
		if err := tx.SaveNewsletter(ctx, n); err != nil {
			return fmt.Errorf("save newsletter: %w", err)
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func addCategories(ctx context.Context, tx store.Tx, n *domain.Newsletter, categoryIDs []string) error {
	for _, categoryID := range categoryIDs {
		if _, err := tx.GetCategory(ctx, categoryID); err != nil {
			return invalidReference(err, "category", categoryID)
		}
		if n.CategoryEntry(categoryID) != nil {
			continue
		}
		entryID, err := id.Generate(id.PrefixCategoryNewsletter)
		if err != nil {
			return err
		}
		n.AddCategory(entryID, categoryID)
	}
	return nil
}

func attachArticles(ctx context.Context, tx store.Tx, n *domain.Newsletter, articleIDs []string) error {
	for _, articleID := range articleIDs {
		if _, err := tx.GetArticle(ctx, articleID); err != nil {
			return invalidReference(err, "article", articleID)
		}
	}
	n.AttachArticles(articleIDs...)
	return nil
}
