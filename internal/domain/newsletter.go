package domain

import (
	"slices"
	"sort"
	"time"

	domainerrors "github.com/baraza/baraza-server/internal/errors"
)

// NewsletterStatus is the approval state of a newsletter.
type NewsletterStatus string

const (
	NewsletterDraft    NewsletterStatus = "draft"
	NewsletterApproved NewsletterStatus = "approved"
	NewsletterRejected NewsletterStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s NewsletterStatus) Terminal() bool {
	return s == NewsletterApproved || s == NewsletterRejected
}

// NewsletterArticle places an article in the newsletter's candidate pool.
type NewsletterArticle struct {
	ArticleID string `json:"article_id"`
	Position  int    `json:"position_in_newsletter"`
}

// CategoryNewsletter is one category's slot in a newsletter: its display
// position and the articles listed under it.
type CategoryNewsletter struct {
	ID         string   `json:"id"`
	CategoryID string   `json:"category_id"`
	Position   int      `json:"position_in_newsletter"`
	ArticleIDs []string `json:"article_ids"`
}

// Newsletter is a curated bundle of categories and articles.
//
// Articles is the candidate pool, kept sorted by position. Every article
// listed under a category must be in the pool.
type Newsletter struct {
	Record
	Status     NewsletterStatus     `json:"status"`
	Articles   []NewsletterArticle  `json:"articles"`
	Categories []CategoryNewsletter `json:"category_newsletters"`
	ApprovedAt *time.Time           `json:"approved_at,omitempty"`
	RejectedAt *time.Time           `json:"rejected_at,omitempty"`
	SentAt     *time.Time           `json:"sent_at,omitempty"`
}

// NewNewsletter returns an empty draft.
func NewNewsletter(id string) *Newsletter {
	n := &Newsletter{
		Record:     Record{ID: id},
		Status:     NewsletterDraft,
		Articles:   []NewsletterArticle{},
		Categories: []CategoryNewsletter{},
	}
	n.InitTimestamps()
	return n
}

// ArticleIDs returns the pool in position order.
func (n *Newsletter) ArticleIDs() []string {
	ids := make([]string, len(n.Articles))
	for i, a := range n.Articles {
		ids[i] = a.ArticleID
	}
	return ids
}

// HasArticle reports whether articleID is in the candidate pool.
func (n *Newsletter) HasArticle(articleID string) bool {
	return slices.ContainsFunc(n.Articles, func(a NewsletterArticle) bool {
		return a.ArticleID == articleID
	})
}

// CategoryEntry returns the slot for categoryID, or nil.
func (n *Newsletter) CategoryEntry(categoryID string) *CategoryNewsletter {
	for i := range n.Categories {
		if n.Categories[i].CategoryID == categoryID {
			return &n.Categories[i]
		}
	}
	return nil
}

// OrderedCategories returns the category slots sorted by position.
// Slots sharing a position keep their creation order.
func (n *Newsletter) OrderedCategories() []CategoryNewsletter {
	out := slices.Clone(n.Categories)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// AddCategory creates the slot for categoryID after the existing ones.
// Adding a category twice returns the existing slot.
func (n *Newsletter) AddCategory(entryID, categoryID string) *CategoryNewsletter {
	if existing := n.CategoryEntry(categoryID); existing != nil {
		return existing
	}
	next := 1
	for _, c := range n.Categories {
		if c.Position >= next {
			next = c.Position + 1
		}
	}
	n.Categories = append(n.Categories, CategoryNewsletter{
		ID:         entryID,
		CategoryID: categoryID,
		Position:   next,
		ArticleIDs: []string{},
	})
	n.Touch()
	return &n.Categories[len(n.Categories)-1]
}

// AttachArticles appends articles to the candidate pool. IDs already in
// the pool are skipped.
func (n *Newsletter) AttachArticles(articleIDs ...string) {
	next := 1
	if len(n.Articles) > 0 {
		next = n.Articles[len(n.Articles)-1].Position + 1
	}
	changed := false
	for _, articleID := range articleIDs {
		if articleID == "" || n.HasArticle(articleID) {
			continue
		}
		n.Articles = append(n.Articles, NewsletterArticle{ArticleID: articleID, Position: next})
		next++
		changed = true
	}
	if changed {
		n.Touch()
	}
}

// SetCategoryOrder sets the display position of an existing category slot.
func (n *Newsletter) SetCategoryOrder(categoryID string, position int) error {
	entry := n.CategoryEntry(categoryID)
	if entry == nil {
		return domainerrors.InvalidReferencef("category %s is not part of newsletter %s", categoryID, n.ID)
	}
	entry.Position = position
	n.Touch()
	return nil
}

// SetArticles replaces the articles listed under categoryID with exactly
// articleIDs, in the given order. Every ID must already be in the pool.
func (n *Newsletter) SetArticles(categoryID string, articleIDs []string) error {
	entry := n.CategoryEntry(categoryID)
	if entry == nil {
		return domainerrors.InvalidReferencef("category %s is not part of newsletter %s", categoryID, n.ID)
	}

	list := make([]string, 0, len(articleIDs))
	for _, articleID := range articleIDs {
		if !n.HasArticle(articleID) {
			return domainerrors.InvalidReferencef("article %s is not attached to newsletter %s", articleID, n.ID)
		}
		if !slices.Contains(list, articleID) {
			list = append(list, articleID)
		}
	}

	entry.ArticleIDs = list
	n.Touch()
	return nil
}

// RetainArticles narrows the pool to exactly articleIDs and reorders it.
// positions overrides an article's position; articles without an override
// keep their previous one. Category lists lose articles that left the pool.
func (n *Newsletter) RetainArticles(articleIDs []string, positions map[string]int) error {
	previous := make(map[string]int, len(n.Articles))
	for _, a := range n.Articles {
		previous[a.ArticleID] = a.Position
	}

	pool := make([]NewsletterArticle, 0, len(articleIDs))
	seen := make(map[string]bool, len(articleIDs))
	for _, articleID := range articleIDs {
		if seen[articleID] {
			continue
		}
		pos, attached := previous[articleID]
		if !attached {
			return domainerrors.InvalidReferencef("article %s is not attached to newsletter %s", articleID, n.ID)
		}
		if override, ok := positions[articleID]; ok {
			pos = override
		}
		pool = append(pool, NewsletterArticle{ArticleID: articleID, Position: pos})
		seen[articleID] = true
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Position < pool[j].Position })
	n.Articles = pool

	for _, entry := range n.Categories {
		kept := slices.DeleteFunc(slices.Clone(entry.ArticleIDs), func(id string) bool { return !seen[id] })
		if err := n.SetArticles(entry.CategoryID, kept); err != nil {
			return err
		}
	}
	n.Touch()
	return nil
}

// Approve moves a draft to approved.
func (n *Newsletter) Approve() error {
	if err := n.transition(NewsletterApproved); err != nil {
		return err
	}
	at := n.UpdatedAt
	n.ApprovedAt = &at
	return nil
}

// Reject moves a draft to rejected.
func (n *Newsletter) Reject() error {
	if err := n.transition(NewsletterRejected); err != nil {
		return err
	}
	at := n.UpdatedAt
	n.RejectedAt = &at
	return nil
}

func (n *Newsletter) transition(to NewsletterStatus) error {
	if n.Status.Terminal() {
		return domainerrors.InvalidTransitionf("newsletter %s is already %s", n.ID, n.Status)
	}
	n.Status = to
	n.Touch()
	return nil
}

// MarkSent records a delivery.
func (n *Newsletter) MarkSent(at time.Time) {
	n.SentAt = &at
	n.Touch()
}
