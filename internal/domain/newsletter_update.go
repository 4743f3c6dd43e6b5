package domain

import (
	"slices"

	domainerrors "github.com/baraza/baraza-server/internal/errors"
)

// CommitApprove is the commit value that approves a newsletter.
const CommitApprove = "Approve"

// CategoryOrderUpdate moves one category slot.
type CategoryOrderUpdate struct {
	ID         string `json:"id,omitempty"`
	CategoryID string `json:"category_id"`
	Position   int    `json:"position_in_newsletter"`
}

// ArticlePositionUpdate moves one article in the pool.
type ArticlePositionUpdate struct {
	ID       string `json:"id"`
	Position int    `json:"position_in_newsletter"`
}

// NewsletterUpdate is a full editor submission for one newsletter. A nil
// ArticleIDs leaves the pool as it is; an empty one clears it.
type NewsletterUpdate struct {
	CategoryOrders   []CategoryOrderUpdate   `json:"category_newsletters_attributes"`
	ArticleIDs       []string                `json:"article_ids"`
	ArticlePositions []ArticlePositionUpdate `json:"articles_attributes"`
	Commit           string                  `json:"commit"`
}

// Approves reports whether the submission asks for approval.
func (u NewsletterUpdate) Approves() bool {
	return u.Commit == CommitApprove
}

// LivePositions returns the article positions that refer to articles in
// ArticleIDs. Entries for other articles are stale form rows and are
// dropped. A repeated ID keeps its last position.
func (u NewsletterUpdate) LivePositions() map[string]int {
	positions := make(map[string]int, len(u.ArticlePositions))
	for _, p := range u.ArticlePositions {
		if slices.Contains(u.ArticleIDs, p.ID) {
			positions[p.ID] = p.Position
		}
	}
	return positions
}

// ApplyUpdate reconciles n with a submission: category orders in the order
// received, then the article pool, then approval when requested. On error
// n may be partly modified; callers discard it with the transaction.
func (n *Newsletter) ApplyUpdate(u NewsletterUpdate) error {
	if u.ArticleIDs == nil {
		u.ArticleIDs = n.ArticleIDs()
	}
	for _, order := range u.CategoryOrders {
		if order.ID != "" {
			if entry := n.CategoryEntry(order.CategoryID); entry == nil || entry.ID != order.ID {
				return domainerrors.InvalidReferencef("category entry %s does not match category %s", order.ID, order.CategoryID)
			}
		}
		if err := n.SetCategoryOrder(order.CategoryID, order.Position); err != nil {
			return err
		}
	}

	if err := n.RetainArticles(u.ArticleIDs, u.LivePositions()); err != nil {
		return err
	}

	if u.Approves() {
		return n.Approve()
	}
	return nil
}
