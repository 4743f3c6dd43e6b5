package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/store"
)

func seedNewsletter(t *testing.T, s *Store) *domain.Newsletter {
	t.Helper()
	for _, id := range []string{"art-1", "art-2", "art-3"} {
		seedArticle(t, s, id, "usr-1")
	}
	seedCategory(t, s, "cat-1", "Politics")
	seedCategory(t, s, "cat-2", "Science")

	n := domain.NewNewsletter("nl-1")
	n.AddCategory("cnl-1", "cat-1")
	n.AddCategory("cnl-2", "cat-2")
	n.AttachArticles("art-1", "art-2", "art-3")
	if err := n.SetArticles("cat-1", []string{"art-2", "art-1"}); err != nil {
		t.Fatalf("SetArticles: %v", err)
	}
	if err := s.CreateNewsletter(context.Background(), n); err != nil {
		t.Fatalf("CreateNewsletter: %v", err)
	}
	return n
}

func TestNewsletters_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := seedNewsletter(t, s)

	got, err := s.GetNewsletter(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("GetNewsletter: %v", err)
	}
	if got.Status != domain.NewsletterDraft {
		t.Errorf("Status: got %q", got.Status)
	}
	if !reflect.DeepEqual(got.Articles, want.Articles) {
		t.Errorf("Articles: got %+v, want %+v", got.Articles, want.Articles)
	}
	if !reflect.DeepEqual(got.Categories, want.Categories) {
		t.Errorf("Categories: got %+v, want %+v", got.Categories, want.Categories)
	}
}

func TestNewsletters_SaveReplacesComposition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	n := seedNewsletter(t, s)

	err := n.ApplyUpdate(domain.NewsletterUpdate{
		CategoryOrders:   []domain.CategoryOrderUpdate{{CategoryID: "cat-2", Position: 100}},
		ArticleIDs:       []string{"art-2", "art-3"},
		ArticlePositions: []domain.ArticlePositionUpdate{{ID: "art-3", Position: 0}},
		Commit:           domain.CommitApprove,
	})
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if err := s.InTx(ctx, func(tx store.Tx) error { return tx.SaveNewsletter(ctx, n) }); err != nil {
		t.Fatalf("SaveNewsletter: %v", err)
	}

	got, err := s.GetNewsletter(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetNewsletter: %v", err)
	}
	if got.Status != domain.NewsletterApproved || got.ApprovedAt == nil {
		t.Errorf("status: got %q approvedAt=%v", got.Status, got.ApprovedAt)
	}
	if ids := got.ArticleIDs(); !reflect.DeepEqual(ids, []string{"art-3", "art-2"}) {
		t.Errorf("ArticleIDs: got %v", ids)
	}
	if pos := got.CategoryEntry("cat-2").Position; pos != 100 {
		t.Errorf("cat-2 position: got %d", pos)
	}
	if ids := got.CategoryEntry("cat-1").ArticleIDs; !reflect.DeepEqual(ids, []string{"art-2"}) {
		t.Errorf("cat-1 articles: got %v", ids)
	}
}

func TestNewsletters_ListByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedNewsletter(t, s)

	other := domain.NewNewsletter("nl-2")
	_ = other.Reject()
	if err := s.CreateNewsletter(ctx, other); err != nil {
		t.Fatalf("CreateNewsletter: %v", err)
	}

	all, err := s.ListNewsletters(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("ListNewsletters all: %d %v", len(all), err)
	}
	rejected, err := s.ListNewsletters(ctx, domain.NewsletterRejected)
	if err != nil || len(rejected) != 1 || rejected[0].ID != "nl-2" {
		t.Fatalf("ListNewsletters rejected: %+v %v", rejected, err)
	}
}

func TestNewsletters_MissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetNewsletter(ctx, "nl-none"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetNewsletter: got %v", err)
	}
	if err := s.SaveNewsletter(ctx, domain.NewNewsletter("nl-none")); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SaveNewsletter: got %v", err)
	}
}
