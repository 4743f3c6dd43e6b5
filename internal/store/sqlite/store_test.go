package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, id string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		Record:    domain.Record{ID: id},
		Email:     id + "@example.com",
		FirstName: "Test",
		LastName:  id,
		Role:      role,
	}
	u.InitTimestamps()
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func seedArticle(t *testing.T, s *Store, id, userID string) *domain.Article {
	t.Helper()
	a := &domain.Article{
		Record:  domain.Record{ID: id},
		Title:   "Title " + id,
		Content: "Content of " + id,
		UserID:  userID,
	}
	a.InitTimestamps()
	if err := s.CreateArticle(context.Background(), a); err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	return a
}

func seedCategory(t *testing.T, s *Store, id, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{Record: domain.Record{ID: id}, Name: name, Slug: domain.Slugify(name)}
	c.InitTimestamps()
	if err := s.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	tables := []string{
		"users", "articles", "tags", "article_tags", "categories", "article_categories",
		"newsletters", "newsletter_articles", "category_newsletters",
		"category_newsletter_articles", "subscribers",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	seedUser(t, s, "usr-1", domain.RoleEditor)
	s.Close()

	s, err = Open(path, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s.Close()

	u, err := s.GetUser(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("GetUser after reopen: %v", err)
	}
	if u.Role != domain.RoleEditor {
		t.Errorf("Role: got %q, want editor", u.Role)
	}
}

func TestInTx_CommitAndRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx store.Tx) error {
		_, _, err := tx.FindOrCreateTagByName(ctx, "kept")
		return err
	})
	if err != nil {
		t.Fatalf("committed tx: %v", err)
	}

	boom := errors.New("boom")
	err = s.InTx(ctx, func(tx store.Tx) error {
		if _, _, err := tx.FindOrCreateTagByName(ctx, "discarded"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := s.GetTagByName(ctx, "kept"); err != nil {
		t.Errorf("kept tag missing: %v", err)
	}
	if _, err := s.GetTagByName(ctx, "discarded"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("discarded tag should be rolled back, got %v", err)
	}
}

func TestInTx_RollsBackOnPanic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = s.InTx(ctx, func(tx store.Tx) error {
			_, _, _ = tx.FindOrCreateTagByName(ctx, "panicky")
			panic("boom")
		})
	}()

	if n, _ := s.CountTags(ctx); n != 0 {
		t.Errorf("expected no tags after panic, got %d", n)
	}
}

func TestUsers_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "usr-ada", domain.RoleRegisteredUser)

	got, err := s.GetUserByEmail(ctx, "USR-ADA@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID: got %q, want %q", got.ID, u.ID)
	}

	dup := *u
	dup.ID = "usr-other"
	if err := s.CreateUser(ctx, &dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate email: got %v, want ErrAlreadyExists", err)
	}

	got.Role = domain.RoleAdministrator
	got.UpdatedAt = time.Now()
	if err := s.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	again, _ := s.GetUser(ctx, u.ID)
	if again.Role != domain.RoleAdministrator {
		t.Errorf("Role: got %q", again.Role)
	}

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := s.DeleteUser(ctx, u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestContentCheckpoint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.ContentCheckpoint(ctx)
	if err != nil {
		t.Fatalf("ContentCheckpoint: %v", err)
	}
	if !empty.IsZero() {
		t.Fatalf("expected zero checkpoint for empty database, got %v", empty)
	}

	cat := seedCategory(t, s, "cat-1", "Science")
	got, err := s.ContentCheckpoint(ctx)
	if err != nil {
		t.Fatalf("ContentCheckpoint: %v", err)
	}
	if !got.Equal(cat.UpdatedAt) {
		t.Fatalf("checkpoint = %v, want %v", got, cat.UpdatedAt)
	}
}

func TestCreateUser_ProviderUsersWithoutEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"usr-fb1", "usr-fb2"} {
		u := &domain.User{Record: domain.Record{ID: id}, Provider: "facebook", UID: id}
		u.InitTimestamps()
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s): %v", id, err)
		}
	}

	got, err := s.GetUser(ctx, "usr-fb1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "" {
		t.Errorf("expected empty email, got %q", got.Email)
	}
}
