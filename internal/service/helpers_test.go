package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/id"
	"github.com/baraza/baraza-server/internal/logger"
	"github.com/baraza/baraza-server/internal/mail"
	"github.com/baraza/baraza-server/internal/search"
	"github.com/baraza/baraza-server/internal/store/sqlite"
	"github.com/baraza/baraza-server/internal/validation"
)

// fakeIndexer records index writes and can be told to fail.
type fakeIndexer struct {
	mu      sync.Mutex
	docs    map[string]*search.ArticleDocument
	writes  int
	deletes int
	fail    error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{docs: make(map[string]*search.ArticleDocument)}
}

func (f *fakeIndexer) IndexArticle(doc *search.ArticleDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.writes++
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndexer) IndexArticles(docs []*search.ArticleDocument) error {
	for _, d := range docs {
		if err := f.IndexArticle(d); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeIndexer) DeleteArticle(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.deletes++
	delete(f.docs, id)
	return nil
}

func (f *fakeIndexer) doc(id string) *search.ArticleDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id]
}

// recordingEmitter keeps emitted events in order.
type recordingEmitter struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingEmitter) Emit(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) emitted() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

var errIndexDown = errors.New("index unavailable")

type testEnv struct {
	store       *sqlite.Store
	index       *fakeIndexer
	sender      *mail.LogSender
	emitter     *recordingEmitter
	articles    *ArticleService
	categories  *CategoryService
	newsletters *NewsletterService
	users       *UserService
	subscribers *SubscriberService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Discard()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "baraza.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	renderer, err := mail.NewRenderer()
	require.NoError(t, err)

	env := &testEnv{
		store:   st,
		index:   newFakeIndexer(),
		sender:  mail.NewLogSender(log),
		emitter: &recordingEmitter{},
	}
	v := validation.New()
	mailer := mail.NewMailer(env.sender, renderer, "news@baraza.test", "Baraza weekly", log)

	env.articles = NewArticleService(st, NewIndexSync(st, env.index, log), nil, v, log)
	env.categories = NewCategoryService(st, v, log)
	env.newsletters = NewNewsletterService(st, mailer, v, log)
	env.users = NewUserService(st, env.emitter, v, log)
	env.subscribers = NewSubscriberService(st, v, log)
	return env
}

// seedUser stores an account with role directly.
func (e *testEnv) seedUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	u, err := newUser(validation.New(), CreateUserRequest{
		Email:     string(role) + "-" + id.MustGenerate("t") + "@baraza.test",
		Password:  "Secret1!",
		FirstName: "Test",
		LastName:  string(role),
		Role:      string(role),
	})
	require.NoError(t, err)
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) seedCategory(t *testing.T, admin *domain.User, name string) *domain.Category {
	t.Helper()
	c, err := e.categories.CreateCategory(context.Background(), admin, CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return c
}

func (e *testEnv) seedArticle(t *testing.T, owner *domain.User, title string) *domain.Article {
	t.Helper()
	a, err := e.articles.CreateArticle(context.Background(), owner, CreateArticleRequest{
		Title:   title,
		Content: "Body of " + title,
	})
	require.NoError(t, err)
	return a
}
