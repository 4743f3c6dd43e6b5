// Package main provides a tool to seed a Baraza database with an
// administrator, categories and sample articles.
//
// Usage:
//
//	DATA_PATH=~/baraza go run ./cmd/seed
//	DATA_PATH=~/baraza go run ./cmd/seed --admin-email=me@example.com --articles=20
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/baraza/baraza-server/internal/auth"
	"github.com/baraza/baraza-server/internal/config"
	"github.com/baraza/baraza-server/internal/domain"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/id"
	"github.com/baraza/baraza-server/internal/logger"
	"github.com/baraza/baraza-server/internal/search"
	"github.com/baraza/baraza-server/internal/service"
	"github.com/baraza/baraza-server/internal/store"
	"github.com/baraza/baraza-server/internal/store/sqlite"
	"github.com/baraza/baraza-server/internal/validation"
)

var (
	adminEmail    = flag.String("admin-email", "admin@baraza.local", "Administrator email")
	adminPassword = flag.String("admin-password", "Admin1!", "Administrator password")
	articleCount  = flag.Int("articles", 12, "Number of sample articles to create")
	environment   = flag.String("env", "development", "Environment whose search index is updated")
)

var categoryNames = []string{"Politics", "Business", "Sports", "Technology", "Culture"}

var tagPool = []string{"Nairobi", "Mombasa", "Kisumu", "economy", "elections", "football", "athletics", "startups", "music", "weather"}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/baraza")
	}
	paths := config.DataConfig{BasePath: dataPath}

	fmt.Printf("Opening database at: %s\n", paths.DatabasePath())

	slogger := logger.Discard()
	s, err := sqlite.Open(paths.DatabasePath(), slogger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	index, err := search.NewSearchIndex(search.Options{
		DataPath:    paths.SearchPath(),
		Environment: *environment,
		Logger:      slogger,
	})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	ctx := context.Background()
	v := validation.New()

	admin, err := ensureAdmin(ctx, s)
	if err != nil {
		log.Fatalf("Failed to create administrator: %v", err)
	}
	fmt.Printf("Administrator: %s (%s)\n", admin.Email, admin.ID)

	categories := service.NewCategoryService(s, v, slogger)
	var categoryIDs []string
	for _, name := range categoryNames {
		c, err := categories.CreateCategory(ctx, admin, service.CreateCategoryRequest{Name: name})
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			c, err = categories.GetCategory(ctx, admin, domain.Slugify(name))
		}
		if err != nil {
			log.Fatalf("Failed to create category %s: %v", name, err)
		}
		categoryIDs = append(categoryIDs, c.ID)
	}
	fmt.Printf("Categories ready: %d\n", len(categoryIDs))

	articles := service.NewArticleService(s, service.NewIndexSync(s, index, slogger), index, v, slogger)
	rng := rand.New(rand.NewSource(42))
	created := 0
	for n := range *articleCount {
		tags := pick(rng, tagPool, 1+rng.Intn(3))
		req := service.CreateArticleRequest{
			Title:       fmt.Sprintf("Sample story %d: %s", n+1, strings.Join(tags, " and ")),
			Content:     fmt.Sprintf("This is sample article number %d about %s.", n+1, strings.Join(tags, ", ")),
			TagList:     strings.Join(tags, ", "),
			CategoryIDs: pick(rng, categoryIDs, 1+rng.Intn(2)),
		}
		if _, err := articles.CreateArticle(ctx, admin, req); err != nil {
			log.Printf("Failed to create article %d: %v", n+1, err)
			continue
		}
		created++
	}

	docs, _ := index.DocumentCount()
	fmt.Printf("Created %d articles, search index holds %d documents\n", created, docs)
}

// ensureAdmin returns the account for --admin-email, creating it with the
// administrator role when it does not exist yet.
func ensureAdmin(ctx context.Context, s store.Store) (*domain.User, error) {
	existing, err := s.GetUserByEmail(ctx, *adminEmail)
	if err == nil {
		if existing.Role != domain.RoleAdministrator {
			return nil, fmt.Errorf("%s exists with role %s", existing.Email, existing.Role)
		}
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if !validation.PasswordMeetsPolicy(*adminPassword) {
		return nil, fmt.Errorf("admin password does not meet the password policy")
	}
	hash, err := auth.HashPassword(*adminPassword)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Record:       domain.Record{ID: id.MustGenerate(id.PrefixUser)},
		Email:        *adminEmail,
		PasswordHash: hash,
		FirstName:    "Site",
		LastName:     "Administrator",
		Role:         domain.RoleAdministrator,
	}
	u.InitTimestamps()
	if err := s.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// pick returns up to n distinct random entries of from.
func pick(rng *rand.Rand, from []string, n int) []string {
	shuffled := make([]string, len(from))
	copy(shuffled, from)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:min(n, len(shuffled))]
}
