// Package search maintains the bleve index of article documents.
package search

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// SearchIndex wraps a bleve index of articles.
//
// All public methods are safe for concurrent use. The mutex keeps writers
// out while Rebuild swaps the underlying index.
type SearchIndex struct {
	index   bleve.Index
	path    string
	logger  *slog.Logger
	created bool
	mu      sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath    string // Directory holding index directories
	Environment string // Suffix of the index name
	Logger      *slog.Logger
}

// mappingVersion changes whenever buildIndexMapping changes. A mismatch
// forces the index to be recreated on startup.
const mappingVersion = "1"

// IndexName returns the index directory name for an environment.
func IndexName(environment string) string {
	if environment == "" {
		environment = "development"
	}
	return "articles_" + environment
}

// NewSearchIndex opens the index for opts.Environment, creating it when it
// is missing, unreadable or built with an older mapping.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create search directory: %w", err)
	}

	name := IndexName(opts.Environment)
	indexPath := filepath.Join(opts.DataPath, name+".bleve")
	versionPath := filepath.Join(opts.DataPath, name+".version")

	var index bleve.Index
	needsRebuild := false

	_, statErr := os.Stat(indexPath)
	indexExists := statErr == nil

	if indexExists {
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, rebuilding", "index", name)
			needsRebuild = true
		case string(existing) != mappingVersion:
			logger.Info("search index mapping changed, rebuilding",
				"index", name,
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if indexExists && !needsRebuild {
		var err error
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		index = nil
	}

	created := false
	if index == nil {
		var err error
		index, err = newIndex(indexPath)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		created = true
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened search index", "path", indexPath)
	}

	return &SearchIndex{
		index:   index,
		path:    indexPath,
		logger:  logger,
		created: created,
	}, nil
}

func newIndex(path string) (bleve.Index, error) {
	indexMapping, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("build mapping: %w", err)
	}
	index, err := bleve.New(path, indexMapping)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return index, nil
}

// Created reports whether the index was (re)created on open and therefore
// needs a full reindex.
func (s *SearchIndex) Created() bool {
	return s.created
}

// Close closes the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexArticle writes doc, replacing any previous version. It returns once
// the write has been applied.
func (s *SearchIndex) IndexArticle(doc *ArticleDocument) error {
	if doc == nil || doc.ID == "" {
		return errors.New("search: document without id")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexArticles writes docs in batches of 500.
func (s *SearchIndex) IndexArticles(docs []*ArticleDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteArticle removes an article's document. Deleting a missing
// document is not an error.
func (s *SearchIndex) DeleteArticle(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed articles.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document by recreating the index in place.
// It blocks all other operations until done.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}
	index, err := newIndex(s.path)
	if err != nil {
		return err
	}
	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
