package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/baraza/baraza-server/internal/config"
	"github.com/baraza/baraza-server/internal/logger"
	"github.com/baraza/baraza-server/internal/search"
	"github.com/baraza/baraza-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath:    cfg.Data.SearchPath(),
		Environment: cfg.App.Environment,
		Logger:      log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized",
		"index", search.IndexName(cfg.App.Environment),
		"documents", docCount,
		"created", index.Created(),
	)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideIndexSync provides the article index synchronizer.
func ProvideIndexSync(i do.Injector) (*service.IndexSync, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIndexSync(storeHandle.Store, indexHandle.SearchIndex, log.Logger), nil
}

// TriggerSearchReindexIfNeeded rebuilds the index from the database when
// it was created on this start. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	indexSync := do.MustInvoke[*service.IndexSync](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !indexHandle.Created() {
		return
	}

	log.Info("Search index was created, triggering initial reindex")

	go func() {
		count, err := indexSync.ReindexAll(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
