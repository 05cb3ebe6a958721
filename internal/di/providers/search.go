package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/chroniclesapp/chronicles-server/internal/config"
	"github.com/chroniclesapp/chronicles-server/internal/search"
	"github.com/chroniclesapp/chronicles-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index. An in-memory store gets
// an in-memory index; the library rebuilds it on load either way.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		Path:     cfg.Library.SearchIndexPath,
		InMemory: cfg.Store.InMemory,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index opened", "path", cfg.Library.SearchIndexPath, "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewSearchService(indexHandle.SearchIndex, log), nil
}
