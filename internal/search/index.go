package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

// SearchIndex wraps a Bleve index with story-level operations.
// All methods are safe for concurrent use.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	// Path is the index directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// mappingVersion is bumped whenever buildIndexMapping changes; a mismatch
// triggers a rebuild on open.
const mappingVersion = "1"

// NewSearchIndex opens the index at opts.Path, creating it when missing and
// recreating it when it is unreadable or was built with another mapping.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.InMemory {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &SearchIndex{index: index, logger: logger}, nil
	}

	indexPath := filepath.Join(opts.Path, "stories.bleve")
	versionPath := filepath.Join(opts.Path, "stories.version")

	var index bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		version, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil || string(version) != mappingVersion:
			logger.Info("search index mapping changed, rebuilding",
				"old_version", string(version),
				"new_version", mappingVersion)
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
				index = nil
			}
		}
		if index == nil {
			if err := os.RemoveAll(indexPath); err != nil {
				return nil, fmt.Errorf("remove old index: %w", err)
			}
		}
	}

	if index == nil {
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
		created, err := bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		index = created
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	}

	return &SearchIndex{index: index, path: indexPath, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexStory replaces every document of the story, so removed chapters
// disappear from results.
func (s *SearchIndex) IndexStory(ctx context.Context, story *domain.Story) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stale, err := s.storyDocIDs(ctx, story.ID)
	if err != nil {
		return err
	}

	batch := s.index.NewBatch()
	for _, id := range stale {
		batch.Delete(id)
	}
	for _, doc := range StoryDocuments(story) {
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	return s.index.Batch(batch)
}

// RemoveStory drops a story and its chapters from the index.
func (s *SearchIndex) RemoveStory(ctx context.Context, storyID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.storyDocIDs(ctx, storyID)
	if err != nil {
		return err
	}
	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return s.index.Batch(batch)
}

// Reindex rebuilds the index contents from the given library.
func (s *SearchIndex) Reindex(ctx context.Context, stories []*domain.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.allDocIDs(ctx)
	if err != nil {
		return err
	}

	const batchSize = 500
	batch := s.index.NewBatch()
	flush := func() error {
		if batch.Size() == 0 {
			return nil
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
		batch.Reset()
		return nil
	}

	for _, id := range existing {
		batch.Delete(id)
	}
	for _, story := range stories {
		for _, doc := range StoryDocuments(story) {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
			if batch.Size() >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	s.logger.Info("search index rebuilt", "stories", len(stories))
	return nil
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

func (s *SearchIndex) storyDocIDs(ctx context.Context, storyID int64) ([]string, error) {
	q := bleve.NewTermQuery(StoryKey(storyID))
	q.SetField("story")
	return s.collectIDs(ctx, q)
}

func (s *SearchIndex) allDocIDs(ctx context.Context) ([]string, error) {
	return s.collectIDs(ctx, bleve.NewMatchAllQuery())
}

func (s *SearchIndex) collectIDs(ctx context.Context, q query.Query) ([]string, error) {
	count, err := s.index.DocCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(q, int(count), 0, false)
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("collect ids: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
