package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainerrors "github.com/chroniclesapp/chronicles-server/internal/errors"
	"github.com/chroniclesapp/chronicles-server/internal/genre"
	"github.com/chroniclesapp/chronicles-server/internal/search"
)

// maxSearchLimit caps a single page of hits.
const maxSearchLimit = 100

// SearchService runs full-text queries over the library index. The index is
// kept current by LibraryService; this service only reads it.
type SearchService struct {
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, logger: logger}
}

// SearchRequest is the user-facing form of a query.
type SearchRequest struct {
	Query string
	// Type is "story", "chapter" or empty for both.
	Type string
	// Genre accepts a label, slug or alias.
	Genre  string
	Limit  int
	Offset int
}

// Search executes a query.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*search.SearchResult, error) {
	params := search.DefaultSearchParams()
	params.Query = strings.TrimSpace(req.Query)
	params.Offset = max(req.Offset, 0)
	if req.Limit > 0 {
		params.Limit = min(req.Limit, maxSearchLimit)
	}

	switch t := search.DocType(strings.ToLower(strings.TrimSpace(req.Type))); t {
	case "":
	case search.DocTypeStory, search.DocTypeChapter:
		params.Types = []search.DocType{t}
	default:
		return nil, domainerrors.Validation(fmt.Sprintf("unknown document type %q", req.Type))
	}

	if g := strings.TrimSpace(req.Genre); g != "" {
		slug := genre.Slugify(g)
		if known, ok := genre.Lookup(slug); ok {
			slug = known.Slug
		}
		params.GenreSlug = slug
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	s.logger.Debug("search executed", "query", params.Query, "hits", len(result.Hits), "total", result.Total)
	return result, nil
}

// DocumentCount reports how many documents the index holds.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
