package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chroniclesapp/chronicles-server/internal/search"
	"github.com/chroniclesapp/chronicles-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search",
		Description: "Full-text search over story titles, genres, lore and chapter text",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query  string `query:"q" doc:"Search text; empty lists everything"`
	Type   string `query:"type" enum:"story,chapter" doc:"Restrict to one document type"`
	Genre  string `query:"genre" doc:"Genre label, slug or alias"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size (default 20)"`
	Offset int    `query:"offset" minimum:"0" doc:"Hits to skip"`
}

// SearchOutput wraps search results.
type SearchOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Search.Search(ctx, service.SearchRequest{
		Query:  input.Query,
		Type:   input.Type,
		Genre:  input.Genre,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
