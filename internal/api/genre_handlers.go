package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chroniclesapp/chronicles-server/internal/color"
	"github.com/chroniclesapp/chronicles-server/internal/genre"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns the genres offered by the story form, with their accent colours",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)
}

// GenreResponse is one genre option.
type GenreResponse struct {
	Slug   string `json:"slug"`
	Label  string `json:"label"`
	Accent string `json:"accent" doc:"Hex colour used for the genre badge"`
}

// ListGenresOutput wraps the genre list.
type ListGenresOutput struct {
	Body struct {
		Genres []GenreResponse `json:"genres"`
	}
}

func (s *Server) handleListGenres(_ context.Context, _ *struct{}) (*ListGenresOutput, error) {
	out := &ListGenresOutput{}
	out.Body.Genres = make([]GenreResponse, 0, len(genre.Defaults))
	for _, g := range genre.Defaults {
		out.Body.Genres = append(out.Body.Genres, GenreResponse{
			Slug:   g.Slug,
			Label:  g.Label,
			Accent: color.ForGenre(g.Label),
		})
	}
	return out, nil
}
