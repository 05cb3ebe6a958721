package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chroniclesapp/chronicles-server/internal/reader"
)

func (s *Server) registerReaderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getReader",
		Method:      http.MethodGet,
		Path:        "/api/v1/reader",
		Summary:     "Get reader",
		Description: "Returns the current two-page reader view",
		Tags:        []string{"Reader"},
	}, s.handleGetReader)

	huma.Register(s.api, huma.Operation{
		OperationID: "openReader",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/open/{id}",
		Summary:     "Open story",
		Description: "Opens a story at its bookmark, or at the first chapter",
		Tags:        []string{"Reader"},
	}, s.handleOpenReader)

	huma.Register(s.api, huma.Operation{
		OperationID: "nextPage",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/next",
		Summary:     "Next page",
		Description: "Starts a forward page turn. The chapter changes once the turn animation ends",
		Tags:        []string{"Reader"},
	}, s.handleNextPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "prevPage",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/prev",
		Summary:     "Previous page",
		Description: "Starts a backward page turn",
		Tags:        []string{"Reader"},
	}, s.handlePrevPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "closeReader",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/close",
		Summary:     "Close reader",
		Description: "Closes the book and cancels any page turn in flight",
		Tags:        []string{"Reader"},
	}, s.handleCloseReader)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/bookmark",
		Summary:     "Toggle bookmark",
		Description: "Saves the current chapter as the bookmark, or clears it when it is already saved",
		Tags:        []string{"Reader"},
	}, s.handleToggleBookmark)
}

// ReaderOutput wraps the reader view.
type ReaderOutput struct {
	Body reader.View
}

// TurnOutput reports whether a page turn was accepted.
type TurnOutput struct {
	Body TurnResponse
}

// TurnResponse is the view after a turn request.
type TurnResponse struct {
	Accepted bool        `json:"accepted" doc:"False when the turn was out of range or another turn was running"`
	View     reader.View `json:"view"`
}

// BookmarkOutput reports the bookmark state after a toggle.
type BookmarkOutput struct {
	Body BookmarkResponse
}

// BookmarkResponse is the view after a bookmark toggle.
type BookmarkResponse struct {
	Saved bool        `json:"saved" doc:"True when the current chapter is now bookmarked"`
	View  reader.View `json:"view"`
}

func (s *Server) handleGetReader(ctx context.Context, _ *struct{}) (*ReaderOutput, error) {
	return &ReaderOutput{Body: s.services.Reader.View(ctx)}, nil
}

func (s *Server) handleOpenReader(ctx context.Context, input *StoryIDInput) (*ReaderOutput, error) {
	view, err := s.services.Reader.Open(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ReaderOutput{Body: view}, nil
}

func (s *Server) handleNextPage(ctx context.Context, _ *struct{}) (*TurnOutput, error) {
	view, ok := s.services.Reader.Next(ctx)
	return &TurnOutput{Body: TurnResponse{Accepted: ok, View: view}}, nil
}

func (s *Server) handlePrevPage(ctx context.Context, _ *struct{}) (*TurnOutput, error) {
	view, ok := s.services.Reader.Prev(ctx)
	return &TurnOutput{Body: TurnResponse{Accepted: ok, View: view}}, nil
}

func (s *Server) handleCloseReader(ctx context.Context, _ *struct{}) (*ReaderOutput, error) {
	return &ReaderOutput{Body: s.services.Reader.Close(ctx)}, nil
}

func (s *Server) handleToggleBookmark(ctx context.Context, _ *struct{}) (*BookmarkOutput, error) {
	view, saved, err := s.services.Reader.ToggleBookmark(ctx)
	if err != nil {
		return nil, err
	}
	return &BookmarkOutput{Body: BookmarkResponse{Saved: saved, View: view}}, nil
}
