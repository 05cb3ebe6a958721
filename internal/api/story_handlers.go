package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/dto"
	domainerrors "github.com/chroniclesapp/chronicles-server/internal/errors"
	"github.com/chroniclesapp/chronicles-server/internal/store"
)

func (s *Server) registerStoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listStories",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories",
		Summary:     "List stories",
		Description: "Returns the library as cards, newest first. Pages with limit and cursor",
		Tags:        []string{"Stories"},
	}, s.handleListStories)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createStory",
		Method:        http.MethodPost,
		Path:          "/api/v1/stories",
		Summary:       "Create story",
		Description:   "Creates a story with no chapters at the front of the library",
		Tags:          []string{"Stories"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStory",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}",
		Summary:     "Get story",
		Description: "Returns a story card with its chapters",
		Tags:        []string{"Stories"},
	}, s.handleGetStory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteStory",
		Method:        http.MethodDelete,
		Path:          "/api/v1/stories/{id}",
		Summary:       "Delete story",
		Description:   "Deletes a story and its bookmark. Requires confirm=true",
		Tags:          []string{"Stories"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteStory)
}

// StoryIDInput identifies a story by path.
type StoryIDInput struct {
	ID int64 `path:"id" doc:"Story ID"`
}

// ListStoriesOutput contains the library cards.
type ListStoriesOutput struct {
	Body ListStoriesResponse
}

// ListStoriesInput contains the paging parameters.
type ListStoriesInput struct {
	Limit  int    `query:"limit" minimum:"0" maximum:"1000" doc:"Page size, 100 when omitted"`
	Cursor string `query:"cursor" doc:"Cursor from a previous page"`
}

// ListStoriesResponse is one page of the library grid.
type ListStoriesResponse struct {
	Stories    []dto.StoryCard `json:"stories" doc:"Stories, newest first"`
	Total      int             `json:"total" doc:"Number of stories in the library"`
	NextCursor string          `json:"nextCursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool            `json:"hasMore" doc:"Whether more pages follow"`
}

// CreateStoryInput contains the draft for a new story.
type CreateStoryInput struct {
	Body CreateStoryRequest
}

// CreateStoryRequest is the story form. Blank titles are rejected by the
// library with VALIDATION_ERROR.
type CreateStoryRequest struct {
	Title string `json:"title" maxLength:"200" doc:"Story title"`
	Genre string `json:"genre,omitempty" maxLength:"60" doc:"Free-text genre label"`
	Cover string `json:"cover,omitempty" doc:"Cover URL, data URI or filename under the cover directory"`
}

// StoryDetail is a card plus the full chapter list.
type StoryDetail struct {
	dto.StoryCard
	Chapters []domain.Chapter `json:"chapters" doc:"Chapters in reading order"`
}

// StoryOutput wraps a single story.
type StoryOutput struct {
	Body StoryDetail
}

// DeleteStoryInput identifies the story and carries the confirmation flag.
type DeleteStoryInput struct {
	ID      int64 `path:"id" doc:"Story ID"`
	Confirm bool  `query:"confirm" doc:"Must be true; deletion cannot be undone"`
}

func (s *Server) handleListStories(ctx context.Context, input *ListStoriesInput) (*ListStoriesOutput, error) {
	page, err := store.Paginate(s.services.Library.List(ctx), store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	}, storyKey)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	cards, err := s.services.Enricher.Cards(ctx, page.Items)
	if err != nil {
		return nil, err
	}
	return &ListStoriesOutput{Body: ListStoriesResponse{
		Stories:    cards,
		Total:      page.Total,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}}, nil
}

func storyKey(st *domain.Story) string {
	return strconv.FormatInt(st.ID, 10)
}

func (s *Server) handleCreateStory(ctx context.Context, input *CreateStoryInput) (*StoryOutput, error) {
	story, err := s.services.Library.Create(ctx, domain.StoryDraft{
		Title: input.Body.Title,
		Genre: input.Body.Genre,
		Cover: input.Body.Cover,
	})
	if err != nil {
		return nil, err
	}
	return s.storyOutput(ctx, story)
}

func (s *Server) handleGetStory(ctx context.Context, input *StoryIDInput) (*StoryOutput, error) {
	story, err := s.services.Library.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return s.storyOutput(ctx, story)
}

func (s *Server) handleDeleteStory(ctx context.Context, input *DeleteStoryInput) (*struct{}, error) {
	if !input.Confirm {
		return nil, domainerrors.ConfirmationRequired("deleting a story cannot be undone; repeat with confirm=true")
	}
	if err := s.services.Library.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) storyOutput(ctx context.Context, story *domain.Story) (*StoryOutput, error) {
	cards, err := s.services.Enricher.Cards(ctx, []*domain.Story{story})
	if err != nil {
		return nil, err
	}
	chapters := story.Chapters
	if chapters == nil {
		chapters = []domain.Chapter{}
	}
	return &StoryOutput{Body: StoryDetail{StoryCard: cards[0], Chapters: chapters}}, nil
}
