package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

func (s *Server) registerChapterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "addChapter",
		Method:        http.MethodPost,
		Path:          "/api/v1/stories/{id}/chapters",
		Summary:       "Add chapter",
		Description:   "Appends a chapter to the end of a story",
		Tags:          []string{"Chapters"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddChapter)

	huma.Register(s.api, huma.Operation{
		OperationID:   "removeChapter",
		Method:        http.MethodDelete,
		Path:          "/api/v1/stories/{id}/chapters/{chapterId}",
		Summary:       "Remove chapter",
		Description:   "Removes one chapter; the others keep their order",
		Tags:          []string{"Chapters"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleRemoveChapter)
}

// AddChapterInput contains the target story and the chapter draft.
type AddChapterInput struct {
	ID   int64 `path:"id" doc:"Story ID"`
	Body AddChapterRequest
}

// AddChapterRequest is the chapter form.
type AddChapterRequest struct {
	Title   string `json:"title" maxLength:"200" doc:"Chapter title"`
	Content string `json:"content,omitempty" doc:"Chapter text; each line is a paragraph"`
}

// ChapterOutput wraps a chapter.
type ChapterOutput struct {
	Body domain.Chapter
}

// RemoveChapterInput identifies a chapter within a story.
type RemoveChapterInput struct {
	ID        int64 `path:"id" doc:"Story ID"`
	ChapterID int64 `path:"chapterId" doc:"Chapter ID"`
}

func (s *Server) handleAddChapter(ctx context.Context, input *AddChapterInput) (*ChapterOutput, error) {
	chapter, err := s.services.Library.AddChapter(ctx, input.ID, domain.ChapterDraft{
		Title:   input.Body.Title,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}
	return &ChapterOutput{Body: *chapter}, nil
}

func (s *Server) handleRemoveChapter(ctx context.Context, input *RemoveChapterInput) (*struct{}, error) {
	if err := s.services.Library.RemoveChapter(ctx, input.ID, input.ChapterID); err != nil {
		return nil, err
	}
	return nil, nil
}
