package service

import (
	"context"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	domainerrors "github.com/chroniclesapp/chronicles-server/internal/errors"
	"github.com/chroniclesapp/chronicles-server/internal/lore"
)

// LoreService renders and saves the lore archive of a story.
type LoreService struct {
	library      *LibraryService
	albumDir     string
	placeholders lore.PlaceholderSource
}

// NewLoreService creates a lore service. placeholders may be nil.
func NewLoreService(library *LibraryService, albumDir string, placeholders lore.PlaceholderSource) *LoreService {
	return &LoreService{library: library, albumDir: albumDir, placeholders: placeholders}
}

// LoreDetail pairs the rendered archive with the editable lore record.
type LoreDetail struct {
	View lore.View   `json:"view"`
	Lore domain.Lore `json:"lore"`
}

// Get renders a story's lore archive.
func (s *LoreService) Get(ctx context.Context, storyID int64) (*LoreDetail, error) {
	story, err := s.library.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, story), nil
}

// Save replaces a story's lore and returns the re-rendered archive.
func (s *LoreService) Save(ctx context.Context, storyID int64, l domain.Lore) (*LoreDetail, error) {
	story, err := s.library.SaveLore(ctx, storyID, l)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, story), nil
}

// Editor loads the editable form of a story's lore with tab active. An
// empty tab opens the synopsis panel.
func (s *LoreService) Editor(ctx context.Context, storyID int64, tab string) (*lore.Editor, error) {
	story, err := s.library.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}
	e := lore.NewEditor(story)
	if tab == "" {
		return e, nil
	}
	t, err := lore.ParseTab(tab)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	if err := e.SwitchTab(t); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	return e, nil
}

func (s *LoreService) detail(ctx context.Context, story *domain.Story) *LoreDetail {
	view := lore.Render(ctx, story, lore.ViewOptions{AlbumDir: s.albumDir, Placeholders: s.placeholders})
	return &LoreDetail{View: view, Lore: *story.Clone().EnsureLore()}
}
