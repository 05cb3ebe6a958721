// Package dto provides the client-facing shapes of library data.
//
// Cards carry resolved display fields (cover source, accent colour, bookmark)
// so the library grid renders without further lookups.
package dto

import (
	"context"
	"fmt"

	"github.com/chroniclesapp/chronicles-server/internal/color"
	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/media"
)

// StoryCard is one tile of the library grid.
type StoryCard struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Genre        string `json:"genre"`
	Accent       string `json:"accent"`
	Cover        string `json:"cover"`
	Fallback     string `json:"fallback"`
	Placeholder  string `json:"placeholder,omitempty"`
	CreatedAt    string `json:"createdAt"`
	ChapterCount int    `json:"chapterCount"`
	HasLore      bool   `json:"hasLore"`
	// Bookmark is the saved chapter index, nil when none is saved.
	Bookmark *int `json:"bookmark,omitempty"`
}

// BookmarkSource lists saved bookmarks. *store.Store implements it.
type BookmarkSource interface {
	ListBookmarks(ctx context.Context) ([]domain.Bookmark, error)
}

// PlaceholderSource yields a blurhash for an image source, or "".
type PlaceholderSource interface {
	Placeholder(ctx context.Context, src string) string
}

// Enricher turns stories into cards.
type Enricher struct {
	bookmarks    BookmarkSource
	placeholders PlaceholderSource
	coverDir     string
}

// NewEnricher creates a new enricher. placeholders may be nil.
func NewEnricher(bookmarks BookmarkSource, placeholders PlaceholderSource, coverDir string) *Enricher {
	return &Enricher{bookmarks: bookmarks, placeholders: placeholders, coverDir: coverDir}
}

// Cards builds a card per story, in order. Bookmarks are fetched once for
// the whole batch.
func (e *Enricher) Cards(ctx context.Context, stories []*domain.Story) ([]StoryCard, error) {
	marks, err := e.bookmarks.ListBookmarks(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch bookmarks: %w", err)
	}
	byStory := make(map[int64]int, len(marks))
	for _, b := range marks {
		byStory[b.StoryID] = b.Index
	}

	cards := make([]StoryCard, 0, len(stories))
	for _, s := range stories {
		card := e.card(ctx, s)
		if index, ok := byStory[s.ID]; ok {
			card.Bookmark = &index
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (e *Enricher) card(ctx context.Context, s *domain.Story) StoryCard {
	card := StoryCard{
		ID:           s.ID,
		Title:        s.Title,
		Genre:        s.Genre,
		Accent:       color.ForGenre(s.Genre),
		Cover:        media.ResolveCover(s.Cover, e.coverDir),
		Fallback:     media.FallbackCover,
		CreatedAt:    s.CreatedAt,
		ChapterCount: s.ChapterCount(),
		HasLore:      s.HasLore(),
	}
	if e.placeholders != nil && card.Cover != media.FallbackCover {
		card.Placeholder = e.placeholders.Placeholder(ctx, card.Cover)
	}
	return card
}
