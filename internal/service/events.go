package service

import (
	"context"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/search"
	"github.com/chroniclesapp/chronicles-server/internal/sse"
)

// EventEmitter publishes server-sent events. *sse.Manager implements it.
type EventEmitter interface {
	Emit(event sse.Event)
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

// Emit implements EventEmitter.
func (NoopEmitter) Emit(sse.Event) {}

// Indexer keeps a search index in step with the library.
// *search.SearchIndex implements it.
type Indexer interface {
	IndexStory(ctx context.Context, story *domain.Story) error
	RemoveStory(ctx context.Context, storyID int64) error
	Reindex(ctx context.Context, stories []*domain.Story) error
}

var _ Indexer = (*search.SearchIndex)(nil)
var _ EventEmitter = (*sse.Manager)(nil)
