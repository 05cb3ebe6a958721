package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	domainerrors "github.com/chroniclesapp/chronicles-server/internal/errors"
	"github.com/chroniclesapp/chronicles-server/internal/reader"
	"github.com/chroniclesapp/chronicles-server/internal/sse"
	"github.com/chroniclesapp/chronicles-server/internal/store"
)

// ReaderOptions configures the reader service.
type ReaderOptions struct {
	TurnDelay time.Duration
	CoverDir  string
	// Scheduler is only overridden by tests.
	Scheduler reader.Scheduler
}

// ReaderService exposes the single reader session of this server. Every state
// change is published as a reader.changed event.
type ReaderService struct {
	library *LibraryService
	session *reader.Session
	events  EventEmitter
	logger  *slog.Logger
}

// NewReaderService creates a reader service with a closed session.
func NewReaderService(library *LibraryService, bookmarks *store.Store, notifier domain.AchievementNotifier, events EventEmitter, opts ReaderOptions, logger *slog.Logger) *ReaderService {
	if events == nil {
		events = NoopEmitter{}
	}
	s := &ReaderService{
		library: library,
		events:  events,
		logger:  logger,
	}
	s.session = reader.NewSession(library, bookmarks, reader.Options{
		TurnDelay: opts.TurnDelay,
		Scheduler: opts.Scheduler,
		Notifier:  notifier,
		OnChange:  s.publish,
		CoverDir:  opts.CoverDir,
		Logger:    logger,
	})
	return s
}

func (s *ReaderService) publish(st reader.State) {
	s.events.Emit(sse.NewReaderChangedEvent(st.Open, st.StoryID, st.Index, st.Turning, string(st.Direction)))
}

// View returns the current reader view.
func (s *ReaderService) View(ctx context.Context) reader.View {
	return s.session.View(ctx)
}

// Open opens a story at its bookmark. Unknown stories are a 404 here; the
// session itself stays as it was.
func (s *ReaderService) Open(ctx context.Context, storyID int64) (reader.View, error) {
	if !s.session.Open(ctx, storyID) {
		return reader.View{}, domainerrors.NotFoundf("story %d not found", storyID)
	}
	s.logger.Debug("reader opened", "story_id", storyID)
	return s.session.View(ctx), nil
}

// Next starts a forward page turn. accepted is false when the turn was out of
// range or another turn is still in flight.
func (s *ReaderService) Next(ctx context.Context) (reader.View, bool) {
	ok := s.session.Next(ctx)
	return s.session.View(ctx), ok
}

// Prev starts a backward page turn.
func (s *ReaderService) Prev(ctx context.Context) (reader.View, bool) {
	ok := s.session.Prev(ctx)
	return s.session.View(ctx), ok
}

// Close closes the book.
func (s *ReaderService) Close(ctx context.Context) reader.View {
	s.session.Close()
	return s.session.View(ctx)
}

// ToggleBookmark sets or clears the bookmark on the current chapter.
func (s *ReaderService) ToggleBookmark(ctx context.Context) (reader.View, bool, error) {
	set, err := s.session.ToggleBookmark(ctx)
	if err != nil {
		return reader.View{}, false, domainerrors.Wrap(err, domainerrors.CodeInternal, "toggle bookmark")
	}
	return s.session.View(ctx), set, nil
}

// Session exposes the underlying session for tests and tools.
func (s *ReaderService) Session() *reader.Session {
	return s.session
}
