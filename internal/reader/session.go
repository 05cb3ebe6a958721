// Package reader drives the two-page book view: which story is open, which
// chapter is showing, page turns and the bookmark ribbon.
package reader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

// StoryLookup resolves a story by id. Implementations return a copy the
// session may read freely.
type StoryLookup interface {
	Story(ctx context.Context, id int64) (*domain.Story, bool)
}

// BookmarkStore persists one chapter index per story.
type BookmarkStore interface {
	GetBookmark(ctx context.Context, storyID int64) (int, bool, error)
	SetBookmark(ctx context.Context, storyID int64, index int) error
	DeleteBookmark(ctx context.Context, storyID int64) error
}

// Options configures a Session.
type Options struct {
	// TurnDelay is the animation window between a turn request and its commit.
	// Zero commits immediately.
	TurnDelay time.Duration
	// Scheduler defaults to ClockScheduler.
	Scheduler Scheduler
	// Notifier defaults to domain.NoopNotifier.
	Notifier domain.AchievementNotifier
	// OnChange, when set, is called after every state change with the new state,
	// outside the session lock.
	OnChange func(State)
	CoverDir string
	Logger   *slog.Logger
}

// Session is the reader state machine for one reader. States are closed and
// open(story, index); an open session may additionally be turning.
//
// A turn request marks the session as turning and schedules the index commit
// after TurnDelay. Requests made while a turn is in flight are dropped.
type Session struct {
	stories   StoryLookup
	bookmarks BookmarkStore
	opts      Options
	logger    *slog.Logger

	mu    sync.Mutex
	state State
	timer Timer
	// gen invalidates scheduled commits when the session is reopened or closed.
	gen uint64
}

// NewSession creates a closed session.
func NewSession(stories StoryLookup, bookmarks BookmarkStore, opts Options) *Session {
	if opts.Scheduler == nil {
		opts.Scheduler = ClockScheduler{}
	}
	if opts.Notifier == nil {
		opts.Notifier = domain.NoopNotifier{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{stories: stories, bookmarks: bookmarks, opts: opts, logger: logger}
}

// State returns a snapshot of the pagination state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open shows storyID, starting at its bookmark or at the first chapter.
// Unknown stories leave the session untouched and report false.
//
// A bookmark pointing past the last chapter (chapters were removed since it
// was saved) is deleted and the index clamps to the last chapter.
func (s *Session) Open(ctx context.Context, storyID int64) bool {
	story, ok := s.stories.Story(ctx, storyID)
	if !ok {
		s.logger.DebugContext(ctx, "reader open ignored, story not found", "story_id", storyID)
		return false
	}

	index := 0
	if saved, ok := s.loadBookmark(ctx, storyID); ok {
		index = saved
		if saved < 0 || saved >= story.ChapterCount() {
			index = story.ClampIndex(saved)
			s.pruneBookmark(ctx, storyID, saved, story.ChapterCount())
		}
	}

	s.mu.Lock()
	s.cancelTurnLocked()
	s.state = State{Open: true, StoryID: storyID, Index: index}
	st := s.state
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "reader opened", "story_id", storyID, "index", index)
	s.changed(st)
	return true
}

// Close returns the session to closed, abandoning any in-flight turn.
func (s *Session) Close() {
	s.mu.Lock()
	if !s.state.Open {
		s.mu.Unlock()
		return
	}
	s.cancelTurnLocked()
	s.state = State{}
	s.mu.Unlock()

	s.changed(State{})
}

// Next starts a turn to the following chapter. Reports whether the request
// was accepted; it is a no-op at the last chapter, while closed, and while
// another turn is in flight.
func (s *Session) Next(ctx context.Context) bool {
	return s.turn(ctx, DirectionNext)
}

// Prev starts a turn to the preceding chapter. Reports whether the request
// was accepted; it is a no-op at the first chapter, while closed, and while
// another turn is in flight.
func (s *Session) Prev(ctx context.Context) bool {
	return s.turn(ctx, DirectionPrev)
}

func (s *Session) turn(ctx context.Context, dir Direction) bool {
	s.mu.Lock()
	if !s.state.Open || s.state.Turning {
		s.mu.Unlock()
		return false
	}
	storyID := s.state.StoryID
	s.mu.Unlock()

	story, ok := s.stories.Story(ctx, storyID)
	if !ok {
		return false
	}
	total := story.ChapterCount()

	s.mu.Lock()
	// Re-check: the session may have moved while the story was fetched.
	if !s.state.Open || s.state.Turning || s.state.StoryID != storyID {
		s.mu.Unlock()
		return false
	}
	index := story.ClampIndex(s.state.Index)
	target := index + 1
	if dir == DirectionPrev {
		target = index - 1
	}
	if total == 0 || target < 0 || target >= total {
		s.mu.Unlock()
		return false
	}

	s.state.Index = index
	s.state.Turning = true
	s.state.Direction = dir
	s.gen++
	gen := s.gen
	st := s.state

	// Commits run after the request returns, so they must not inherit its cancellation.
	commitCtx := context.WithoutCancel(ctx)
	if s.opts.TurnDelay <= 0 {
		s.mu.Unlock()
		s.changed(st)
		s.commit(commitCtx, gen, target, total)
		return true
	}
	s.timer = s.opts.Scheduler.AfterFunc(s.opts.TurnDelay, func() {
		s.commit(commitCtx, gen, target, total)
	})
	s.mu.Unlock()

	s.changed(st)
	return true
}

// commit applies a scheduled turn if it is still current.
func (s *Session) commit(ctx context.Context, gen uint64, target, total int) {
	s.mu.Lock()
	if s.gen != gen || !s.state.Turning {
		s.mu.Unlock()
		return
	}
	s.state.Index = target
	s.state.Turning = false
	s.state.Direction = DirectionNone
	s.timer = nil
	st := s.state
	s.mu.Unlock()

	s.changed(st)

	if total > 1 && target == total-1 {
		s.opts.Notifier.Unlock(ctx, domain.AchievementBookworm)
	}
}

// Settle commits an in-flight turn immediately. Reports whether one was pending.
func (s *Session) Settle(ctx context.Context) bool {
	s.mu.Lock()
	if !s.state.Turning {
		s.mu.Unlock()
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.gen
	storyID := s.state.StoryID
	target := s.state.Index + 1
	if s.state.Direction == DirectionPrev {
		target = s.state.Index - 1
	}
	s.mu.Unlock()

	total := 0
	if story, ok := s.stories.Story(ctx, storyID); ok {
		total = story.ChapterCount()
	}
	if total > 0 {
		target = min(max(target, 0), total-1)
	} else {
		target = 0
	}
	s.commit(ctx, gen, target, total)
	return true
}

// ToggleBookmark flips the bookmark of the open story: removed when it equals
// the current index, otherwise set to it. Reports whether a bookmark is set
// afterwards. A closed session or a story without chapters is a no-op.
func (s *Session) ToggleBookmark(ctx context.Context) (bool, error) {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	if !st.Open {
		return false, nil
	}
	story, ok := s.stories.Story(ctx, st.StoryID)
	if !ok || story.ChapterCount() == 0 {
		return false, nil
	}
	index := story.ClampIndex(st.Index)

	saved, has, err := s.bookmarks.GetBookmark(ctx, st.StoryID)
	if err != nil {
		return false, err
	}

	if has && saved == index {
		if err := s.bookmarks.DeleteBookmark(ctx, st.StoryID); err != nil {
			return true, err
		}
		s.logger.DebugContext(ctx, "bookmark removed", "story_id", st.StoryID, "index", index)
		s.changed(st)
		return false, nil
	}

	if err := s.bookmarks.SetBookmark(ctx, st.StoryID, index); err != nil {
		return has, err
	}
	s.logger.DebugContext(ctx, "bookmark set", "story_id", st.StoryID, "index", index)
	s.opts.Notifier.Unlock(ctx, domain.AchievementBookmark)
	s.changed(st)
	return true, nil
}

// View renders the current state.
func (s *Session) View(ctx context.Context) View {
	st := s.State()
	in := Input{State: st, CoverDir: s.opts.CoverDir}
	if !st.Open {
		return Render(in)
	}

	if story, ok := s.stories.Story(ctx, st.StoryID); ok {
		in.Story = story
	}
	in.Bookmark, in.HasBookmark = s.loadBookmark(ctx, st.StoryID)
	return Render(in)
}

// loadBookmark reads a bookmark, treating storage errors as "no bookmark".
func (s *Session) loadBookmark(ctx context.Context, storyID int64) (int, bool) {
	index, ok, err := s.bookmarks.GetBookmark(ctx, storyID)
	if err != nil {
		s.logger.WarnContext(ctx, "bookmark unreadable, ignoring", "story_id", storyID, "error", err)
		return 0, false
	}
	return index, ok
}

func (s *Session) pruneBookmark(ctx context.Context, storyID int64, saved, total int) {
	if err := s.bookmarks.DeleteBookmark(ctx, storyID); err != nil {
		s.logger.WarnContext(ctx, "failed to prune stale bookmark", "story_id", storyID, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "pruned stale bookmark", "story_id", storyID, "index", saved, "chapters", total)
}

func (s *Session) cancelTurnLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Session) changed(st State) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(st)
	}
}
