package reader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/media"
)

type memStories map[int64]*domain.Story

func (m memStories) Story(_ context.Context, id int64) (*domain.Story, bool) {
	s, ok := m[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

type memBookmarks struct {
	mu   sync.Mutex
	data map[int64]int
	err  error
}

func newMemBookmarks() *memBookmarks {
	return &memBookmarks{data: make(map[int64]int)}
}

func (m *memBookmarks) GetBookmark(_ context.Context, id int64) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, false, m.err
	}
	i, ok := m.data[id]
	return i, ok, nil
}

func (m *memBookmarks) SetBookmark(_ context.Context, id int64, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = index
	return nil
}

func (m *memBookmarks) DeleteBookmark(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

// manualScheduler queues callbacks until fire is called.
type manualScheduler struct {
	pending []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (m *manualScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	t := &manualTimer{f: f}
	m.pending = append(m.pending, t)
	return t
}

func (m *manualScheduler) fire() {
	queued := m.pending
	m.pending = nil
	for _, t := range queued {
		if !t.stopped {
			t.fired = true
			t.f()
		}
	}
}

type recordingNotifier struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingNotifier) Unlock(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *recordingNotifier) unlocked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func storyWithChapters(id int64, n int) *domain.Story {
	s := &domain.Story{ID: id, Title: "Historia", Genre: "Fantasía", CreatedAt: "1/2/2024"}
	for i := range n {
		s.Chapters = append(s.Chapters, domain.Chapter{
			ID:      int64(100 + i),
			Title:   "Capítulo",
			Content: "Primera línea\n\n  Segunda línea  \n",
		})
	}
	return s
}

type fixture struct {
	session   *Session
	sched     *manualScheduler
	bookmarks *memBookmarks
	notifier  *recordingNotifier
	changes   []State
}

func newFixture(t *testing.T, stories memStories) *fixture {
	t.Helper()
	f := &fixture{
		sched:     &manualScheduler{},
		bookmarks: newMemBookmarks(),
		notifier:  &recordingNotifier{},
	}
	f.session = NewSession(stories, f.bookmarks, Options{
		TurnDelay: 300 * time.Millisecond,
		Scheduler: f.sched,
		Notifier:  f.notifier,
		CoverDir:  "img/historias/",
		OnChange:  func(s State) { f.changes = append(f.changes, s) },
	})
	return f
}

func TestRender_Closed(t *testing.T) {
	v := Render(Input{})
	assert.False(t, v.Open)
	assert.NotNil(t, v.Right.Paragraphs)
}

func TestRender_EmptyStoryShowsPlaceholder(t *testing.T) {
	v := Render(Input{State: State{Open: true, StoryID: 1}, Story: storyWithChapters(1, 0)})

	assert.True(t, v.Empty)
	assert.Equal(t, NoChaptersText, v.Right.Placeholder)
	assert.Empty(t, v.Right.Paragraphs)
	assert.False(t, v.CanNext)
	assert.False(t, v.CanPrev)
	assert.Equal(t, media.FallbackCover, v.Left.Cover)
}

func TestRender_ChapterPage(t *testing.T) {
	story := storyWithChapters(1, 3)
	story.Cover = "portada.jpg"

	v := Render(Input{
		State:       State{Open: true, StoryID: 1, Index: 1},
		Story:       story,
		Bookmark:    1,
		HasBookmark: true,
		CoverDir:    "img/historias/",
	})

	assert.Equal(t, "img/historias/portada.jpg", v.Left.Cover)
	assert.Equal(t, "Capítulo 2 de 3", v.Left.Progress)
	assert.Equal(t, []string{"Primera línea", "Segunda línea"}, v.Right.Paragraphs)
	assert.Equal(t, 2, v.PageNumber)
	assert.True(t, v.Bookmarked)
	assert.True(t, v.CanNext)
	assert.True(t, v.CanPrev)
}

func TestRender_MissingStory(t *testing.T) {
	v := Render(Input{State: State{Open: true, StoryID: 9}})
	assert.True(t, v.Missing)
	assert.Equal(t, MissingStoryText, v.Right.Placeholder)
}

func TestRender_ClampsIndex(t *testing.T) {
	v := Render(Input{State: State{Open: true, StoryID: 1, Index: 7}, Story: storyWithChapters(1, 2)})
	assert.Equal(t, 2, v.PageNumber)
	assert.False(t, v.CanNext)
}

func TestRender_TurningDisablesNavigation(t *testing.T) {
	v := Render(Input{
		State: State{Open: true, StoryID: 1, Index: 1, Turning: true, Direction: DirectionNext},
		Story: storyWithChapters(1, 3),
	})
	assert.True(t, v.Turning)
	assert.False(t, v.CanNext)
	assert.False(t, v.CanPrev)
}

func TestSession_OpenUnknownStoryIsNoop(t *testing.T) {
	f := newFixture(t, memStories{})

	assert.False(t, f.session.Open(context.Background(), 42))
	assert.False(t, f.session.State().Open)
	assert.Empty(t, f.changes)
}

func TestSession_OpenStartsAtFirstChapter(t *testing.T) {
	f := newFixture(t, memStories{1: storyWithChapters(1, 3)})

	require.True(t, f.session.Open(context.Background(), 1))

	assert.Equal(t, State{Open: true, StoryID: 1, Index: 0}, f.session.State())
}

func TestSession_NextCommitsAfterDelay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 3)})
	f.session.Open(ctx, 1)

	require.True(t, f.session.Next(ctx))
	st := f.session.State()
	assert.True(t, st.Turning)
	assert.Equal(t, DirectionNext, st.Direction)
	assert.Equal(t, 0, st.Index)

	f.sched.fire()

	st = f.session.State()
	assert.False(t, st.Turning)
	assert.Equal(t, 1, st.Index)
}

func TestSession_DoubleNextDuringTurnIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 5)})
	f.session.Open(ctx, 1)

	require.True(t, f.session.Next(ctx))
	assert.False(t, f.session.Next(ctx))
	assert.False(t, f.session.Prev(ctx))
	f.sched.fire()

	assert.Equal(t, 1, f.session.State().Index)
}

func TestSession_NavigationStaysInBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 3)})
	f.session.Open(ctx, 1)

	assert.False(t, f.session.Prev(ctx), "prev at first chapter")

	for range 5 {
		f.session.Next(ctx)
		f.sched.fire()
	}
	assert.Equal(t, 2, f.session.State().Index)
	assert.False(t, f.session.Next(ctx), "next at last chapter")

	for range 5 {
		f.session.Prev(ctx)
		f.sched.fire()
	}
	assert.Equal(t, 0, f.session.State().Index)
}

func TestSession_NextOnEmptyStoryIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 0)})
	f.session.Open(ctx, 1)

	assert.False(t, f.session.Next(ctx))
	assert.True(t, f.session.View(ctx).Empty)
}

func TestSession_CloseCancelsTurn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 3)})
	f.session.Open(ctx, 1)
	f.session.Next(ctx)

	f.session.Close()
	f.sched.fire()

	assert.Equal(t, State{}, f.session.State())
	assert.False(t, f.session.Next(ctx))
}

func TestSession_ReopenDiscardsPendingTurn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 3), 2: storyWithChapters(2, 3)})
	f.session.Open(ctx, 1)
	f.session.Next(ctx)

	f.session.Open(ctx, 2)
	f.sched.fire()

	assert.Equal(t, State{Open: true, StoryID: 2, Index: 0}, f.session.State())
}

func TestSession_Settle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 3)})
	f.session.Open(ctx, 1)

	assert.False(t, f.session.Settle(ctx))
	f.session.Next(ctx)
	assert.True(t, f.session.Settle(ctx))
	assert.Equal(t, 1, f.session.State().Index)

	// The stopped timer must not commit a second time.
	f.sched.fire()
	assert.Equal(t, 1, f.session.State().Index)
}

func TestSession_ZeroDelayCommitsImmediately(t *testing.T) {
	ctx := context.Background()
	s := NewSession(memStories{1: storyWithChapters(1, 2)}, newMemBookmarks(), Options{})
	s.Open(ctx, 1)

	require.True(t, s.Next(ctx))
	assert.Equal(t, State{Open: true, StoryID: 1, Index: 1}, s.State())
}

func TestSession_BookmarkRestoredOnReopen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 4)})
	f.session.Open(ctx, 1)
	f.session.Next(ctx)
	f.sched.fire()
	f.session.Next(ctx)
	f.sched.fire()

	set, err := f.session.ToggleBookmark(ctx)
	require.NoError(t, err)
	assert.True(t, set)
	assert.True(t, f.session.View(ctx).Bookmarked)

	f.session.Close()
	f.session.Open(ctx, 1)

	assert.Equal(t, 2, f.session.State().Index)
}

func TestSession_ToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 3)})
	f.session.Open(ctx, 1)

	set, err := f.session.ToggleBookmark(ctx)
	require.NoError(t, err)
	assert.True(t, set)

	set, err = f.session.ToggleBookmark(ctx)
	require.NoError(t, err)
	assert.False(t, set)

	_, ok, _ := f.bookmarks.GetBookmark(ctx, 1)
	assert.False(t, ok)
}

func TestSession_ToggleMovesBookmarkToCurrentPage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 3)})
	f.bookmarks.data[1] = 0
	f.session.Open(ctx, 1)
	f.session.Next(ctx)
	f.sched.fire()

	set, err := f.session.ToggleBookmark(ctx)
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, 1, f.bookmarks.data[1])
}

func TestSession_ToggleOnEmptyStoryIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 0)})
	f.session.Open(ctx, 1)

	set, err := f.session.ToggleBookmark(ctx)
	require.NoError(t, err)
	assert.False(t, set)
	assert.Empty(t, f.bookmarks.data)
}

func TestSession_StaleBookmarkPrunedAndClamped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 2)})
	f.bookmarks.data[1] = 7

	f.session.Open(ctx, 1)

	assert.Equal(t, 1, f.session.State().Index)
	_, ok, _ := f.bookmarks.GetBookmark(ctx, 1)
	assert.False(t, ok)
}

func TestSession_UnreadableBookmarkIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 2)})
	f.bookmarks.err = errors.New("disk gone")

	require.True(t, f.session.Open(ctx, 1))
	assert.Equal(t, 0, f.session.State().Index)
	assert.False(t, f.session.View(ctx).Bookmarked)
}

func TestSession_Achievements(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 2)})
	f.session.Open(ctx, 1)

	_, err := f.session.ToggleBookmark(ctx)
	require.NoError(t, err)
	f.session.Next(ctx)
	f.sched.fire()

	assert.Equal(t, []string{domain.AchievementBookmark, domain.AchievementBookworm}, f.notifier.unlocked())
}

func TestSession_ViewOfDeletedStory(t *testing.T) {
	ctx := context.Background()
	stories := memStories{1: storyWithChapters(1, 2)}
	f := newFixture(t, stories)
	f.session.Open(ctx, 1)

	delete(stories, 1)

	v := f.session.View(ctx)
	assert.True(t, v.Missing)
	assert.False(t, f.session.Next(ctx))
}

func TestSession_OnChangeSequence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memStories{1: storyWithChapters(1, 2)})

	f.session.Open(ctx, 1)
	f.session.Next(ctx)
	f.sched.fire()
	f.session.Close()

	require.Len(t, f.changes, 4)
	assert.True(t, f.changes[1].Turning)
	assert.Equal(t, 1, f.changes[2].Index)
	assert.False(t, f.changes[3].Open)
}
