package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeRaw(t *testing.T, s *Store, key, value string) {
	t.Helper()
	require.NoError(t, s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	}))
}

func TestNew_OnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	ctx := context.Background()

	s, err := New(Options{Path: dir}, nil)
	require.NoError(t, err)
	require.NoError(t, s.SaveLibrary(ctx, []*domain.Story{{ID: 1, Title: "Persistida"}}))
	require.NoError(t, s.Close())

	// Reopen read-only and see the data.
	ro, err := New(Options{Path: dir, ReadOnly: true}, nil)
	require.NoError(t, err)
	defer ro.Close()

	stories, err := ro.LoadLibrary(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "Persistida", stories[0].Title)
}

func TestLoadLibrary_Missing(t *testing.T) {
	s := setupTestStore(t)

	stories, err := s.LoadLibrary(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stories)
	assert.Empty(t, stories)
}

func TestLibrary_RoundTripKeepsOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	in := []*domain.Story{
		{ID: 3, Title: "C", Chapters: []domain.Chapter{{ID: 1, Title: "uno", Content: "a\nb"}}},
		{ID: 1, Title: "A", Lore: &domain.Lore{Synopsis: "s"}},
		{ID: 2, Title: "B"},
	}
	require.NoError(t, s.SaveLibrary(ctx, in))

	out, err := s.LoadLibrary(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, "a\nb", out[0].Chapters[0].Content)
	assert.Equal(t, "s", out[1].Lore.Synopsis)
	assert.Nil(t, out[2].Lore)
}

func TestLoadLibrary_Corrupt(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	writeRaw(t, s, libraryKey, `{"not":"an array"`)

	_, err := s.LoadLibrary(ctx)
	assert.ErrorIs(t, err, ErrCorruptLibrary)
}

func TestLoadLibrary_SkipsNullEntries(t *testing.T) {
	s := setupTestStore(t)
	writeRaw(t, s, libraryKey, `[null,{"id":5,"title":"ok","chapters":[]}]`)

	out, err := s.LoadLibrary(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(5), out[0].ID)
}

func TestQuarantineLibrary(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	writeRaw(t, s, libraryKey, `garbage`)

	key, err := s.QuarantineLibrary(ctx, time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.Equal(t, "library:corrupt:1700000000", key)

	// Live key is gone, library reads as empty.
	stories, err := s.LoadLibrary(ctx)
	require.NoError(t, err)
	assert.Empty(t, stories)

	keys, err := s.QuarantinedKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	// Nothing to quarantine a second time.
	key, err = s.QuarantineLibrary(ctx, time.Unix(1700000001, 0))
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestBookmarks(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetBookmark(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetBookmark(ctx, 42, 3))
	require.NoError(t, s.SetBookmark(ctx, 7, 0))

	idx, ok, err := s.GetBookmark(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	// Index zero is a real bookmark, distinct from absence.
	idx, ok, err = s.GetBookmark(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	list, err := s.ListBookmarks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Bookmark{{StoryID: 7, Index: 0}, {StoryID: 42, Index: 3}}, list)

	require.NoError(t, s.DeleteBookmark(ctx, 42))
	require.NoError(t, s.DeleteBookmark(ctx, 42))
	_, ok, err = s.GetBookmark(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveLibraryDropBookmarks(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetBookmark(ctx, 1, 2))
	require.NoError(t, s.SetBookmark(ctx, 2, 1))

	require.NoError(t, s.SaveLibraryDropBookmarks(ctx, []*domain.Story{{ID: 2}}, 1))

	list, err := s.ListBookmarks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Bookmark{{StoryID: 2, Index: 1}}, list)
}

func TestAddUnlock_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	added, err := s.AddUnlock(ctx, domain.Unlock{ID: "writer_born", Date: "1/5/2024"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddUnlock(ctx, domain.Unlock{ID: "writer_born", Date: "2/5/2024"})
	require.NoError(t, err)
	assert.False(t, added)

	unlocks, err := s.ListUnlocks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Unlock{{ID: "writer_born", Date: "1/5/2024"}}, unlocks)
}

func TestRestoreSnapshot(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLibrary(ctx, []*domain.Story{{ID: 1, Title: "old"}}))
	require.NoError(t, s.SetBookmark(ctx, 1, 4))

	err := s.RestoreSnapshot(ctx,
		[]*domain.Story{{ID: 9, Title: "new"}},
		[]domain.Bookmark{{StoryID: 9, Index: 1}},
		[]domain.Unlock{{ID: "importer", Date: "1/1/2024"}},
	)
	require.NoError(t, err)

	stories, err := s.LoadLibrary(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "new", stories[0].Title)

	list, err := s.ListBookmarks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Bookmark{{StoryID: 9, Index: 1}}, list)

	unlocks, err := s.ListUnlocks(ctx)
	require.NoError(t, err)
	assert.Len(t, unlocks, 1)
}

func TestPlaceholders(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetPlaceholder(ctx, "img/album/m1.png", 100)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetPlaceholder(ctx, "img/album/m1.png", 100, "LEHV6nWB2yk8"))

	hash, ok, err := s.GetPlaceholder(ctx, "img/album/m1.png", 100)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "LEHV6nWB2yk8", hash)

	// A modified file invalidates the cached hash.
	_, ok, err = s.GetPlaceholder(ctx, "img/album/m1.png", 200)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	key := buildIDKey(bookmarkPrefix, 1700000000123)
	assert.Equal(t, "bookmark:1700000000123", string(key))

	id, ok := parseIDKey(bookmarkPrefix, key)
	releaseKey(key)
	assert.True(t, ok)
	assert.Equal(t, int64(1700000000123), id)

	_, ok = parseIDKey(bookmarkPrefix, []byte("bookmark:abc"))
	assert.False(t, ok)
	_, ok = parseIDKey(bookmarkPrefix, []byte("other:1"))
	assert.False(t, ok)
}

func TestCanceledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadLibrary(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.SetBookmark(ctx, 1, 1), context.Canceled)
}
