package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chroniclesapp/chronicles-server/internal/id"
	"github.com/chroniclesapp/chronicles-server/internal/logger"
	"github.com/chroniclesapp/chronicles-server/internal/sse"
	"github.com/chroniclesapp/chronicles-server/internal/store"
)

var testNow = time.Date(2024, 3, 7, 18, 30, 0, 0, time.UTC)

type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type recordingNotifier struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingNotifier) Unlock(_ context.Context, id string) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
}

func (r *recordingNotifier) unlocked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

type testLibrary struct {
	svc      *LibraryService
	store    *store.Store
	events   *recordingEmitter
	notifier *recordingNotifier
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Options{InMemory: true}, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestLibrary(t *testing.T) *testLibrary {
	t.Helper()
	return newTestLibraryWithStore(t, newTestStore(t))
}

func newTestLibraryWithStore(t *testing.T, st *store.Store) *testLibrary {
	t.Helper()

	tl := &testLibrary{
		store:    st,
		events:   &recordingEmitter{},
		notifier: &recordingNotifier{},
	}
	clock := func() time.Time { return testNow }
	tl.svc = NewLibraryService(LibraryDeps{
		Store:    st,
		Sequence: id.NewSequenceWithClock(clock),
		Notifier: tl.notifier,
		Events:   tl.events,
		Logger:   logger.Discard(),
		Now:      clock,
	})
	require.NoError(t, tl.svc.Load(context.Background()))
	return tl
}
