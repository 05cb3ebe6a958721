package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chroniclesapp/chronicles-server/internal/logger"
	"github.com/chroniclesapp/chronicles-server/internal/ratelimit"
	"github.com/chroniclesapp/chronicles-server/internal/watcher"
)

func writeInboxFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInbox_ImportFileRenamesOnOutcome(t *testing.T) {
	tl := newTestLibrary(t)
	dir := t.TempDir()
	inbox := NewInboxService(tl.svc, dir, watcher.Options{}, logger.Discard())
	ctx := context.Background()

	good := writeInboxFile(t, dir, "historia.json", `{"id": 8, "title": "Del buzón", "chapters": []}`)
	result, err := inbox.ImportFile(ctx, good)
	require.NoError(t, err)
	assert.Len(t, result.Added, 1)
	assert.FileExists(t, good+importedSuffix)
	assert.NoFileExists(t, good)

	bad := writeInboxFile(t, dir, "roto.json", `{"sin": "forma"}`)
	_, err = inbox.ImportFile(ctx, bad)
	require.Error(t, err)
	assert.FileExists(t, bad+failedSuffix)

	stories := tl.svc.List(ctx)
	require.Len(t, stories, 1)
	assert.Equal(t, "Del buzón", stories[0].Title)
	assert.Equal(t, int64(8), stories[0].OriginID)
}

func TestInbox_ScanExisting(t *testing.T) {
	tl := newTestLibrary(t)
	dir := t.TempDir()
	inbox := NewInboxService(tl.svc, dir, watcher.Options{}, logger.Discard())

	writeInboxFile(t, dir, "cuento.md", "# El faro\n\nLa luz giraba.")
	writeInboxFile(t, dir, "portada.png", "png")
	writeInboxFile(t, dir, ".oculto.json", `[]`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	n, err := inbox.ScanExisting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stories := tl.svc.List(context.Background())
	require.Len(t, stories, 1)
	assert.Equal(t, "El faro", stories[0].Title)
}

func TestInbox_RunConsumesAddedEvents(t *testing.T) {
	tl := newTestLibrary(t)
	dir := t.TempDir()
	inbox := NewInboxService(tl.svc, dir, watcher.Options{}, logger.Discard())

	path := writeInboxFile(t, dir, "lote.json", `[{"id": 1, "title": "A", "chapters": []}, {"id": 2, "title": "B", "chapters": []}]`)

	events := make(chan watcher.Event, 2)
	events <- watcher.Event{Type: watcher.EventRemoved, Path: filepath.Join(dir, "otro.json")}
	events <- watcher.Event{Type: watcher.EventAdded, Path: path}
	close(events)

	done := make(chan struct{})
	go func() {
		inbox.Run(context.Background(), events, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the event channel closed")
	}

	assert.Len(t, tl.svc.List(context.Background()), 2)
	assert.FileExists(t, path+importedSuffix)
}

type countingPacer struct{ keys []string }

func (p *countingPacer) Wait(_ context.Context, key string) error {
	p.keys = append(p.keys, key)
	return nil
}

func TestInbox_ImportFileWaitsOnPacer(t *testing.T) {
	tl := newTestLibrary(t)
	dir := t.TempDir()
	pacer := &countingPacer{}
	inbox := NewInboxService(tl.svc, dir, watcher.Options{}, logger.Discard()).WithPacer(pacer)

	path := writeInboxFile(t, dir, "uno.json", `{"id": 1, "title": "Uno", "chapters": []}`)
	_, err := inbox.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox"}, pacer.keys)
}

func TestInbox_ImportFileStopsWhenPacerFails(t *testing.T) {
	tl := newTestLibrary(t)
	dir := t.TempDir()
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	inbox := NewInboxService(tl.svc, dir, watcher.Options{}, logger.Discard()).WithPacer(limiter)

	first := writeInboxFile(t, dir, "uno.json", `{"id": 1, "title": "Uno", "chapters": []}`)
	second := writeInboxFile(t, dir, "dos.json", `{"id": 2, "title": "Dos", "chapters": []}`)

	_, err := inbox.ImportFile(context.Background(), first)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = inbox.ImportFile(ctx, second)
	require.Error(t, err)
	assert.FileExists(t, second, "a file that was never attempted is left in place")
}
