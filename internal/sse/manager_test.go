package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/logger"
)

func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case e := <-c.EventChan:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestManager_BroadcastsToAllClients(t *testing.T) {
	m := startManager(t)

	a, err := m.Connect()
	require.NoError(t, err)
	b, err := m.Connect()
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())

	m.Emit(NewStoryCreatedEvent(&domain.Story{ID: 7, Title: "Nueva"}))

	for _, c := range []*Client{a, b} {
		e := receive(t, c)
		assert.Equal(t, EventStoryCreated, e.Type)
		assert.Equal(t, StoryEventData{StoryID: 7, Title: "Nueva"}, e.Data)
	}
}

func TestManager_Disconnect(t *testing.T) {
	m := startManager(t)
	c, err := m.Connect()
	require.NoError(t, err)

	m.Disconnect(c.ID)
	m.Disconnect(c.ID)

	assert.Equal(t, 0, m.ClientCount())
	_, open := <-c.Done
	assert.False(t, open)
}

func TestManager_EmitAfterShutdownIsDropped(t *testing.T) {
	m := startManager(t)
	c, err := m.Connect()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx))

	assert.NotPanics(t, func() {
		m.Emit(NewStoryDeletedEvent(1))
	})
	assert.Equal(t, 0, m.ClientCount())
	_, open := <-c.Done
	assert.False(t, open)
}

func TestHandler_StreamsEvents(t *testing.T) {
	m := startManager(t)
	h := NewHandler(m, logger.Discard())
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: connected", lines.Text())

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	m.Emit(NewAchievementUnlockedEvent(domain.Achievement{ID: domain.AchievementBookworm}, "1/2/2024"))

	var got []string
	for lines.Scan() {
		line := lines.Text()
		if strings.HasPrefix(line, "event: ") {
			got = append(got, strings.TrimPrefix(line, "event: "))
		}
		if len(got) == 1 {
			break
		}
	}
	assert.Equal(t, []string{string(EventAchievementUnlocked)}, got)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	h := NewHandler(NewManager(logger.Discard()), logger.Discard())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
