package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chroniclesapp/chronicles-server/internal/reader"
	"github.com/chroniclesapp/chronicles-server/internal/service"
)

func TestReader_PaginationAndBookmark(t *testing.T) {
	ts := setupTestServer(t)
	story := createStory(t, ts, "Viaje", "Aventura")
	addChapter(t, ts, story.ID, "Partida", "Salimos al amanecer.")
	addChapter(t, ts, story.ID, "Llegada", "Llegamos de noche.\nNadie esperaba.")

	resp := ts.api.Get("/api/v1/reader")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, decodeEnvelope[reader.View](t, resp).Data.Open)

	resp = ts.api.Post(fmt.Sprintf("/api/v1/reader/open/%d", story.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	view := decodeEnvelope[reader.View](t, resp).Data
	assert.True(t, view.Open)
	assert.Equal(t, 1, view.PageNumber)
	assert.Equal(t, "Partida", view.Right.ChapterTitle)
	assert.False(t, view.CanPrev)

	resp = ts.api.Post("/api/v1/reader/prev")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, decodeEnvelope[TurnResponse](t, resp).Data.Accepted)

	resp = ts.api.Post("/api/v1/reader/next")
	turn := decodeEnvelope[TurnResponse](t, resp).Data
	assert.True(t, turn.Accepted)
	assert.Equal(t, "Llegada", turn.View.Right.ChapterTitle)
	assert.Equal(t, []string{"Llegamos de noche.", "Nadie esperaba."}, turn.View.Right.Paragraphs)

	resp = ts.api.Post("/api/v1/reader/next")
	assert.False(t, decodeEnvelope[TurnResponse](t, resp).Data.Accepted, "already on the last chapter")

	resp = ts.api.Post("/api/v1/reader/bookmark")
	require.Equal(t, http.StatusOK, resp.Code)
	mark := decodeEnvelope[BookmarkResponse](t, resp).Data
	assert.True(t, mark.Saved)
	assert.True(t, mark.View.Bookmarked)

	resp = ts.api.Post("/api/v1/reader/close")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, decodeEnvelope[reader.View](t, resp).Data.Open)

	// Reopening resumes at the bookmark.
	resp = ts.api.Post(fmt.Sprintf("/api/v1/reader/open/%d", story.ID))
	view = decodeEnvelope[reader.View](t, resp).Data
	assert.Equal(t, 2, view.PageNumber)

	resp = ts.api.Post("/api/v1/reader/bookmark")
	assert.False(t, decodeEnvelope[BookmarkResponse](t, resp).Data.Saved, "second toggle clears it")
}

func TestReader_OpenUnknownStory(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/reader/open/77")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope[any](t, resp).Code)
}

func TestReader_EmptyStoryShowsPlaceholder(t *testing.T) {
	ts := setupTestServer(t)
	story := createStory(t, ts, "Vacía", "")

	resp := ts.api.Post(fmt.Sprintf("/api/v1/reader/open/%d", story.ID))
	view := decodeEnvelope[reader.View](t, resp).Data
	assert.True(t, view.Empty)
	assert.Equal(t, reader.NoChaptersText, view.Right.Placeholder)
}

func TestAchievements_ListReflectsUnlocks(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/achievements")
	require.Equal(t, http.StatusOK, resp.Code)
	before := decodeEnvelope[AchievementsResponse](t, resp).Data
	assert.Equal(t, len(service.Catalogue()), before.Total)
	assert.Zero(t, before.Unlocked)

	createStory(t, ts, "Primera", "")

	resp = ts.api.Get("/api/v1/achievements")
	after := decodeEnvelope[AchievementsResponse](t, resp).Data
	assert.Equal(t, 1, after.Unlocked)
	for _, a := range after.Achievements {
		if a.Unlocked {
			assert.Equal(t, "writer_born", a.ID)
			assert.NotEmpty(t, a.Date)
		}
	}
}

func TestSearch(t *testing.T) {
	ts := setupTestServer(t)
	story := createStory(t, ts, "El dragón de cristal", "Fantasía")
	addChapter(t, ts, story.ID, "La cueva", "Las montañas guardaban un secreto.")
	createStory(t, ts, "Asesinato en el tren", "Misterio")

	resp := ts.api.Get("/api/v1/search?q=montañas")
	require.Equal(t, http.StatusOK, resp.Code)
	result := decodeEnvelope[struct {
		Total uint64 `json:"total"`
		Hits  []struct {
			StoryID int64  `json:"storyId"`
			Type    string `json:"type"`
		} `json:"hits"`
	}](t, resp).Data
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, story.ID, result.Hits[0].StoryID)

	resp = ts.api.Get("/api/v1/search?type=poem")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
