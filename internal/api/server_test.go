package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chroniclesapp/chronicles-server/internal/config"
	"github.com/chroniclesapp/chronicles-server/internal/dto"
	"github.com/chroniclesapp/chronicles-server/internal/logger"
	"github.com/chroniclesapp/chronicles-server/internal/search"
	"github.com/chroniclesapp/chronicles-server/internal/service"
	"github.com/chroniclesapp/chronicles-server/internal/sse"
	"github.com/chroniclesapp/chronicles-server/internal/store"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api     humatest.TestAPI
	library *service.LibraryService
}

// testEnvelope mirrors response.Envelope and response.ErrorEnvelope.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), "body: %s", resp.Body.String())
	return env
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Discard()
	ctx := context.Background()

	st, err := store.New(store.Options{InMemory: true}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{InMemory: true, Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	sseManager := sse.NewManager(log)
	achievements := service.NewAchievementService(st, sseManager, log)

	library := service.NewLibraryService(service.LibraryDeps{
		Store:    st,
		Notifier: achievements,
		Events:   sseManager,
		Index:    index,
		Logger:   log,
	})
	require.NoError(t, library.Load(ctx))

	services := &Services{
		Library:      library,
		Reader:       service.NewReaderService(library, st, achievements, sseManager, service.ReaderOptions{CoverDir: "img/historias/"}, log),
		Lore:         service.NewLoreService(library, "img/album/", nil),
		Search:       service.NewSearchService(index, log),
		Backup:       service.NewBackupService(st, library, achievements, sseManager, log),
		Achievements: achievements,
		Enricher:     dto.NewEnricher(st, nil, "img/historias/"),
	}

	srv := NewServer(st, services, sseManager, config.ServerConfig{}, log)
	t.Cleanup(srv.Close)

	return &testServer{
		Server:  srv,
		api:     humatest.Wrap(t, srv.api),
		library: library,
	}
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.V)
	assert.Equal(t, statusHealthy, env.Data.Status)
	assert.Equal(t, 0, env.Data.Stories)
	assert.Contains(t, env.Data.Components, "database")
	assert.Contains(t, env.Data.Components, "search")
	assert.Equal(t, "no connected clients", env.Data.Components["sse"].Message)
}

func TestHealthCheck_MissingComponentsDegrade(t *testing.T) {
	srv := NewServer(nil, &Services{}, nil, config.ServerConfig{}, logger.Discard())
	t.Cleanup(srv.Close)
	api := humatest.Wrap(t, srv.api)

	resp := api.Get("/api/v1/health")
	require.Equal(t, http.StatusOK, resp.Code)
	env := decodeEnvelope[HealthResponse](t, resp)
	assert.Equal(t, statusDegraded, env.Data.Status)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nowhere")
	require.Equal(t, http.StatusNotFound, resp.Code)

	env := decodeEnvelope[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestCORS(t *testing.T) {
	srv := NewServer(nil, &Services{}, nil, config.ServerConfig{CORSOrigins: []string{"http://localhost:5173"}}, logger.Discard())
	t.Cleanup(srv.Close)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/genres", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListGenres(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/genres")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[struct {
		Genres []GenreResponse `json:"genres"`
	}](t, resp)
	require.NotEmpty(t, env.Data.Genres)
	assert.Equal(t, "fantasia", env.Data.Genres[0].Slug)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, env.Data.Genres[0].Accent)
}
