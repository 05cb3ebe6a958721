// Package api provides the HTTP API server and handlers for Chronicles.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chroniclesapp/chronicles-server/internal/config"
	"github.com/chroniclesapp/chronicles-server/internal/http/response"
	"github.com/chroniclesapp/chronicles-server/internal/logger"
	"github.com/chroniclesapp/chronicles-server/internal/ratelimit"
	"github.com/chroniclesapp/chronicles-server/internal/sse"
	"github.com/chroniclesapp/chronicles-server/internal/store"
)

// Upload endpoints accept a handful of documents per minute per client.
const (
	uploadsPerMinute = 10
	uploadBurst      = 5
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	services   *Services
	sseManager *sse.Manager
	sseHandler *sse.Handler
	uploads    *ratelimit.KeyedRateLimiter
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, sseManager *sse.Manager, cfg config.ServerConfig, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:      st,
		services:   services,
		sseManager: sseManager,
		uploads:    ratelimit.New(uploadsPerMinute/60.0, uploadBurst),
		router:     router,
		logger:     logger,
	}
	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, logger)
	}

	s.setupMiddleware(cfg.CORSOrigins)

	humaConfig := huma.DefaultConfig("Chronicles API", "1.0.0")
	humaConfig.Info.Description = "Story reader and lore archive"
	humaConfig.Components.Schemas = newSchemaRegistry()
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.uploads.Stop()
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(origins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	s.router.Use(RateLimitMiddleware(s.uploads, s.logger, isUpload))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "no route for "+r.URL.Path, s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path, s.logger)
	})
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerStoryRoutes()
	s.registerChapterRoutes()
	s.registerLoreRoutes()
	s.registerLibraryRoutes()
	s.registerReaderRoutes()
	s.registerSearchRoutes()
	s.registerAchievementRoutes()
	s.registerGenreRoutes()

	// SSE is a long-lived stream and stays outside the huma operation table.
	if s.sseHandler != nil {
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
}

// requestLogger tags the request context with its id and logs one line per
// completed request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logger.WithAttrs(r.Context(), slog.String("request_id", middleware.GetReqID(r.Context())))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		if r.URL.Path == "/api/v1/events" {
			return
		}
		s.logger.DebugContext(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
