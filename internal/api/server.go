// Package api provides the HTTP API server and handlers for the CureCircle
// application.
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/curecircle/curecircle-server/internal/config"
	"github.com/curecircle/curecircle-server/internal/export"
	"github.com/curecircle/curecircle-server/internal/media/images"
	"github.com/curecircle/curecircle-server/internal/render"
	"github.com/curecircle/curecircle-server/internal/service"
	"github.com/curecircle/curecircle-server/internal/store"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth     *service.AuthService
	Card     *service.CardService
	Profile  *service.ProfileService
	Gallery  *service.GalleryService
	Playlist *service.PlaylistService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	services *Services
	storage  *images.Storage
	renderer *render.Compositor
	exports  *export.Pipeline
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger

	authRateLimiter   *RateLimiter
	exportRateLimiter *RateLimiter
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(cfg *config.Config, st *store.Store, services *Services, storage *images.Storage, renderer *render.Compositor, exports *export.Pipeline, logger *slog.Logger) *Server {
	s := &Server{
		store:             st,
		services:          services,
		storage:           storage,
		renderer:          renderer,
		exports:           exports,
		router:            chi.NewRouter(),
		logger:            logger,
		authRateLimiter:   NewRateLimiter(20, time.Minute, 10),
		exportRateLimiter: NewRateLimiter(6, time.Minute, 3),
	}

	s.setupMiddleware(cfg)
	s.setupAPI()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg *config.Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(authMiddleware(s.services.Auth))
	s.router.Use(limitPrefix("/api/v1/auth/", s.authRateLimiter, s.logger))
	s.router.Use(limitPrefix("/api/v1/card/export", s.exportRateLimiter, s.logger))
}

// setupAPI creates the huma API with the envelope transformer and domain
// error mapping.
func (s *Server) setupAPI() {
	humaConfig := huma.DefaultConfig("CureCircle API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()
}

// setupRoutes registers all huma operations plus the raw binary routes huma
// is a poor fit for (stored media, rendered PNGs).
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerProfileRoutes()
	s.registerCardRoutes()
	s.registerGalleryRoutes()
	s.registerExportRoutes()
	s.registerMusicRoutes()
	s.registerCatalogRoutes()

	s.router.Get("/media/*", s.handleServeMedia)
	s.router.Get("/api/v1/card/preview.png", s.handleCardPreview)
	s.router.Get("/c/{token}.png", s.handleSharedCardImage)
}

// handleServeMedia serves stored gallery and export blobs from disk.
func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	path, err := s.storage.FilePath(name)
	if err != nil || !s.storage.Exists(name) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

// limitPrefix rate limits only requests whose path starts with prefix.
func limitPrefix(prefix string, limiter *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	limit := RateLimitMiddleware(limiter, logger)
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
