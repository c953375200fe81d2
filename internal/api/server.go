package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/portfolio/internal/config"
	"github.com/terra-clan/portfolio/internal/contact"
	"github.com/terra-clan/portfolio/internal/github"
	"github.com/terra-clan/portfolio/internal/health"
	"github.com/terra-clan/portfolio/internal/render"
	"github.com/terra-clan/portfolio/internal/showcase"
	"github.com/terra-clan/portfolio/internal/storage"
	"github.com/terra-clan/portfolio/internal/visitor"
)

// Dependencies are the collaborators the server routes to
type Dependencies struct {
	Site       config.SiteConfig
	SessionTTL time.Duration
	AdminToken string

	Pipeline   *showcase.Pipeline
	Renderer   *render.HTMLRenderer
	Visitors   visitor.Store
	Repository storage.Repository
	GitHub     *github.Service
	Contact    *contact.Service
	Health     *health.Registry
}

// Server represents the HTTP server
type Server struct {
	config   config.ServerConfig
	site     config.SiteConfig
	router   *chi.Mux
	pipeline *showcase.Pipeline
	renderer *render.HTMLRenderer
	visitors visitor.Store
	repo     storage.Repository
	github   *github.Service
	contact  *contact.Service
	health   *health.Registry

	visitorMiddleware *VisitorMiddleware
	adminMiddleware   *AdminMiddleware

	now               func() time.Time
	analyticsInterval time.Duration
}

// NewServer creates a new server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	s := &Server{
		config:            cfg,
		site:              deps.Site,
		pipeline:          deps.Pipeline,
		renderer:          deps.Renderer,
		visitors:          deps.Visitors,
		repo:              deps.Repository,
		github:            deps.GitHub,
		contact:           deps.Contact,
		health:            deps.Health,
		visitorMiddleware: NewVisitorMiddleware(deps.Visitors, deps.SessionTTL),
		now:               time.Now,
		analyticsInterval: time.Second,
	}
	if deps.AdminToken != "" {
		s.adminMiddleware = NewAdminMiddleware(deps.AdminToken)
	}
	if s.health == nil {
		s.health = health.NewRegistry()
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check (public, no session)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/static/*", http.StripPrefix("/static/", render.StaticHandler()))

	// Server-rendered page and its form fallbacks
	r.Group(func(r chi.Router) {
		r.Use(s.visitorMiddleware.Identify)

		// The analytics stream outlives the request timeout
		r.Get("/ws/analytics", s.handleAnalyticsWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/", s.handlePage)
			r.Get("/partials/projects", s.handleProjectsPartial)
			r.Post("/theme", s.handleThemeForm)
			r.Post("/views/{id}", s.handleViewForm)
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Group(func(r chi.Router) {
			r.Use(s.visitorMiddleware.Identify)

			r.Get("/projects", s.handleListProjects)
			r.Get("/projects/{id}", s.handleGetProject)
			r.Get("/filters", s.handleFilters)
			r.Post("/selection", s.handleSelection)
			r.Post("/views", s.handleTrackView)
			r.Get("/analytics", s.handleAnalytics)
			r.Put("/theme", s.handleSetTheme)
			r.Get("/github", s.handleGitHub)
			r.Post("/contact", s.handleContact)
		})

		// Admin (only when a token is configured)
		if s.adminMiddleware != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(s.adminMiddleware.Authenticate)
				r.Get("/messages", s.handleListMessages)
				r.Get("/views/{id}", s.handleCountViews)
			})
		}
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
