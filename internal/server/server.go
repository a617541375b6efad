// Package server provides the HTTP server and routing for Advisor.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/advisor/internal/clientdata"
	"github.com/aristath/advisor/internal/clients/finnhub"
	"github.com/aristath/advisor/internal/clients/robo"
	"github.com/aristath/advisor/internal/config"
	"github.com/aristath/advisor/internal/database"
	"github.com/aristath/advisor/internal/events"
	"github.com/aristath/advisor/internal/modules/assessment"
	assessmenthandlers "github.com/aristath/advisor/internal/modules/assessment/handlers"
	portfoliohandlers "github.com/aristath/advisor/internal/modules/portfolio/handlers"
)

// Config holds server configuration
type Config struct {
	Log           zerolog.Logger
	Config        *config.Config
	Port          int
	DevMode       bool
	CacheDB       *database.DB
	CacheRepo     *clientdata.Repository
	EventBus      *events.Bus
	Assessment    *assessment.Service
	RoboClient    *robo.Client
	FinnhubClient *finnhub.Client
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	cacheDB        *database.DB
	cacheRepo      *clientdata.Repository
	eventBus       *events.Bus
	assessment     *assessment.Service
	roboClient     *robo.Client
	finnhubClient  *finnhub.Client
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		log:           cfg.Log.With().Str("component", "server").Logger(),
		cfg:           cfg.Config,
		cacheDB:       cfg.CacheDB,
		cacheRepo:     cfg.CacheRepo,
		eventBus:      cfg.EventBus,
		assessment:    cfg.Assessment,
		roboClient:    cfg.RoboClient,
		finnhubClient: cfg.FinnhubClient,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.CacheDB, cfg.CacheRepo, cfg.Assessment)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Live event stream (WebSocket) - must be before other routes for
		// proper handling
		eventsStreamHandler := NewEventsStreamHandler(s.eventBus, s.log)
		r.Get("/events/stream", eventsStreamHandler.ServeHTTP)

		// System monitoring
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
		})

		// Symbol search (disabled without a Finnhub key)
		symbolHandlers := NewSymbolHandlers(s.finnhubClient, s.log)
		r.Get("/symbols/search", symbolHandlers.HandleSearch)

		// Assessment module
		assessmentHandler := assessmenthandlers.NewHandler(s.assessment, s.log)
		assessmentHandler.RegisterRoutes(r)

		// Portfolio module
		portfolioHandler := portfoliohandlers.NewHandler(s.roboClient, s.assessment, s.eventBus, s.log)
		portfolioHandler.RegisterRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
