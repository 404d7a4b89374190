// Package server provides the HTTP server and routing for the screener.
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

	"jongga-screener/internal/config"
	"jongga-screener/internal/database"
	"jongga-screener/internal/modules/learning"
	"jongga-screener/internal/modules/screener"
	"jongga-screener/internal/modules/universe"
)

// Config holds server configuration
type Config struct {
	Log        zerolog.Logger
	Cfg        *config.Config
	ScreenerDB *database.DB
	WeightsDB  *database.DB

	ScreenerService *screener.Service
	LearningService *learning.Service
	ScoreRepo       *screener.Repository
	WeightRepo      *learning.WeightRepository
	UniverseRepo    *universe.Repository
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config

	screenerDB *database.DB
	weightsDB  *database.DB

	screenerSvc  *screener.Service
	learningSvc  *learning.Service
	scoreRepo    *screener.Repository
	weightRepo   *learning.WeightRepository
	universeRepo *universe.Repository

	startupTime time.Time
}

// New creates the HTTP server with middleware and routes configured.
func New(c Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          c.Log.With().Str("component", "server").Logger(),
		cfg:          c.Cfg,
		screenerDB:   c.ScreenerDB,
		weightsDB:    c.WeightsDB,
		screenerSvc:  c.ScreenerService,
		learningSvc:  c.LearningService,
		scoreRepo:    c.ScoreRepo,
		weightRepo:   c.WeightRepo,
		universeRepo: c.UniverseRepo,
		startupTime:  time.Now(),
	}

	s.setupMiddleware(c.Cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", c.Cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/screening", func(r chi.Router) {
			r.Get("/latest", s.handleLatestRun)
			r.Get("/{date}", s.handleRunByDate)
			r.Post("/run", s.handleTriggerScreening)
		})

		r.Route("/weights", func(r chi.Router) {
			r.Get("/", s.handleWeights)
			r.Get("/history", s.handleWeightHistory)
		})

		r.Post("/learning/run", s.handleTriggerLearning)
		r.Get("/performance", s.handlePerformance)

		r.Route("/universe", func(r chi.Router) {
			r.Post("/stocks", s.handleUpsertStocks)
			r.Post("/bars", s.handleUpsertBars)
		})
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

// loggingMiddleware logs each request with its status and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request handled")
	})
}
