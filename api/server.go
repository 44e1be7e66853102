// Package api provides the HTTP REST API server for IndiQuant.
//
// It exposes endpoints for scoring stocks, reading stored recommendations,
// running screens, and a WebSocket stream of freshly scored stocks.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/seenimoa/indiquant/internal/config"
	"github.com/seenimoa/indiquant/internal/engine"
	"github.com/seenimoa/indiquant/internal/narrative"
	"github.com/seenimoa/indiquant/internal/store"
	"github.com/seenimoa/indiquant/pkg/models"
)

// Version is reported by /health. It is set by the CLI at link time.
var Version = "dev"

// InputSource gathers the engine input for a ticker from live sources.
type InputSource interface {
	Assemble(ctx context.Context, ticker string) (*models.StockInput, error)
}

// RecommendationStore is the part of the store the API reads and writes.
type RecommendationStore interface {
	Save(ctx context.Context, rec *models.Recommendation) (string, error)
	Latest(ctx context.Context, ticker string) (*store.Record, error)
	History(ctx context.Context, ticker string, limit int) ([]store.Record, error)
	LatestAll(ctx context.Context) ([]store.Record, error)
}

// Deps are the collaborators of a Server. Only Engine is required.
type Deps struct {
	Engine   *engine.Engine
	Inputs   InputSource
	Store    RecommendationStore
	Narrator narrative.Narrator
	Hub      *WSHub
	Log      zerolog.Logger
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	engine   *engine.Engine
	inputs   InputSource
	store    RecommendationStore
	narrator narrative.Narrator
	wsHub    *WSHub
	log      zerolog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Engine == nil {
		return nil, errors.New("api: engine is required")
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	hub := deps.Hub
	if hub == nil {
		hub = NewWSHub(deps.Log)
	}

	srv := &Server{
		cfg:      cfg,
		engine:   deps.Engine,
		inputs:   deps.Inputs,
		store:    deps.Store,
		narrator: deps.Narrator,
		wsHub:    hub,
		log:      deps.Log.With().Str("component", "api").Logger(),
	}
	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub, which also publishes scheduler results.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("starting HTTP server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/recommend", s.handleRecommend)
		r.Post("/recommend/batch", s.handleRecommendBatch)

		r.Get("/recommendations", s.handleLatestAll)
		r.Get("/recommendations/{ticker}", s.handleLatest)
		r.Get("/recommendations/{ticker}/history", s.handleHistory)

		r.Get("/screens", s.handleListScreens)
		r.Post("/screens/{name}", s.handleRunScreen)

		r.Get("/config", s.handleGetConfig)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// loggingMiddleware logs each request with zerolog.
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

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
