package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/smnuman/youtube-commenter/internal/api/ws"
	"github.com/smnuman/youtube-commenter/internal/auth"
	"github.com/smnuman/youtube-commenter/internal/comments"
	"github.com/smnuman/youtube-commenter/internal/config"
	"github.com/smnuman/youtube-commenter/internal/platform"
	"github.com/smnuman/youtube-commenter/internal/reply"
	"github.com/smnuman/youtube-commenter/internal/server/middleware"
	"github.com/smnuman/youtube-commenter/internal/store/postgres"
	redisstore "github.com/smnuman/youtube-commenter/internal/store/redis"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router       chi.Router
	httpServer   *http.Server
	store        *postgres.Store
	gate         *auth.Gate
	pubsub       *redisstore.PubSub
	wsHub        *ws.Hub
	syncer       *comments.Service
	orchestrator *reply.Orchestrator
	cfg          *config.Config
}

// New creates a Server with all routes wired. The context bounds the
// lifetime of background middleware goroutines (rate limiter cleanup).
func New(ctx context.Context, cfg *config.Config, store *postgres.Store, pubsub *redisstore.PubSub, gate *auth.Gate, platformClient *platform.Client, syncer *comments.Service, orchestrator *reply.Orchestrator) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", middleware.SessionHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	hub := ws.NewHub(pubsub)

	s := &Server{
		router:       router,
		store:        store,
		gate:         gate,
		pubsub:       pubsub,
		wsHub:        hub,
		syncer:       syncer,
		orchestrator: orchestrator,
		cfg:          cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	successURL := strings.TrimRight(cfg.Server.FrontendURL, "/") + "/auth/success"

	// Mount API routes on /api with two sub-groups:
	// 1. Unauthenticated group for the OAuth entry points.
	// 2. Authenticated group for everything else.
	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, 5, 10))

			authConfig := huma.DefaultConfig("YouTube Commenter Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{
				{URL: "/api"},
			}
			authAPI := humachi.New(r, authConfig)
			registerAuthRoutes(authAPI, gate)

			r.Get("/auth/callback", registerCallbackRoute(gate, successURL))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(gate))
			r.Use(middleware.RateLimitBySession(ctx, 10, 20))

			apiConfig := huma.DefaultConfig("YouTube Commenter API", "1.0.0")
			apiConfig.Servers = []*huma.Server{
				{URL: "/api"},
			}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, store, platformClient, syncer, orchestrator)
		})
	})

	// WebSocket routes.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.SessionAuth(gate))
		registerWSRoutes(r, hub)
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
