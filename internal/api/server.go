package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"pitch-sim/internal/config"
	"pitch-sim/internal/game"
)

// Server is the spectator API: the HTTP router plus the WebSocket hub that
// pushes events and tick frames of one match.
type Server struct {
	engine      *game.Engine
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
	log         zerolog.Logger
}

// NewServer builds the server and subscribes it to the engine. Call it
// before the engine starts so no tick is missed.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// Frames broadcast before that are dropped once the queue fills.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(engine *game.Engine, cfg config.ServerConfig, logger zerolog.Logger) *Server {
	origins := NewOriginPolicy(cfg.AllowedOrigins)
	s := &Server{
		engine:      engine,
		wsHub:       NewWebSocketHub(origins, logger),
		rateLimiter: NewIPRateLimiter(RateLimitConfigFrom(cfg)),
		log:         logger,
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		RateLimiter: s.rateLimiter,
		CORSOrigins: origins.Origins(),
		Logger:      logger,
	})
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	// Both callbacks run on the engine goroutine and must not block
	engine.Events().Subscribe(func(ev game.Event) {
		RecordEvent(ev)
		s.wsHub.BroadcastEvent(ev)
	})
	engine.OnTick(func(snap game.MatchSnapshot, took time.Duration) {
		RecordTick(snap, took)
		s.wsHub.BroadcastState(snap)
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start runs the hub and serves HTTP until Shutdown. It returns nil after a
// clean shutdown.
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.log.Info().Str("addr", s.httpServer.Addr).Msg("spectator API listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewServer(engine, config.DefaultServer(), zerolog.Nop())
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the spectator hub
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops accepting requests, disconnects spectators and stops the
// background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.wsHub.Stop()
	s.rateLimiter.Stop()
	return err
}
