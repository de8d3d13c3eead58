package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"pitch-sim/internal/game"
)

// EngineInterface defines the match engine methods used by the API.
// This interface enables mocking for tests without running a match.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// Snapshot returns a copy of the latest published match state
	Snapshot() game.MatchSnapshot
	// EventsSince returns events after a sequence number, optionally filtered by type
	EventsSince(after uint64, limit int, types ...game.EventType) []game.Event
	// EventCounts returns per-type event totals
	EventCounts() map[string]uint64
	// Standings returns the top n reward standings (n <= 0 for all)
	Standings(n int) []game.Standing
	// TeamRewards returns the reward total of both sides
	TeamRewards() map[game.TeamSide]float64
	// Player returns one player's state
	Player(id int) (game.PlayerSnapshot, bool)
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the match engine (required)
	Engine EngineInterface

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	// If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins lists allowed CORS origins (see OriginPolicy); nil allows localhost only
	CORSOrigins []string

	// Logger receives one line per request. The zero value logs nothing.
	Logger zerolog.Logger
}

// routerHandlers holds the handler functions for the router
type routerHandlers struct {
	engine EngineInterface
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE apart from the rate limiter's cleanup
// goroutine when no RateLimiter is passed in. No listeners are opened, so
// it is safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	r.Use(middleware.RequestID)
	r.Use(requestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: NewOriginPolicy(cfg.CORSOrigins).Origins(),
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := &routerHandlers{engine: cfg.Engine}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/score", h.handleGetScore)
		r.Get("/events", h.handleGetEvents)
		r.Get("/stats", h.handleGetStats)
		r.Get("/rewards", h.handleGetRewards)
		r.Get("/players/{id}", h.handleGetPlayer)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

// requestLogger logs each request and records the HTTP metrics under the
// matched route pattern so label cardinality stays bounded
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			took := time.Since(start)
			endpoint := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				endpoint = rctx.RoutePattern()
			}
			RecordRequest(r.Method, endpoint, ww.Status(), took)

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", took).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
