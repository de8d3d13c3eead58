package api

import (
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pitch-sim/internal/game"
)

// Metrics with bounded cardinality (no per-player labels)
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_tick_duration_seconds",
		Help:    "Time spent simulating one tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	matchStep = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_step",
		Help: "Ticks played in the current half",
	})

	matchHalf = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_half",
		Help: "Current half, 0 before kick-off",
	})

	playersOnPitch = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_players_on_pitch",
		Help: "Players currently on the pitch",
	})

	// Bounded by the event type enum
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_events_total",
		Help: "Match events emitted",
	}, []string{"type"})

	goalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_goals_total",
		Help: "Goals scored",
	}, []string{"team"})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // "rate_limit", "origin", "ws_limit", "capacity"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})

	wsMessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_dropped_total",
		Help: "Broadcasts dropped because the hub queue was full",
	})
)

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	ListenAddr    string // empty disables the server
	BasicAuthUser string
	BasicAuthPass string
}

// ObservabilityConfigFromEnv reads optional basic auth credentials from
// DEBUG_USER and DEBUG_PASS
func ObservabilityConfigFromEnv(addr string) ObservabilityConfig {
	return ObservabilityConfig{
		ListenAddr:    addr,
		BasicAuthUser: os.Getenv("DEBUG_USER"),
		BasicAuthPass: os.Getenv("DEBUG_PASS"),
	}
}

// debugListenAddr keeps pprof on the loopback interface unless
// ALLOW_DEBUG_EXTERNAL=true
func debugListenAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "127.0.0.1:6060"
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return addr
	}
	if os.Getenv("ALLOW_DEBUG_EXTERNAL") == "true" {
		return addr
	}
	return net.JoinHostPort("127.0.0.1", port)
}

// DebugHandler serves pprof, Prometheus metrics and a health check
func DebugHandler(cfg ObservabilityConfig) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

// StartDebugServer starts the internal observability server in the
// background. It returns nil when cfg.ListenAddr is empty.
func StartDebugServer(cfg ObservabilityConfig, logger zerolog.Logger) *http.Server {
	if cfg.ListenAddr == "" {
		logger.Info().Msg("debug server disabled")
		return nil
	}

	addr := debugListenAddr(cfg.ListenAddr)
	if addr != cfg.ListenAddr {
		logger.Warn().Str("requested", cfg.ListenAddr).Str("addr", addr).Msg("debug server forced to localhost")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           DebugHandler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", addr).Msg("debug server listening (/debug/pprof/, /metrics)")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("debug server failed")
		}
	}()
	return srv
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick records tick timing and the match clock
func RecordTick(snap game.MatchSnapshot, took time.Duration) {
	tickDuration.Observe(took.Seconds())
	matchStep.Set(float64(snap.Step))
	matchHalf.Set(float64(snap.Half))

	onPitch := 0
	for _, p := range snap.Players {
		if !p.SentOff {
			onPitch++
		}
	}
	playersOnPitch.Set(float64(onPitch))
}

// RecordEvent counts one match event
func RecordEvent(ev game.Event) {
	eventsTotal.WithLabelValues(ev.Type.String()).Inc()
	if ev.Type == game.EventTypeScore {
		if p, ok := ev.Payload.(game.ScorePayload); ok {
			goalsTotal.WithLabelValues(string(p.Team)).Inc()
		}
	}
}

// RecordConnectionRejected increments the rejection counter.
// reason must be one of: "rate_limit", "origin", "ws_limit", "capacity"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// IncrementWSDropped counts a broadcast lost to a full queue
func IncrementWSDropped() {
	wsMessagesDropped.Inc()
}
