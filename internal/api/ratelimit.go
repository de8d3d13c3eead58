package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"pitch-sim/internal/config"
)

// RateLimitConfig configures the per-IP limiter in front of the spectator API
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration // idle limiters are dropped after twice this
}

// DefaultRateLimitConfig suits a handful of dashboards polling a match
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 10,
	Burst:             20,
	CleanupInterval:   5 * time.Minute,
}

// RateLimitConfigFrom takes the limits from the server settings
func RateLimitConfigFrom(cfg config.ServerConfig) RateLimitConfig {
	rl := DefaultRateLimitConfig
	if cfg.RateLimit > 0 {
		rl.RequestsPerSecond = cfg.RateLimit
	}
	if cfg.RateBurst > 0 {
		rl.Burst = cfg.RateBurst
	}
	return rl
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// IPRateLimiter hands every client IP its own token bucket
type IPRateLimiter struct {
	clients  sync.Map // ip -> *clientLimiter
	config   RateLimitConfig
	stopChan chan struct{}
	stopOnce sync.Once

	allowed  atomic.Uint64
	rejected atomic.Uint64
}

// NewIPRateLimiter starts the limiter and its idle-client sweeper
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRateLimitConfig.CleanupInterval
	}
	rl := &IPRateLimiter{
		config:   cfg,
		stopChan: make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the sweeper. Safe to call more than once.
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

func (rl *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := rl.clients.Load(ip); ok {
		c := v.(*clientLimiter)
		c.lastSeen.Store(now)
		return c.limiter
	}

	c := &clientLimiter{
		limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
	}
	c.lastSeen.Store(now)
	actual, _ := rl.clients.LoadOrStore(ip, c)
	return actual.(*clientLimiter).limiter
}

func (rl *IPRateLimiter) sweep() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopChan:
			return
		case now := <-ticker.C:
			rl.evictIdle(now.Add(-2 * rl.config.CleanupInterval))
		}
	}
}

func (rl *IPRateLimiter) evictIdle(cutoff time.Time) {
	limit := cutoff.UnixNano()
	rl.clients.Range(func(key, value any) bool {
		if value.(*clientLimiter).lastSeen.Load() < limit {
			rl.clients.Delete(key)
		}
		return true
	})
}

// Allow takes one token from the client's bucket
func (rl *IPRateLimiter) Allow(ip string) bool {
	if rl.limiterFor(ip).Allow() {
		rl.allowed.Add(1)
		return true
	}
	rl.rejected.Add(1)
	return false
}

// Middleware answers 429 once a client runs out of tokens
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(GetClientIP(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetStats returns allowed and rejected request totals
func (rl *IPRateLimiter) GetStats() map[string]uint64 {
	return map[string]uint64{
		"allowed":  rl.allowed.Load(),
		"rejected": rl.rejected.Load(),
	}
}

// GetClientIP prefers proxy headers over the socket address.
// X-Forwarded-For can be spoofed when the server is not behind a trusted proxy.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// WebSocketRateLimiter caps concurrent spectator sockets per IP
type WebSocketRateLimiter struct {
	connections sync.Map // ip -> *atomic.Int32
	maxPerIP    int
	rejected    atomic.Uint64
}

// NewWebSocketRateLimiter creates a connection limiter
func NewWebSocketRateLimiter(maxPerIP int) *WebSocketRateLimiter {
	return &WebSocketRateLimiter{maxPerIP: maxPerIP}
}

// Allow reserves a connection slot for ip
func (wrl *WebSocketRateLimiter) Allow(ip string) bool {
	v, _ := wrl.connections.LoadOrStore(ip, new(atomic.Int32))
	counter := v.(*atomic.Int32)
	for {
		current := counter.Load()
		if int(current) >= wrl.maxPerIP {
			wrl.rejected.Add(1)
			return false
		}
		if counter.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// Release frees a slot reserved by Allow
func (wrl *WebSocketRateLimiter) Release(ip string) {
	if v, ok := wrl.connections.Load(ip); ok {
		v.(*atomic.Int32).Add(-1)
	}
}

// GetConnectionCount returns the open sockets of ip
func (wrl *WebSocketRateLimiter) GetConnectionCount(ip string) int {
	if v, ok := wrl.connections.Load(ip); ok {
		return int(v.(*atomic.Int32).Load())
	}
	return 0
}

// GetStats returns WebSocket limiter totals
func (wrl *WebSocketRateLimiter) GetStats() map[string]uint64 {
	return map[string]uint64{"rejected": wrl.rejected.Load()}
}

// OriginPolicy matches browser origins against the configured list.
// Entries are exact origins, "*" for any origin, "scheme://host:*" for any
// port and "scheme://*.domain" for subdomains.
type OriginPolicy struct {
	patterns []string
}

// NewOriginPolicy builds a policy; an empty list allows localhost only
func NewOriginPolicy(origins []string) OriginPolicy {
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return OriginPolicy{patterns: origins}
}

// Origins returns the configured patterns
func (p OriginPolicy) Origins() []string {
	return p.patterns
}

// Allowed reports whether a request from origin may connect. Requests
// without an Origin header come from non-browser clients and are allowed.
func (p OriginPolicy) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, pattern := range p.patterns {
		if matchOrigin(pattern, origin) {
			return true
		}
	}
	return false
}

func matchOrigin(pattern, origin string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasSuffix(pattern, ":*"):
		base := strings.TrimSuffix(pattern, ":*")
		return origin == base || strings.HasPrefix(origin, base+":")
	case strings.Contains(pattern, "://*."):
		scheme, domain, _ := strings.Cut(pattern, "://*")
		return strings.HasPrefix(origin, scheme+"://") && strings.HasSuffix(origin, domain)
	default:
		return pattern == origin
	}
}
