package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pitch-sim/internal/game"
)

const (
	// MaxWSConnectionsTotal is the maximum number of spectator sockets
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum spectator sockets per IP
	MaxWSConnectionsPerIP = 10

	wsWriteTimeout = 2 * time.Second
)

// Frame names sent to spectators
const (
	FrameEvent = "match:event"
	FrameState = "match:state"
)

// wsFrame is the envelope of every message a spectator receives
type wsFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// WebSocketHub fans match frames out to spectators. Only Run writes to
// the sockets; everything else talks to it through channels.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	upgrader  websocket.Upgrader
	wsLimiter *WebSocketRateLimiter
	log       zerolog.Logger

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWebSocketHub creates a hub that accepts browsers from the given origins
func NewWebSocketHub(origins OriginPolicy, logger zerolog.Logger) *WebSocketHub {
	h := &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		log:        logger,
		stopChan:   make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origins.Allowed(origin) {
				return true
			}
			h.log.Warn().Str("origin", origin).Msg("websocket origin rejected")
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run serves the hub until Stop
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			h.log.Debug().
				Str("ip", client.ip).
				Int("ip_open", h.wsLimiter.GetConnectionCount(client.ip)).
				Int("clients", count).
				Msg("spectator connected")
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.drop(conn)

		case message := <-h.broadcast:
			h.mu.RLock()
			var failed []*websocket.Conn
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					failed = append(failed, conn)
				}
			}
			h.mu.RUnlock()

			for _, conn := range failed {
				h.drop(conn)
			}
			IncrementWSMessages()

		case <-h.stopChan:
			h.mu.Lock()
			for conn, client := range h.clients {
				h.wsLimiter.Release(client.ip)
				conn.Close()
			}
			clear(h.clients)
			h.mu.Unlock()
			UpdateWSConnections(0)
			return
		}
	}
}

func (h *WebSocketHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	client, ok := h.clients[conn]
	if ok {
		h.wsLimiter.Release(client.ip)
		delete(h.clients, conn)
		conn.Close()
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.log.Debug().Str("ip", client.ip).Int("clients", count).Msg("spectator disconnected")
		UpdateWSConnections(count)
	}
}

// Stop disconnects every spectator and ends Run
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

// Broadcast queues a frame for every spectator. It never blocks: when the
// queue is full the frame is dropped.
func (h *WebSocketHub) Broadcast(event string, data any) {
	msg, err := json.Marshal(wsFrame{Event: event, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("frame", event).Msg("encoding websocket frame")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		IncrementWSDropped()
	}
}

// BroadcastEvent forwards one match event. Per-tick position events are
// skipped since state frames already carry every position.
func (h *WebSocketHub) BroadcastEvent(ev game.Event) {
	switch ev.Type {
	case game.EventTypeBallPosition, game.EventTypePlayerPosition:
		return
	}
	h.Broadcast(FrameEvent, ev)
}

// BroadcastState forwards the snapshot of a finished tick
func (h *WebSocketHub) BroadcastState(snap game.MatchSnapshot) {
	if h.ClientCount() == 0 {
		return
	}
	h.Broadcast(FrameState, snap)
}

// ClientCount returns the number of connected spectators
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades a spectator connection. Spectators only listen;
// anything they send is discarded.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if total := h.ClientCount(); total >= MaxWSConnectionsTotal {
		h.log.Warn().Int("clients", total).Msg("websocket rejected: hub full")
		RecordConnectionRejected("capacity")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.wsLimiter.Allow(ip) {
		h.log.Warn().
			Str("ip", ip).
			Int("open", h.wsLimiter.GetConnectionCount(ip)).
			Msg("websocket rejected: per-IP limit reached")
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Str("ip", ip).Msg("websocket upgrade failed")
		h.wsLimiter.Release(ip)
		return
	}

	select {
	case h.register <- &wsClient{conn: conn, ip: ip}:
	case <-h.stopChan:
		h.wsLimiter.Release(ip)
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.stopChan:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
