package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pitch-sim/internal/game"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetScore(w http.ResponseWriter, r *http.Request) {
	// Snapshot is lock-free; score, phase and clock come from the same tick
	snap := h.engine.Snapshot()
	resp := map[string]interface{}{
		"matchId": snap.MatchID,
		"phase":   snap.Phase,
		"half":    snap.Half,
		"step":    snap.Step,
		"teamA":   snap.Score.TeamA,
		"teamB":   snap.Score.TeamB,
	}
	if winner, ok := snap.Score.Winner(); ok && snap.Phase == game.PhaseFullTime {
		resp["winner"] = winner
	}
	writeJSON(w, resp)
}

// handleGetEvents serves the event stream in pages:
// /api/events?since=<sequence>&limit=<n>&type=goal,foul
func (h *routerHandlers) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var since uint64
	if s := q.Get("since"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeError(w, "Invalid since", http.StatusBadRequest)
			return
		}
		since = v
	}

	limit := defaultEventLimit
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(v, maxEventLimit)
	}

	var types []game.EventType
	if s := q.Get("type"); s != "" {
		for _, name := range strings.Split(s, ",") {
			t, err := game.ParseEventType(strings.TrimSpace(name))
			if err != nil {
				writeError(w, err.Error(), http.StatusBadRequest)
				return
			}
			types = append(types, t)
		}
	}

	events := h.engine.EventsSince(since, limit, types...)
	next := since
	if len(events) > 0 {
		next = events[len(events)-1].Sequence
	}
	writeJSON(w, map[string]interface{}{
		"events": events,
		"next":   next,
	})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, map[string]interface{}{
		"matchId":     snap.MatchID,
		"phase":       snap.Phase,
		"eventCount":  snap.EventCount,
		"playerCount": len(snap.Players),
		"byType":      h.engine.EventCounts(),
	})
}

func (h *routerHandlers) handleGetRewards(w http.ResponseWriter, r *http.Request) {
	top := 10
	if s := r.URL.Query().Get("top"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, "Invalid top", http.StatusBadRequest)
			return
		}
		top = v
	}

	writeJSON(w, map[string]interface{}{
		"standings": h.engine.Standings(top),
		"teams":     h.engine.TeamRewards(),
	})
}

func (h *routerHandlers) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid player id", http.StatusBadRequest)
		return
	}
	p, ok := h.engine.Player(id)
	if !ok {
		writeError(w, "Player not found", http.StatusNotFound)
		return
	}
	writeJSON(w, p)
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
