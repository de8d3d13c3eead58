package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitch-sim/internal/game"
)

func TestDebugListenAddr(t *testing.T) {
	assert.Equal(t, "localhost:6060", debugListenAddr("localhost:6060"))
	assert.Equal(t, "127.0.0.1:7070", debugListenAddr("0.0.0.0:7070"))
	assert.Equal(t, "127.0.0.1:7070", debugListenAddr(":7070"))
	assert.Equal(t, "127.0.0.1:6060", debugListenAddr("garbage"))

	t.Setenv("ALLOW_DEBUG_EXTERNAL", "true")
	assert.Equal(t, "0.0.0.0:7070", debugListenAddr("0.0.0.0:7070"))
}

func TestObservabilityConfigFromEnv(t *testing.T) {
	t.Setenv("DEBUG_USER", "ops")
	t.Setenv("DEBUG_PASS", "secret")

	cfg := ObservabilityConfigFromEnv("localhost:6060")
	assert.Equal(t, ObservabilityConfig{ListenAddr: "localhost:6060", BasicAuthUser: "ops", BasicAuthPass: "secret"}, cfg)
}

func TestDebugHandlerAuth(t *testing.T) {
	h := DebugHandler(ObservabilityConfig{BasicAuthUser: "ops", BasicAuthPass: "secret"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.SetBasicAuth("ops", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.SetBasicAuth("ops", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsExposeMatch(t *testing.T) {
	RecordEvent(game.Event{Type: game.EventTypeScore, Payload: game.ScorePayload{Team: game.TeamB, TeamB: 1}})
	RecordTick(game.MatchSnapshot{Half: 2, Step: 17, Players: []game.PlayerSnapshot{{ID: 1}, {ID: 2}}}, time.Millisecond)
	RecordRequest(http.MethodGet, "/api/state", http.StatusOK, time.Millisecond)
	RecordConnectionRejected("origin")

	ts := httptest.NewServer(DebugHandler(ObservabilityConfig{}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `match_events_total{type="score"}`)
	assert.Contains(t, out, `match_goals_total{team="team_b"}`)
	assert.Contains(t, out, "match_step 17")
	assert.Contains(t, out, "match_players_on_pitch 2")
	assert.Contains(t, out, `connection_rejected_total{reason="origin"}`)
}

func TestStartDebugServerDisabled(t *testing.T) {
	assert.Nil(t, StartDebugServer(ObservabilityConfig{}, zerolog.Nop()))
}
