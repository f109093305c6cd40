package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ixr-flow/board"
	"ixr-flow/metric"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	source := board.NewSynthetic(board.DefaultConfig())
	engine, err := metric.NewEngine(metric.DefaultConfig(), source)
	require.NoError(t, err)
	return NewServer(":0", engine, nil)
}

func TestHandleLatestBeforeAnyResult(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleLatest(rec, httptest.NewRequest(http.MethodGet, "/api/metrics/latest", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleLatestReturnsPublishedResult(t *testing.T) {
	s := newTestServer(t)
	s.Publish(metric.Result{
		Time:         time.Now(),
		PowerMetric:  0.72,
		Engagement:   0.62,
		HeadMovement: 0.5,
	})

	rec := httptest.NewRecorder()
	s.handleLatest(rec, httptest.NewRequest(http.MethodGet, "/api/metrics/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 0.72, body["power_metric"], 1e-9)
	assert.InDelta(t, 0.62, body["engagement"], 1e-9)
}

func TestHandleStatusSyntheticSource(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["connected"])
	assert.Equal(t, "synthetic", body["source"])
	assert.InDelta(t, 256, body["psd_size"], 1e-9)

	calibration, ok := body["calibration"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 2, calibration["calib_fill"], 1e-9)
}

func TestWebsocketPush(t *testing.T) {
	s := newTestServer(t)

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebsocket))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the handler a moment to register the connection.
	time.Sleep(50 * time.Millisecond)
	s.Publish(metric.Result{Time: time.Now(), PowerMetric: 0.8})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.InDelta(t, 0.8, body["power_metric"], 1e-9)
}

func TestDefaultPublisherConfig(t *testing.T) {
	cfg := DefaultPublisherConfig()
	assert.Equal(t, "localhost", cfg.Broker)
	assert.Equal(t, 1883, cfg.Port)
	assert.Equal(t, "ixr/metrics/power", cfg.Topic)

	// Without a connected client Publish is a no-op, not a panic.
	p := NewPublisher(cfg)
	p.Publish(metric.Result{})
	p.Stop()
}
