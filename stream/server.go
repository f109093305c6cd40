package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ixr-flow/board"
	"ixr-flow/metric"
)

// Server exposes the pipeline output over HTTP: JSON status and latest
// result, an SSE stream, and a websocket push channel. It implements
// metric.Sink and holds the last published result for readers between ticks.
type Server struct {
	addr      string
	collector *board.Collector // nil when running synthetic
	engine    *metric.Engine

	mu      sync.RWMutex
	last    metric.Result
	hasLast bool

	wsMu     sync.Mutex
	wsConns  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

func NewServer(addr string, engine *metric.Engine, collector *board.Collector) *Server {
	return &Server{
		addr:      addr,
		collector: collector,
		engine:    engine,
		wsConns:   make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Publish implements metric.Sink.
func (s *Server) Publish(result metric.Result) {
	s.mu.Lock()
	s.last = result
	s.hasLast = true
	s.mu.Unlock()

	s.broadcast(result)
}

func (s *Server) broadcast(result metric.Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}

	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	for conn := range s.wsConns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(s.wsConns, conn)
		}
	}
}

// Start runs the HTTP server in a background goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/metrics/latest", s.handleLatest)
	mux.HandleFunc("/api/metrics/stream", s.handleStream)
	mux.HandleFunc("/ws", s.handleWebsocket)

	go func() {
		log.Printf("[HTTP] Serving on %s", s.addr)
		if err := http.ListenAndServe(s.addr, mux); err != nil {
			log.Printf("[HTTP] Server stopped: %v", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"psd_size": s.engine.PSDSize(),
		"calibration": map[string]interface{}{
			"calib_fill": s.engine.Calibrator().CalibFill(),
			"hist_fill":  s.engine.Calibrator().HistFill(),
		},
	}
	if s.collector != nil {
		status["collector"] = s.collector.Stats().GetSnapshot()
		status["buffers"] = s.collector.BufferStats()
		status["connected"] = s.collector.Ready()
	} else {
		status["connected"] = true
		status["source"] = "synthetic"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	result, ok := s.last, s.hasLast
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "no metrics published yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.RLock()
			result, ok := s.last, s.hasLast
			s.mu.RUnlock()
			if !ok {
				continue
			}
			payload, _ := json.Marshal(result)
			fmt.Fprintf(w, "data: %s\n\n", payload)
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HTTP] Websocket upgrade failed: %v", err)
		return
	}

	s.wsMu.Lock()
	s.wsConns[conn] = true
	s.wsMu.Unlock()

	log.Printf("[HTTP] Websocket client connected (%s)", conn.RemoteAddr())

	// Drain reads so close frames are processed; pushes happen on Publish.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.wsMu.Lock()
				delete(s.wsConns, conn)
				s.wsMu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}
