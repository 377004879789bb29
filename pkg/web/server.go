package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/ritzau/lua-restore/pkg/cycles"
	"github.com/ritzau/lua-restore/pkg/depgraph"
	"github.com/ritzau/lua-restore/pkg/logging"
	"github.com/ritzau/lua-restore/pkg/pubsub"
	"github.com/ritzau/lua-restore/pkg/restore"
)

// Server exposes the dependency graph and restoration progress over HTTP
// so a run can be observed while it proceeds.
type Server struct {
	router    *mux.Router
	publisher pubsub.Publisher

	mu      sync.RWMutex
	graph   *depgraph.Graph
	results []restore.Result
}

// NewServer creates a status server publishing through the given
// publisher.
func NewServer(publisher pubsub.Publisher) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		publisher: publisher,
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/graph", s.handleGraph).Methods("GET")
	api.HandleFunc("/statistics", s.handleStatistics).Methods("GET")
	api.HandleFunc("/cycles", s.handleCycles).Methods("GET")
	api.HandleFunc("/results", s.handleResults).Methods("GET")
	api.HandleFunc("/events", s.handleEvents).Methods("GET")

	return s
}

// SetGraph installs the graph served by the API. Safe to call while the
// server is running; discovery mutations themselves must be finished
// first, the graph has no internal locking.
func (s *Server) SetGraph(g *depgraph.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
}

// SetResults installs the restoration results served by the API.
func (s *Server) SetResults(results []restore.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
}

// Start runs the server on the given port, blocking.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("status server listening", "addr", addr)
	return http.ListenAndServe(addr, logging.RequestIDMiddleware(s.router))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	if g == nil {
		http.Error(w, "graph not available yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, g.Export())
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	if g == nil {
		http.Error(w, "graph not available yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, g.Statistics())
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	if g == nil {
		http.Error(w, "graph not available yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, cycles.FindCycleGroups(g))
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	results := s.results
	s.mu.RUnlock()

	if results == nil {
		results = []restore.Result{}
	}
	writeJSON(w, results)
}

// handleEvents streams progress events over SSE until the client
// disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = "progress"
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}
