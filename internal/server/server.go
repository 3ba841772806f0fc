// Package server provides the HTTP server for the signid classification
// service.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Endy3032/signid/internal/classify"
	"github.com/Endy3032/signid/internal/landmark"
	"github.com/Endy3032/signid/internal/server/api"
	"github.com/Endy3032/signid/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
}

// Server represents the HTTP server for the signid service. It holds
// the currently active classifier; predictions from concurrent requests
// share it without locking since a loaded classifier is immutable.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time

	mu         sync.RWMutex
	classifier *classify.Classifier
	modelID    string
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/classify", s.handleClassify)
	s.mux.Handle("/api/classify/stream", NewStreamHandler(s))

	if s.config.Store != nil {
		samplesHandler := api.NewSamplesHandler(s.config.Store)
		s.mux.Handle("/api/samples", samplesHandler)
		s.mux.Handle("/api/samples/", samplesHandler)

		modelsHandler := api.NewModelsHandler(s.config.Store, s.Activate)
		s.mux.Handle("/api/models", modelsHandler)
		s.mux.Handle("/api/models/", modelsHandler)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Activate loads the classifier from the stored model blobs and makes
// it the serving classifier.
func (s *Server) Activate(m *store.Model) error {
	c, err := classify.Load(m.TreeBlob, m.ScalerBlob)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.classifier = c
	s.modelID = m.ID
	s.mu.Unlock()
	return nil
}

// ActiveClassifier returns the serving classifier and its model ID, or
// nil if no model has been activated.
func (s *Server) ActiveClassifier() (*classify.Classifier, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classifier, s.modelID
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_, modelID := s.ActiveClassifier()

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
		"model":  modelID,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

type classifyResponse struct {
	Letter string `json:"letter"`
	Model  string `json:"model"`
}

// handleClassify handles POST requests to /api/classify. The body is a
// landmark.Hand: 21 points plus the handedness flag, as delivered by
// the upstream hand tracker.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	classifier, modelID := s.ActiveClassifier()
	if classifier == nil {
		api.WriteError(w, http.StatusConflict, "No model loaded")
		return
	}

	var hand landmark.Hand
	if err := json.NewDecoder(r.Body).Decode(&hand); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Malformed hand landmarks")
		return
	}

	letter, err := classifier.Predict(hand.Vector())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Classification failed")
		return
	}

	api.WriteJSON(w, http.StatusOK, classifyResponse{
		Letter: string(letter),
		Model:  modelID,
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
