package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Endy3032/signid/internal/dataset"
	"github.com/Endy3032/signid/internal/landmark"
	"github.com/Endy3032/signid/internal/store"
)

// SamplesHandler handles HTTP requests for recorded training samples.
type SamplesHandler struct {
	store *store.Store
}

// NewSamplesHandler creates a new SamplesHandler with the given store.
func NewSamplesHandler(s *store.Store) *SamplesHandler {
	return &SamplesHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests
// to appropriate methods. Expected paths: /api/samples for the
// collection and /api/samples/{letter} for one label's samples.
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/samples")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.counts(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if len(path) != 1 || !dataset.ValidLabel(path[0]) {
		WriteError(w, http.StatusNotFound, "Unknown letter")
		return
	}

	switch r.Method {
	case http.MethodDelete:
		h.deleteByLabel(w, r, path[0])
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createSampleRequest struct {
	Letter string        `json:"letter"`
	Hand   landmark.Hand `json:"hand"`
}

type createSampleResponse struct {
	ID int64 `json:"id"`
}

type sampleCountsResponse struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// create handles POST /api/samples and records one training sample.
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Malformed sample")
		return
	}

	if len(req.Letter) != 1 || !dataset.ValidLabel(req.Letter[0]) {
		WriteError(w, http.StatusBadRequest, "Unknown letter")
		return
	}

	id, err := h.store.Samples().Create(req.Letter[0], req.Hand.Vector())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to store sample")
		return
	}

	WriteJSON(w, http.StatusCreated, createSampleResponse{ID: id})
}

// counts handles GET /api/samples and returns per-letter sample counts.
func (h *SamplesHandler) counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Samples().CountByLabel()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to count samples")
		return
	}

	response := sampleCountsResponse{Counts: make(map[string]int, len(counts))}
	for label, n := range counts {
		response.Counts[string(label)] = n
		response.Total += n
	}

	WriteJSON(w, http.StatusOK, response)
}

// deleteByLabel handles DELETE /api/samples/{letter}.
func (h *SamplesHandler) deleteByLabel(w http.ResponseWriter, r *http.Request, label byte) {
	deleted, err := h.store.Samples().DeleteByLabel(label)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
