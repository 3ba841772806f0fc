package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Endy3032/signid/internal/classify"
	"github.com/Endy3032/signid/internal/knn"
	"github.com/Endy3032/signid/internal/store"
)

// ModelsHandler handles HTTP requests for trained models: listing,
// training from the stored sample corpus, and activating a model for
// serving.
type ModelsHandler struct {
	store *store.Store

	// activate makes a stored model the serving classifier.
	activate func(*store.Model) error
}

// NewModelsHandler creates a new ModelsHandler with the given store and
// activation callback.
func NewModelsHandler(s *store.Store, activate func(*store.Model) error) *ModelsHandler {
	return &ModelsHandler{store: s, activate: activate}
}

// ServeHTTP implements the http.Handler interface and routes requests
// to appropriate methods. Expected paths: /api/models,
// /api/models/train and /api/models/{id}/activate.
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/models")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)

	case path == "train":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.train(w, r)

	case strings.HasSuffix(path, "/activate"):
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activateByID(w, r, strings.TrimSuffix(path, "/activate"))

	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

type trainRequest struct {
	Name string `json:"name"`
}

type modelResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SampleCount int    `json:"sample_count"`
	CreatedAt   string `json:"created_at"`
}

type listModelsResponse struct {
	Models []modelResponse `json:"models"`
}

// toResponse converts a store.Model to a modelResponse.
func toResponse(m *store.Model) modelResponse {
	return modelResponse{
		ID:          m.ID,
		Name:        m.Name,
		SampleCount: m.SampleCount,
		CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// list handles GET /api/models and returns all models, newest first.
func (h *ModelsHandler) list(w http.ResponseWriter, r *http.Request) {
	models, err := h.store.Models().List()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list models")
		return
	}

	response := listModelsResponse{
		Models: make([]modelResponse, 0, len(models)),
	}
	for _, m := range models {
		response.Models = append(response.Models, toResponse(m))
	}

	WriteJSON(w, http.StatusOK, response)
}

// train handles POST /api/models/train: it trains a classifier on the
// full stored sample corpus, persists the blobs as a new model and
// activates it.
func (h *ModelsHandler) train(w http.ResponseWriter, r *http.Request) {
	var req trainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Malformed request")
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "Model name is required")
		return
	}

	samples, err := h.store.Samples().List()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load samples")
		return
	}

	blobs, err := classify.BuildIndex(samples)
	if err != nil {
		if errors.Is(err, knn.ErrEmptyDataset) {
			WriteError(w, http.StatusConflict, "No samples recorded")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Training failed")
		return
	}

	model := &store.Model{
		Name:        req.Name,
		SampleCount: len(samples),
		ScalerBlob:  blobs.ScalerBlob,
		TreeBlob:    blobs.TreeBlob,
	}
	if err := h.store.Models().Create(model); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to store model")
		return
	}

	if h.activate != nil {
		if err := h.activate(model); err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to activate model")
			return
		}
	}

	WriteJSON(w, http.StatusCreated, toResponse(model))
}

// activateByID handles POST /api/models/{id}/activate.
func (h *ModelsHandler) activateByID(w http.ResponseWriter, r *http.Request, id string) {
	model, err := h.store.Models().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Model not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load model")
		return
	}

	if h.activate != nil {
		if err := h.activate(model); err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to activate model")
			return
		}
	}

	WriteJSON(w, http.StatusOK, toResponse(model))
}
