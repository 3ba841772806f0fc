// Package server provides the HTTP server for the signid classification
// service.
package server

import (
	"log"
	"net/http"

	"github.com/Endy3032/signid/internal/classify"
	"github.com/Endy3032/signid/internal/landmark"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// classifierSource supplies the currently active classifier.
type classifierSource interface {
	ActiveClassifier() (*classify.Classifier, string)
}

// StreamHandler classifies a stream of landmark frames over a
// WebSocket. An upstream hand tracker pushes one frame per detected
// hand and receives the predicted letter in reply.
type StreamHandler struct {
	source classifierSource
}

// NewStreamHandler creates a StreamHandler backed by the given source.
func NewStreamHandler(source classifierSource) *StreamHandler {
	return &StreamHandler{source: source}
}

// streamFrame is one inbound detection result.
type streamFrame struct {
	landmark.Hand
	Timestamp int64 `json:"timestamp"`
}

// streamResult is the reply for one frame.
type streamResult struct {
	Letter    string `json:"letter,omitempty"`
	Error     string `json:"error,omitempty"`
	Model     string `json:"model,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		var frame streamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		result := streamResult{Timestamp: frame.Timestamp}

		classifier, modelID := h.source.ActiveClassifier()
		if classifier == nil {
			result.Error = "no model loaded"
		} else if letter, err := classifier.Predict(frame.Vector()); err != nil {
			result.Error = err.Error()
		} else {
			result.Letter = string(letter)
			result.Model = modelID
		}

		if err := conn.WriteJSON(result); err != nil {
			return
		}
	}
}
