// Package handler serves the read-only inspector API over the running agent.
package handler

import (
	"net/http"
	"strconv"

	"github.com/vooagent/voo/internal/models"
)

// Inspectable is the read side of an agent
type Inspectable interface {
	SessionID() string
	Provider() string
	Transcript() models.Transcript
	Descriptors() []models.ToolDescriptor
}

// InspectorHandler handles the /api/v1 routes
type InspectorHandler struct {
	source Inspectable
}

func NewInspectorHandler(source Inspectable) *InspectorHandler {
	return &InspectorHandler{source: source}
}

// Transcript handles GET /api/v1/transcript. The optional since query
// parameter skips the first N turns.
func (h *InspectorHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			models.WriteError(w, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = n
	}

	t := h.source.Transcript()
	total := len(t.Turns)
	if since > total {
		since = total
	}
	t.Turns = t.Turns[since:]

	models.WriteJSON(w, http.StatusOK, models.TranscriptResponse{
		Status:     "success",
		SessionID:  h.source.SessionID(),
		TurnCount:  total,
		Transcript: t,
	})
}

// Tools handles GET /api/v1/tools
func (h *InspectorHandler) Tools(w http.ResponseWriter, r *http.Request) {
	descs := h.source.Descriptors()
	models.WriteJSON(w, http.StatusOK, models.ToolsResponse{
		Status: "success",
		Tools:  descs,
		Count:  len(descs),
	})
}
