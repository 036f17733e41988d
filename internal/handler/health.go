package handler

import (
	"net/http"
	"strconv"

	"github.com/vooagent/voo/internal/models"
)

// HealthHandler handles GET /health
type HealthHandler struct {
	version string
	source  Inspectable
}

func NewHealthHandler(version string, source Inspectable) *HealthHandler {
	return &HealthHandler{version: version, source: source}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	status := "healthy"

	if h.source == nil {
		checks["agent"] = "unavailable"
		status = "degraded"
	} else {
		checks["agent"] = "ok"
		checks["provider"] = h.source.Provider()
		checks["tools"] = strconv.Itoa(len(h.source.Descriptors()))
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	models.WriteJSON(w, code, models.HealthResponse{
		Status:  status,
		Version: h.version,
		Checks:  checks,
	})
}
