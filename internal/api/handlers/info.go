package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quantum-energy-scheduler/internal/api/models"
	"quantum-energy-scheduler/internal/backend"
	"quantum-energy-scheduler/internal/config"
)

// Version is the API version reported by /api/v1/info.
const Version = "1.0.0"

// InfoHandler serves health and configuration endpoints.
type InfoHandler struct {
	backend backend.Backend
	tuning  config.Tuning
}

func NewInfoHandler(b backend.Backend, tuning config.Tuning) *InfoHandler {
	return &InfoHandler{backend: b, tuning: tuning}
}

// Health handles GET /health.
func (h *InfoHandler) Health(c *gin.Context) {
	ready := h.backend.Ready(c.Request.Context())
	status := "ok"
	if !ready {
		status = "degraded"
	}
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:       status,
		Backend:      h.backend.Name(),
		BackendReady: ready,
	})
}

// Info handles GET /api/v1/info.
func (h *InfoHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, models.InfoResponse{
		Backend:     h.backend.Name(),
		Version:     Version,
		Algorithm:   "QAOA",
		Optimizer:   "COBYLA-style simplex",
		Qubits:      h.tuning.WindowSize,
		Repetitions: h.tuning.Repetitions,
		Available:   h.backend.Ready(c.Request.Context()),
	})
}
