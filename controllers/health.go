package controllers

import (
	"net/http"

	"github.com/pmitra96/castleverde/database"
	"github.com/pmitra96/castleverde/logger"
)

// Health reports liveness. The lookup cache is optional; when configured it
// must answer a ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := database.Ping(h.DB); err != nil {
			logger.Error("Health check failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
