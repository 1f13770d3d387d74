package handler

import (
	"net/http"

	"github.com/stewardhq/steward-go/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   info.Version,
		Commit:    info.Commit,
		GoVersion: info.GoVersion,
	})
}
