package handler

import (
	"encoding/json"
	"net/http"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/core/service"
)

// handleRegister handles POST /api/users.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	resp, err := h.userSvc.Register(r.Context(), &service.RegisterRequest{
		Username:      req.Username,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		DefaultPlugin: req.DefaultPlugin,
		Settings:      req.Settings,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, RegisterResponse{
		Username: resp.User.Username,
	})
}

// handleUpdateSettings handles POST /api/users/{username}/settings.
// The caller re-authenticates with their password; each key in the
// settings document is applied in turn.
func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if len(req.Settings) == 0 {
		h.handleServiceError(w, r, domain.ErrSettingsKeyNotFound.WithDetails("settings document is required"))
		return
	}

	if _, err := h.userSvc.Authenticate(r.Context(), username, req.Password); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	for key, value := range req.Settings {
		err := h.userSvc.UpdateSettings(r.Context(), &service.UpdateSettingsRequest{
			Username: username,
			Key:      key,
			Value:    value,
		})
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
	}

	h.writeJSON(w, r, http.StatusOK, nil)
}
