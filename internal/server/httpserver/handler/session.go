package handler

import (
	"encoding/json"
	"net/http"

	"github.com/stewardhq/steward-go/internal/core/domain"
)

// handleStartSession handles POST /api/sessions. The caller
// authenticates with username and password; the response carries the
// new session id.
func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	user, err := h.userSvc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	sess, err := h.registry.Create(user.Username)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, StartSessionResponse{
		SessionID: sess.ID,
	})
}

// handleListSessions handles GET /api/sessions. The caller
// authenticates with HTTP basic auth; only their own sessions are
// listed.
func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="steward"`)
		h.writeError(w, r, http.StatusUnauthorized, "USER_NOT_AUTHORIZED", "credentials required", nil)
		return
	}

	user, err := h.userSvc.Authenticate(r.Context(), username, password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ListSessionsResponse{
		Sessions: h.registry.ListByUser(user.Username),
	})
}

// handleEndSession handles DELETE /api/sessions/{id}.
func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		h.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "session id is required", nil)
		return
	}

	if !h.registry.Destroy(sessionID) {
		h.handleServiceError(w, r, domain.ErrSessionNotFound.WithDetails("session "+sessionID))
		return
	}
	h.writeJSON(w, r, http.StatusOK, nil)
}

// handleSubmitCommand handles POST /api/sessions/{id}/commands. The
// response carries the immediate reply; the same command also flows
// through the worker and surfaces again as an update.
func (h *Handler) handleSubmitCommand(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req SubmitCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.Command == "" {
		h.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "command is required", nil)
		return
	}

	result, err := h.registry.Submit(r.Context(), sessionID, req.Command)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, SubmitCommandResponse{
		CommandID: result.CommandID,
		Response:  result.Response,
	})
}

// handleUpdates handles GET /api/sessions/{id}/updates. Pending
// updates are drained; polling twice never returns the same update.
func (h *Handler) handleUpdates(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	updates, err := h.registry.Drain(sessionID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, UpdatesResponse{Updates: updates})
}
