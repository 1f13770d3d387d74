package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/core/service"
)

// handleIssueUserToken handles POST /api/oauth/user_token.
func (h *Handler) handleIssueUserToken(w http.ResponseWriter, r *http.Request) {
	var req IssueUserTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	resp, err := h.oauthSvc.IssueUserToken(r.Context(), &service.IssueUserTokenRequest{
		Credentials: req.credentials(),
		Scope:       req.Scope,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, TokenResponse{
		ID:    resp.ID,
		Token: resp.Token,
	})
}

// handleExchangeAccessToken handles POST /api/oauth/access_token.
func (h *Handler) handleExchangeAccessToken(w http.ResponseWriter, r *http.Request) {
	var req ExchangeAccessTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.UserToken == "" {
		h.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "user_token is required", nil)
		return
	}

	resp, err := h.oauthSvc.ExchangeAccessToken(r.Context(), &service.ExchangeAccessTokenRequest{
		Credentials: req.credentials(),
		UserToken:   req.UserToken,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, TokenResponse{
		ID:    resp.ID,
		Token: resp.Token,
	})
}

// handleRevoke handles POST /api/oauth/revoke.
func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	kind := domain.RelationshipKind(strings.ToUpper(req.Kind))
	creds := req.credentials()
	if err := h.oauthSvc.Revoke(r.Context(), service.GenericStep(kind), &creds); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, nil)
}
