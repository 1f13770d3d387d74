package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/core/service"
	"github.com/stewardhq/steward-go/internal/session"
	"github.com/stewardhq/steward-go/internal/telemetry/metric"
)

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	oauthSvc *service.OAuthService
	userSvc  *service.UserService
	registry *session.Registry
	metrics  *metric.Metrics
	logger   *slog.Logger
	mux      *http.ServeMux
}

// New creates a new Handler with the given services. metrics serves
// GET /metrics and counts auth failures; pass nil to disable both.
func New(oauthSvc *service.OAuthService, userSvc *service.UserService, registry *session.Registry, metrics *metric.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		oauthSvc: oauthSvc,
		userSvc:  userSvc,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
		mux:      http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health and metrics (no auth required)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics.Handler())
	}

	// Account endpoints
	h.mux.HandleFunc("POST /api/users", h.handleRegister)
	h.mux.HandleFunc("POST /api/users/{username}/settings", h.handleUpdateSettings)

	// Authorization endpoints
	h.mux.HandleFunc("POST /api/oauth/user_token", h.handleIssueUserToken)
	h.mux.HandleFunc("POST /api/oauth/access_token", h.handleExchangeAccessToken)
	h.mux.HandleFunc("POST /api/oauth/revoke", h.handleRevoke)

	// Session endpoints
	h.mux.HandleFunc("POST /api/sessions", h.handleStartSession)
	h.mux.HandleFunc("GET /api/sessions", h.handleListSessions)
	h.mux.HandleFunc("DELETE /api/sessions/{id}", h.handleEndSession)
	h.mux.HandleFunc("POST /api/sessions/{id}/commands", h.handleSubmitCommand)
	h.mux.HandleFunc("GET /api/sessions/{id}/updates", h.handleUpdates)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// getRequestID extracts the request ID set by the middleware.
func getRequestID(r *http.Request) string {
	if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
		return reqID
	}
	return ""
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.ErrorCode(err)
		status := errorCodeToHTTPStatus(code)
		if status >= 500 {
			h.logger.Error("request failed", "code", code, "error", err)
		}
		if h.metrics != nil && (status == http.StatusUnauthorized || status == http.StatusForbidden) {
			h.metrics.AuthFailures.WithLabelValues(code).Inc()
		}
		h.writeError(w, r, status, code, err.Error(), nil)
		return
	}

	h.logger.Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch code {
	case "CLIENT_ID_INVALID", "AUTH_TOKEN_INVALID", "AUTH_TOKEN_MISMATCHED", "USER_NOT_AUTHORIZED":
		return http.StatusUnauthorized
	case "CLIENT_UNOFFICIAL":
		return http.StatusForbidden
	case "USER_CLIENT_REL_NOT_FOUND", "SESSION_ID_INVALID", "PLUGIN_NOT_FOUND":
		return http.StatusNotFound
	case "USERNAME_TAKEN":
		return http.StatusConflict
	case "SCOPE_NOT_FOUND", "STEP_ID_NOT_FOUND", "SETTINGS_KEY_NOT_FOUND":
		return http.StatusBadRequest
	case "QUEUE_FULL":
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// credentials maps a request body onto the service credential set.
func (b CredentialsBody) credentials() service.Credentials {
	return service.Credentials{
		ClientID:          b.ClientID,
		ClientSecret:      b.ClientSecret,
		RelayClientID:     b.RelayClientID,
		RelayClientSecret: b.RelayClientSecret,
		Username:          b.Username,
		Password:          b.Password,
	}
}
