package handler

import (
	"time"

	"github.com/stewardhq/steward-go/internal/core/domain"
)

// Response is the standard API response envelope. All JSON responses
// use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// CredentialsBody carries the client and user credentials that the
// authorization endpoints accept in their request bodies.
type CredentialsBody struct {
	ClientID          string `json:"client_id"`
	ClientSecret      string `json:"client_secret"`
	RelayClientID     string `json:"relay_client_id,omitempty"`
	RelayClientSecret string `json:"relay_client_secret,omitempty"`
	Username          string `json:"username,omitempty"`
	Password          string `json:"password,omitempty"`
}

// IssueUserTokenRequest is the request body for POST /api/oauth/user_token.
type IssueUserTokenRequest struct {
	CredentialsBody
	Scope string `json:"scope"`
}

// TokenResponse is the response body for both token endpoints.
type TokenResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// ExchangeAccessTokenRequest is the request body for POST /api/oauth/access_token.
type ExchangeAccessTokenRequest struct {
	CredentialsBody
	UserToken string `json:"user_token"`
}

// RevokeRequest is the request body for POST /api/oauth/revoke.
type RevokeRequest struct {
	CredentialsBody
	Kind string `json:"kind"`
}

// RegisterRequest is the request body for POST /api/users.
type RegisterRequest struct {
	Username      string            `json:"username"`
	Password      string            `json:"password"`
	FirstName     string            `json:"first_name,omitempty"`
	LastName      string            `json:"last_name,omitempty"`
	Email         string            `json:"email,omitempty"`
	DefaultPlugin string            `json:"default_plugin,omitempty"`
	Settings      map[string]string `json:"settings,omitempty"`
}

// RegisterResponse is the response body for POST /api/users.
type RegisterResponse struct {
	Username string `json:"username"`
}

// UpdateSettingsRequest is the request body for POST /api/users/{username}/settings.
type UpdateSettingsRequest struct {
	Password string            `json:"password"`
	Settings map[string]string `json:"settings"`
}

// StartSessionRequest is the request body for POST /api/sessions.
type StartSessionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StartSessionResponse is the response body for POST /api/sessions.
type StartSessionResponse struct {
	SessionID string `json:"session_id"`
}

// ListSessionsResponse is the response body for GET /api/sessions.
type ListSessionsResponse struct {
	Sessions []string `json:"sessions"`
}

// SubmitCommandRequest is the request body for POST /api/sessions/{id}/commands.
type SubmitCommandRequest struct {
	Command string `json:"command"`
}

// SubmitCommandResponse is the response body for POST /api/sessions/{id}/commands.
type SubmitCommandResponse struct {
	CommandID string `json:"command_id"`
	Response  string `json:"response"`
}

// UpdatesResponse is the response body for GET /api/sessions/{id}/updates.
type UpdatesResponse struct {
	Updates []domain.Update `json:"updates"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
}
