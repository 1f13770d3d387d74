package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stewardhq/steward-go/internal/infra/tlsroots"
	"github.com/stewardhq/steward-go/internal/server/httpserver/handler"
)

// DefaultTimeout bounds each request round trip.
const DefaultTimeout = 30 * time.Second

// APIError is an error envelope returned by the server.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s (HTTP %d)", e.Code, e.Message, e.Status)
}

// Client is an HTTP client for the Steward API.
type Client struct {
	baseURL string
	http    *http.Client

	// username and password authenticate requests that need basic
	// auth, like session listing.
	username string
	password string

	// caErr records a CA load failure so it surfaces on use instead
	// of silently falling back to system roots.
	caErr error
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the user credentials attached to
// authenticated requests.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithCACert trusts an additional CA certificate file for HTTPS
// servers with private CAs. A load failure is deferred to the first
// request.
func WithCACert(path string) Option {
	return func(c *Client) {
		pool := tlsroots.NewPool()
		if err := pool.AddCertFile(path); err != nil {
			c.caErr = err
			return
		}
		c.http.Transport = &http.Transport{
			TLSClientConfig: pool.ClientConfig(),
		}
	}
}

// New creates a client for the given server address. A bare host:port
// gets an http:// scheme.
func New(server string, opts ...Option) *Client {
	baseURL := strings.TrimSuffix(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs a request and decodes the envelope. A nil out discards
// the data payload.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.caErr != nil {
		return fmt.Errorf("load CA certificate: %w", c.caErr)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("User-Agent", "steward-cli/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var envelope handler.Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 || envelope.Code != "OK" {
		return &APIError{
			Code:    envelope.Code,
			Message: envelope.Message,
			Status:  resp.StatusCode,
		}
	}

	if out != nil {
		raw, err := json.Marshal(envelope.Data)
		if err != nil {
			return fmt.Errorf("re-marshal data: %w", err)
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// Health returns the server health report.
func (c *Client) Health(ctx context.Context) (*handler.HealthResponse, error) {
	var out handler.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req *handler.RegisterRequest) (*handler.RegisterResponse, error) {
	var out handler.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings applies a settings document to an account.
func (c *Client) UpdateSettings(ctx context.Context, username string, req *handler.UpdateSettingsRequest) error {
	return c.do(ctx, http.MethodPost, "/api/users/"+username+"/settings", req, nil)
}

// StartSession authenticates and opens a session.
func (c *Client) StartSession(ctx context.Context, username, password string) (*handler.StartSessionResponse, error) {
	var out handler.StartSessionResponse
	req := &handler.StartSessionRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EndSession closes a session.
func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+sessionID, nil, nil)
}

// ListSessions lists the authenticated user's open sessions.
func (c *Client) ListSessions(ctx context.Context) (*handler.ListSessionsResponse, error) {
	var out handler.ListSessionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit sends a command on a session and returns the immediate reply.
func (c *Client) Submit(ctx context.Context, sessionID, command string) (*handler.SubmitCommandResponse, error) {
	var out handler.SubmitCommandResponse
	req := &handler.SubmitCommandRequest{Command: command}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/commands", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Updates drains a session's pending updates.
func (c *Client) Updates(ctx context.Context, sessionID string) (*handler.UpdatesResponse, error) {
	var out handler.UpdatesResponse
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/updates", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IssueUserToken runs the user authorization flow.
func (c *Client) IssueUserToken(ctx context.Context, req *handler.IssueUserTokenRequest) (*handler.TokenResponse, error) {
	var out handler.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/oauth/user_token", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangeAccessToken trades a user token for a permanent access token.
func (c *Client) ExchangeAccessToken(ctx context.Context, req *handler.ExchangeAccessTokenRequest) (*handler.TokenResponse, error) {
	var out handler.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/oauth/access_token", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Revoke removes a relationship between the user and the client.
func (c *Client) Revoke(ctx context.Context, req *handler.RevokeRequest) error {
	return c.do(ctx, http.MethodPost, "/api/oauth/revoke", req, nil)
}
