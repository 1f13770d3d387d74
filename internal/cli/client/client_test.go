package client

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stewardhq/steward-go/internal/server/httpserver/handler"
)

func envelopeHandler(t *testing.T, status int, resp *handler.Response) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}

func TestNewNormalizesServer(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"localhost:5270", "http://localhost:5270"},
		{"http://localhost:5270", "http://localhost:5270"},
		{"https://steward.example.com/", "https://steward.example.com"},
	}
	for _, tt := range tests {
		if got := New(tt.server).baseURL; got != tt.want {
			t.Errorf("New(%q).baseURL = %q, want %q", tt.server, got, tt.want)
		}
	}
}

func TestStartSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req handler.StartSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Username != "holden" {
			t.Errorf("username = %q, want holden", req.Username)
		}
		json.NewEncoder(w).Encode(handler.NewResponse("req-1", handler.StartSessionResponse{
			SessionID: "stss-01test",
		}))
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.StartSession(context.Background(), "holden", "hunter2")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if resp.SessionID != "stss-01test" {
		t.Errorf("session id = %q, want stss-01test", resp.SessionID)
	}
}

func TestErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(envelopeHandler(t, http.StatusConflict,
		handler.NewErrorResponse("req-1", "USERNAME_TAKEN", "username is already taken", nil)))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Register(context.Background(), &handler.RegisterRequest{
		Username: "holden",
		Password: "hunter2",
	})
	if err == nil {
		t.Fatal("Register() succeeded, want error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Code != "USERNAME_TAKEN" {
		t.Errorf("code = %q, want USERNAME_TAKEN", apiErr.Code)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("status = %d, want %d", apiErr.Status, http.StatusConflict)
	}
}

func TestListSessionsSendsBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username != "holden" || password != "hunter2" {
			t.Errorf("basic auth = %q/%q ok=%v", username, password, ok)
		}
		json.NewEncoder(w).Encode(handler.NewResponse("req-1", handler.ListSessionsResponse{
			Sessions: []string{"stss-01test"},
		}))
	}))
	defer srv.Close()

	c := New(srv.URL, WithCredentials("holden", "hunter2"))
	resp, err := c.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(resp.Sessions) != 1 {
		t.Errorf("sessions = %v, want one entry", resp.Sessions)
	}
}

func TestWithCACert(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(handler.NewResponse("req-1", handler.HealthResponse{Status: "ok"}))
	}))
	defer srv.Close()

	caPath := filepath.Join(t.TempDir(), "ca.pem")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(caPath, caPEM, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// Without the CA the handshake fails.
	if _, err := New(srv.URL).Health(context.Background()); err == nil {
		t.Fatal("Health() succeeded without trusting the CA")
	}

	c := New(srv.URL, WithCACert(caPath))
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
}

func TestWithCACertMissingFile(t *testing.T) {
	c := New("https://localhost:1", WithCACert("/does/not/exist.pem"))
	_, err := c.Health(context.Background())
	if err == nil {
		t.Fatal("Health() succeeded with missing CA file")
	}
	if !strings.Contains(err.Error(), "load CA certificate") {
		t.Errorf("error = %v, want CA load failure", err)
	}
}

func TestRevokeDiscardsData(t *testing.T) {
	srv := httptest.NewServer(envelopeHandler(t, http.StatusOK, handler.NewResponse("req-1", nil)))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Revoke(context.Background(), &handler.RevokeRequest{Kind: "uses"})
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
}
