package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/server/httpserver/handler"
)

// fakeServer serves canned envelope responses keyed by "METHOD /path".
func fakeServer(t *testing.T, routes map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		data, ok := routes[key]
		if !ok {
			t.Errorf("unexpected request %s", key)
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(handler.NewErrorResponse("req-t", "NOT_FOUND", "no route", nil))
			return
		}
		json.NewEncoder(w).Encode(handler.NewResponse("req-t", data))
	}))
}

func runApp(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	prevExiter := cli.OsExiter
	cli.OsExiter = func(int) {}
	t.Cleanup(func() { cli.OsExiter = prevExiter })

	app := App()
	var buf bytes.Buffer
	app.Writer = &buf

	full := append([]string{"steward-cli", "--server", server}, args...)
	err := app.RunContext(context.Background(), full)
	return buf.String(), err
}

func TestSessionStart(t *testing.T) {
	srv := fakeServer(t, map[string]any{
		"POST /api/sessions": handler.StartSessionResponse{SessionID: "stss-01abc"},
	})
	defer srv.Close()

	out, err := runApp(t, srv.URL,
		"--username", "holden", "--password", "hunter2",
		"session", "start")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if strings.TrimSpace(out) != "stss-01abc" {
		t.Errorf("output = %q, want session id", out)
	}
}

func TestSessionStartMissingCredentials(t *testing.T) {
	srv := fakeServer(t, nil)
	defer srv.Close()

	_, err := runApp(t, srv.URL, "session", "start")
	if err == nil {
		t.Fatal("run succeeded, want usage error")
	}
}

func TestSessionList(t *testing.T) {
	srv := fakeServer(t, map[string]any{
		"GET /api/sessions": handler.ListSessionsResponse{
			Sessions: []string{"stss-01abc", "stss-01def"},
		},
	})
	defer srv.Close()

	out, err := runApp(t, srv.URL,
		"--username", "holden", "--password", "hunter2",
		"session", "list")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(out, "stss-01abc") || !strings.Contains(out, "stss-01def") {
		t.Errorf("output = %q, want both session ids", out)
	}
}

func TestAskNoWait(t *testing.T) {
	srv := fakeServer(t, map[string]any{
		"POST /api/sessions":                       handler.StartSessionResponse{SessionID: "stss-01abc"},
		"POST /api/sessions/stss-01abc/commands":   handler.SubmitCommandResponse{CommandID: "cmd-1", Response: "42"},
		"DELETE /api/sessions/stss-01abc":          nil,
	})
	defer srv.Close()

	out, err := runApp(t, srv.URL,
		"--username", "holden", "--password", "hunter2",
		"ask", "--no-wait", "what", "is", "the", "answer")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if strings.TrimSpace(out) != "42" {
		t.Errorf("output = %q, want 42", out)
	}
}

func TestAskPollsUpdates(t *testing.T) {
	srv := fakeServer(t, map[string]any{
		"POST /api/sessions/stss-01abc/commands": handler.SubmitCommandResponse{CommandID: "cmd-1", Response: "thinking"},
		"GET /api/sessions/stss-01abc/updates": handler.UpdatesResponse{
			Updates: []domain.Update{{CommandID: "cmd-1", Response: "done"}},
		},
	})
	defer srv.Close()

	out, err := runApp(t, srv.URL,
		"ask", "--session", "stss-01abc", "--poll-interval", "10ms", "hello")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if strings.TrimSpace(out) != "done" {
		t.Errorf("output = %q, want done", out)
	}
}

func TestTokenIssue(t *testing.T) {
	srv := fakeServer(t, map[string]any{
		"POST /api/oauth/user_token": handler.TokenResponse{
			ID:    "USER_AUTHORIZATION_TOKEN",
			Token: "swut_abc.signature",
		},
	})
	defer srv.Close()

	out, err := runApp(t, srv.URL,
		"--username", "holden", "--password", "hunter2",
		"token", "issue", "--client-id", "rocinante", "--client-secret", "signed", "--scope", "command")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if strings.TrimSpace(out) != "swut_abc.signature" {
		t.Errorf("output = %q, want token", out)
	}
}

func TestStatusJSON(t *testing.T) {
	srv := fakeServer(t, map[string]any{
		"GET /health": handler.HealthResponse{Status: "ok", Version: "dev", GoVersion: "go1.24"},
	})
	defer srv.Close()

	out, err := runApp(t, srv.URL, "--json", "status")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	var health handler.HealthResponse
	if err := json.Unmarshal([]byte(out), &health); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
}

func TestParseKeyValues(t *testing.T) {
	settings, err := parseKeyValues([]string{"city=Baltimore", "unit=metric"})
	if err != nil {
		t.Fatalf("parseKeyValues() error = %v", err)
	}
	if settings["city"] != "Baltimore" || settings["unit"] != "metric" {
		t.Errorf("settings = %v", settings)
	}

	if _, err := parseKeyValues([]string{"no-equals"}); err == nil {
		t.Error("parseKeyValues() accepted malformed pair")
	}
	if _, err := parseKeyValues([]string{"=value"}); err == nil {
		t.Error("parseKeyValues() accepted empty key")
	}
}
