package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	l.Info("session opened", "session_id", "stss-abc", "username", "holden")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "session opened" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["session_id"] != "stss-abc" {
		t.Errorf("session_id = %v; session ids are not secret", entry["session_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json", Output: &buf})

	l.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info logged below level: %s", buf.String())
	}
	l.Warn("loud")
	if buf.Len() == 0 {
		t.Error("warn suppressed at warn level")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	SetLevel("debug")
	defer SetLevel("info")

	if GetLevel() != "debug" {
		t.Errorf("GetLevel = %q; want debug", GetLevel())
	}
	l.Debug("now visible")
	if buf.Len() == 0 {
		t.Error("debug suppressed after SetLevel(debug)")
	}
}

func TestTokenValuesMasked(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	l.Info("issued", "payload", "swut_abcdefghijklmnop")

	out := buf.String()
	if strings.Contains(out, "swut_abcdefghijklmnop") {
		t.Error("full token value leaked into log output")
	}
	if !strings.Contains(out, "swut_abc...nop") {
		t.Errorf("token not masked as expected: %s", out)
	}
}

func TestSensitiveKeysRedacted(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	l.Info("login", "password", "hunter2", "client_secret", "s3cret")

	out := buf.String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "s3cret") {
		t.Errorf("secret values leaked: %s", out)
	}
	if !strings.Contains(out, redactedValue) {
		t.Errorf("no redaction marker in output: %s", out)
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"swat_abcdefghij", "swat_abc...hij"},
		{"swut_ab", "swut_***"},
		{"plain value", "plain value"},
	}
	for _, tt := range tests {
		if got := RedactString(tt.in); got != tt.want {
			t.Errorf("RedactString(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSensitive(t *testing.T) {
	if !IsSensitiveKey("Authorization") || !IsSensitiveKey("user_password") {
		t.Error("secret-looking keys should be sensitive")
	}
	if IsSensitiveKey("username") {
		t.Error("username is not sensitive")
	}
	if !IsSensitiveValue("swut_x") || IsSensitiveValue("stss-x") {
		t.Error("only token payload prefixes are sensitive values")
	}
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	ctx = WithRequestID(ctx, "req-123")

	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext = %q", got)
	}

	L(ctx).Info("handled")
	if !strings.Contains(buf.String(), "req-123") {
		t.Errorf("request id missing from output: %s", buf.String())
	}
}
