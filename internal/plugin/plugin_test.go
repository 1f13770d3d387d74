package plugin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/storage"
)

// stubUsers hands out a single user record.
type stubUsers struct {
	user *domain.User
}

func (s *stubUsers) GetUser(ctx context.Context, username string) (*domain.User, error) {
	if s.user != nil && s.user.Username == username {
		return s.user, nil
	}
	return nil, storage.ErrNotFound
}

func (s *stubUsers) PutUser(ctx context.Context, user *domain.User) error { return nil }
func (s *stubUsers) DeleteUser(ctx context.Context, username string) error {
	return storage.ErrNotFound
}

// fakePlugin matches a fixed keyword.
type fakePlugin struct {
	name    string
	keyword string
	reply   string
}

func (p *fakePlugin) Name() string { return p.name }
func (p *fakePlugin) Matches(text string) bool {
	return strings.HasPrefix(text, p.keyword)
}
func (p *fakePlugin) Run(ctx context.Context, req *Request) (string, error) {
	return p.reply, nil
}

func TestDispatcherMatchOrder(t *testing.T) {
	d := NewDispatcher(&stubUsers{}, nil)
	d.Register(&fakePlugin{name: "weather", keyword: "weather", reply: "sunny"})
	d.Register(&fakePlugin{name: "echo", keyword: "", reply: "echo"})

	got, err := d.Resolve(context.Background(), "holden", domain.NewCommand("Weather today"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "sunny" {
		t.Errorf("Resolve = %q; want the first matching plugin", got)
	}
}

func TestDispatcherDefaultPlugin(t *testing.T) {
	users := &stubUsers{user: &domain.User{Username: "holden", DefaultPlugin: "notes"}}
	d := NewDispatcher(users, nil)
	d.Register(&fakePlugin{name: "notes", keyword: "note:", reply: "noted"})

	got, err := d.Resolve(context.Background(), "holden", domain.NewCommand("something unmatched"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "noted" {
		t.Errorf("Resolve = %q; want the user's default plugin", got)
	}
}

func TestDispatcherMissingDefault(t *testing.T) {
	users := &stubUsers{user: &domain.User{Username: "holden", DefaultPlugin: "gone"}}
	d := NewDispatcher(users, nil)

	_, err := d.Resolve(context.Background(), "holden", domain.NewCommand("anything"))
	if !domain.IsDomainError(err, "PLUGIN_NOT_FOUND") {
		t.Errorf("Resolve = %v; want PLUGIN_NOT_FOUND", err)
	}
}

func TestDispatcherHelpFallback(t *testing.T) {
	d := NewDispatcher(&stubUsers{}, nil)
	d.Register(&fakePlugin{name: "weather", keyword: "weather", reply: "sunny"})
	d.Register(NewHelpPlugin(d.Names))

	got, err := d.Resolve(context.Background(), "holden", domain.NewCommand("gibberish"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "weather") {
		t.Errorf("help reply %q should list plugin names", got)
	}
}

func TestSearchPluginMatches(t *testing.T) {
	p := NewSearchPlugin(nil)

	tests := []struct {
		text string
		want bool
	}{
		{"what time is it", true},
		{"who is the president", true},
		{"how? do birds fly", true},
		{"search golang generics", true},
		{"remind me later", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := p.Matches(tt.text); got != tt.want {
			t.Errorf("Matches(%q) = %v; want %v", tt.text, got, tt.want)
		}
	}
}

func TestSearchPluginRun(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("i")
		if r.URL.Query().Get("appid") != "test-app" {
			t.Errorf("appid = %q; want test-app", r.URL.Query().Get("appid"))
		}
		w.Write([]byte("42\n"))
	}))
	defer srv.Close()

	p := NewSearchPlugin(NewHTTPProvider(srv.URL, "test-app", time.Second))

	got, err := p.Run(context.Background(), &Request{Username: "holden", Text: "search meaning of life"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "42" {
		t.Errorf("Run = %q; want trimmed answer", got)
	}
	if gotQuery != "meaning of life" {
		t.Errorf("query = %q; want the search keyword stripped", gotQuery)
	}
}

func TestHTTPProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("i") {
		case "empty":
			w.Write([]byte("  \n"))
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", time.Second)

	if _, err := p.ShortAnswer(context.Background(), "empty"); err == nil {
		t.Error("empty answer should be an error")
	}
	if _, err := p.ShortAnswer(context.Background(), "boom"); err == nil {
		t.Error("non-200 status should be an error")
	}
}
