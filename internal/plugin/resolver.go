package plugin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/storage"
)

// Request carries one command into a plugin.
type Request struct {
	Username string
	Text     string
}

// Plugin handles commands it declares a match for.
type Plugin interface {
	// Name identifies the plugin in settings and logs.
	Name() string

	// Matches reports whether the plugin wants the command. The text
	// is lowercased and trimmed before matching.
	Matches(text string) bool

	// Run handles the command and returns the reply.
	Run(ctx context.Context, req *Request) (string, error)
}

// Dispatcher routes commands to plugins. It implements the session
// layer's Resolver.
type Dispatcher struct {
	plugins []Plugin
	byName  map[string]Plugin
	users   storage.UserStore
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher. Plugins are tried in
// registration order.
func NewDispatcher(users storage.UserStore, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		byName: make(map[string]Plugin),
		users:  users,
		logger: logger,
	}
}

// Register adds a plugin. Registering a name twice replaces the
// earlier plugin in name lookup but keeps the original match order.
func (d *Dispatcher) Register(p Plugin) {
	d.plugins = append(d.plugins, p)
	d.byName[p.Name()] = p
}

// Names returns the registered plugin names in registration order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.plugins))
	for _, p := range d.plugins {
		names = append(names, p.Name())
	}
	return names
}

// Resolve routes one command: first matching plugin wins, then the
// user's default plugin, then help.
func (d *Dispatcher) Resolve(ctx context.Context, username string, cmd domain.Command) (string, error) {
	text := strings.ToLower(strings.TrimSpace(cmd.Text))
	req := &Request{Username: username, Text: cmd.Text}

	for _, p := range d.plugins {
		if p.Matches(text) {
			d.logger.Debug("command matched", "plugin", p.Name(), "username", username)
			return p.Run(ctx, req)
		}
	}

	fallback, err := d.defaultPlugin(ctx, username)
	if err != nil {
		return "", err
	}
	d.logger.Debug("command fell back", "plugin", fallback.Name(), "username", username)
	return fallback.Run(ctx, req)
}

// defaultPlugin resolves the user's configured fallback, or help.
func (d *Dispatcher) defaultPlugin(ctx context.Context, username string) (Plugin, error) {
	name := "help"
	if d.users != nil && username != "" {
		user, err := d.users.GetUser(ctx, username)
		switch {
		case err == nil && user.DefaultPlugin != "":
			name = user.DefaultPlugin
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return nil, domain.ErrStorage.WithCause(err)
		}
	}

	p, ok := d.byName[name]
	if !ok {
		return nil, domain.ErrPluginNotFound.WithDetails("plugin " + name)
	}
	return p, nil
}
