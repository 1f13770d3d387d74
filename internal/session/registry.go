package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/telemetry/metric"
	"github.com/stewardhq/steward-go/pkg/cmap"
)

// Resolver turns a command into a response. The session layer does not
// know what resolution means; the plugin dispatcher provides it.
type Resolver interface {
	Resolve(ctx context.Context, username string, cmd domain.Command) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, username string, cmd domain.Command) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, username string, cmd domain.Command) (string, error) {
	return f(ctx, username, cmd)
}

// Session is one live conversation.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time

	commands *Queue[domain.Command]
	updates  *Queue[domain.Update]
}

// PendingCommands returns the number of unprocessed commands.
func (s *Session) PendingCommands() int { return s.commands.Len() }

// PendingUpdates returns the number of undelivered updates.
func (s *Session) PendingUpdates() int { return s.updates.Len() }

// Registry tracks live sessions. Lookup and removal are linearizable
// per session id; no lock is held across resolver calls.
type Registry struct {
	sessions *cmap.Map[string, *Session]
	resolver Resolver
	queueCap int
	notify   chan struct{}
	metrics  *metric.Metrics
	logger   *slog.Logger
}

// RegistryConfig holds configuration for the registry.
type RegistryConfig struct {
	// QueueCap bounds each session's command and update queues.
	// Defaults to DefaultQueueCap.
	QueueCap int

	// Metrics, when non-nil, receives session and command counts.
	Metrics *metric.Metrics
}

// NewRegistry creates an empty registry.
func NewRegistry(resolver Resolver, cfg RegistryConfig, logger *slog.Logger) *Registry {
	if cfg.QueueCap <= 0 {
		cfg.QueueCap = DefaultQueueCap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: cmap.New[string, *Session](),
		resolver: resolver,
		queueCap: cfg.QueueCap,
		notify:   make(chan struct{}, 1),
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// Create opens a session for the user and returns it.
func (r *Registry) Create(username string) (*Session, error) {
	id, err := domain.GenerateSessionID()
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}

	sess := &Session{
		ID:        id,
		Username:  username,
		CreatedAt: time.Now(),
		commands:  NewQueue[domain.Command](r.queueCap),
		updates:   NewQueue[domain.Update](r.queueCap),
	}
	r.sessions.Set(id, sess)
	if r.metrics != nil {
		r.metrics.SessionsActive.Inc()
	}

	r.logger.Info("session opened", "session_id", id, "username", username)
	return sess, nil
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, bool) {
	return r.sessions.Get(id)
}

// Destroy closes a session and reports whether it existed. Destroying
// an unknown or already-closed session is a no-op.
func (r *Registry) Destroy(id string) bool {
	sess, ok := r.sessions.Pop(id)
	if ok {
		if r.metrics != nil {
			r.metrics.SessionsActive.Dec()
		}
		r.logger.Info("session closed", "session_id", id, "username", sess.Username)
	}
	return ok
}

// ListByUser returns the ids of the user's open sessions.
func (r *Registry) ListByUser(username string) []string {
	var ids []string
	r.sessions.Range(func(id string, sess *Session) bool {
		if sess.Username == username {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// Count returns the number of open sessions.
func (r *Registry) Count() int {
	return r.sessions.Count()
}

// SubmitResult is the immediate reply to a submitted command.
type SubmitResult struct {
	CommandID string
	Response  string
}

// Submit enqueues a command on a session and synchronously resolves it
// for the immediate reply. The queued copy is processed independently
// by the worker, which delivers the result as an update.
func (r *Registry) Submit(ctx context.Context, sessionID, text string) (*SubmitResult, error) {
	sess, ok := r.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound.WithDetails("session " + sessionID)
	}

	cmd := domain.NewCommand(text)
	if !sess.commands.Enqueue(cmd) {
		return nil, domain.ErrQueueFull.WithDetails("session " + sessionID)
	}
	if r.metrics != nil {
		r.metrics.CommandsTotal.Inc()
	}
	r.wake()

	// Resolve outside any lock; a failure still produced a queued
	// command, so the reply reports it rather than failing the submit.
	response, err := r.resolver.Resolve(ctx, sess.Username, cmd)
	if err != nil {
		r.logger.Warn("command resolution failed",
			"session_id", sessionID, "command_id", cmd.ID, "error", err)
		response = "Sorry, something went wrong handling that."
	}

	return &SubmitResult{CommandID: cmd.ID, Response: response}, nil
}

// Drain returns and clears the session's pending updates, oldest
// first. It never blocks.
func (r *Registry) Drain(sessionID string) ([]domain.Update, error) {
	sess, ok := r.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound.WithDetails("session " + sessionID)
	}
	return sess.updates.Drain(), nil
}

// Wake exposes the submission signal for the worker.
func (r *Registry) Wake() <-chan struct{} {
	return r.notify
}

func (r *Registry) wake() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// sweep runs one worker pass: every session's inbound queue is drained
// in order and each command becomes exactly one update.
func (r *Registry) sweep(ctx context.Context) {
	r.sessions.Range(func(id string, sess *Session) bool {
		for {
			cmd, ok := sess.commands.Dequeue()
			if !ok {
				return true
			}

			response, err := r.resolver.Resolve(ctx, sess.Username, cmd)
			update := domain.Update{CommandID: cmd.ID, Response: response}
			if err != nil {
				r.logger.Warn("background resolution failed",
					"session_id", id, "command_id", cmd.ID, "error", err)
				update.Response = "Sorry, something went wrong handling that."
				update.Failed = true
			}
			sess.updates.EnqueueEvict(update)
			if r.metrics != nil {
				r.metrics.UpdatesTotal.Inc()
			}
		}
	})
}
