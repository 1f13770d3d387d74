package session

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is the worker's fallback polling period for the
// rare case a wake signal is missed.
const DefaultSweepInterval = 5 * time.Second

// Worker is the long-lived goroutine that processes queued commands.
// It reacts to submission signals and falls back to a ticker.
type Worker struct {
	registry *Registry
	interval time.Duration
	logger   *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWorker creates a worker over the registry. An interval <= 0 uses
// DefaultSweepInterval.
func NewWorker(registry *Registry, interval time.Duration, logger *slog.Logger) *Worker {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		registry: registry,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *Worker) Start() {
	go w.run()
	w.logger.Info("session worker started", "sweep_interval", w.interval)
}

// Stop shuts the worker down and waits for the current pass to finish.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("session worker stopped")
}

func (w *Worker) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case <-w.registry.Wake():
			w.registry.sweep(ctx)
		case <-ticker.C:
			w.registry.sweep(ctx)
		case <-w.stopCh:
			// Final pass so nothing queued is silently dropped.
			w.registry.sweep(ctx)
			return
		}
	}
}
