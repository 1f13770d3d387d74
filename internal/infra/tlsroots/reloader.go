package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader serves a TLS key pair and reloads it when the files
// change. GetCertificate plugs into tls.Config, so rotation takes
// effect on the next handshake.
type Reloader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger

	mu   sync.RWMutex
	cert *tls.Certificate

	done chan struct{}

	// debounce collapses the burst of events an atomic-rename save
	// produces into one reload.
	debounce   time.Duration
	reloadMu   sync.Mutex
	lastReload time.Time
}

// NewReloader creates a reloader and loads the initial key pair.
func NewReloader(certFile, keyFile string, logger *slog.Logger) (*Reloader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reloader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger,
		done:     make(chan struct{}),
		debounce: 500 * time.Millisecond,
	}

	if err := r.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return r, nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// ServerConfig creates a server TLS config backed by this reloader.
func (r *Reloader) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

// Start watches the certificate files in a goroutine until Stop.
func (r *Reloader) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}

	// Watch the parent directories; editors and cert managers replace
	// the files by rename, which drops a direct file watch.
	certDir := filepath.Dir(r.certFile)
	if err := watcher.Add(certDir); err != nil {
		watcher.Close()
		return fmt.Errorf("tlsroots: watch cert dir %s: %w", certDir, err)
	}
	if keyDir := filepath.Dir(r.keyFile); keyDir != certDir {
		if err := watcher.Add(keyDir); err != nil {
			watcher.Close()
			return fmt.Errorf("tlsroots: watch key dir %s: %w", keyDir, err)
		}
	}

	r.logger.Info("certificate reloader started",
		"cert_file", r.certFile, "key_file", r.keyFile)

	go r.run(watcher)
	return nil
}

// Stop stops watching.
func (r *Reloader) Stop() {
	close(r.done)
}

func (r *Reloader) run(watcher *fsnotify.Watcher) {
	defer watcher.Close()

	certBase := filepath.Base(r.certFile)
	keyBase := filepath.Base(r.keyFile)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			base := filepath.Base(event.Name)
			if base != certBase && base != keyBase {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := r.debouncedReload(); err != nil {
				r.logger.Error("certificate reload failed",
					"error", err, "cert_file", r.certFile)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("certificate watcher error", "error", err)

		case <-r.done:
			return
		}
	}
}

func (r *Reloader) debouncedReload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	now := time.Now()
	if now.Sub(r.lastReload) < r.debounce {
		return nil
	}
	r.lastReload = now

	// The rename may land before the matching key write; give the
	// writer a moment.
	time.Sleep(100 * time.Millisecond)
	return r.reload()
}

func (r *Reloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	r.logger.Info("certificate loaded", "cert_file", r.certFile)
	return nil
}
