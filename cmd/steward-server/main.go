// Package main provides the entry point for steward-server.
//
// steward-server is the backend for the Steward personal assistant:
// a staged authorization service plus session command routing with
// plugin-based command resolution.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/stewardhq/steward-go/internal/core/service"
	"github.com/stewardhq/steward-go/internal/infra/buildinfo"
	"github.com/stewardhq/steward-go/internal/infra/confloader"
	"github.com/stewardhq/steward-go/internal/infra/shutdown"
	"github.com/stewardhq/steward-go/internal/infra/tlsroots"
	"github.com/stewardhq/steward-go/internal/plugin"
	"github.com/stewardhq/steward-go/internal/server/config"
	"github.com/stewardhq/steward-go/internal/server/httpserver"
	"github.com/stewardhq/steward-go/internal/server/httpserver/handler"
	"github.com/stewardhq/steward-go/internal/server/localserver"
	"github.com/stewardhq/steward-go/internal/session"
	"github.com/stewardhq/steward-go/internal/storage"
	"github.com/stewardhq/steward-go/internal/storage/memory"
	"github.com/stewardhq/steward-go/internal/telemetry/logger"
	"github.com/stewardhq/steward-go/internal/telemetry/metric"
	"github.com/stewardhq/steward-go/pkg/signer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("steward-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting steward-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)

	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	metrics := metric.New()

	// Core services
	verifier := service.NewCredentialVerifier(cfg.Auth.BcryptCost)
	authorizer := service.NewStepAuthorizer(store, store, store, verifier,
		signer.New(cfg.Auth.ClientSecretKey), log)
	oauthSvc := service.NewOAuthService(authorizer, store,
		signer.NewTimestamp(cfg.Auth.UserTokenKey),
		signer.New(cfg.Auth.AccessTokenKey),
		service.OAuthConfig{UserTokenTTL: cfg.Auth.UserTokenTTL}, log)
	userSvc := service.NewUserService(store, verifier,
		service.UserConfig{Admins: cfg.Auth.Admins}, log)

	// Plugin dispatch
	dispatcher := plugin.NewDispatcher(store, log)
	searchProvider := plugin.NewHTTPProvider(
		cfg.Plugins.Search.Endpoint,
		cfg.Plugins.Search.AppID,
		cfg.Plugins.Search.Timeout)
	dispatcher.Register(plugin.NewSearchPlugin(searchProvider))
	dispatcher.Register(plugin.NewHelpPlugin(dispatcher.Names))

	// Session registry and worker
	registry := session.NewRegistry(dispatcher, session.RegistryConfig{
		QueueCap: cfg.Session.QueueCap,
		Metrics:  metrics,
	}, log)
	worker := session.NewWorker(registry, cfg.Session.SweepInterval, log)
	worker.Start()

	// HTTP server
	httpHandler := handler.New(oauthSvc, userSvc, registry, metrics, log)
	chained := httpserver.Chain(httpHandler,
		httpserver.RequestID(),
		httpserver.Recover(log),
		httpserver.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		httpserver.Audit(log, metrics),
	)
	httpServer := httpserver.New(cfg.Server.HTTP, chained)

	// TLS with hot certificate reload.
	useTLS := cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != ""
	var certReloader *tlsroots.Reloader
	if useTLS {
		certReloader, err = tlsroots.NewReloader(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile, log)
		if err != nil {
			return fmt.Errorf("load tls key pair: %w", err)
		}
		if err := certReloader.Start(); err != nil {
			return fmt.Errorf("start certificate reloader: %w", err)
		}
		httpServer.SetTLSConfig(certReloader.ServerConfig())
	}

	// Optional local socket: same API, no rate limiting.
	var localServer *localserver.Server
	if cfg.Server.Local.SocketPath != "" {
		localServer = localserver.New(cfg.Server.Local.SocketPath, httpserver.Chain(httpHandler,
			httpserver.RequestID(),
			httpserver.Recover(log),
			httpserver.Audit(log, metrics),
		))
	}

	// Hot log-level reload on config file change.
	var watcher *confloader.Watcher
	if *configFile != "" {
		watcher, err = newConfigWatcher(*configFile, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		}
	}

	shutdownHandler := shutdown.NewHandler(30 * time.Second)
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down storage")
		return store.Close()
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("stopping session worker")
		worker.Stop()
		return nil
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})
	if localServer != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down local socket")
			return localServer.Shutdown(ctx)
		})
	}
	if watcher != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			return watcher.Stop()
		})
	}
	if certReloader != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			certReloader.Stop()
			return nil
		})
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr)

		var err error
		if useTLS {
			// The reloader supplies the certificate.
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	if localServer != nil {
		go func() {
			log.Info("local socket listening", "path", cfg.Server.Local.SocketPath)
			if err := localServer.ListenAndServe(); err != nil {
				log.Error("local socket error", "error", err)
			}
		}()
	}

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured storage engine.
func openStore(cfg *config.ServerConfig, log *slog.Logger) (storage.Store, error) {
	switch cfg.Storage.Engine {
	case "badger":
		var key []byte
		if cfg.Storage.EncryptionKey != "" {
			key = []byte(cfg.Storage.EncryptionKey)
		}
		return storage.NewBadgerStore(storage.BadgerConfig{
			Dir:           cfg.Storage.DataDir,
			EncryptionKey: key,
			GCInterval:    cfg.Storage.GCInterval,
			SyncWrites:    cfg.Storage.SyncWrites,
		}, log)
	default:
		return memory.NewStore(), nil
	}
}

// newConfigWatcher reloads the log level when the config file changes.
func newConfigWatcher(configFile string, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(log)
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level reloaded", "level", cfg.Log.Level)
	})
	watcher.Start()
	return watcher, nil
}
