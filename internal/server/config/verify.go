package config

import (
	"errors"
	"os"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if cfg.Server.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if (cfg.Server.HTTP.TLSCertFile == "") != (cfg.Server.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}

	switch cfg.Storage.Engine {
	case "memory":
	case "badger":
		if cfg.Storage.DataDir == "" {
			return errors.New("storage.data_dir is required for the badger engine")
		}
		if err := os.MkdirAll(cfg.Storage.DataDir, 0o750); err != nil {
			return errors.New("cannot create data directory: " + err.Error())
		}
	default:
		return errors.New("storage.engine must be memory or badger")
	}

	if cfg.Auth.ClientSecretKey == "" {
		return errors.New("auth.client_secret_key is required")
	}
	if cfg.Auth.UserTokenKey == "" {
		return errors.New("auth.user_token_key is required")
	}
	if cfg.Auth.AccessTokenKey == "" {
		return errors.New("auth.access_token_key is required")
	}
	if cfg.Auth.UserTokenKey == cfg.Auth.AccessTokenKey {
		return errors.New("auth.user_token_key and access_token_key must differ")
	}

	if cfg.Session.QueueCap < 1 {
		return errors.New("session.queue_cap must be at least 1")
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < cfg.RateLimit.RPS {
		return errors.New("rate_limit.burst must be at least rate_limit.rps")
	}

	return nil
}
