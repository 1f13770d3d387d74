package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr    = "127.0.0.1:5270"
	DefaultReadTimeout = 15 * time.Second
	DefaultIdleTimeout = 60 * time.Second

	DefaultStorageEngine = "memory"
	DefaultDataDir       = "/var/lib/steward-server/data"
	DefaultGCInterval    = 10 * time.Minute

	DefaultUserTokenTTL = 5 * time.Minute
	DefaultBcryptCost   = 12

	DefaultQueueCap      = 64
	DefaultSweepInterval = 5 * time.Second

	DefaultSearchEndpoint = "https://api.wolframalpha.com/v1/result"
	DefaultSearchTimeout  = 10 * time.Second

	DefaultRateRPS   = 20
	DefaultRateBurst = 40

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:        DefaultHTTPAddr,
				ReadTimeout: DefaultReadTimeout,
				IdleTimeout: DefaultIdleTimeout,
			},
		},
		Storage: StorageSection{
			Engine:     DefaultStorageEngine,
			DataDir:    DefaultDataDir,
			GCInterval: DefaultGCInterval,
		},
		Auth: AuthSection{
			UserTokenTTL: DefaultUserTokenTTL,
			BcryptCost:   DefaultBcryptCost,
		},
		Session: SessionSection{
			QueueCap:      DefaultQueueCap,
			SweepInterval: DefaultSweepInterval,
		},
		Plugins: PluginsSection{
			Search: SearchConfig{
				Endpoint: DefaultSearchEndpoint,
				Timeout:  DefaultSearchTimeout,
			},
		},
		RateLimit: RateLimitSection{
			RPS:   DefaultRateRPS,
			Burst: DefaultRateBurst,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
