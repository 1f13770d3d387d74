package config

import "time"

// ServerConfig is the root configuration for steward-server.
type ServerConfig struct {
	Server    ServerSection    `koanf:"server"`
	Storage   StorageSection   `koanf:"storage"`
	Auth      AuthSection      `koanf:"auth"`
	Session   SessionSection   `koanf:"session"`
	Plugins   PluginsSection   `koanf:"plugins"`
	RateLimit RateLimitSection `koanf:"rate_limit"`
	Log       LogSection       `koanf:"log"`
}

// ServerSection configures the HTTP endpoint.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// LocalConfig configures the Unix socket listener. An empty socket
// path disables it.
type LocalConfig struct {
	SocketPath string `koanf:"socket_path"`
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	Addr        string        `koanf:"addr"`
	TLSCertFile string        `koanf:"tls_cert_file"`
	TLSKeyFile  string        `koanf:"tls_key_file"`
	ReadTimeout time.Duration `koanf:"read_timeout"`
	IdleTimeout time.Duration `koanf:"idle_timeout"`
}

// StorageSection selects and tunes the record store.
type StorageSection struct {
	// Engine is "memory" or "badger".
	Engine string `koanf:"engine"`

	// DataDir is the Badger data directory.
	DataDir string `koanf:"data_dir"`

	// EncryptionKey enables at-rest encryption when non-empty.
	EncryptionKey string `koanf:"encryption_key"`

	// GCInterval is the Badger value-log GC period.
	GCInterval time.Duration `koanf:"gc_interval"`

	// SyncWrites forces fsync on every write.
	SyncWrites bool `koanf:"sync_writes"`
}

// AuthSection configures signing keys and token policy.
type AuthSection struct {
	// ClientSecretKey signs client secrets.
	ClientSecretKey string `koanf:"client_secret_key"`

	// UserTokenKey signs short-lived user tokens.
	UserTokenKey string `koanf:"user_token_key"`

	// AccessTokenKey signs permanent access tokens.
	AccessTokenKey string `koanf:"access_token_key"`

	// UserTokenTTL is the exchange window for user tokens.
	UserTokenTTL time.Duration `koanf:"user_token_ttl"`

	// BcryptCost tunes password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`

	// Admins lists usernames that register as administrators.
	Admins []string `koanf:"admins"`
}

// SessionSection tunes the session pipeline.
type SessionSection struct {
	// QueueCap bounds each session's command and update queues.
	QueueCap int `koanf:"queue_cap"`

	// SweepInterval is the worker's fallback polling period.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// PluginsSection configures command plugins.
type PluginsSection struct {
	Search SearchConfig `koanf:"search"`
}

// SearchConfig configures the search plugin's answer provider.
type SearchConfig struct {
	Endpoint string        `koanf:"endpoint"`
	AppID    string        `koanf:"app_id"`
	Timeout  time.Duration `koanf:"timeout"`
}

// RateLimitSection configures per-client request limiting.
type RateLimitSection struct {
	// RPS is the sustained requests-per-second budget per client.
	// Zero disables limiting.
	RPS int `koanf:"rps"`

	// Burst is the burst allowance per client.
	Burst int `koanf:"burst"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
