package storage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/pkg/crypto/adaptive"
)

// Key prefixes for the three record families.
const (
	prefixClient = "client/"
	prefixUser   = "user/"
	prefixRel    = "rel/"
)

// hkdfInfo binds derived storage keys to their purpose.
const hkdfInfo = "steward-storage-v1"

// BadgerConfig tunes the Badger engine.
type BadgerConfig struct {
	// Dir is the data directory. Required.
	Dir string

	// EncryptionKey, when non-empty, enables at-rest encryption of
	// record values. A 32-byte cipher key is derived from it.
	EncryptionKey []byte

	// GCInterval is the value-log garbage collection period.
	// Defaults to 10 minutes.
	GCInterval time.Duration

	// GCThreshold is the rewrite ratio passed to Badger's value log
	// GC. Defaults to 0.5.
	GCThreshold float64

	// SyncWrites forces fsync on every write.
	SyncWrites bool
}

// BadgerStore implements Store on a Badger database.
//
// Records are stored as JSON values under per-family key prefixes.
// When an encryption key is configured, values are sealed with an
// AEAD cipher keyed by HKDF-SHA256 and bound to their storage key.
type BadgerStore struct {
	db     *badger.DB
	cipher *adaptive.Cipher
	logger *slog.Logger

	gcThreshold float64
	closed      atomic.Bool
	stopCh      chan struct{}
	doneCh      chan struct{}
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore opens (or creates) a Badger-backed store.
func NewBadgerStore(cfg BadgerConfig, logger *slog.Logger) (*BadgerStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.GCThreshold <= 0 {
		cfg.GCThreshold = 0.5
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	store := &BadgerStore{
		db:          db,
		logger:      logger,
		gcThreshold: cfg.GCThreshold,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	if len(cfg.EncryptionKey) > 0 {
		key := make([]byte, adaptive.KeySize)
		kdf := hkdf.New(sha256.New, cfg.EncryptionKey, nil, []byte(hkdfInfo))
		if _, err := io.ReadFull(kdf, key); err != nil {
			db.Close()
			return nil, fmt.Errorf("badger: derive cipher key: %w", err)
		}
		cipher, err := adaptive.New(key)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("badger: init cipher: %w", err)
		}
		store.cipher = cipher
	}

	go store.gcLoop(cfg.GCInterval)

	logger.Info("badger store opened",
		"dir", cfg.Dir,
		"encrypted", store.cipher != nil,
		"gc_interval", cfg.GCInterval)

	return store, nil
}

// GetClient returns the client with the given id.
func (s *BadgerStore) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	var client domain.Client
	if err := s.getJSON(prefixClient+clientID, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// PutClient inserts or replaces a client record.
func (s *BadgerStore) PutClient(ctx context.Context, client *domain.Client) error {
	return s.setJSON(prefixClient+client.ClientID, client)
}

// DeleteClient removes a client.
func (s *BadgerStore) DeleteClient(ctx context.Context, clientID string) error {
	return s.deleteKey(prefixClient + clientID)
}

// ListClients returns all registered clients.
func (s *BadgerStore) ListClients(ctx context.Context) ([]*domain.Client, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var clients []*domain.Client
	err := s.scan(prefixClient, func(key string, value []byte) error {
		var client domain.Client
		if err := json.Unmarshal(value, &client); err != nil {
			return fmt.Errorf("decode client %s: %w", key, err)
		}
		clients = append(clients, &client)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clients, nil
}

// GetUser returns the user with the given username.
func (s *BadgerStore) GetUser(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := s.getJSON(prefixUser+username, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PutUser inserts or replaces a user record.
func (s *BadgerStore) PutUser(ctx context.Context, user *domain.User) error {
	return s.setJSON(prefixUser+user.Username, user)
}

// DeleteUser removes a user.
func (s *BadgerStore) DeleteUser(ctx context.Context, username string) error {
	return s.deleteKey(prefixUser + username)
}

// Insert stores a relationship under a fresh key.
func (s *BadgerStore) Insert(ctx context.Context, rel *domain.Relationship) error {
	key := prefixRel + string(rel.Kind) + "/" + uuid.NewString()
	return s.setJSON(key, rel)
}

// Find returns all relationships of the given kind matching the predicate.
func (s *BadgerStore) Find(ctx context.Context, kind domain.RelationshipKind, pred domain.Predicate) ([]*domain.Relationship, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var matched []*domain.Relationship
	err := s.scan(prefixRel+string(kind)+"/", func(key string, value []byte) error {
		var rel domain.Relationship
		if err := json.Unmarshal(value, &rel); err != nil {
			return fmt.Errorf("decode relationship %s: %w", key, err)
		}
		if rel.Matches(pred) {
			matched = append(matched, &rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

// Delete removes all relationships of the given kind matching the predicate.
func (s *BadgerStore) Delete(ctx context.Context, kind domain.RelationshipKind, pred domain.Predicate) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}

	var doomed []string
	err := s.scan(prefixRel+string(kind)+"/", func(key string, value []byte) error {
		var rel domain.Relationship
		if err := json.Unmarshal(value, &rel); err != nil {
			return fmt.Errorf("decode relationship %s: %w", key, err)
		}
		if rel.Matches(pred) {
			doomed = append(doomed, key)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if len(doomed) == 0 {
		return false, nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, key := range doomed {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close stops the GC loop and closes the database.
func (s *BadgerStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	s.logger.Info("badger store closed")
	return nil
}

func (s *BadgerStore) getJSON(key string, dst any) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(value []byte) error {
			plain, err := s.open(key, value)
			if err != nil {
				return err
			}
			return json.Unmarshal(plain, dst)
		})
	})
}

func (s *BadgerStore) setJSON(key string, src any) error {
	if s.closed.Load() {
		return ErrClosed
	}

	value, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), sealed)
	})
}

func (s *BadgerStore) deleteKey(key string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerStore) scan(prefix string, fn func(key string, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			plain, err := s.open(key, value)
			if err != nil {
				return err
			}
			if err := fn(key, plain); err != nil {
				return err
			}
		}
		return nil
	})
}

// seal encrypts a value when encryption is configured. The storage key
// is authenticated as additional data so sealed values cannot be moved
// between keys.
func (s *BadgerStore) seal(key string, value []byte) ([]byte, error) {
	if s.cipher == nil {
		return value, nil
	}
	sealed, err := s.cipher.Encrypt(value, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("seal %s: %w", key, err)
	}
	return sealed, nil
}

func (s *BadgerStore) open(key string, value []byte) ([]byte, error) {
	if s.cipher == nil {
		return value, nil
	}
	plain, err := s.cipher.Decrypt(value, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return plain, nil
}

func (s *BadgerStore) gcLoop(interval time.Duration) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for {
				err := s.db.RunValueLogGC(s.gcThreshold)
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					s.logger.Error("value log gc failed", "error", err)
					break
				}
			}
		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
