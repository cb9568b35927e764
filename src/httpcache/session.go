// Package httpcache provides an HTTP session whose GET responses are cached
// on disk with a fixed time-to-live. The store is BadgerDB, which handles
// entry expiry and concurrent access; no eviction logic lives here.
package httpcache

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const DefaultTTL = 1 * time.Hour

type Config struct {
	// Dir is the cache directory. Defaults to finq-cache under the OS
	// cache directory. Ignored when InMemory is set.
	Dir string

	// TTL is how long a cached response stays valid. Defaults to
	// DefaultTTL.
	TTL time.Duration

	// InMemory keeps the store off disk. Used by tests.
	InMemory bool

	// Timeout applies to the underlying HTTP client. Defaults to 30s.
	Timeout time.Duration
}

// Session owns a cached HTTP client and its backing store.
type Session struct {
	client *http.Client
	db     *badger.DB
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dir := cfg.Dir
		if dir == "" {
			base, err := os.UserCacheDir()
			if err != nil {
				return nil, fmt.Errorf("NewSession: failed to resolve cache dir: %w", err)
			}
			dir = filepath.Join(base, "finq-cache")
		}

		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("NewSession: failed to create cache dir: %w", err)
		}

		opts = badger.DefaultOptions(dir)
	}

	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("NewSession: failed to open cache store: %w", err)
	}

	transport := &cachingTransport{
		db:   db,
		ttl:  cfg.TTL,
		base: http.DefaultTransport,
	}

	return &Session{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		db: db,
	}, nil
}

// Client returns the cached HTTP client. Safe for concurrent use.
func (s *Session) Client() *http.Client {
	return s.client
}

// Close releases the backing store.
func (s *Session) Close() error {
	return s.db.Close()
}
