// Package cache implements the cache-aside store that fronts the analytics
// computations. The store is best-effort: backend failures and undecodable
// values surface as misses, and failed writes are logged and ignored.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/logger"
)

// ErrMiss is returned by a Backend when the key is absent or expired
var ErrMiss = errors.New("cache: miss")

// DefaultOpTimeout bounds a single backend call when no timeout is configured
const DefaultOpTimeout = 500 * time.Millisecond

// Backend is the key/value transport behind the store.
// A ttl of zero stores the value without expiry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Store serializes values to JSON and applies per-operation timeouts
type Store struct {
	backend Backend
	timeout time.Duration
	log     logger.Logger
}

// Option configures a Store
type Option func(*Store)

// WithOpTimeout bounds each backend call
func WithOpTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used for degraded operations
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates a store over the given backend
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		timeout: DefaultOpTimeout,
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.String("component", "cache"))
	return s
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// Get returns the cached value for key. The second result is false on a miss,
// a backend failure or a value that cannot be decoded into T.
func Get[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var zero T

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.backend.Get(opCtx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			s.log.WithContext(ctx).Warn("cache get failed, treating as miss",
				logger.String("key", key),
				logger.Err(err),
			)
		}
		return zero, false
	}

	value, err := decode[T](raw)
	if err != nil {
		s.log.WithContext(ctx).Warn("malformed cached value, treating as miss",
			logger.String("key", key),
			logger.Err(err),
		)
		return zero, false
	}

	return value, true
}

var errNotCanonical = errors.New("cached value does not match its type's encoding")

// decode accepts only what Set would have written for T: a single non-null JSON
// value with no unknown fields that re-encodes to the same bytes. Entries from an
// older schema, with fields missing or renamed, fail here and get recomputed.
func decode[T any](raw []byte) (T, error) {
	var value T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return value, errors.New("empty cached value")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&value); err != nil {
		return value, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return value, errors.New("trailing data after cached value")
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, err
	}
	if !bytes.Equal(encoded, raw) {
		return value, errNotCanonical
	}
	return value, nil
}

// Set stores value under key for ttl. Failures are logged and reported as false;
// they never fail the caller.
func Set[T any](ctx context.Context, s *Store, key string, value T, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.WithContext(ctx).Warn("failed to encode cache value",
			logger.String("key", key),
			logger.Err(err),
		)
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Set(opCtx, key, raw, ttl); err != nil {
		s.log.WithContext(ctx).Warn("cache set failed",
			logger.String("key", key),
			logger.Duration("ttl", ttl),
			logger.Err(err),
		)
		return false
	}

	return true
}
