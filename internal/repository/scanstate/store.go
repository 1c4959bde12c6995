// Package scanstate persists directory-scan resume cursors so an
// interrupted walk can pick up where it stopped.
package scanstate

import (
	"context"
	"crypto/sha1" //nolint:gosec // key derivation, not a security boundary
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arcdex/arcdex/internal/db"
)

// store is the consumer interface for scan-state persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
}

// State is the resume cursor for one scanned directory tree.
type State struct {
	Dir       string    `json:"dir"`
	LastPath  string    `json:"last_path"`
	FilesSeen int64     `json:"files_seen"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store implements scan-state persistence on top of the KV store.
type Store struct {
	store     store
	keyPrefix string
	ttl       time.Duration
}

// New creates a scan-state store. Cursors expire after ttl so abandoned
// scans do not accumulate (recommended: 7 days).
func New(s store, keyPrefix string, ttl time.Duration) *Store {
	return &Store{store: s, keyPrefix: keyPrefix, ttl: ttl}
}

// Save writes the cursor for the state's directory.
func (s *Store) Save(ctx context.Context, st State) error {
	st.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal scan state: %w", err)
	}
	key := s.key(st.Dir)
	if err := s.store.SetWithTTL(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("scan state SET %s: %w", key, err)
	}
	return nil
}

// Load returns the cursor for a directory. A missing cursor is not an
// error; ok reports whether one was found.
func (s *Store) Load(ctx context.Context, dir string) (State, bool, error) {
	key := s.key(dir)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("scan state GET %s: %w", key, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, false, fmt.Errorf("scan state GET %s parse: %w", key, err)
	}
	return st, true, nil
}

// AddIndexed bumps the running total of records indexed from scans.
func (s *Store) AddIndexed(ctx context.Context, n int64) error {
	key := s.keyPrefix + "scans:indexed_total"
	if err := s.store.IncrBy(ctx, key, n); err != nil {
		return fmt.Errorf("scan state INCRBY %s: %w", key, err)
	}
	return nil
}

// key derives the cursor key from the directory path. Paths are hashed so
// arbitrary filesystem paths stay within the key charset.
func (s *Store) key(dir string) string {
	sum := sha1.Sum([]byte(dir)) //nolint:gosec // see above
	return s.keyPrefix + "scans:cursor:" + hex.EncodeToString(sum[:])
}
