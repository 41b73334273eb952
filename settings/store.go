// Package settings persists user preferences, lesson progress and practice
// history in a key-value store.
//
// Keys are flat strings joined by ':' (settings:volume, progress:beginner:b1,
// session:<uuid>). The badger store is used on disk; the memory store backs
// tests and --data-dir "" runs.
package settings

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store
var ErrNotFound = errors.New("settings: not found")

// Key namespaces
const (
	nsSettings = "settings"
	nsProgress = "progress"
	nsSession  = "session"
)

// Separator joins key segments
const Separator = ":"

// Key joins segments into a store key
func Key(segments ...string) string {
	return strings.Join(segments, Separator)
}

// Entry is one key-value pair yielded by List
type Entry struct {
	Key   string
	Value []byte
}

// Store is a flat key-value store
type Store interface {
	// Get returns ErrNotFound for a missing key
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for a missing key
	Delete(ctx context.Context, key string) error
	// List yields entries under prefix in lexicographic key order.
	// A prefix "a" matches "a:b" but not "ab".
	List(ctx context.Context, prefix string) iter.Seq2[Entry, error]
	Close() error
}

// listPrefix returns the byte prefix that scopes a List call
func listPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + Separator
}

// deletePrefix removes every key under prefix
func deletePrefix(ctx context.Context, s Store, prefix string) error {
	var keys []string
	for e, err := range s.List(ctx, prefix) {
		if err != nil {
			return err
		}
		keys = append(keys, e.Key)
	}
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
