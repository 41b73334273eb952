package settings

import (
	"context"
	"errors"
	"testing"
)

// openStores returns every Store implementation for shared tests
func openStores(t *testing.T) map[string]Store {
	t.Helper()
	b, err := NewBadgerStore(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadgerStore failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": b,
	}
}

func TestStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "settings:volume"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}

			if err := s.Set(ctx, "settings:volume", []byte("0.5")); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, err := s.Get(ctx, "settings:volume")
			if err != nil || string(got) != "0.5" {
				t.Errorf("Expected 0.5, got %q (%v)", got, err)
			}

			if err := s.Delete(ctx, "settings:volume"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := s.Delete(ctx, "settings:volume"); err != nil {
				t.Errorf("Expected deleting a missing key to succeed, got %v", err)
			}
			if _, err := s.Get(ctx, "settings:volume"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestStoreListPrefix(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"progress:beginner:b2", "progress:beginner:b1", "progressive", "settings:volume"} {
				if err := s.Set(ctx, k, []byte(k)); err != nil {
					t.Fatalf("Set failed: %v", err)
				}
			}

			var keys []string
			for e, err := range s.List(ctx, "progress") {
				if err != nil {
					t.Fatalf("List failed: %v", err)
				}
				if string(e.Value) != e.Key {
					t.Errorf("Expected value %q, got %q", e.Key, e.Value)
				}
				keys = append(keys, e.Key)
			}

			expected := []string{"progress:beginner:b1", "progress:beginner:b2"}
			if len(keys) != len(expected) {
				t.Fatalf("Expected %v, got %v", expected, keys)
			}
			for i := range expected {
				if keys[i] != expected[i] {
					t.Errorf("Expected %v, got %v", expected, keys)
					break
				}
			}

			// Early break stops iteration
			n := 0
			for range s.List(ctx, "") {
				n++
				break
			}
			if n != 1 {
				t.Errorf("Expected one entry before break, got %d", n)
			}
		})
	}
}

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := NewBadgerStore(BadgerOptions{}); err == nil {
		t.Error("Expected error without a directory")
	}
}

func TestBadgerPersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := NewBadgerStore(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewBadgerStore failed: %v", err)
	}
	if err := b.Set(ctx, "settings:language", []byte("de")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	b.Close()

	b, err = NewBadgerStore(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer b.Close()

	got, err := b.Get(ctx, "settings:language")
	if err != nil || string(got) != "de" {
		t.Errorf("Expected persisted value de, got %q (%v)", got, err)
	}
}
