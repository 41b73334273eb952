package settings

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DefaultDataDir is the badger directory under the user config dir
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pianoterm")
}

// SettingsService owns the store and the records built on it
type SettingsService struct {
	store    Store
	settings *Settings
	progress *Progress
	sessions *SessionLog
}

// NewService creates a settings service
func NewService() *SettingsService {
	return &SettingsService{}
}

// Name implements Service
func (s *SettingsService) Name() string {
	return "settings"
}

// Dependencies implements Service
func (s *SettingsService) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: string data directory; empty keeps everything in memory
// args[0] may also be a Store, used as is
func (s *SettingsService) Init(args ...any) error {
	var store Store
	switch v := firstArg(args).(type) {
	case Store:
		store = v
	case string:
		if v == "" {
			store = NewMemoryStore()
			break
		}
		if err := os.MkdirAll(v, 0o755); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
		b, err := NewBadgerStore(BadgerOptions{Dir: v})
		if err != nil {
			return fmt.Errorf("settings: open %s: %w", v, err)
		}
		store = b
	case nil:
		store = NewMemoryStore()
	default:
		return fmt.Errorf("settings: expected data dir or Store, got %T", v)
	}

	loaded, err := Load(context.Background(), store)
	if err != nil {
		store.Close()
		return err
	}

	s.store = store
	s.settings = loaded
	s.progress = NewProgress(store)
	s.sessions = NewSessionLog(store)
	return nil
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

// Start implements Service
func (s *SettingsService) Start() error {
	return nil
}

// Stop implements Service
func (s *SettingsService) Stop() error {
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	if err != nil {
		log.Printf("[settings] close: %v", err)
	}
	return err
}

func (s *SettingsService) Store() Store          { return s.store }
func (s *SettingsService) Settings() *Settings   { return s.settings }
func (s *SettingsService) Progress() *Progress   { return s.progress }
func (s *SettingsService) Sessions() *SessionLog { return s.sessions }
