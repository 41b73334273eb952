package settings

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Session is one practice run
type Session struct {
	ID      string    `msgpack:"id"`
	Mode    string    `msgpack:"mode"`
	Start   time.Time `msgpack:"start"`
	End     time.Time `msgpack:"end"`
	Notes   int       `msgpack:"notes"`
	Correct int       `msgpack:"correct"`
}

// Duration is the session length, zero while running
func (s *Session) Duration() time.Duration {
	if s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// SessionLog stores finished sessions under session:<id>
type SessionLog struct {
	store Store
}

// NewSessionLog wraps store
func NewSessionLog(store Store) *SessionLog {
	return &SessionLog{store: store}
}

// Begin opens a session in memory; nothing is stored until Finish
func (l *SessionLog) Begin(mode string, at time.Time) *Session {
	return &Session{ID: uuid.NewString(), Mode: mode, Start: at}
}

// Finish stamps the end time and stores s
func (l *SessionLog) Finish(ctx context.Context, s *Session, at time.Time) error {
	s.End = at
	data, err := msgpack.Marshal(s)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, Key(nsSession, s.ID), data)
}

// List returns stored sessions, oldest first
func (l *SessionLog) List(ctx context.Context) ([]Session, error) {
	var sessions []Session
	for e, err := range l.store.List(ctx, nsSession) {
		if err != nil {
			return nil, err
		}
		var s Session
		if err := msgpack.Unmarshal(e.Value, &s); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", e.Key, err)
		}
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Start.Before(sessions[j].Start) })
	return sessions, nil
}
