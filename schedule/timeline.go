package schedule

import (
	"sort"
	"time"

	"github.com/lixenwraith/pianoterm/note"
)

// Override temporarily changes engine overlap behaviour while a timeline plays
type Override struct {
	Monophonic bool
	Release    time.Duration // zero keeps the configured release
}

// OverrideID identifies one pushed override so overlapping timelines lift only their own
type OverrideID uint64

// Player is the engine surface timelines drive.
// at is the absolute audio clock time the event was scheduled for.
type Player interface {
	NoteOnAt(n note.Note, at time.Duration)
	NoteOffAt(n note.Note, at time.Duration)
	StopAllAt(at time.Duration)
	PushOverride(o Override) OverrideID
	PopOverride(id OverrideID)
}

// Action runs at its scheduled audio time
type Action func(at time.Duration)

// Event is one timeline entry
type Event struct {
	Offset time.Duration
	Action Action
}

// Timeline is an ordered set of (offset, action) pairs relative to its start.
// Events sharing an offset fire in the order they were added.
type Timeline struct {
	events []Event
	length time.Duration
}

// NewTimeline creates an empty timeline
func NewTimeline() *Timeline {
	return &Timeline{}
}

// At appends an action at offset
func (t *Timeline) At(offset time.Duration, a Action) *Timeline {
	if offset < 0 {
		offset = 0
	}
	t.events = append(t.events, Event{Offset: offset, Action: a})
	return t
}

// Extend makes the timeline last at least d
func (t *Timeline) Extend(d time.Duration) *Timeline {
	if d > t.length {
		t.length = d
	}
	return t
}

// Len is the number of events
func (t *Timeline) Len() int {
	return len(t.events)
}

// Duration is the nominal length: the explicit length or the last offset, whichever is later
func (t *Timeline) Duration() time.Duration {
	d := t.length
	for _, e := range t.events {
		if e.Offset > d {
			d = e.Offset
		}
	}
	return d
}

// Events returns entries sorted by offset, stable for equal offsets
func (t *Timeline) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// Merge copies other into t shifted by offset and extends t to cover it
func (t *Timeline) Merge(other *Timeline, offset time.Duration) *Timeline {
	for _, e := range other.events {
		t.events = append(t.events, Event{Offset: e.Offset + offset, Action: e.Action})
	}
	return t.Extend(offset + other.Duration())
}

// Chain joins parts back to back with pause between consecutive parts.
// Nil or empty parts are skipped.
func Chain(pause time.Duration, parts ...*Timeline) *Timeline {
	out := NewTimeline()
	var cursor time.Duration
	first := true
	for _, p := range parts {
		if p == nil || p.Len() == 0 {
			continue
		}
		if !first {
			cursor += pause
		}
		out.Merge(p, cursor)
		cursor += p.Duration()
		first = false
	}
	return out
}
