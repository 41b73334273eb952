// Package router turns physical input into note-on and note-off calls
// against the selected engine
package router

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/lixenwraith/pianoterm/audio"
	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/schedule"
)

// Source identifies the input that produced a note
type Source uint8

const (
	SourceKey Source = iota
	SourcePointer
	SourceTouch
	SourceMIDI
	SourceProgram
)

func (s Source) String() string {
	switch s {
	case SourceKey:
		return "key"
	case SourcePointer:
		return "pointer"
	case SourceTouch:
		return "touch"
	case SourceMIDI:
		return "midi"
	default:
		return "program"
	}
}

// Engines resolves an engine kind, satisfied by audio.AudioService
type Engines interface {
	Engine(kind audio.Kind) (audio.Engine, error)
}

// Listener is notified after each accepted note-on
type Listener func(n note.Note, src Source)

// Router owns the held-input bookkeeping and the active engine.
// Safe for concurrent use; listeners run outside the lock.
type Router struct {
	mu       sync.Mutex
	engines  Engines
	policy   *audio.Policy
	kind     audio.Kind
	engine   audio.Engine
	layout   *note.Layout
	disabled func() bool

	keys    map[rune]note.Note
	pointer note.Note
	touches map[int]note.Note

	// Pushed overrides stay with the engine that received them
	overrides map[schedule.OverrideID]audio.Engine

	listeners []Listener
}

// New creates a router playing through the engine for kind
func New(engines Engines, policy *audio.Policy, kind audio.Kind) (*Router, error) {
	e, err := engines.Engine(kind)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		policy = audio.NewPolicy(false, true)
	}
	return &Router{
		engines:   engines,
		policy:    policy,
		kind:      kind,
		engine:    e,
		layout:    note.LayoutLowerRows,
		keys:      make(map[rune]note.Note),
		touches:   make(map[int]note.Note),
		overrides: make(map[schedule.OverrideID]audio.Engine),
	}, nil
}

// SetDisabled installs the playback-disabled check, consulted on every note-on
func (r *Router) SetDisabled(fn func() bool) {
	r.mu.Lock()
	r.disabled = fn
	r.mu.Unlock()
}

// SetLayout switches the key map, releasing held keys first
func (r *Router) SetLayout(l *note.Layout) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseKeysLocked()
	r.layout = l
}

func (r *Router) Layout() *note.Layout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout
}

// OnNotePlayed registers a listener
func (r *Router) OnNotePlayed(fn Listener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Engine returns the active engine
func (r *Router) Engine() audio.Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine
}

func (r *Router) Kind() audio.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kind
}

// SetEngine stops everything on the current engine, then switches
func (r *Router) SetEngine(kind audio.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind == r.kind {
		return nil
	}
	e, err := r.engines.Engine(kind)
	if err != nil {
		return err
	}
	r.engine.StopAllNotes()
	r.forgetHeldLocked()
	r.engine = e
	r.kind = kind
	log.Printf("[router] engine switched to %s", kind)
	return nil
}

// SetMonophonic toggles monophonic mode; enabling it silences everything
func (r *Router) SetMonophonic(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if on && !r.policy.Monophonic() {
		r.engine.StopAllNotes()
		r.forgetHeldLocked()
	}
	r.policy.SetMonophonic(on)
}

func (r *Router) SetNoteCutoff(on bool) {
	r.policy.SetNoteCutoff(on)
}

// NoteOn plays n on the active engine and notifies listeners.
// Unknown notes are logged and dropped.
func (r *Router) NoteOn(n note.Note, src Source) bool {
	r.mu.Lock()
	ok := r.noteOnLocked(n)
	listeners := r.listeners
	r.mu.Unlock()

	if ok {
		for _, fn := range listeners {
			fn(n, src)
		}
	}
	return ok
}

func (r *Router) noteOnLocked(n note.Note) bool {
	if r.disabled != nil && r.disabled() {
		return false
	}
	if err := r.engine.PlayNote(n); err != nil {
		if errors.Is(err, audio.ErrUnknownNote) {
			log.Printf("[router] %v", err)
		} else {
			log.Printf("[router] play %s: %v", n, err)
		}
		return false
	}
	return true
}

// NoteOff releases n; releasing an idle note is a no-op
func (r *Router) NoteOff(n note.Note) {
	r.mu.Lock()
	r.engine.StopNote(n)
	r.mu.Unlock()
}

// StopAll silences every note and forgets held inputs
func (r *Router) StopAll() {
	r.mu.Lock()
	r.engine.StopAllNotes()
	r.forgetHeldLocked()
	r.mu.Unlock()
}

func (r *Router) forgetHeldLocked() {
	clear(r.keys)
	clear(r.touches)
	r.pointer = ""
}

func (r *Router) releaseKeysLocked() {
	for k, n := range r.keys {
		r.engine.StopNote(n)
		delete(r.keys, k)
	}
}

// KeyDown plays the note mapped to key. Repeats of a held key are ignored.
// Returns false for unmapped keys.
func (r *Router) KeyDown(key rune) bool {
	r.mu.Lock()
	n, ok := r.layout.Lookup(key)
	if !ok {
		r.mu.Unlock()
		return false
	}
	if _, held := r.keys[key]; held {
		r.mu.Unlock()
		return true
	}
	r.keys[key] = n
	r.mu.Unlock()

	r.NoteOn(n, SourceKey)
	return true
}

// KeyUp releases the note held by key
func (r *Router) KeyUp(key rune) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, held := r.keys[key]
	if !held {
		return
	}
	delete(r.keys, key)
	r.engine.StopNote(n)
}

// HeldKeys returns the keys currently down
func (r *Router) HeldKeys() []rune {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]rune, 0, len(r.keys))
	for k := range r.keys {
		out = append(out, k)
	}
	return out
}

// PointerDown presses n with the pointer, releasing any note it held.
// Dragging onto another key calls it again with the new note.
func (r *Router) PointerDown(n note.Note) {
	r.mu.Lock()
	prev := r.pointer
	if prev == n {
		r.mu.Unlock()
		return
	}
	if prev != "" {
		r.engine.StopNote(prev)
	}
	r.pointer = n
	r.mu.Unlock()

	r.NoteOn(n, SourcePointer)
}

// PointerUp releases the pointer's note
func (r *Router) PointerUp() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pointer == "" {
		return
	}
	r.engine.StopNote(r.pointer)
	r.pointer = ""
}

// PointerLeave stops all notes when the pointer leaves the keyboard
func (r *Router) PointerLeave() {
	r.StopAll()
}

// TouchStart presses n for touch id
func (r *Router) TouchStart(id int, n note.Note) {
	r.mu.Lock()
	if prev, ok := r.touches[id]; ok {
		r.engine.StopNote(prev)
	}
	r.touches[id] = n
	r.mu.Unlock()

	r.NoteOn(n, SourceTouch)
}

// TouchEnd releases the note under touch id
func (r *Router) TouchEnd(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.touches[id]
	if !ok {
		return
	}
	delete(r.touches, id)
	r.engine.StopNote(n)
}

// TouchCancel is TouchEnd for an interrupted touch
func (r *Router) TouchCancel(id int) {
	r.TouchEnd(id)
}

// Router is also a schedule.Player. Timelines built against it reach
// whichever engine is selected when each event fires, so switching engines
// mid-demo moves the rest of the demo to the new engine.

func (r *Router) NoteOnAt(n note.Note, at time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.NoteOnAt(n, at)
}

func (r *Router) NoteOffAt(n note.Note, at time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.NoteOffAt(n, at)
}

func (r *Router) StopAllAt(at time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.StopAllAt(at)
}

func (r *Router) PushOverride(o schedule.Override) schedule.OverrideID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.engine.PushOverride(o)
	r.overrides[id] = r.engine
	return id
}

// PopOverride lifts id on the engine it was pushed to, even after a switch
func (r *Router) PopOverride(id schedule.OverrideID) {
	r.mu.Lock()
	e, ok := r.overrides[id]
	delete(r.overrides, id)
	r.mu.Unlock()
	if ok {
		e.PopOverride(id)
	}
}

// Play schedules tl against the router
func (r *Router) Play(tl *schedule.Timeline, buffer time.Duration) *schedule.Playback {
	return r.Engine().Play(tl, buffer)
}
