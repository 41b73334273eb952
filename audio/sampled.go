package audio

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/core"
	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/schedule"
)

// SampledEngine plays pitch-shifted recordings from a Library.
// Operations issued while the library loads are queued and replayed in
// order once loading completes.
type SampledEngine struct {
	*engineCore

	library *Library
	gain    float64

	loadMu   sync.Mutex
	loaded   bool
	loadedCh chan struct{}
	pending  []func()
}

// NewSampledEngine creates a sampled engine attached to g. Call Load or
// MarkLoaded before it produces sound.
func NewSampledEngine(g *Graph, s *schedule.Scheduler, p *Policy, cfg *Config, lib *Library) *SampledEngine {
	e := &SampledEngine{
		library:  lib,
		gain:     constant.SampledGain,
		loadedCh: make(chan struct{}),
	}
	e.engineCore = &engineCore{
		kind:            KindSampled,
		self:            e,
		graph:           g,
		sched:           s,
		sequenceRelease: cfg.SequenceRelease,
		bank:            newVoiceBank(g, p, cfg.SampledRelease, cfg.QuickRelease, e.newVoice),
	}
	g.attach(e.bank)
	return e
}

// Library returns the sample store
func (e *SampledEngine) Library() *Library { return e.library }

// Load decodes the library in the background; queued operations replay when done
func (e *SampledEngine) Load(ctx context.Context, dir string, notes []note.Note) {
	core.Go(func() {
		if err := e.library.Load(ctx, dir, notes); err != nil {
			log.Printf("[audio] sample load interrupted: %v", err)
		}
		e.MarkLoaded()
	})
}

// MarkLoaded ends the loading phase and replays queued operations
func (e *SampledEngine) MarkLoaded() {
	for {
		e.loadMu.Lock()
		if e.loaded {
			e.loadMu.Unlock()
			return
		}
		if len(e.pending) == 0 {
			e.loaded = true
			close(e.loadedCh)
			e.loadMu.Unlock()
			return
		}
		ops := e.pending
		e.pending = nil
		e.loadMu.Unlock()

		// Ops arriving during replay keep queueing behind these
		for _, op := range ops {
			op()
		}
	}
}

// Loaded reports whether loading has finished
func (e *SampledEngine) Loaded() bool {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	return e.loaded
}

// WaitLoaded blocks until loading finishes or ctx ends
func (e *SampledEngine) WaitLoaded(ctx context.Context) error {
	select {
	case <-e.loadedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue stores op when still loading and reports whether it did
func (e *SampledEngine) enqueue(op func()) bool {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	if e.loaded {
		return false
	}
	e.pending = append(e.pending, op)
	return true
}

func (e *SampledEngine) newVoice(n note.Note, start int64) (voice, error) {
	if _, ok := note.Frequency(n); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNote, n)
	}

	var (
		buf       *frameBuffer
		semitones int
	)
	if src, ok := e.library.FindClosestSample(n); ok {
		buf, _ = e.library.get(src)
		semitones, _ = note.Distance(src, n)
	} else {
		log.Printf("[audio] no sample near %s, synthesizing", n)
		buf, _ = e.library.fallback(n)
	}
	if buf == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNote, n)
	}

	return newSampleVoice(e.library.pitched(buf, semitones), e.gain, start), nil
}

func (e *SampledEngine) PlayNote(n note.Note) error {
	if e.enqueue(func() { e.engineCore.NoteOnAt(n, e.graph.Now()) }) {
		return nil
	}
	return e.engineCore.PlayNote(n)
}

func (e *SampledEngine) StopNote(n note.Note) {
	if e.enqueue(func() { e.engineCore.StopNote(n) }) {
		return
	}
	e.engineCore.StopNote(n)
}

func (e *SampledEngine) StopAllNotes() {
	if e.enqueue(e.engineCore.StopAllNotes) {
		return
	}
	e.engineCore.StopAllNotes()
}

func (e *SampledEngine) QuickReleaseAll() {
	if e.enqueue(e.engineCore.QuickReleaseAll) {
		return
	}
	e.engineCore.QuickReleaseAll()
}

func (e *SampledEngine) NoteOnAt(n note.Note, at time.Duration) {
	if e.enqueue(func() { e.engineCore.NoteOnAt(n, at) }) {
		return
	}
	e.engineCore.NoteOnAt(n, at)
}

func (e *SampledEngine) NoteOffAt(n note.Note, at time.Duration) {
	if e.enqueue(func() { e.engineCore.NoteOffAt(n, at) }) {
		return
	}
	e.engineCore.NoteOffAt(n, at)
}

func (e *SampledEngine) StopAllAt(at time.Duration) {
	if e.enqueue(func() { e.engineCore.StopAllAt(at) }) {
		return
	}
	e.engineCore.StopAllAt(at)
}

// PushOverride reserves the id up front so a queued push and its pop still pair
func (e *SampledEngine) PushOverride(o schedule.Override) schedule.OverrideID {
	id := nextOverrideID()
	if !e.enqueue(func() { e.bank.pushOverride(id, o) }) {
		e.bank.pushOverride(id, o)
	}
	return id
}

func (e *SampledEngine) PopOverride(id schedule.OverrideID) {
	if e.enqueue(func() { e.bank.popOverride(id) }) {
		return
	}
	e.bank.popOverride(id)
}
