package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/schedule"
)

// voiceFactory creates a voice for n starting at sample start
type voiceFactory func(n note.Note, start int64) (voice, error)

// overrideSeq hands out override ids unique across engines
var overrideSeq atomic.Uint64

func nextOverrideID() schedule.OverrideID {
	return schedule.OverrideID(overrideSeq.Add(1))
}

// pushed is one override held by a playing timeline
type pushed struct {
	id schedule.OverrideID
	o  schedule.Override
}

// retired is a released voice still ramping down
type retired struct {
	note note.Note
	v    voice
}

// voiceBank owns the active note set of one engine.
// Note-on is idempotent per note; monophonic and note-cutoff side effects
// apply to the other sounding notes; released voices are disposed once
// their release ramp has been rendered.
type voiceBank struct {
	mu sync.Mutex

	graph    *Graph
	policy   *Policy
	newVoice voiceFactory

	release time.Duration
	quick   time.Duration

	active    map[note.Note]voice
	order     []note.Note // Activation order
	releasing []retired
	overrides []pushed
}

func newVoiceBank(g *Graph, p *Policy, release, quick time.Duration, f voiceFactory) *voiceBank {
	return &voiceBank{
		graph:    g,
		policy:   p,
		newVoice: f,
		release:  release,
		quick:    quick,
		active:   make(map[note.Note]voice),
	}
}

// startSample converts an audio time to a sample no earlier than the render head
func (b *voiceBank) startSample(at time.Duration) int64 {
	s := b.graph.SampleAt(at)
	if pos := b.graph.Position(); s < pos {
		return pos
	}
	return s
}

func (b *voiceBank) monophonicLocked() bool {
	if b.policy.Monophonic() {
		return true
	}
	for _, p := range b.overrides {
		if p.o.Monophonic {
			return true
		}
	}
	return false
}

func (b *voiceBank) releaseLocked() time.Duration {
	for i := len(b.overrides) - 1; i >= 0; i-- {
		if r := b.overrides[i].o.Release; r > 0 {
			return r
		}
	}
	return b.release
}

func (b *voiceBank) noteOn(n note.Note, at time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.active[n]; ok {
		return nil
	}

	start := b.startSample(at)
	v, err := b.newVoice(n, start)
	if err != nil {
		return err
	}

	if len(b.active) > 0 {
		switch {
		case b.monophonicLocked():
			b.releaseAllLocked(start, b.releaseLocked())
		case b.policy.NoteCutoff():
			b.releaseAllLocked(start, b.quick)
		}
	}

	b.active[n] = v
	b.order = append(b.order, n)
	return nil
}

func (b *voiceBank) noteOff(n note.Note, at time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.active[n]
	if !ok {
		return
	}
	b.retireLocked(n, v, b.startSample(at), b.releaseLocked())
}

func (b *voiceBank) stopAll(at time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseAllLocked(b.startSample(at), b.releaseLocked())
}

func (b *voiceBank) quickReleaseAll(at time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseAllLocked(b.startSample(at), b.quick)
}

func (b *voiceBank) releaseAllLocked(at int64, length time.Duration) {
	for _, n := range append([]note.Note(nil), b.order...) {
		b.retireLocked(n, b.active[n], at, length)
	}
}

func (b *voiceBank) retireLocked(n note.Note, v voice, at int64, length time.Duration) {
	v.release(at, samplesFor(b.graph.SampleRate(), length))
	delete(b.active, n)
	for i, o := range b.order {
		if o == n {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	b.releasing = append(b.releasing, retired{note: n, v: v})
}

func (b *voiceBank) state(n note.Note) NoteState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.active[n]; ok {
		return Sounding
	}
	pos := b.graph.Position()
	for _, r := range b.releasing {
		if r.note == n && r.v.end() > pos {
			return Releasing
		}
	}
	return Idle
}

func (b *voiceBank) activeNotes() []note.Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]note.Note(nil), b.order...)
}

func (b *voiceBank) pushOverride(id schedule.OverrideID, o schedule.Override) {
	b.mu.Lock()
	b.overrides = append(b.overrides, pushed{id: id, o: o})
	b.mu.Unlock()
}

// popOverride removes the override pushed under id; unknown ids are ignored
func (b *voiceBank) popOverride(id schedule.OverrideID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.overrides {
		if p.id == id {
			b.overrides = append(b.overrides[:i], b.overrides[i+1:]...)
			return
		}
	}
}

func (b *voiceBank) overrideCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.overrides)
}

func (b *voiceBank) setRelease(d time.Duration) {
	b.mu.Lock()
	b.release = d
	b.mu.Unlock()
}

// render mixes every voice into out and retires voices whose ramp has finished
func (b *voiceBank) render(out [][2]float64, pos int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, n := range b.order {
		b.active[n].render(out, pos)
	}

	end := pos + int64(len(out))
	kept := b.releasing[:0]
	for _, r := range b.releasing {
		r.v.render(out, pos)
		if r.v.end() <= end {
			r.v.dispose()
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(b.releasing); i++ {
		b.releasing[i] = retired{}
	}
	b.releasing = kept
}
