package audio

import (
	"log"
	"time"

	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/schedule"
)

// Engine is the contract shared by the synthesized and sampled voices
type Engine interface {
	schedule.Player

	Kind() Kind

	// PlayNote starts n now; a note already sounding is left alone
	PlayNote(n note.Note) error
	// StopNote releases n; stopping an idle note is a no-op
	StopNote(n note.Note)
	StopAllNotes()
	// QuickReleaseAll fades every sounding note over the quick release time
	QuickReleaseAll()

	// PlayChord starts notes together and stops them after d
	PlayChord(notes []note.Note, d time.Duration) *schedule.Playback
	// PlaySequence plays notes monophonically at tempo BPM
	PlaySequence(notes []note.Note, tempo float64) *schedule.Playback
	// Play runs an arbitrary timeline against this engine
	Play(tl *schedule.Timeline, buffer time.Duration) *schedule.Playback

	State(n note.Note) NoteState
	ActiveNotes() []note.Note
}

// engineCore implements Engine on top of a voice bank.
// self is the outermost engine so timelines route through its overrides.
type engineCore struct {
	kind  Kind
	self  Engine
	bank  *voiceBank
	graph *Graph
	sched *schedule.Scheduler

	sequenceRelease time.Duration
}

func (c *engineCore) Kind() Kind { return c.kind }

func (c *engineCore) NoteOnAt(n note.Note, at time.Duration) {
	if err := c.bank.noteOn(n, at); err != nil {
		log.Printf("[audio] %s: note-on %s: %v", c.kind, n, err)
	}
}

func (c *engineCore) NoteOffAt(n note.Note, at time.Duration) {
	c.bank.noteOff(n, at)
}

func (c *engineCore) StopAllAt(at time.Duration) {
	c.bank.stopAll(at)
}

func (c *engineCore) PushOverride(o schedule.Override) schedule.OverrideID {
	id := nextOverrideID()
	c.bank.pushOverride(id, o)
	return id
}

func (c *engineCore) PopOverride(id schedule.OverrideID) { c.bank.popOverride(id) }

func (c *engineCore) PlayNote(n note.Note) error {
	return c.bank.noteOn(n, c.graph.Now())
}

func (c *engineCore) StopNote(n note.Note) {
	c.bank.noteOff(n, c.graph.Now())
}

func (c *engineCore) StopAllNotes() {
	c.bank.stopAll(c.graph.Now())
}

func (c *engineCore) QuickReleaseAll() {
	c.bank.quickReleaseAll(c.graph.Now())
}

func (c *engineCore) Play(tl *schedule.Timeline, buffer time.Duration) *schedule.Playback {
	return c.sched.Schedule(tl, buffer)
}

func (c *engineCore) PlayChord(notes []note.Note, d time.Duration) *schedule.Playback {
	return c.self.Play(schedule.Chord(c.self, notes, d), 0)
}

func (c *engineCore) PlaySequence(notes []note.Note, tempo float64) *schedule.Playback {
	o := schedule.Override{Monophonic: true, Release: c.sequenceRelease}
	return c.self.Play(schedule.Sequence(c.self, notes, schedule.Beat(tempo), o), 0)
}

func (c *engineCore) State(n note.Note) NoteState {
	return c.bank.state(n)
}

func (c *engineCore) ActiveNotes() []note.Note {
	return c.bank.activeNotes()
}
