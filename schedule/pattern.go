package schedule

import (
	"time"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/note"
)

// Beat returns the slot length for tempo in BPM, 120 when tempo is not positive
func Beat(tempo float64) time.Duration {
	if tempo <= 0 {
		tempo = constant.DemoTempo
	}
	return time.Duration(float64(time.Minute) / tempo)
}

// gated returns the release offset for a note held for fraction of d
func gated(d time.Duration, fraction float64) time.Duration {
	return time.Duration(float64(d) * fraction)
}

// step is one monophonic note with its start and release offsets
type step struct {
	note note.Note
	on   time.Duration
	off  time.Duration
}

// monophonic builds a timeline that stops everything before each step,
// applies o for its whole span and lifts it on the final note-off
func monophonic(p Player, steps []step, o Override, length time.Duration) *Timeline {
	tl := NewTimeline()
	if len(steps) == 0 {
		return tl
	}

	var id OverrideID
	tl.At(0, func(time.Duration) { id = p.PushOverride(o) })

	last := 0
	for i, s := range steps {
		if s.off >= steps[last].off {
			last = i
		}
	}

	for i, s := range steps {
		tl.At(s.on, p.StopAllAt)
		tl.At(s.on, func(at time.Duration) { p.NoteOnAt(s.note, at) })
		if i == last {
			tl.At(s.off, func(at time.Duration) {
				p.NoteOffAt(s.note, at)
				p.PopOverride(id)
			})
		} else {
			tl.At(s.off, func(at time.Duration) { p.NoteOffAt(s.note, at) })
		}
	}
	return tl.Extend(length)
}

// Sequence plays notes one per slot under o, releasing each at 80% of its slot
func Sequence(p Player, notes []note.Note, slot time.Duration, o Override) *Timeline {
	steps := make([]step, len(notes))
	gate := gated(slot, constant.SequenceGateRatio)
	for i, n := range notes {
		on := time.Duration(i) * slot
		steps[i] = step{note: n, on: on, off: on + gate}
	}
	return monophonic(p, steps, o, time.Duration(len(notes))*slot)
}

// Chord starts all notes together and releases them after d
func Chord(p Player, notes []note.Note, d time.Duration) *Timeline {
	tl := NewTimeline()
	for _, n := range notes {
		tl.At(0, func(at time.Duration) { p.NoteOnAt(n, at) })
	}
	for _, n := range notes {
		tl.At(d, func(at time.Duration) { p.NoteOffAt(n, at) })
	}
	return tl.Extend(d)
}

// Chords plays a chord every spacing, each held for length, stopping
// whatever still sounds before each chord starts
func Chords(p Player, chords [][]note.Note, spacing, length time.Duration) *Timeline {
	tl := NewTimeline()
	if len(chords) == 0 {
		return tl
	}
	for i, chord := range chords {
		start := time.Duration(i) * spacing
		tl.At(start, p.StopAllAt)
		tl.Merge(Chord(p, chord, length), start)
	}
	return tl.Extend(time.Duration(len(chords)) * spacing)
}

// Dotted alternates long and short notes on a 0.5s grid.
// Nominal length is 0.75s per note.
func Dotted(p Player, notes []note.Note) *Timeline {
	steps := make([]step, len(notes))
	for i, n := range notes {
		length := constant.DottedLong
		if i%2 == 1 {
			length = constant.DottedShort
		}
		on := time.Duration(i) * constant.DottedSlot
		steps[i] = step{note: n, on: on, off: on + gated(gated(time.Second, length), constant.SequenceGateRatio)}
	}
	nominal := gated(time.Second, float64(len(notes))*0.75)
	return monophonic(p, steps, Override{Monophonic: true}, nominal)
}

// Triplets places three notes in each 0.5s group.
// Nominal length is 0.5s per note.
func Triplets(p Player, notes []note.Note) *Timeline {
	third := constant.TripletGroup / 3
	gate := gated(third, constant.SequenceGateRatio)

	steps := make([]step, len(notes))
	for i, n := range notes {
		on := time.Duration(i/3)*constant.TripletGroup + time.Duration(i%3)*third
		steps[i] = step{note: n, on: on, off: on + gate}
	}
	return monophonic(p, steps, Override{Monophonic: true}, time.Duration(len(notes))*constant.TripletGroup)
}

// Syncopated plays on a 0.3s grid with off-beats pushed late.
// Nominal length is 0.6s per note.
func Syncopated(p Player, notes []note.Note) *Timeline {
	steps := make([]step, len(notes))
	for i, n := range notes {
		on := time.Duration(i) * constant.SyncopationGrid
		if i%2 == 1 {
			on += constant.SyncopationDelay
		}
		steps[i] = step{note: n, on: on, off: on + constant.SyncopationNote}
	}
	return monophonic(p, steps, Override{Monophonic: true}, time.Duration(len(notes))*2*constant.SyncopationGrid)
}
