package lesson

import (
	"slices"
	"time"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/schedule"
)

// Shape is how a lesson's content is laid out, which decides its demo
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapeSequence
	ShapeHands
	ShapeChords
	ShapeRhythm
	ShapeImprovisation
	ShapeNamed
)

func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeHands:
		return "hands"
	case ShapeChords:
		return "chords"
	case ShapeRhythm:
		return "rhythm"
	case ShapeImprovisation:
		return "improvisation"
	case ShapeNamed:
		return "named"
	default:
		return "empty"
	}
}

// Shape classifies the lesson content
func (l *Lesson) Shape() Shape {
	switch {
	case len(l.Notes) > 0:
		return ShapeSequence
	case l.Part("right") != nil:
		return ShapeHands
	case l.Part("chords") != nil:
		return ShapeChords
	case l.Part("dotted") != nil || l.Part("triplets") != nil || l.Part("syncopation") != nil:
		return ShapeRhythm
	case l.Part("scale") != nil && (l.Part("chordProgression") != nil || l.Part("melody") != nil):
		return ShapeImprovisation
	case l.firstSequence() != nil:
		return ShapeNamed
	default:
		return ShapeEmpty
	}
}

func (l *Lesson) firstSequence() []note.Note {
	for _, p := range l.Parts {
		if len(p.Notes) > 0 {
			return p.Notes
		}
	}
	return nil
}

func partNotes(p *Part) []note.Note {
	if p == nil {
		return nil
	}
	return p.Notes
}

// Demo builds the demonstration timeline for l and the settle time to hold
// after it ends. seq is applied to melodic sequences.
func (l *Lesson) Demo(p schedule.Player, seq schedule.Override) (*schedule.Timeline, time.Duration) {
	sequence := func(notes []note.Note, tempo float64) *schedule.Timeline {
		if len(notes) == 0 {
			return schedule.NewTimeline()
		}
		return schedule.Sequence(p, notes, schedule.Beat(tempo), seq)
	}

	switch l.Shape() {
	case ShapeSequence:
		return sequence(l.Notes, constant.DemoTempo), constant.DemoEndBuffer

	case ShapeHands:
		return sequence(partNotes(l.Part("right")), constant.DemoTempo), constant.DemoEndBuffer

	case ShapeChords:
		tl := schedule.Chords(p, l.Part("chords").Chords, constant.ChordSpacing, constant.LessonChordLength)
		return tl, constant.DemoEndBuffer

	case ShapeRhythm:
		var parts []*schedule.Timeline
		if n := partNotes(l.Part("dotted")); len(n) > 0 {
			parts = append(parts, schedule.Dotted(p, n))
		}
		if n := partNotes(l.Part("triplets")); len(n) > 0 {
			parts = append(parts, schedule.Triplets(p, n))
		}
		if n := partNotes(l.Part("syncopation")); len(n) > 0 {
			parts = append(parts, schedule.Syncopated(p, n))
		}
		return schedule.Chain(constant.DemoPartPause, parts...), constant.MultiPartDemoBuffer

	case ShapeImprovisation:
		var parts []*schedule.Timeline
		if scale := partNotes(l.Part("scale")); len(scale) > 0 {
			down := slices.Clone(scale[:len(scale)-1])
			slices.Reverse(down)
			parts = append(parts, sequence(append(slices.Clone(scale), down...), constant.DemoTempo))
		}
		if cp := l.Part("chordProgression"); cp != nil && len(cp.Chords) > 0 {
			parts = append(parts, schedule.Chords(p, cp.Chords, constant.ChordSpacing, constant.ImprovChordLength))
		}
		parts = append(parts, sequence(partNotes(l.Part("melody")), constant.ImprovisationTempo))
		return schedule.Chain(constant.DemoPartPause, parts...), constant.MultiPartDemoBuffer

	case ShapeNamed:
		return sequence(l.firstSequence(), constant.DemoTempo), constant.DemoEndBuffer
	}
	return schedule.NewTimeline(), 0
}
