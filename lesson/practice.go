package lesson

import (
	"fmt"
	"slices"

	"github.com/lixenwraith/pianoterm/note"
)

// Mode selects a practice exercise
type Mode string

const (
	ModeFreePlay Mode = "free-play"
	ModeScales   Mode = "scales"
	ModeChords   Mode = "chords"
)

// Modes lists practice modes in menu order
var Modes = []Mode{ModeFreePlay, ModeScales, ModeChords}

// Title is the menu label
func (m Mode) Title() string {
	switch m {
	case ModeScales:
		return "Scales Practice"
	case ModeChords:
		return "Chord Practice"
	default:
		return "Free Play"
	}
}

var (
	cMajorScale = []note.Note{"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"}

	// I-IV-V in C
	primaryChords = [][]note.Note{
		{"C4", "E4", "G4"},
		{"F4", "A4", "C5"},
		{"G4", "B4", "D5"},
	}
)

// Result is the verdict for one played note
type Result struct {
	Correct bool
	// Advanced is set when the note completed the current step
	Advanced bool
	// Round is set when the note completed the whole exercise, which restarts
	Round bool
}

// Practice scores notes against an exercise
type Practice struct {
	mode  Mode
	steps [][]note.Note
	pos   int
	hit   map[note.Note]bool

	Notes   int
	Correct int
	Rounds  int
}

// NewPractice starts an exercise
func NewPractice(mode Mode) (*Practice, error) {
	p := &Practice{mode: mode, hit: make(map[note.Note]bool)}
	switch mode {
	case ModeFreePlay:
	case ModeScales:
		for _, n := range cMajorScale {
			p.steps = append(p.steps, []note.Note{n})
		}
	case ModeChords:
		p.steps = primaryChords
	default:
		return nil, fmt.Errorf("unknown practice mode %q", mode)
	}
	return p, nil
}

func (p *Practice) Mode() Mode { return p.mode }

// Expected returns the notes the current step wants, nil in free play
func (p *Practice) Expected() []note.Note {
	if len(p.steps) == 0 {
		return nil
	}
	var want []note.Note
	for _, n := range p.steps[p.pos] {
		if !p.hit[n] {
			want = append(want, n)
		}
	}
	return want
}

// Target returns the whole current step, nil in free play
func (p *Practice) Target() []note.Note {
	if len(p.steps) == 0 {
		return nil
	}
	return p.steps[p.pos]
}

// Play scores n. A chord step completes once each of its notes has been hit.
func (p *Practice) Play(n note.Note) Result {
	p.Notes++
	if len(p.steps) == 0 {
		p.Correct++
		return Result{Correct: true}
	}

	step := p.steps[p.pos]
	if !slices.Contains(step, n) {
		return Result{}
	}
	p.Correct++
	p.hit[n] = true
	for _, want := range step {
		if !p.hit[want] {
			return Result{Correct: true}
		}
	}

	clear(p.hit)
	p.pos++
	res := Result{Correct: true, Advanced: true}
	if p.pos == len(p.steps) {
		p.pos = 0
		p.Rounds++
		res.Round = true
	}
	return res
}

// Accuracy is the correct percentage, 0 before any note
func (p *Practice) Accuracy() int {
	if p.Notes == 0 {
		return 0
	}
	return p.Correct * 100 / p.Notes
}

// Reset restarts the exercise and clears the score
func (p *Practice) Reset() {
	p.pos, p.Notes, p.Correct, p.Rounds = 0, 0, 0, 0
	clear(p.hit)
}
