package note

import (
	"errors"
	"strconv"
)

// Note identifies a pitch as <Letter>[#]<Octave>, e.g. "C4", "F#5"
// Identifiers are case-sensitive and must match the frequency table exactly
type Note string

// ErrInvalidNote is returned by Parse for malformed identifiers
var ErrInvalidNote = errors.New("invalid note identifier")

// Chromatic pitch-class names, C = 0
var chromaticNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// pitchClass maps letter names (sharps and flat aliases) to chromatic index
var pitchClass = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3,
	"E": 4, "F": 5, "F#": 6, "Gb": 6, "G": 7, "G#": 8,
	"Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

// Parse validates s and returns it as a Note
func Parse(s string) (Note, error) {
	if _, _, ok := split(Note(s)); !ok {
		return "", ErrInvalidNote
	}
	return Note(s), nil
}

// split separates pitch-class name and octave
func split(n Note) (string, int, bool) {
	s := string(n)
	if len(s) < 2 {
		return "", 0, false
	}
	i := 1
	if s[1] == '#' || s[1] == 'b' {
		i = 2
	}
	name := s[:i]
	if _, ok := pitchClass[name]; !ok {
		return "", 0, false
	}
	if i >= len(s) {
		return "", 0, false
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil || octave < -1 || octave > 9 {
		return "", 0, false
	}
	return name, octave, true
}

// PitchClass returns the letter name without octave ("C#" for "C#4")
func (n Note) PitchClass() string {
	name, _, _ := split(n)
	return name
}

// Octave returns the octave number, -2 when malformed
func (n Note) Octave() int {
	_, octave, ok := split(n)
	if !ok {
		return -2
	}
	return octave
}

// IsSharp reports whether the note is an accidental (black key)
func (n Note) IsSharp() bool {
	name, _, ok := split(n)
	return ok && len(name) == 2
}

// Valid reports whether n is well-formed
func (n Note) Valid() bool {
	_, _, ok := split(n)
	return ok
}

// Semitone returns the absolute chromatic index octave*12 + pitch class
func Semitone(n Note) (int, bool) {
	name, octave, ok := split(n)
	if !ok {
		return 0, false
	}
	return octave*12 + pitchClass[name], true
}

// Distance returns semitones from `from` up to `to` (negative when descending)
func Distance(from, to Note) (int, bool) {
	a, ok := Semitone(from)
	if !ok {
		return 0, false
	}
	b, ok := Semitone(to)
	if !ok {
		return 0, false
	}
	return b - a, true
}

// With returns the note with the given pitch-class name in octave
func With(name string, octave int) Note {
	return Note(name + strconv.Itoa(octave))
}

// FromMIDI converts a MIDI note number; 60 is C4
func FromMIDI(n uint8) Note {
	octave := int(n)/12 - 1
	return With(chromaticNames[n%12], octave)
}

// ToMIDI converts a note to its MIDI number
func ToMIDI(n Note) (uint8, bool) {
	s, ok := Semitone(n)
	if !ok {
		return 0, false
	}
	m := s + 12
	if m < 0 || m > 127 {
		return 0, false
	}
	return uint8(m), true
}
