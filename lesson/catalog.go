// Package lesson holds the lesson catalog, demo playback and note checking
package lesson

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/settings"
)

//go:embed lessons.yaml
var builtin []byte

// ErrUnknownLesson is returned by Find for ids outside the catalog
var ErrUnknownLesson = errors.New("unknown lesson")

// Part is a named note list or chord list within a lesson
type Part struct {
	Name   string        `yaml:"name"`
	Notes  []note.Note   `yaml:"notes"`
	Chords [][]note.Note `yaml:"chords"`
}

// Lesson is one catalog entry.
// Simple lessons carry Notes; multi-part lessons carry Parts.
type Lesson struct {
	ID           string      `yaml:"id"`
	Title        string      `yaml:"title"`
	Description  string      `yaml:"description"`
	Category     string      `yaml:"category"`
	Duration     int         `yaml:"duration"` // Minutes
	Instructions string      `yaml:"instructions"`
	Notes        []note.Note `yaml:"notes"`
	Keys         []string    `yaml:"keys"`
	Parts        []Part      `yaml:"parts"`

	Level string `yaml:"-"`
}

// Level groups lessons by difficulty
type Level struct {
	Name    string    `yaml:"name"`
	Title   string    `yaml:"title"`
	Lessons []*Lesson `yaml:"lessons"`
}

// Catalog is the ordered set of levels
type Catalog struct {
	Levels []*Level `yaml:"levels"`

	byID map[string]*Lesson
	flat []*Lesson
}

// Builtin parses the embedded catalog
func Builtin() (*Catalog, error) {
	return Parse(builtin)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("lesson catalog: %w", err)
	}

	c.byID = make(map[string]*Lesson)
	for _, lvl := range c.Levels {
		for _, l := range lvl.Lessons {
			if l.ID == "" {
				return nil, fmt.Errorf("lesson catalog: lesson without id in %s", lvl.Name)
			}
			if _, dup := c.byID[l.ID]; dup {
				return nil, fmt.Errorf("lesson catalog: duplicate id %q", l.ID)
			}
			for _, n := range l.AllNotes() {
				if !note.Known(n) {
					return nil, fmt.Errorf("lesson catalog: %s: %w: %q", l.ID, note.ErrInvalidNote, n)
				}
			}
			l.Level = lvl.Name
			c.byID[l.ID] = l
			c.flat = append(c.flat, l)
		}
	}
	return &c, nil
}

// Find returns the lesson with id
func (c *Catalog) Find(id string) (*Lesson, error) {
	l, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLesson, id)
	}
	return l, nil
}

// Level returns the named level or nil
func (c *Catalog) Level(name string) *Level {
	for _, lvl := range c.Levels {
		if lvl.Name == name {
			return lvl
		}
	}
	return nil
}

// Next returns the lesson after id, crossing into the next level.
// ok is false for the last lesson.
func (c *Catalog) Next(id string) (*Lesson, bool) {
	i := slices.IndexFunc(c.flat, func(l *Lesson) bool { return l.ID == id })
	if i < 0 || i+1 >= len(c.flat) {
		return nil, false
	}
	return c.flat[i+1], true
}

// Lessons returns every lesson in catalog order
func (c *Catalog) Lessons() []*Lesson {
	return c.flat
}

// Refs lists every lesson as a progress reference
func (c *Catalog) Refs() []settings.LessonRef {
	refs := make([]settings.LessonRef, len(c.flat))
	for i, l := range c.flat {
		refs[i] = l.Ref()
	}
	return refs
}

// Ref is the progress key for l
func (l *Lesson) Ref() settings.LessonRef {
	return settings.LessonRef{Level: l.Level, ID: l.ID}
}

// Part returns the named part or nil
func (l *Lesson) Part(name string) *Part {
	for i := range l.Parts {
		if l.Parts[i].Name == name {
			return &l.Parts[i]
		}
	}
	return nil
}

// AllNotes flattens the lesson content, chords included, in order
func (l *Lesson) AllNotes() []note.Note {
	out := slices.Clone(l.Notes)
	for _, p := range l.Parts {
		out = append(out, p.Notes...)
		for _, chord := range p.Chords {
			out = append(out, chord...)
		}
	}
	return out
}

// Check reports whether n belongs to the lesson content
func (l *Lesson) Check(n note.Note) bool {
	return slices.Contains(l.AllNotes(), n)
}
