package note

import "unicode"

// Layout maps physical key characters to notes
type Layout struct {
	Name string
	keys map[rune]Note
}

// LayoutLowerRows covers C4..C6 on the z and q rows, black keys on the row above each
var LayoutLowerRows = newLayout("lower-rows", map[rune]Note{
	'z': "C4", 's': "C#4", 'x': "D4", 'd': "D#4", 'c': "E4", 'v': "F4", 'g': "F#4",
	'b': "G4", 'h': "G#4", 'n': "A4", 'j': "A#4", 'm': "B4",
	'q': "C5", '2': "C#5", 'w': "D5", '3': "D#5", 'e': "E5", 'r': "F5", '5': "F#5",
	't': "G5", '6': "G#5", 'y': "A5", '7': "A#5", 'u': "B5",
	'i': "C6",
})

// LayoutHomeRow puts naturals on the home row and accidentals on the q row, C4..F5
var LayoutHomeRow = newLayout("home-row", map[rune]Note{
	'a': "C4", 'w': "C#4", 's': "D4", 'e': "D#4", 'd': "E4", 'f': "F4", 't': "F#4",
	'g': "G4", 'y': "G#4", 'h': "A4", 'u': "A#4", 'j': "B4",
	'k': "C5", 'o': "C#5", 'l': "D5", 'p': "D#5", ';': "E5", '\'': "F5",
})

func newLayout(name string, keys map[rune]Note) *Layout {
	return &Layout{Name: name, keys: keys}
}

// Layouts lists the available layouts by name
var Layouts = map[string]*Layout{
	LayoutLowerRows.Name: LayoutLowerRows,
	LayoutHomeRow.Name:   LayoutHomeRow,
}

// LayoutByName returns the named layout, falling back to LayoutLowerRows
func LayoutByName(name string) *Layout {
	if l, ok := Layouts[name]; ok {
		return l
	}
	return LayoutLowerRows
}

// Lookup returns the note bound to key, case-insensitive
func (l *Layout) Lookup(key rune) (Note, bool) {
	n, ok := l.keys[unicode.ToLower(key)]
	return n, ok
}

// KeyFor returns the key bound to n
func (l *Layout) KeyFor(n Note) (rune, bool) {
	for k, v := range l.keys {
		if v == n {
			return k, true
		}
	}
	return 0, false
}
