package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/note"
)

// keyRect is the screen area of one piano key
type keyRect struct {
	key  note.Key
	x, w int
}

// keyboard lays out note.PianoKeys from an origin
type keyboard struct {
	x, y   int
	whites []keyRect
	blacks []keyRect
}

func newKeyboard(x, y int) keyboard {
	kb := keyboard{x: x, y: y}
	col := x
	for _, k := range note.PianoKeys {
		if k.Color == note.White {
			kb.whites = append(kb.whites, keyRect{key: k, x: col, w: constant.WhiteKeyWidth})
			col += constant.WhiteKeyWidth
			continue
		}
		// Centred on the boundary with the previous white key
		bx := col - (constant.BlackKeyWidth+1)/2
		kb.blacks = append(kb.blacks, keyRect{key: k, x: bx, w: constant.BlackKeyWidth})
	}
	return kb
}

// width is the total keyboard width in cells
func (kb keyboard) width() int {
	return len(kb.whites) * constant.WhiteKeyWidth
}

// keyAt returns the key under a screen cell; black keys win on the upper rows
func (kb keyboard) keyAt(x, y int) (note.Note, bool) {
	row := y - kb.y
	if row < 0 || row >= constant.KeyboardHeight {
		return "", false
	}
	if row < constant.BlackKeyRows {
		for _, r := range kb.blacks {
			if x >= r.x && x < r.x+r.w {
				return r.key.Note, true
			}
		}
	}
	for _, r := range kb.whites {
		if x >= r.x && x < r.x+r.w {
			return r.key.Note, true
		}
	}
	return "", false
}

// keyLabels controls the text drawn on keys
type keyLabels struct {
	names   bool
	fingers bool
	layout  *note.Layout
}

// keyStyler picks the style for a key from its state
type keyStyler func(k note.Key) tcell.Style

func (kb keyboard) draw(s tcell.Screen, th theme, labels keyLabels, style keyStyler) {
	for _, r := range kb.whites {
		st := style(r.key)
		for row := 0; row < constant.KeyboardHeight; row++ {
			for dx := 0; dx < r.w-1; dx++ {
				s.SetContent(r.x+dx, kb.y+row, ' ', nil, st)
			}
			s.SetContent(r.x+r.w-1, kb.y+row, '│', nil, th.border)
		}
		bottom := kb.y + constant.KeyboardHeight - 1
		if labels.names {
			drawText(s, r.x+1, bottom-2, st, string(r.key.Note))
		}
		if labels.fingers {
			drawText(s, r.x+1, bottom-1, st, note.FingerNumber(r.key.Note))
		}
		if k, ok := labels.layout.KeyFor(r.key.Note); ok {
			drawText(s, r.x+1, bottom, st, string(k))
		}
	}

	for _, r := range kb.blacks {
		st := style(r.key)
		for row := 0; row < constant.BlackKeyRows; row++ {
			for dx := 0; dx < r.w; dx++ {
				s.SetContent(r.x+dx, kb.y+row, ' ', nil, st)
			}
		}
		if labels.names {
			drawText(s, r.x, kb.y, st, string(r.key.Note))
		}
		if k, ok := labels.layout.KeyFor(r.key.Note); ok {
			drawText(s, r.x+1, kb.y+constant.BlackKeyRows-1, st, string(k))
		}
	}
}

// drawText writes str from (x, y) and returns the column after it
func drawText(s tcell.Screen, x, y int, style tcell.Style, str string) int {
	for _, r := range str {
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
