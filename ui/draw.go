package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/lesson"
	"github.com/lixenwraith/pianoterm/note"
)

const (
	contentX = 2
	contentY = 3
)

// Draw renders the current view and flushes the screen
func (a *App) Draw() {
	a.screen.Clear()
	th := a.theme

	drawText(a.screen, contentX, 0, th.title, "pianoterm")
	if a.banner != "" {
		a.fillRow(1, th.banner)
		drawText(a.screen, contentX, 1, th.banner, a.clip(a.banner+"  (Esc to dismiss)", contentX))
	}

	switch a.view {
	case viewHome:
		a.drawHome()
	case viewLessons:
		a.drawLessons()
	case viewPlayer:
		a.drawPlayer()
	case viewPracticeMenu:
		a.drawPracticeMenu()
	case viewPractice:
		a.drawPractice()
	case viewSettings:
		a.drawSettings()
	}

	if a.pianoActive() {
		a.drawKeyboard()
	}
	if a.status != "" {
		drawText(a.screen, contentX, a.height-1, th.title, a.clip(a.status, contentX))
	}
	a.screen.Show()
}

func (a *App) fillRow(y int, style tcell.Style) {
	for x := 0; x < a.width; x++ {
		a.screen.SetContent(x, y, ' ', nil, style)
	}
}

// clip truncates str to the screen width from column x
func (a *App) clip(str string, x int) string {
	limit := a.width - x
	if limit <= 0 {
		return ""
	}
	r := []rune(str)
	if len(r) > limit {
		return string(r[:limit])
	}
	return str
}

// line draws text on row y when the row is above the keyboard area
func (a *App) line(y int, style tcell.Style, str string) int {
	if y >= a.height-1 || (a.pianoActive() && y >= a.kb.y) {
		return y + 1
	}
	drawText(a.screen, contentX, y, style, a.clip(str, contentX))
	return y + 1
}

func (a *App) menu(y int, items []string, idx int) int {
	for i, item := range items {
		style, mark := a.theme.base, "  "
		if i == idx {
			style, mark = a.theme.selected, "> "
		}
		y = a.line(y, style, mark+item)
	}
	return y
}

func (a *App) drawHome() {
	th := a.theme
	y := a.line(contentY, th.title, "Learn to play piano in your terminal")
	y++
	st := a.stats
	y = a.line(y, th.base, fmt.Sprintf("Completed %d/%d lessons (%d%%)", st.Completed, st.Total, st.Percent))
	if st.Started > 0 {
		y = a.line(y, th.dim, fmt.Sprintf("%d in progress", st.Started))
	}
	if st.Last.ID != "" {
		if l, err := a.deps.Catalog.Find(st.Last.ID); err == nil {
			y = a.line(y, th.dim, "Last played: "+l.Title)
		}
	}
	y++
	y = a.menu(y, homeItems, a.menuIdx)
	y++
	a.line(y, th.dim, "↑/↓ select · Enter open · l/p/s/q shortcuts · Ctrl+Q quit")
}

func (a *App) lessonMark(l *lesson.Lesson) string {
	lp := a.records[l.Level][l.ID]
	switch {
	case lp.Completed:
		return "[x]"
	case lp.Started:
		return "[~]"
	default:
		return "[ ]"
	}
}

func (a *App) drawLessons() {
	th := a.theme
	y := a.line(contentY, th.title, "Lessons")
	y++
	i := 0
	for _, lvl := range a.deps.Catalog.Levels {
		y = a.line(y, th.dim, lvl.Title)
		for _, l := range lvl.Lessons {
			style := th.base
			if i == a.lessonIdx {
				style = th.selected
			}
			y = a.line(y, style, fmt.Sprintf("  %s %s (%d min)", a.lessonMark(l), l.Title, l.Duration))
			i++
		}
	}
	y++
	a.line(y, th.dim, "↑/↓ select · Enter open · Esc back")
}

func (a *App) drawPlayer() {
	th := a.theme
	l := a.current
	if l == nil {
		return
	}
	y := a.line(contentY, th.title, l.Title)
	y = a.line(y, th.dim, fmt.Sprintf("%s · %d min", l.Category, l.Duration))
	y = a.line(y, th.base, l.Description)
	y++
	for _, s := range strings.Split(strings.TrimSpace(l.Instructions), "\n") {
		y = a.line(y, th.base, s)
	}
	y++

	layout := a.deps.Router.Layout()
	var names []string
	for _, n := range l.AllNotes() {
		if k, ok := layout.KeyFor(n); ok {
			names = append(names, fmt.Sprintf("%s(%c)", n, k))
		} else {
			names = append(names, string(n))
		}
	}
	if len(names) > 0 {
		y = a.line(y, th.base, "Notes: "+strings.Join(names, " "))
	}

	demo := "Enter demo"
	if a.demo != nil {
		demo = "Playing demo..."
	}
	a.line(y, th.dim, demo+" · Tab next lesson · Backspace restart · Esc back")
}

func (a *App) drawPracticeMenu() {
	th := a.theme
	y := a.line(contentY, th.title, "Practice")
	y++
	titles := make([]string, len(lesson.Modes))
	for i, m := range lesson.Modes {
		titles[i] = m.Title()
	}
	y = a.menu(y, titles, a.modeIdx)
	y++
	if n := len(a.sessions); n > 0 {
		last := a.sessions[n-1]
		y = a.line(y, th.dim, fmt.Sprintf("%d sessions logged · last: %s, %d/%d correct, %s",
			n, lesson.Mode(last.Mode).Title(), last.Correct, last.Notes, last.Duration().Round(time.Second)))
	}
	a.line(y, th.dim, "↑/↓ select · Enter start · Esc back")
}

func (a *App) drawPractice() {
	th := a.theme
	p := a.practice
	if p == nil {
		return
	}
	y := a.line(contentY, th.title, p.Mode().Title())
	if target := p.Target(); len(target) > 0 {
		label := "Play: "
		if len(target) > 1 {
			label = "Play chord: "
		}
		parts := make([]string, len(target))
		for i, n := range target {
			parts[i] = string(n)
		}
		y = a.line(y, th.base, label+strings.Join(parts, " "))
	} else {
		y = a.line(y, th.base, "Play anything")
	}
	y = a.line(y, th.base, fmt.Sprintf("Notes %d · Correct %d · Accuracy %d%% · Rounds %d",
		p.Notes, p.Correct, p.Accuracy(), p.Rounds))
	y++
	a.line(y, th.dim, "Backspace restart · Esc finish")
}

func (a *App) drawSettings() {
	th := a.theme
	y := a.line(contentY, th.title, "Settings")
	y++
	s := a.settingsValues()
	for i, name := range settingRows {
		v, _ := s.Value(name)
		style := th.base
		if i == a.settingIdx {
			style = th.selected
		}
		y = a.line(y, style, fmt.Sprintf("  %-20s %s", settingLabels[name], v))
	}
	y++
	a.line(y, th.dim, "↑/↓ select · ←/→ change · Ctrl+R reset progress · Esc back")
}

func (a *App) drawKeyboard() {
	th := a.theme
	s := a.settingsValues()

	sounding := make(map[note.Note]bool)
	for _, n := range a.deps.Router.Engine().ActiveNotes() {
		sounding[n] = true
	}
	expected := make(map[note.Note]bool)
	if a.view == viewPractice && a.practice != nil {
		for _, n := range a.practice.Expected() {
			expected[n] = true
		}
	}

	labels := keyLabels{names: s.ShowNoteNames, fingers: s.ShowFingerNumbers, layout: a.deps.Router.Layout()}
	a.kb.draw(a.screen, th, labels, func(k note.Key) tcell.Style {
		if fb, ok := a.feedback[k.Note]; ok {
			if fb.correct {
				return th.correct
			}
			return th.incorrect
		}
		switch {
		case sounding[k.Note]:
			return th.pressed
		case expected[k.Note]:
			return th.expected
		case k.Color == note.Black:
			return th.black
		default:
			return th.white
		}
	})

	if a.kb.y+constant.KeyboardHeight < a.height-1 {
		drawText(a.screen, a.kb.x, a.kb.y+constant.KeyboardHeight, th.dim, a.clip("Click or type to play", a.kb.x))
	}
}
