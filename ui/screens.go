package ui

import (
	"log"
	"math"
	"slices"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/lesson"
	"github.com/lixenwraith/pianoterm/schedule"
	"github.com/lixenwraith/pianoterm/settings"
)

var homeItems = []string{"Lessons", "Practice", "Settings", "Quit"}

// moveCursor applies Up/Down to idx within n entries
func moveCursor(ev *tcell.EventKey, idx, n int) int {
	switch ev.Key() {
	case tcell.KeyUp:
		return max(idx-1, 0)
	case tcell.KeyDown:
		return min(idx+1, n-1)
	}
	return idx
}

// --- Home ---

func (a *App) enterHome() {
	a.goHome()
	a.refreshProgress()
}

func (a *App) homeKey(ev *tcell.EventKey) {
	a.menuIdx = moveCursor(ev, a.menuIdx, len(homeItems))

	choice := -1
	switch {
	case ev.Key() == tcell.KeyEnter:
		choice = a.menuIdx
	case ev.Key() == tcell.KeyRune:
		switch ev.Rune() {
		case 'l':
			choice = 0
		case 'p':
			choice = 1
		case 's':
			choice = 2
		case 'q':
			choice = 3
		}
	}

	switch choice {
	case 0:
		a.refreshProgress()
		a.view = viewLessons
	case 1:
		a.refreshSessions()
		a.view = viewPracticeMenu
	case 2:
		a.view = viewSettings
	case 3:
		a.quit = true
	}
}

func (a *App) refreshProgress() {
	p := a.deps.Settings.Progress()
	records, err := p.All(a.ctx)
	if err != nil {
		log.Printf("[ui] progress: %v", err)
		return
	}
	a.records = records
	if a.stats, err = p.Stats(a.ctx); err != nil {
		log.Printf("[ui] stats: %v", err)
	}
}

// --- Lessons ---

func (a *App) lessonsKey(ev *tcell.EventKey) {
	lessons := a.deps.Catalog.Lessons()
	a.lessonIdx = moveCursor(ev, a.lessonIdx, len(lessons))

	switch ev.Key() {
	case tcell.KeyEnter:
		if a.lessonIdx < len(lessons) {
			a.openLesson(lessons[a.lessonIdx])
		}
	case tcell.KeyEscape:
		a.enterHome()
	}
}

func (a *App) openLesson(l *lesson.Lesson) {
	a.deps.Router.StopAll()
	a.hold.reset()
	clear(a.feedback)
	a.current = l
	a.view = viewPlayer
	a.lessonIdx = slices.Index(a.deps.Catalog.Lessons(), l)

	if err := a.deps.Settings.Progress().MarkStarted(a.ctx, l.Ref(), a.now()); err != nil {
		log.Printf("[ui] progress: %v", err)
	}
}

// --- Lesson player ---

func (a *App) playerKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		a.playDemo()
	case tcell.KeyTab:
		a.nextLesson()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.restartLesson()
	case tcell.KeyEscape:
		a.deps.Router.StopAll()
		a.hold.reset()
		a.current = nil
		a.refreshProgress()
		a.view = viewLessons
	}
}

// playDemo schedules the lesson demo on the router so an engine switch
// carries it over; ignored while one is still playing
func (a *App) playDemo() {
	if a.current == nil || a.demo != nil {
		return
	}
	if a.deps.Audio.Disabled() {
		a.setStatus("Audio is unavailable")
		return
	}
	seq := schedule.Override{Monophonic: true, Release: a.deps.Audio.Config().SequenceRelease}
	tl, buffer := a.current.Demo(a.deps.Router, seq)
	if tl.Len() == 0 {
		return
	}
	a.demo = a.deps.Router.Play(tl, buffer)
}

func (a *App) nextLesson() {
	if a.current == nil {
		return
	}
	if err := a.deps.Settings.Progress().MarkCompleted(a.ctx, a.current.Ref()); err != nil {
		log.Printf("[ui] progress: %v", err)
	}
	next, ok := a.deps.Catalog.Next(a.current.ID)
	if !ok {
		a.deps.Router.StopAll()
		a.current = nil
		a.refreshProgress()
		a.view = viewLessons
		a.setStatus("All lessons completed!")
		return
	}
	a.openLesson(next)
}

func (a *App) restartLesson() {
	a.deps.Router.StopAll()
	a.hold.reset()
	clear(a.feedback)
}

// --- Practice ---

func (a *App) refreshSessions() {
	sessions, err := a.deps.Settings.Sessions().List(a.ctx)
	if err != nil {
		log.Printf("[ui] sessions: %v", err)
		return
	}
	a.sessions = sessions
}

func (a *App) practiceMenuKey(ev *tcell.EventKey) {
	a.modeIdx = moveCursor(ev, a.modeIdx, len(lesson.Modes))

	switch ev.Key() {
	case tcell.KeyEnter:
		a.startPractice(lesson.Modes[a.modeIdx])
	case tcell.KeyEscape:
		a.enterHome()
	}
}

func (a *App) startPractice(mode lesson.Mode) {
	p, err := lesson.NewPractice(mode)
	if err != nil {
		a.setStatus(err.Error())
		return
	}
	a.deps.Router.StopAll()
	a.hold.reset()
	clear(a.feedback)
	a.practice = p
	a.session = a.deps.Settings.Sessions().Begin(string(mode), a.now())
	a.view = viewPractice
}

func (a *App) practiceKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.practice.Reset()
		clear(a.feedback)
	case tcell.KeyEscape:
		a.finishPractice()
		a.refreshSessions()
		a.view = viewPracticeMenu
	}
}

// finishPractice stores the running session, if any
func (a *App) finishPractice() {
	if a.session == nil {
		return
	}
	a.session.Notes = a.practice.Notes
	a.session.Correct = a.practice.Correct
	if err := a.deps.Settings.Sessions().Finish(a.ctx, a.session, a.now()); err != nil {
		log.Printf("[ui] session: %v", err)
	}
	a.deps.Router.StopAll()
	a.hold.reset()
	a.session = nil
	a.practice = nil
}

// --- Settings ---

var settingRows = []string{
	settings.KeyVolume,
	settings.KeyPianoSoundType,
	settings.KeySoundQuality,
	settings.KeyOscillatorType,
	settings.KeyMonophonicMode,
	settings.KeyNoteCutoff,
	settings.KeyDarkTheme,
	settings.KeyLanguage,
	settings.KeyShowNoteNames,
	settings.KeyShowFingerNumbers,
	settings.KeyKeyboardLayout,
}

var settingLabels = map[string]string{
	settings.KeyVolume:            "Volume",
	settings.KeyPianoSoundType:    "Piano sound",
	settings.KeySoundQuality:      "Sound quality",
	settings.KeyOscillatorType:    "Oscillator",
	settings.KeyMonophonicMode:    "Monophonic mode",
	settings.KeyNoteCutoff:        "Note cutoff",
	settings.KeyDarkTheme:         "Dark theme",
	settings.KeyLanguage:          "Language",
	settings.KeyShowNoteNames:     "Show note names",
	settings.KeyShowFingerNumbers: "Show finger numbers",
	settings.KeyKeyboardLayout:    "Keyboard layout",
}

var settingOptions = map[string][]string{
	settings.KeyPianoSoundType: {"synthesized", "sampled"},
	settings.KeySoundQuality:   {"basic", "high"},
	settings.KeyOscillatorType: {"sine", "square", "sawtooth", "triangle"},
	settings.KeyLanguage:       {"en", "vi"},
	settings.KeyKeyboardLayout: {"lower-rows", "home-row"},
}

func (a *App) settingsKey(ev *tcell.EventKey) {
	a.settingIdx = moveCursor(ev, a.settingIdx, len(settingRows))

	switch ev.Key() {
	case tcell.KeyRight, tcell.KeyEnter:
		a.changeSetting(settingRows[a.settingIdx], 1)
	case tcell.KeyLeft:
		a.changeSetting(settingRows[a.settingIdx], -1)
	case tcell.KeyCtrlR:
		if err := a.deps.Settings.Progress().Reset(a.ctx); err != nil {
			a.setStatus(err.Error())
			return
		}
		if err := a.deps.Settings.Progress().Init(a.ctx, a.deps.Catalog.Refs()); err != nil {
			log.Printf("[ui] progress init: %v", err)
		}
		a.setStatus("Progress reset")
	case tcell.KeyEscape:
		a.enterHome()
	}
}

// cycleValue steps a setting value in direction dir
func cycleValue(name, cur string, dir int) string {
	if name == settings.KeyVolume {
		v, _ := strconv.ParseFloat(cur, 64)
		v = math.Round((v+float64(dir)*constant.VolumeStep)*10) / 10
		return strconv.FormatFloat(min(max(v, 0), 1), 'f', -1, 64)
	}
	if opts, ok := settingOptions[name]; ok {
		i := slices.Index(opts, cur)
		return opts[((i+dir)%len(opts)+len(opts))%len(opts)]
	}
	b, _ := strconv.ParseBool(cur)
	return strconv.FormatBool(!b)
}

func (a *App) changeSetting(name string, dir int) {
	s := a.settingsValues()
	cur, err := s.Value(name)
	if err != nil {
		a.setStatus(err.Error())
		return
	}
	if err := s.Put(a.ctx, a.deps.Settings.Store(), name, cycleValue(name, cur, dir)); err != nil {
		a.setStatus(err.Error())
		return
	}
	if a.deps.Apply != nil {
		if err := a.deps.Apply(name, s); err != nil {
			a.setStatus(err.Error())
		}
	}
	if name == settings.KeyDarkTheme {
		a.applyTheme()
	}
}
