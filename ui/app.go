// Package ui is the terminal front-end: menus, the lesson player, practice
// and settings screens around a virtual keyboard
package ui

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pianoterm/audio"
	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/core"
	"github.com/lixenwraith/pianoterm/lesson"
	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/router"
	"github.com/lixenwraith/pianoterm/schedule"
	"github.com/lixenwraith/pianoterm/settings"
)

// Audio is the playback surface the UI reads, satisfied by audio.AudioService
type Audio interface {
	Disabled() bool
	CompatibilityMessage() (string, bool)
	Config() *audio.Config
}

// Deps wires the UI to the rest of the application
type Deps struct {
	Audio    Audio
	Router   *router.Router
	Settings *settings.SettingsService
	Catalog  *lesson.Catalog

	// Apply pushes a changed setting into the audio stack
	Apply func(name string, s *settings.Settings) error
}

type view int

const (
	viewHome view = iota
	viewLessons
	viewPlayer
	viewPracticeMenu
	viewPractice
	viewSettings
)

// feedback is a timed key highlight after a played note
type feedback struct {
	correct bool
	until   time.Time
}

// App is the UI state machine, driven by tcell events and frame ticks
type App struct {
	screen        tcell.Screen
	width, height int
	deps          Deps
	ctx           context.Context
	now           func() time.Time

	view  view
	theme theme
	hold  holdTracker
	kb    keyboard

	banner      string
	status      string
	statusUntil time.Time

	menuIdx    int
	lessonIdx  int
	modeIdx    int
	settingIdx int

	current  *lesson.Lesson
	demo     *schedule.Playback
	feedback map[note.Note]feedback

	practice *lesson.Practice
	session  *settings.Session

	// Refreshed on screen changes, not per frame
	records  map[string]map[string]settings.LessonProgress
	stats    settings.Stats
	sessions []settings.Session

	// Router listeners may run on the MIDI goroutine
	playedMu sync.Mutex
	played   []note.Note

	quit bool
}

// NewApp binds the UI to an initialised screen
func NewApp(screen tcell.Screen, deps Deps) *App {
	a := &App{
		screen:   screen,
		deps:     deps,
		ctx:      context.Background(),
		now:      time.Now,
		hold:     newHoldTracker(),
		feedback: make(map[note.Note]feedback),
	}
	a.applyTheme()
	a.width, a.height = screen.Size()
	a.layout()

	deps.Router.OnNotePlayed(func(n note.Note, _ router.Source) {
		a.playedMu.Lock()
		a.played = append(a.played, n)
		a.playedMu.Unlock()
	})

	if err := deps.Settings.Progress().Init(a.ctx, deps.Catalog.Refs()); err != nil {
		log.Printf("[ui] progress init: %v", err)
	}
	a.refreshProgress()
	return a
}

func (a *App) settingsValues() *settings.Settings {
	return a.deps.Settings.Settings()
}

func (a *App) applyTheme() {
	if a.settingsValues().DarkTheme {
		a.theme = darkTheme()
	} else {
		a.theme = lightTheme()
	}
	a.screen.SetStyle(a.theme.base)
}

// layout places the keyboard at the bottom centre
func (a *App) layout() {
	kb := newKeyboard(0, 0)
	x := max((a.width-kb.width())/2, 0)
	y := max(a.height-constant.KeyboardHeight-2, 0)
	a.kb = newKeyboard(x, y)
}

// Run is the main loop: events from a polling goroutine, redraw on each tick
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	core.RegisterTerminal(a.screen)
	defer core.RegisterTerminal(nil)

	ticker := time.NewTicker(constant.FrameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, constant.EventQueueSize)
	core.Go(func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	})

	for {
		select {
		case <-ctx.Done():
			a.shutdown()
			return nil
		case ev, ok := <-events:
			if !ok || !a.HandleEvent(ev) {
				a.shutdown()
				return nil
			}
		case <-ticker.C:
			a.Tick()
			a.Draw()
		}
	}
}

func (a *App) shutdown() {
	a.finishPractice()
	a.deps.Router.StopAll()
}

// Tick releases keys whose hold window lapsed and drains note notifications
func (a *App) Tick() {
	now := a.now()
	for _, k := range a.hold.expired(now) {
		a.deps.Router.KeyUp(k)
	}
	a.drainPlayed()

	for n, fb := range a.feedback {
		if now.After(fb.until) {
			delete(a.feedback, n)
		}
	}
	if a.status != "" && now.After(a.statusUntil) {
		a.status = ""
	}
	if a.banner == "" {
		if msg, ok := a.deps.Audio.CompatibilityMessage(); ok {
			a.banner = msg
		}
	}
	if a.demo != nil {
		select {
		case <-a.demo.Done():
			a.demo = nil
		default:
		}
	}
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusUntil = a.now().Add(constant.StatusDuration)
}

// HandleEvent processes one event and returns false when the app should exit
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyCtrlQ {
			return false
		}
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		a.width, a.height = a.screen.Size()
		a.layout()
		a.screen.Sync()
	}
	a.drainPlayed()
	return !a.quit
}

func (a *App) pianoActive() bool {
	return a.view == viewPlayer || a.view == viewPractice
}

func (a *App) handleKey(ev *tcell.EventKey) {
	if a.banner != "" && ev.Key() == tcell.KeyEscape {
		a.banner = ""
		return
	}
	if a.pianoActive() && ev.Key() == tcell.KeyRune {
		a.pressKey(ev.Rune())
		return
	}

	switch a.view {
	case viewHome:
		a.homeKey(ev)
	case viewLessons:
		a.lessonsKey(ev)
	case viewPlayer:
		a.playerKey(ev)
	case viewPracticeMenu:
		a.practiceMenuKey(ev)
	case viewPractice:
		a.practiceKey(ev)
	case viewSettings:
		a.settingsKey(ev)
	}
}

// pressKey routes a key press or repeat to the router
func (a *App) pressKey(r rune) {
	if _, ok := a.deps.Router.Layout().Lookup(r); !ok {
		return
	}
	if a.hold.press(r, a.now()) {
		a.deps.Router.KeyDown(r)
	}
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	if !a.pianoActive() {
		return
	}
	x, y := ev.Position()
	n, onKey := a.kb.keyAt(x, y)

	switch {
	case ev.Buttons()&tcell.Button1 != 0:
		if !onKey {
			a.deps.Router.PointerLeave()
			return
		}
		a.deps.Router.PointerDown(n)
	default:
		a.deps.Router.PointerUp()
	}
}

// drainPlayed applies queued note notifications to the active screen
func (a *App) drainPlayed() {
	a.playedMu.Lock()
	played := a.played
	a.played = nil
	a.playedMu.Unlock()

	for _, n := range played {
		a.onNotePlayed(n)
	}
}

func (a *App) onNotePlayed(n note.Note) {
	until := a.now().Add(constant.FeedbackHighlightDur)
	switch a.view {
	case viewPlayer:
		if a.current == nil {
			return
		}
		correct := a.current.Check(n)
		a.feedback[n] = feedback{correct: correct, until: until}
		if correct {
			if err := a.deps.Settings.Progress().AddScore(a.ctx, a.current.Ref(), 1); err != nil {
				log.Printf("[ui] score: %v", err)
			}
		}
	case viewPractice:
		if a.practice == nil {
			return
		}
		res := a.practice.Play(n)
		a.feedback[n] = feedback{correct: res.Correct, until: until}
		if res.Round {
			a.setStatus("Round complete!")
		}
	}
}

func (a *App) goHome() {
	a.deps.Router.StopAll()
	a.hold.reset()
	a.view = viewHome
}
