package ui

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pianoterm/audio"
	"github.com/lixenwraith/pianoterm/lesson"
	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/router"
	"github.com/lixenwraith/pianoterm/settings"
)

// testAudio lets tests force the disabled state
type testAudio struct {
	*audio.AudioService
	disabled bool
	shown    bool
}

func (a *testAudio) Disabled() bool { return a.disabled }

func (a *testAudio) CompatibilityMessage() (string, bool) {
	if !a.disabled || a.shown {
		return "", false
	}
	a.shown = true
	return "Audio playback is not available", true
}

type testEnv struct {
	app     *App
	screen  tcell.SimulationScreen
	audio   *testAudio
	store   settings.Store
	now     time.Time
	applied []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(100, 30)
	t.Cleanup(screen.Fini)

	cfg := audio.DefaultConfig()
	cfg.Enabled = false
	as := audio.NewService()
	if err := as.Init(cfg); err != nil {
		t.Fatalf("audio init: %v", err)
	}

	store := settings.NewMemoryStore()
	ss := settings.NewService()
	if err := ss.Init(store); err != nil {
		t.Fatalf("settings init: %v", err)
	}

	catalog, err := lesson.Builtin()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	r, err := router.New(as, as.Policy(), audio.KindSynthesized)
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	env := &testEnv{
		screen: screen,
		audio:  &testAudio{AudioService: as},
		store:  store,
		now:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	env.app = NewApp(screen, Deps{
		Audio:    env.audio,
		Router:   r,
		Settings: ss,
		Catalog:  catalog,
		Apply: func(name string, _ *settings.Settings) error {
			env.applied = append(env.applied, name)
			return nil
		},
	})
	env.app.now = func() time.Time { return env.now }
	return env
}

func (e *testEnv) key(k tcell.Key) {
	e.app.HandleEvent(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func (e *testEnv) press(r rune) {
	e.app.HandleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
	e.app.Tick()
}

func (e *testEnv) active() []note.Note {
	return e.app.deps.Router.Engine().ActiveNotes()
}

// screenText returns every row of the simulation screen joined by newlines
func (e *testEnv) screenText() string {
	w, h := e.screen.Size()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := e.screen.GetContent(x, y)
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (e *testEnv) openFirstLesson(t *testing.T) {
	t.Helper()
	e.press('l')
	e.key(tcell.KeyEnter)
	if e.app.view != viewPlayer || e.app.current == nil || e.app.current.ID != "b1" {
		t.Fatalf("Expected lesson b1 open, got view %d", e.app.view)
	}
}

func TestHomeNavigation(t *testing.T) {
	env := newTestEnv(t)
	app := env.app

	env.key(tcell.KeyDown)
	env.key(tcell.KeyEnter)
	if app.view != viewPracticeMenu {
		t.Fatalf("Expected practice menu, got %d", app.view)
	}
	env.key(tcell.KeyEscape)
	if app.view != viewHome {
		t.Fatalf("Expected home, got %d", app.view)
	}

	env.openFirstLesson(t)
	lp, err := app.deps.Settings.Progress().Get(context.Background(), app.current.Ref())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !lp.Started || !lp.LastPlayed.Equal(env.now) {
		t.Errorf("Expected lesson started at %v, got %+v", env.now, lp)
	}

	env.key(tcell.KeyEscape)
	if app.view != viewLessons {
		t.Errorf("Expected lesson list, got %d", app.view)
	}

	if app.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl)) {
		t.Error("Expected Ctrl+Q to quit")
	}
}

func TestQuitFromMenu(t *testing.T) {
	env := newTestEnv(t)
	if !env.app.HandleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)) {
		t.Fatal("Expected app to keep running")
	}
	if env.app.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("Expected q to quit from home")
	}
}

func TestLessonKeyFeedback(t *testing.T) {
	env := newTestEnv(t)
	app := env.app
	env.openFirstLesson(t)

	env.press('z')
	if fb, ok := app.feedback["C4"]; !ok || !fb.correct {
		t.Fatalf("Expected correct feedback on C4, got %+v", app.feedback)
	}
	if !slices.Equal(env.active(), []note.Note{"C4"}) {
		t.Errorf("Expected C4 sounding, got %v", env.active())
	}

	// Auto-repeat keeps the key held
	env.advance(300 * time.Millisecond)
	env.press('z')
	env.advance(100 * time.Millisecond)
	if !slices.Contains(env.active(), "C4") {
		t.Error("Expected C4 still held during repeats")
	}

	// No repeat within the window releases it
	env.advance(200 * time.Millisecond)
	if len(env.active()) != 0 {
		t.Errorf("Expected key released, got %v", env.active())
	}
	if len(app.deps.Router.HeldKeys()) != 0 {
		t.Errorf("Expected no held keys, got %v", app.deps.Router.HeldKeys())
	}
	if len(app.feedback) != 0 {
		t.Errorf("Expected feedback expired, got %v", app.feedback)
	}

	env.press('x')
	if fb, ok := app.feedback["D4"]; !ok || fb.correct {
		t.Errorf("Expected incorrect feedback on D4, got %+v", app.feedback)
	}

	lp, _ := app.deps.Settings.Progress().Get(context.Background(), app.current.Ref())
	if lp.Score != 1 {
		t.Errorf("Expected score 1, got %d", lp.Score)
	}
}

func TestLessonRestart(t *testing.T) {
	env := newTestEnv(t)
	env.openFirstLesson(t)

	env.press('z')
	env.key(tcell.KeyBackspace2)
	if len(env.active()) != 0 || len(env.app.feedback) != 0 {
		t.Errorf("Expected silence and no feedback, got %v %v", env.active(), env.app.feedback)
	}
}

func TestNextLesson(t *testing.T) {
	env := newTestEnv(t)
	app := env.app
	env.openFirstLesson(t)
	first := app.current

	env.key(tcell.KeyTab)
	if app.current == nil || app.current.ID != "b2" {
		t.Fatalf("Expected b2, got %v", app.current)
	}
	if app.lessonIdx != 1 {
		t.Errorf("Expected cursor on b2, got %d", app.lessonIdx)
	}
	lp, _ := app.deps.Settings.Progress().Get(context.Background(), first.Ref())
	if !lp.Completed {
		t.Error("Expected b1 completed")
	}

	lessons := app.deps.Catalog.Lessons()
	app.openLesson(lessons[len(lessons)-1])
	env.key(tcell.KeyTab)
	if app.view != viewLessons {
		t.Errorf("Expected lesson list after the last lesson, got %d", app.view)
	}
	if app.status != "All lessons completed!" {
		t.Errorf("Expected completion status, got %q", app.status)
	}
	if app.stats.Completed != 2 {
		t.Errorf("Expected 2 completed, got %d", app.stats.Completed)
	}
}

func TestDemoPlayback(t *testing.T) {
	env := newTestEnv(t)
	app := env.app
	env.openFirstLesson(t)

	env.key(tcell.KeyEnter)
	if app.demo == nil {
		t.Fatal("Expected demo scheduled")
	}
	pb := app.demo
	env.key(tcell.KeyEnter)
	if app.demo != pb {
		t.Error("Expected second request ignored while playing")
	}

	env.advance(0)
	if app.demo != pb {
		t.Error("Expected demo still running before the clock advances")
	}
}

func TestDisabledAudio(t *testing.T) {
	env := newTestEnv(t)
	app := env.app
	env.audio.disabled = true

	env.advance(0)
	if app.banner == "" {
		t.Fatal("Expected compatibility banner")
	}
	env.key(tcell.KeyEscape)
	if app.banner != "" {
		t.Error("Expected Esc to dismiss the banner")
	}
	if app.view != viewHome {
		t.Errorf("Expected dismissal to keep the view, got %d", app.view)
	}

	env.advance(0)
	if app.banner != "" {
		t.Error("Expected banner shown once")
	}

	env.openFirstLesson(t)
	env.key(tcell.KeyEnter)
	if app.demo != nil {
		t.Error("Expected no demo while audio is disabled")
	}
	if app.status != "Audio is unavailable" {
		t.Errorf("Expected unavailable status, got %q", app.status)
	}
}

func TestSettingsChange(t *testing.T) {
	env := newTestEnv(t)
	app := env.app
	ctx := context.Background()

	env.press('s')
	if app.view != viewSettings {
		t.Fatalf("Expected settings, got %d", app.view)
	}

	env.key(tcell.KeyLeft)
	loaded, err := settings.Load(ctx, env.store)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Volume != 0.6 {
		t.Errorf("Expected stored volume 0.6, got %v", loaded.Volume)
	}

	for app.settingIdx < slices.Index(settingRows, settings.KeyDarkTheme) {
		env.key(tcell.KeyDown)
	}
	env.key(tcell.KeyEnter)
	if app.settingsValues().DarkTheme {
		t.Error("Expected dark theme off")
	}
	if app.theme != lightTheme() {
		t.Error("Expected light theme applied")
	}

	want := []string{settings.KeyVolume, settings.KeyDarkTheme}
	if !slices.Equal(env.applied, want) {
		t.Errorf("Expected applied %v, got %v", want, env.applied)
	}
}

func TestCycleValue(t *testing.T) {
	tests := []struct {
		name string
		cur  string
		dir  int
		want string
	}{
		{settings.KeyVolume, "0.7", 1, "0.8"},
		{settings.KeyVolume, "1", 1, "1"},
		{settings.KeyVolume, "0.1", -1, "0"},
		{settings.KeyVolume, "0", -1, "0"},
		{settings.KeyOscillatorType, "triangle", 1, "sine"},
		{settings.KeyOscillatorType, "sine", -1, "triangle"},
		{settings.KeyKeyboardLayout, "lower-rows", 1, "home-row"},
		{settings.KeyMonophonicMode, "false", 1, "true"},
		{settings.KeyNoteCutoff, "true", -1, "false"},
	}
	for _, tt := range tests {
		if got := cycleValue(tt.name, tt.cur, tt.dir); got != tt.want {
			t.Errorf("cycleValue(%s, %s, %d): Expected %s, got %s", tt.name, tt.cur, tt.dir, tt.want, got)
		}
	}
}

func TestResetProgress(t *testing.T) {
	env := newTestEnv(t)
	app := env.app
	env.openFirstLesson(t)
	env.key(tcell.KeyTab)

	env.key(tcell.KeyEscape)
	env.key(tcell.KeyEscape)
	env.press('s')
	env.app.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl))
	if app.status != "Progress reset" {
		t.Errorf("Expected reset status, got %q", app.status)
	}
	env.key(tcell.KeyEscape)
	if app.stats.Completed != 0 || app.stats.Total != 9 {
		t.Errorf("Expected 0/9 after reset, got %+v", app.stats)
	}
}

func TestPracticeSession(t *testing.T) {
	env := newTestEnv(t)
	app := env.app

	env.press('p')
	env.key(tcell.KeyDown)
	env.key(tcell.KeyEnter)
	if app.view != viewPractice || app.practice.Mode() != lesson.ModeScales {
		t.Fatalf("Expected scales practice, got view %d", app.view)
	}

	env.press('z')
	if !slices.Equal(app.practice.Expected(), []note.Note{"D4"}) {
		t.Errorf("Expected D4 next, got %v", app.practice.Expected())
	}
	env.press('c')
	if fb := app.feedback["E4"]; fb.correct {
		t.Error("Expected E4 marked incorrect")
	}

	env.now = env.now.Add(2 * time.Minute)
	env.key(tcell.KeyEscape)
	if app.view != viewPracticeMenu || app.session != nil {
		t.Fatalf("Expected session finished, got view %d", app.view)
	}

	sessions, err := app.deps.Settings.Sessions().List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	s := sessions[0]
	if s.Mode != "scales" || s.Notes != 2 || s.Correct != 1 || s.Duration() != 2*time.Minute {
		t.Errorf("Unexpected session %+v", s)
	}
	if len(app.sessions) != 1 {
		t.Errorf("Expected menu refreshed, got %d sessions", len(app.sessions))
	}
}

func TestMousePlaysKeys(t *testing.T) {
	env := newTestEnv(t)
	app := env.app
	env.openFirstLesson(t)

	c4 := app.kb.whites[0]
	y := app.kb.y + 5
	app.HandleEvent(tcell.NewEventMouse(c4.x+1, y, tcell.Button1, tcell.ModNone))
	if !slices.Equal(env.active(), []note.Note{"C4"}) {
		t.Fatalf("Expected C4 from click, got %v", env.active())
	}
	if fb, ok := app.feedback["C4"]; !ok || !fb.correct {
		t.Error("Expected correct feedback from click")
	}

	d4 := app.kb.whites[1]
	app.HandleEvent(tcell.NewEventMouse(d4.x+1, y, tcell.Button1, tcell.ModNone))
	if !slices.Equal(env.active(), []note.Note{"D4"}) {
		t.Errorf("Expected drag to D4, got %v", env.active())
	}

	app.HandleEvent(tcell.NewEventMouse(d4.x+1, y, tcell.ButtonNone, tcell.ModNone))
	if len(env.active()) != 0 {
		t.Errorf("Expected release, got %v", env.active())
	}

	app.HandleEvent(tcell.NewEventMouse(c4.x+1, y, tcell.Button1, tcell.ModNone))
	app.HandleEvent(tcell.NewEventMouse(0, 0, tcell.Button1, tcell.ModNone))
	if len(env.active()) != 0 {
		t.Errorf("Expected leaving the keyboard to stop all, got %v", env.active())
	}
}

func TestDraw(t *testing.T) {
	env := newTestEnv(t)
	app := env.app

	app.Draw()
	text := env.screenText()
	for _, want := range []string{"pianoterm", "Completed 0/9 lessons (0%)", "> Lessons"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected home to show %q", want)
		}
	}

	env.openFirstLesson(t)
	app.Draw()
	text = env.screenText()
	for _, want := range []string{"Introduction to the Piano", "Notes: C4(z)", "Enter demo"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected player to show %q", want)
		}
	}

	env.press('z')
	app.Draw()
	c4 := app.kb.whites[0]
	_, _, style, _ := env.screen.GetContent(c4.x, app.kb.y+1)
	if style != app.theme.correct {
		t.Error("Expected C4 drawn with correct style")
	}
}
