package main

import (
	"fmt"

	"github.com/lixenwraith/pianoterm/audio"
	"github.com/lixenwraith/pianoterm/lesson"
	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/router"
	"github.com/lixenwraith/pianoterm/service"
	"github.com/lixenwraith/pianoterm/settings"
)

// runtime is the started service graph shared by the subcommands
type runtime struct {
	hub      *service.Hub
	audio    *audio.AudioService
	settings *settings.SettingsService
	router   *router.Router
	catalog  *lesson.Catalog
}

func dataDir(o options) string {
	if o.dataDir != "" {
		return o.dataDir
	}
	return settings.DefaultDataDir()
}

func audioConfig(o options) (*audio.Config, error) {
	cfg, err := audio.LoadConfigFile(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if o.mute {
		cfg.Enabled = false
	}
	return cfg, nil
}

// newRuntime initialises settings, then audio, which applies the stored
// preferences it owns; the router takes the rest before output starts
func newRuntime(o options) (*runtime, error) {
	cfg, err := audioConfig(o)
	if err != nil {
		return nil, err
	}
	catalog, err := lesson.Builtin()
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		hub:      service.NewHub(),
		audio:    audio.NewService(),
		settings: settings.NewService(),
		catalog:  catalog,
	}
	if err := rt.hub.Register(rt.audio, rt.settings); err != nil {
		return nil, err
	}
	if err := rt.hub.InitAll(map[string][]any{
		rt.settings.Name(): {dataDir(o)},
		rt.audio.Name():    {cfg},
	}); err != nil {
		return nil, err
	}

	if rt.router, err = router.New(rt.audio, rt.audio.Policy(), rt.audio.Kind()); err != nil {
		rt.stopInitialised()
		return nil, err
	}
	rt.router.SetDisabled(rt.audio.Disabled)
	rt.router.SetLayout(note.LayoutByName(rt.settings.Settings().KeyboardLayout))

	if err := rt.hub.StartAll(); err != nil {
		rt.stopInitialised()
		return nil, err
	}
	return rt, nil
}

// stopInitialised releases services that were initialised but never started
func (rt *runtime) stopInitialised() {
	rt.audio.Stop()
	rt.settings.Stop()
}

func (rt *runtime) close() {
	rt.router.StopAll()
	rt.hub.StopAll()
}

// apply pushes one changed setting into the router or the audio stack
func (rt *runtime) apply(name string, s *settings.Settings) error {
	switch name {
	case settings.KeyPianoSoundType:
		if err := rt.audio.ApplySetting(name, s); err != nil {
			return err
		}
		return rt.router.SetEngine(rt.audio.Kind())
	case settings.KeyMonophonicMode:
		rt.router.SetMonophonic(s.MonophonicMode)
	case settings.KeyKeyboardLayout:
		rt.router.SetLayout(note.LayoutByName(s.KeyboardLayout))
	case settings.KeyVolume, settings.KeySoundQuality, settings.KeyOscillatorType, settings.KeyNoteCutoff:
		return rt.audio.ApplySetting(name, s)
	case settings.KeyDarkTheme, settings.KeyLanguage, settings.KeyShowNoteNames, settings.KeyShowFingerNumbers:
		// Read by the UI on draw
	default:
		return fmt.Errorf("%w: %q", settings.ErrUnknownSetting, name)
	}
	return nil
}

// openSettings opens only the settings store, for commands without audio
func openSettings(o options) (*settings.SettingsService, error) {
	ss := settings.NewService()
	if err := ss.Init(dataDir(o)); err != nil {
		return nil, err
	}
	return ss, nil
}
