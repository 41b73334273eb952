package settings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
)

// Setting names, stored under settings:<name>
const (
	KeyVolume            = "volume"
	KeyPianoSoundType    = "pianoSoundType"
	KeySoundQuality      = "soundQuality"
	KeyOscillatorType    = "oscillatorType"
	KeyMonophonicMode    = "monophonicMode"
	KeyNoteCutoff        = "noteCutoff"
	KeyDarkTheme         = "darkTheme"
	KeyLanguage          = "language"
	KeyShowNoteNames     = "showNoteNames"
	KeyShowFingerNumbers = "showFingerNumbers"
	KeyKeyboardLayout    = "keyboardLayout"
)

// ErrUnknownSetting is returned for names outside the setting list
var ErrUnknownSetting = errors.New("unknown setting")

// ErrInvalidValue is returned when a value does not parse for its setting
var ErrInvalidValue = errors.New("invalid setting value")

// Settings are the user preferences applied on startup
type Settings struct {
	Volume            float64 // 0.0-1.0
	PianoSoundType    string  // synthesized, sampled
	SoundQuality      string  // basic, high
	OscillatorType    string  // sine, square, sawtooth, triangle
	MonophonicMode    bool
	NoteCutoff        bool
	DarkTheme         bool
	Language          string
	ShowNoteNames     bool
	ShowFingerNumbers bool
	KeyboardLayout    string
}

// Defaults returns the stock preferences
func Defaults() *Settings {
	return &Settings{
		Volume:            0.7,
		PianoSoundType:    "synthesized",
		SoundQuality:      "high",
		OscillatorType:    "triangle",
		MonophonicMode:    false,
		NoteCutoff:        true,
		DarkTheme:         true,
		Language:          "en",
		ShowNoteNames:     true,
		ShowFingerNumbers: true,
		KeyboardLayout:    "lower-rows",
	}
}

// field binds a setting name to its string codec on Settings
type field struct {
	get func(s *Settings) string
	set func(s *Settings, v string) error
}

func boolField(p func(s *Settings) *bool) field {
	return field{
		get: func(s *Settings) string { return strconv.FormatBool(*p(s)) },
		set: func(s *Settings, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*p(s) = b
			return nil
		},
	}
}

func enumField(p func(s *Settings) *string, allowed ...string) field {
	return field{
		get: func(s *Settings) string { return *p(s) },
		set: func(s *Settings, v string) error {
			if len(allowed) > 0 {
				ok := false
				for _, a := range allowed {
					ok = ok || a == v
				}
				if !ok {
					return fmt.Errorf("expected one of %v", allowed)
				}
			}
			*p(s) = v
			return nil
		},
	}
}

var fields = map[string]field{
	KeyVolume: {
		get: func(s *Settings) string { return strconv.FormatFloat(s.Volume, 'f', -1, 64) },
		set: func(s *Settings, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			if f < 0 || f > 1 {
				return fmt.Errorf("volume %v out of range 0..1", f)
			}
			s.Volume = f
			return nil
		},
	},
	KeyPianoSoundType:    enumField(func(s *Settings) *string { return &s.PianoSoundType }, "synthesized", "sampled"),
	KeySoundQuality:      enumField(func(s *Settings) *string { return &s.SoundQuality }, "basic", "high"),
	KeyOscillatorType:    enumField(func(s *Settings) *string { return &s.OscillatorType }, "sine", "square", "sawtooth", "triangle"),
	KeyMonophonicMode:    boolField(func(s *Settings) *bool { return &s.MonophonicMode }),
	KeyNoteCutoff:        boolField(func(s *Settings) *bool { return &s.NoteCutoff }),
	KeyDarkTheme:         boolField(func(s *Settings) *bool { return &s.DarkTheme }),
	KeyLanguage:          enumField(func(s *Settings) *string { return &s.Language }),
	KeyShowNoteNames:     boolField(func(s *Settings) *bool { return &s.ShowNoteNames }),
	KeyShowFingerNumbers: boolField(func(s *Settings) *bool { return &s.ShowFingerNumbers }),
	KeyKeyboardLayout:    enumField(func(s *Settings) *string { return &s.KeyboardLayout }, "lower-rows", "home-row"),
}

// Names lists every setting name in sorted order
func Names() []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Value formats a setting as stored
func (s *Settings) Value(name string) (string, error) {
	f, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	return f.get(s), nil
}

// SetValue parses v into the named setting
func (s *Settings) SetValue(name, v string) error {
	f, ok := fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	if err := f.set(s, v); err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, name, v, err)
	}
	return nil
}

// Load reads stored settings over the defaults. Unparseable stored values
// are logged and skipped so one bad key does not lose the rest.
func Load(ctx context.Context, store Store) (*Settings, error) {
	s := Defaults()
	for e, err := range store.List(ctx, nsSettings) {
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		name := e.Key[len(nsSettings)+len(Separator):]
		if _, ok := fields[name]; !ok {
			continue
		}
		if err := s.SetValue(name, string(e.Value)); err != nil {
			log.Printf("[settings] keeping default: %v", err)
		}
	}
	return s, nil
}

// Save writes every setting
func (s *Settings) Save(ctx context.Context, store Store) error {
	for name, f := range fields {
		if err := store.Set(ctx, Key(nsSettings, name), []byte(f.get(s))); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
	}
	return nil
}

// Put validates and persists one setting
func (s *Settings) Put(ctx context.Context, store Store, name, v string) error {
	if err := s.SetValue(name, v); err != nil {
		return err
	}
	return store.Set(ctx, Key(nsSettings, name), []byte(fields[name].get(s)))
}

// ResetAll clears settings, progress and practice history
func ResetAll(ctx context.Context, store Store) error {
	for _, ns := range []string{nsSettings, nsProgress, nsSession} {
		if err := deletePrefix(ctx, store, ns); err != nil {
			return err
		}
	}
	return nil
}
