package audio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lixenwraith/pianoterm/service"
	"github.com/lixenwraith/pianoterm/settings"
)

func TestServiceNullWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	s := NewService()
	if err := s.Init(cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	if s.BackendName() != "null" {
		t.Errorf("Expected null backend, got %q", s.BackendName())
	}
	if s.Disabled() {
		t.Error("Expected playback available on the null backend")
	}
	if _, ok := s.CompatibilityMessage(); ok {
		t.Error("Expected no compatibility message")
	}

	// Clock runs and the sampled engine finishes loading stand-ins
	if !waitFor(t, 5*time.Second, s.Sampled().Loaded) {
		t.Fatal("Expected sampled engine loaded")
	}
	if !waitFor(t, 2*time.Second, func() bool { return s.Graph().Now() > 0 }) {
		t.Error("Expected audio clock running")
	}
	if len(s.Sampled().Library().Notes()) != len(DefaultSampleNotes()) {
		t.Errorf("Expected full stand-in library, got %v", s.Sampled().Library().Notes())
	}
}

func TestServiceUnknownBackendDisables(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "bogus"

	s := NewService()
	if err := s.Init(cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Expected graceful degradation, got %v", err)
	}
	defer s.Stop()

	if !s.Disabled() {
		t.Fatal("Expected disabled service")
	}
	if s.BackendName() != "" {
		t.Errorf("Expected no backend, got %q", s.BackendName())
	}

	msg, ok := s.CompatibilityMessage()
	if !ok || msg == "" {
		t.Error("Expected compatibility message on first ask")
	}
	if _, ok := s.CompatibilityMessage(); ok {
		t.Error("Expected compatibility message only once")
	}

	// Stops issued on the sampled engine do not pile up behind a load that never runs
	if !s.Sampled().Loaded() {
		t.Fatal("Expected sampled engine marked loaded when disabled")
	}
	s.Sampled().StopNote("C4")
	s.Sampled().StopAllNotes()
	if n := len(s.Sampled().pending); n != 0 {
		t.Errorf("Expected no queued operations, got %d", n)
	}
}

func TestServiceEngines(t *testing.T) {
	s := NewService()
	if err := s.Start(); err == nil {
		t.Error("Expected error starting before Init")
	}
	if err := s.Init("not a config"); err == nil {
		t.Error("Expected error for wrong Init argument")
	}
	if err := s.Init(DefaultConfig()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	testCases := []struct {
		kind Kind
		ok   bool
	}{
		{KindSynthesized, true},
		{KindSampled, true},
		{Kind("organ"), false},
	}
	for _, tc := range testCases {
		e, err := s.Engine(tc.kind)
		if tc.ok {
			if err != nil || e.Kind() != tc.kind {
				t.Errorf("Engine(%s): expected engine, got %v", tc.kind, err)
			}
			continue
		}
		if !errors.Is(err, ErrUnknownKind) {
			t.Errorf("Engine(%s): expected ErrUnknownKind, got %v", tc.kind, err)
		}
	}

	if s.Name() != "audio" || len(s.Dependencies()) != 1 || s.Dependencies()[0] != "settings" {
		t.Error("Unexpected service identity")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestServiceAppliesBoundSettings(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	stored := map[string]string{
		settings.KeyVolume:         "0.4",
		settings.KeyPianoSoundType: "sampled",
		settings.KeySoundQuality:   "basic",
		settings.KeyOscillatorType: "sawtooth",
		settings.KeyMonophonicMode: "true",
		settings.KeyNoteCutoff:     "false",
	}
	for name, v := range stored {
		store.Set(ctx, settings.Key("settings", name), []byte(v))
	}

	ss := settings.NewService()
	s := NewService()
	h := service.NewHub()
	if err := h.Register(s, ss); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := h.InitAll(map[string][]any{"settings": {store}, "audio": {DefaultConfig()}}); err != nil {
		t.Fatalf("InitAll failed: %v", err)
	}
	defer ss.Stop()

	if v := s.Graph().Volume(); v != 0.4 {
		t.Errorf("Expected volume 0.4, got %v", v)
	}
	if s.Kind() != KindSampled {
		t.Errorf("Expected sampled kind, got %s", s.Kind())
	}
	if s.Synth().Quality() != QualityBasic || s.Synth().Wave() != WaveSaw {
		t.Errorf("Expected basic sawtooth, got %s %s", s.Synth().Quality(), s.Synth().Wave())
	}
	if !s.Policy().Monophonic() || s.Policy().NoteCutoff() {
		t.Error("Expected stored policy applied")
	}

	if err := s.Bind(map[string]service.Service{"settings": nil}); err == nil {
		t.Error("Expected error binding without settings")
	}
}
