package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies default configuration
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Enabled {
		t.Error("Expected default config to have Enabled=true")
	}
	if cfg.MasterVolume != 0.7 {
		t.Errorf("Expected default master volume 0.7, got %f", cfg.MasterVolume)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("Expected default sample rate 44100, got %d", cfg.SampleRate)
	}
	if cfg.Envelope.Attack != 10*time.Millisecond || cfg.Envelope.Decay != 200*time.Millisecond {
		t.Errorf("Expected 10ms/200ms attack/decay, got %v/%v", cfg.Envelope.Attack, cfg.Envelope.Decay)
	}
	if cfg.Envelope.Sustain != 0.7 || cfg.Envelope.Release != 100*time.Millisecond {
		t.Errorf("Expected sustain 0.7 release 100ms, got %v/%v", cfg.Envelope.Sustain, cfg.Envelope.Release)
	}
	if cfg.QuickRelease != 50*time.Millisecond {
		t.Errorf("Expected quick release 50ms, got %v", cfg.QuickRelease)
	}

	expectedGains := []float64{0.2, 0.1, 0.07, 0.05, 0.02}
	if len(cfg.Harmonics) != len(expectedGains) {
		t.Fatalf("Expected %d harmonics, got %d", len(expectedGains), len(cfg.Harmonics))
	}
	for i, h := range cfg.Harmonics {
		if h.Multiple != float64(i+2) || h.Gain != expectedGains[i] {
			t.Errorf("Harmonic %d: expected %dx gain %v, got %vx gain %v", i, i+2, expectedGains[i], h.Multiple, h.Gain)
		}
	}
}

// TestLoadAudioConfigEnabled verifies loading enabled flag
func TestLoadAudioConfigEnabled(t *testing.T) {
	defer os.Unsetenv("PIANOTERM_AUDIO_ENABLED")

	testCases := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			os.Setenv("PIANOTERM_AUDIO_ENABLED", tc.value)
			cfg := LoadAudioConfig()

			if cfg.Enabled != tc.expected {
				t.Errorf("Expected Enabled=%v for value %s, got %v", tc.expected, tc.value, cfg.Enabled)
			}
		})
	}
}

// TestLoadAudioConfigVolume verifies loading and clamping master volume
func TestLoadAudioConfigVolume(t *testing.T) {
	defer os.Unsetenv("PIANOTERM_VOLUME")

	testCases := []struct {
		value    string
		expected float64
	}{
		{"0", 0.0},
		{"50", 0.5},
		{"100", 1.0},
		{"-50", 0.0},
		{"150", 1.0},
		{"loud", 0.7},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			os.Setenv("PIANOTERM_VOLUME", tc.value)
			cfg := LoadAudioConfig()

			if cfg.MasterVolume != tc.expected {
				t.Errorf("Expected MasterVolume=%f for value %s, got %f", tc.expected, tc.value, cfg.MasterVolume)
			}
		})
	}
}

// TestLoadAudioConfigSampleRateInvalid verifies invalid rates keep the default
func TestLoadAudioConfigSampleRateInvalid(t *testing.T) {
	defer os.Unsetenv("PIANOTERM_SAMPLE_RATE")

	for _, value := range []string{"invalid", "-1000", "0"} {
		t.Run(value, func(t *testing.T) {
			os.Setenv("PIANOTERM_SAMPLE_RATE", value)
			cfg := LoadAudioConfig()
			if cfg.SampleRate != 44100 {
				t.Errorf("Expected default rate for %q, got %d", value, cfg.SampleRate)
			}
		})
	}
}

// TestLoadConfigFile verifies YAML overrides on top of defaults
func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pianoterm.yaml")
	data := []byte(`
sample_dir: /srv/samples
backend: pipe
volume: 0.4
envelope:
  attack: 5ms
  release: 250ms
quick_release: 30ms
harmonics:
  - multiple: 2
    gain: 0.5
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}

	if cfg.SampleDir != "/srv/samples" {
		t.Errorf("Expected sample dir override, got %q", cfg.SampleDir)
	}
	if cfg.Backend != "pipe" {
		t.Errorf("Expected backend pipe, got %q", cfg.Backend)
	}
	if cfg.MasterVolume != 0.4 {
		t.Errorf("Expected volume 0.4, got %v", cfg.MasterVolume)
	}
	if cfg.Envelope.Attack != 5*time.Millisecond || cfg.Envelope.Release != 250*time.Millisecond {
		t.Errorf("Expected 5ms/250ms, got %v/%v", cfg.Envelope.Attack, cfg.Envelope.Release)
	}
	if cfg.Envelope.Decay != 200*time.Millisecond {
		t.Errorf("Expected untouched decay 200ms, got %v", cfg.Envelope.Decay)
	}
	if cfg.QuickRelease != 30*time.Millisecond {
		t.Errorf("Expected quick release 30ms, got %v", cfg.QuickRelease)
	}
	if len(cfg.Harmonics) != 1 || cfg.Harmonics[0].Gain != 0.5 {
		t.Errorf("Expected single harmonic with gain 0.5, got %+v", cfg.Harmonics)
	}
}

// TestLoadConfigFileErrors verifies malformed files are reported
func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfigFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("envelope:\n  attack: soon\n"), 0o644)
	if _, err := LoadConfigFile(bad); err == nil {
		t.Error("Expected error for unparsable duration")
	}

	if cfg, err := LoadConfigFile(""); err != nil || cfg == nil {
		t.Errorf("Expected defaults for empty path, got %v", err)
	}
}
