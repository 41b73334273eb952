package audio

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/lixenwraith/pianoterm/constant"
)

// Envelope describes an ADSR gain contour
type Envelope struct {
	Attack  time.Duration
	Decay   time.Duration
	Sustain float64
	Release time.Duration
}

// Harmonic is an additional sine partial at Multiple times the fundamental
type Harmonic struct {
	Multiple float64
	Gain     float64
}

// Config holds audio engine settings
type Config struct {
	Enabled      bool
	MasterVolume float64
	SampleRate   int
	SampleDir    string
	Backend      string // auto, speaker, pipe, null

	Envelope        Envelope
	QuickRelease    time.Duration
	SequenceRelease time.Duration
	SampledRelease  time.Duration
	Harmonics       []Harmonic
	Lookahead       time.Duration
}

// DefaultHarmonics is the high quality partial table
func DefaultHarmonics() []Harmonic {
	return []Harmonic{
		{Multiple: 2, Gain: 0.2},
		{Multiple: 3, Gain: 0.1},
		{Multiple: 4, Gain: 0.07},
		{Multiple: 5, Gain: 0.05},
		{Multiple: 6, Gain: 0.02},
	}
}

// DefaultConfig returns the stock configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		MasterVolume: constant.DefaultVolume,
		SampleRate:   constant.AudioSampleRate,
		Backend:      "auto",
		Envelope: Envelope{
			Attack:  constant.SynthAttack,
			Decay:   constant.SynthDecay,
			Sustain: constant.SynthSustainLevel,
			Release: constant.SynthRelease,
		},
		QuickRelease:    constant.QuickRelease,
		SequenceRelease: constant.SequenceRelease,
		SampledRelease:  constant.SampledRelease,
		Harmonics:       DefaultHarmonics(),
		Lookahead:       constant.SchedulerLookahead,
	}
}

// LoadAudioConfig loads audio configuration from environment variables
func LoadAudioConfig() *Config {
	cfg := DefaultConfig()
	applyEnv(cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if enabled := os.Getenv("PIANOTERM_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Load master volume (0-100 converted to 0.0-1.0)
	if volume := os.Getenv("PIANOTERM_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = clampUnit(float64(val) / 100.0)
		}
	}

	if sampleRate := os.Getenv("PIANOTERM_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	if dir := os.Getenv("PIANOTERM_SAMPLE_DIR"); dir != "" {
		cfg.SampleDir = dir
	}
}

// fileConfig mirrors the YAML layout, durations as strings ("10ms")
type fileConfig struct {
	SampleDir string   `yaml:"sample_dir"`
	Backend   string   `yaml:"backend"`
	Volume    *float64 `yaml:"volume"`
	Envelope  struct {
		Attack  string   `yaml:"attack"`
		Decay   string   `yaml:"decay"`
		Sustain *float64 `yaml:"sustain"`
		Release string   `yaml:"release"`
	} `yaml:"envelope"`
	QuickRelease    string `yaml:"quick_release"`
	SequenceRelease string `yaml:"sequence_release"`
	SampledRelease  string `yaml:"sampled_release"`
	Lookahead       string `yaml:"lookahead"`
	Harmonics       []struct {
		Multiple float64 `yaml:"multiple"`
		Gain     float64 `yaml:"gain"`
	} `yaml:"harmonics"`
}

// LoadConfigFile reads a YAML config file over the defaults, then applies
// environment overrides. An empty path yields LoadAudioConfig().
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.applyYAML(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func (cfg *Config) applyYAML(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.SampleDir != "" {
		cfg.SampleDir = fc.SampleDir
	}
	if fc.Backend != "" {
		cfg.Backend = fc.Backend
	}
	if fc.Volume != nil {
		cfg.MasterVolume = clampUnit(*fc.Volume)
	}
	if fc.Envelope.Sustain != nil {
		cfg.Envelope.Sustain = clampUnit(*fc.Envelope.Sustain)
	}

	durations := []struct {
		raw string
		dst *time.Duration
	}{
		{fc.Envelope.Attack, &cfg.Envelope.Attack},
		{fc.Envelope.Decay, &cfg.Envelope.Decay},
		{fc.Envelope.Release, &cfg.Envelope.Release},
		{fc.QuickRelease, &cfg.QuickRelease},
		{fc.SequenceRelease, &cfg.SequenceRelease},
		{fc.SampledRelease, &cfg.SampledRelease},
		{fc.Lookahead, &cfg.Lookahead},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("negative duration %q", d.raw)
		}
		*d.dst = v
	}

	if len(fc.Harmonics) > 0 {
		cfg.Harmonics = cfg.Harmonics[:0]
		for _, h := range fc.Harmonics {
			if h.Multiple <= 0 {
				return fmt.Errorf("harmonic multiple must be positive, got %v", h.Multiple)
			}
			cfg.Harmonics = append(cfg.Harmonics, Harmonic{Multiple: h.Multiple, Gain: h.Gain})
		}
	}
	return nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
