package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/core"
	"github.com/lixenwraith/pianoterm/schedule"
	"github.com/lixenwraith/pianoterm/service"
	"github.com/lixenwraith/pianoterm/settings"
)

// compatibilityMessage is shown once when no audio output could be opened
const compatibilityMessage = "Audio output is unavailable on this system; notes will be silent."

// preferences is the settings dependency, satisfied by settings.SettingsService
type preferences interface {
	Settings() *settings.Settings
}

// AudioService owns the graph, scheduler and both engines.
// Handles graceful degradation when no audio backend is available: the
// service is then disabled and callers treat every playback call as a no-op.
type AudioService struct {
	config  *Config
	graph   *Graph
	sched   *schedule.Scheduler
	policy  *Policy
	synth   *SynthEngine
	sampled *SampledEngine
	backend Backend
	prefs   preferences
	kind    Kind

	disabled   atomic.Bool
	compatSeen atomic.Bool

	cancelLoad context.CancelFunc
	stopOnce   sync.Once
	watchDone  chan struct{}
}

// NewService creates a new audio service
func NewService() *AudioService {
	return &AudioService{}
}

// Name implements Service
func (s *AudioService) Name() string {
	return "audio"
}

// Dependencies implements Service
func (s *AudioService) Dependencies() []string {
	return []string{"settings"}
}

// Bind implements service.Binder
func (s *AudioService) Bind(deps map[string]service.Service) error {
	p, ok := deps["settings"].(preferences)
	if !ok {
		return fmt.Errorf("audio: settings dependency is %T", deps["settings"])
	}
	s.prefs = p
	return nil
}

// Init implements Service
// args[0]: *Config (optional, defaults to LoadAudioConfig)
// Builds the graph and engines and applies stored preferences when bound;
// no device is opened until Start
func (s *AudioService) Init(args ...any) error {
	cfg := LoadAudioConfig()
	if len(args) > 0 && args[0] != nil {
		c, ok := args[0].(*Config)
		if !ok {
			return fmt.Errorf("audio: expected *Config, got %T", args[0])
		}
		cfg = c
	}
	s.config = cfg

	rate := beep.SampleRate(cfg.SampleRate)
	s.graph = NewGraph(rate, cfg.MasterVolume)
	s.sched = schedule.NewScheduler(s.graph, cfg.Lookahead)
	s.policy = NewPolicy(false, true)
	s.synth = NewSynthEngine(s.graph, s.sched, s.policy, cfg)
	s.sampled = NewSampledEngine(s.graph, s.sched, s.policy, cfg, NewLibrary(rate))
	s.kind = KindSynthesized
	s.watchDone = make(chan struct{})

	if s.prefs != nil && s.prefs.Settings() != nil {
		p := s.prefs.Settings()
		for _, name := range settings.Names() {
			if err := s.ApplySetting(name, p); err != nil {
				log.Printf("[audio] setting %s: %v", name, err)
			}
		}
	}
	return nil
}

// ApplySetting pushes one stored preference into the graph, engines and
// policy. Names owned by the router or the UI are ignored.
func (s *AudioService) ApplySetting(name string, p *settings.Settings) error {
	switch name {
	case settings.KeyVolume:
		s.graph.SetVolume(p.Volume)
	case settings.KeyPianoSoundType:
		kind, err := ParseKind(p.PianoSoundType)
		if err != nil {
			return err
		}
		s.kind = kind
	case settings.KeySoundQuality:
		s.synth.SetQuality(Quality(p.SoundQuality))
	case settings.KeyOscillatorType:
		w, err := ParseWave(p.OscillatorType)
		if err != nil {
			return err
		}
		s.synth.SetWave(w)
	case settings.KeyMonophonicMode:
		s.policy.SetMonophonic(p.MonophonicMode)
	case settings.KeyNoteCutoff:
		s.policy.SetNoteCutoff(p.NoteCutoff)
	}
	return nil
}

// Kind is the engine the stored pianoSoundType selects
func (s *AudioService) Kind() Kind { return s.kind }

// Start implements Service
// Opens an output backend; sets disabled on failure (no error returned)
func (s *AudioService) Start() error {
	if s.graph == nil {
		return errors.New("audio: Start before Init")
	}

	backend, err := s.openBackend()
	if err != nil {
		log.Printf("[audio] disabled: %v", err)
		s.disabled.Store(true)
		// Nothing will load; release queued sampled operations
		s.sampled.MarkLoaded()
		return nil
	}
	s.backend = backend
	log.Printf("[audio] output via %s at %d Hz", backend.Name(), s.config.SampleRate)

	s.sched.Start(constant.SchedulerTick)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelLoad = cancel
	s.sampled.Load(ctx, s.config.SampleDir, DefaultSampleNotes())

	core.Go(s.watchBackend)
	return nil
}

// openBackend tries the configured backend, or speaker then pipe for auto
func (s *AudioService) openBackend() (Backend, error) {
	names := []string{s.config.Backend}
	switch {
	case !s.config.Enabled:
		names = []string{"null"}
	case s.config.Backend == "" || s.config.Backend == "auto":
		names = []string{"speaker", "pipe"}
	}

	var errs []error
	for _, name := range names {
		b, err := NewBackend(name, s.graph.SampleRate())
		if err == nil {
			err = b.Start(s.graph)
		}
		if err == nil {
			return b, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return nil, fmt.Errorf("%w: %w", ErrNoAudioBackend, errors.Join(errs...))
}

// watchBackend disables playback if the output breaks mid-session
func (s *AudioService) watchBackend() {
	select {
	case <-s.backend.Failed():
		log.Printf("[audio] backend %s failed, disabling playback", s.backend.Name())
		s.disabled.Store(true)
	case <-s.watchDone:
	}
}

// Stop implements Service
func (s *AudioService) Stop() error {
	s.stopOnce.Do(func() {
		if s.watchDone != nil {
			close(s.watchDone)
		}
		if s.cancelLoad != nil {
			s.cancelLoad()
		}
		if s.sched != nil {
			s.sched.Stop()
		}
		if s.backend != nil {
			s.backend.Stop()
		}
	})
	return nil
}

// Disabled returns true if audio is unavailable
func (s *AudioService) Disabled() bool {
	return s.disabled.Load()
}

// CompatibilityMessage returns the banner text the first time it is asked
// for after playback was disabled
func (s *AudioService) CompatibilityMessage() (string, bool) {
	if !s.disabled.Load() {
		return "", false
	}
	if !s.compatSeen.CompareAndSwap(false, true) {
		return "", false
	}
	return compatibilityMessage, true
}

// Engine returns the engine for kind
func (s *AudioService) Engine(kind Kind) (Engine, error) {
	switch kind {
	case KindSynthesized:
		return s.synth, nil
	case KindSampled:
		return s.sampled, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func (s *AudioService) Synth() *SynthEngine            { return s.synth }
func (s *AudioService) Sampled() *SampledEngine        { return s.sampled }
func (s *AudioService) Graph() *Graph                  { return s.graph }
func (s *AudioService) Scheduler() *schedule.Scheduler { return s.sched }
func (s *AudioService) Policy() *Policy                { return s.policy }
func (s *AudioService) Config() *Config                { return s.config }

// BackendName is the active output name, empty when disabled
func (s *AudioService) BackendName() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.Name()
}
