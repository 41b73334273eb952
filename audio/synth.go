package audio

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/schedule"
)

// SynthEngine generates notes from oscillators.
// High quality adds sine harmonics above the selected waveform.
type SynthEngine struct {
	*engineCore

	mu        sync.RWMutex
	wave      WaveType
	quality   Quality
	harmonics []Harmonic
	env       Envelope
}

// NewSynthEngine creates a synthesized engine attached to g
func NewSynthEngine(g *Graph, s *schedule.Scheduler, p *Policy, cfg *Config) *SynthEngine {
	e := &SynthEngine{
		wave:      WaveTriangle,
		quality:   QualityHigh,
		harmonics: append([]Harmonic(nil), cfg.Harmonics...),
		env:       cfg.Envelope,
	}
	e.engineCore = &engineCore{
		kind:            KindSynthesized,
		self:            e,
		graph:           g,
		sched:           s,
		sequenceRelease: cfg.SequenceRelease,
		bank:            newVoiceBank(g, p, cfg.Envelope.Release, cfg.QuickRelease, e.newVoice),
	}
	g.attach(e.bank)
	return e
}

func (e *SynthEngine) newVoice(n note.Note, start int64) (voice, error) {
	freq, ok := note.Frequency(n)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNote, n)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var harmonics []Harmonic
	if e.quality == QualityHigh {
		harmonics = e.harmonics
	}
	return newSynthVoice(freq, e.wave, harmonics, e.env, constant.SynthPeakGain, e.graph.SampleRate(), start), nil
}

// SetWave selects the fundamental waveform for subsequent notes
func (e *SynthEngine) SetWave(w WaveType) {
	e.mu.Lock()
	e.wave = w
	e.mu.Unlock()
}

// Wave returns the fundamental waveform
func (e *SynthEngine) Wave() WaveType {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.wave
}

// SetQuality selects basic (fundamental only) or high (with harmonics)
func (e *SynthEngine) SetQuality(q Quality) {
	e.mu.Lock()
	e.quality = q
	e.mu.Unlock()
}

// Quality returns the timbre setting
func (e *SynthEngine) Quality() Quality {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.quality
}
