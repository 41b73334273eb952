package audio

import (
	"errors"
	"fmt"
)

// BackendType identifies the audio backend
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
	BackendFFplay
	BackendOSS
)

// BackendConfig describes a CLI audio backend
type BackendConfig struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

// Sentinel errors
var (
	ErrNoAudioBackend = errors.New("no compatible audio backend found")
	ErrPipeClosed     = errors.New("audio pipe closed")
	ErrUnknownNote    = errors.New("unknown note")
	ErrUnknownKind    = errors.New("unknown engine kind")
	ErrUnknownWave    = errors.New("unknown oscillator type")
)

// Kind selects a voice engine
type Kind string

const (
	KindSynthesized Kind = "synthesized"
	KindSampled     Kind = "sampled"
)

// ParseKind validates an engine kind string
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSynthesized, KindSampled:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// NoteState is the per-note voice lifecycle
type NoteState int

const (
	Idle NoteState = iota
	Sounding
	Releasing
)

func (s NoteState) String() string {
	switch s {
	case Sounding:
		return "sounding"
	case Releasing:
		return "releasing"
	default:
		return "idle"
	}
}

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveTriangle
)

var waveNames = map[string]WaveType{
	"sine":     WaveSine,
	"square":   WaveSquare,
	"sawtooth": WaveSaw,
	"triangle": WaveTriangle,
}

// ParseWave maps an oscillator type name to its WaveType
func ParseWave(s string) (WaveType, error) {
	if w, ok := waveNames[s]; ok {
		return w, nil
	}
	return WaveSine, fmt.Errorf("%w: %q", ErrUnknownWave, s)
}

func (w WaveType) String() string {
	for name, v := range waveNames {
		if v == w {
			return name
		}
	}
	return "sine"
}

// Quality selects the synthesized timbre
type Quality string

const (
	QualityBasic Quality = "basic"
	QualityHigh  Quality = "high"
)
