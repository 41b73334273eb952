package constant

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate    = 44100
	AudioChannels      = 2
	AudioBitDepth      = 16
	AudioBytesPerFrame = AudioChannels * (AudioBitDepth / 8) // 4 bytes
)

// Audio Output Timing
const (
	// AudioBufferDuration determines latency and pipe backend tick rate
	AudioBufferDuration = 20 * time.Millisecond

	// AudioBufferSamples is frames per backend tick at 44.1kHz
	AudioBufferSamples = (AudioSampleRate * 20) / 1000 // 882

	// SpeakerBufferDuration is the speaker backend buffer
	SpeakerBufferDuration = 50 * time.Millisecond
)

// Synthesized Voice Envelope
const (
	SynthAttack       = 10 * time.Millisecond
	SynthDecay        = 200 * time.Millisecond
	SynthSustainLevel = 0.7
	SynthRelease      = 100 * time.Millisecond
	SynthPeakGain     = 0.35 // Per-voice peak before master volume
)

// Overlap Control
const (
	// QuickRelease is the note-cutoff ramp, distinct from the configured release
	QuickRelease = 50 * time.Millisecond

	// SequenceRelease replaces the configured release during sequence playback
	SequenceRelease = 50 * time.Millisecond

	// SequenceGateRatio releases each sequence note at this fraction of its slot
	SequenceGateRatio = 0.8
)

// Sampled Voice
const (
	SampledRelease = 300 * time.Millisecond
	SampledGain    = 1.0

	// Fallback buffer synthesized when a sample cannot be decoded
	FallbackDuration     = 2 * time.Second
	FallbackAttack       = 10 * time.Millisecond
	FallbackDecay        = 100 * time.Millisecond
	FallbackSustainLevel = 0.7
	FallbackRelease      = 1 * time.Second
	FallbackGain         = 0.2

	// ResampleQuality is passed to beep.ResampleRatio
	ResampleQuality = 4
)

// Master Output
const (
	DefaultVolume = 0.7

	// Soft limiter knee for the master bus
	LimiterThreshold = 0.8
)

// Scheduler
const (
	// SchedulerTick is the dispatch loop interval
	SchedulerTick = 5 * time.Millisecond

	// SchedulerLookahead dispatches events this far ahead of the audio clock
	SchedulerLookahead = 25 * time.Millisecond
)
