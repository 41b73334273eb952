package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/pianoterm/constant"
)

// tone is an endless periodic waveform
type tone struct {
	wave  WaveType
	phase float64
	step  float64
}

// newTone creates an oscillator streamer at freq Hz
func newTone(wave WaveType, freq float64, rate beep.SampleRate) *tone {
	return &tone{wave: wave, step: freq / float64(rate)}
}

func (o *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveTriangle:
			val = 1.0 - 4.0*math.Abs(o.phase-0.5)
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.step
		o.phase -= math.Floor(o.phase) // Keep in [0, 1)
	}
	return len(samples), true
}

func (o *tone) Err() error { return nil }

// frameBuffer is decoded or synthesized stereo audio at a known rate
type frameBuffer struct {
	frames      [][2]float64
	rate        beep.SampleRate
	synthesized bool
}

// streamer returns a fresh reader positioned at the start
func (b *frameBuffer) streamer() beep.Streamer {
	return &bufferReader{frames: b.frames}
}

// bufferReader streams a frameBuffer once
type bufferReader struct {
	frames [][2]float64
	pos    int
}

func (r *bufferReader) Stream(samples [][2]float64) (n int, ok bool) {
	if r.pos >= len(r.frames) {
		return 0, false
	}
	n = copy(samples, r.frames[r.pos:])
	r.pos += n
	return n, true
}

func (r *bufferReader) Err() error { return nil }

// fallbackHarmonics are partial weights of the substitute piano buffer
var fallbackHarmonics = [...]float64{1, 0.5, 0.25, 0.125}

// synthesizeFallback renders a 2 second piano-like buffer for freq Hz.
// Used when a sample file is missing or cannot be decoded.
func synthesizeFallback(freq float64, rate beep.SampleRate) *frameBuffer {
	total := rate.N(constant.FallbackDuration)
	frames := make([][2]float64, total)

	duration := constant.FallbackDuration.Seconds()
	attack := constant.FallbackAttack.Seconds()
	decay := constant.FallbackDecay.Seconds()
	release := constant.FallbackRelease.Seconds()
	sustain := constant.FallbackSustainLevel

	for i := range frames {
		t := float64(i) / float64(rate)

		var sample float64
		for h, gain := range fallbackHarmonics {
			sample += gain * math.Sin(2*math.Pi*freq*float64(h+1)*t)
		}

		var env float64
		switch {
		case t < attack:
			env = t / attack
		case t < attack+decay:
			env = 1.0 - (1.0-sustain)*(t-attack)/decay
		case t < duration-release:
			env = sustain
		default:
			env = sustain * (1.0 - (t-(duration-release))/release)
		}

		v := sample * env * constant.FallbackGain
		frames[i] = [2]float64{v, v}
	}

	return &frameBuffer{frames: frames, rate: rate, synthesized: true}
}

// samplesFor converts a duration to a sample count at rate, never negative
func samplesFor(rate beep.SampleRate, d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(rate.N(d))
}
