package audio

import (
	"log"
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
)

// noEnd marks a voice that has not been released
const noEnd = math.MaxInt64

// voice is one sounding note inside a bank.
// All methods run under the owning bank lock.
type voice interface {
	// render adds the voice into out, where out[0] is sample pos
	render(out [][2]float64, pos int64)
	// release holds the current gain at sample at and ramps to zero over length samples
	release(at, length int64)
	// end is the first sample after which the voice is silent for good
	end() int64
	// dispose drops generator state once the voice is retired
	dispose()
}

// window clips a render block against a voice lifetime.
// Returns the offset into out and the number of frames to render.
func window(pos int64, size int, start, stop int64) (k, n int) {
	end := pos + int64(size)
	if end <= start || pos >= stop {
		return 0, 0
	}
	if start > pos {
		k = int(start - pos)
	}
	n = size - k
	if stop < end {
		n -= int(end - stop)
	}
	if n < 0 {
		n = 0
	}
	return k, n
}

// partial is one oscillator of a synthesized voice
type partial struct {
	osc    beep.Streamer
	weight float64
}

// synthVoice is an oscillator stack under one ADSR gain envelope
type synthVoice struct {
	start    int64
	stopAt   int64
	partials []partial
	env      *Param
	peak     float64

	tmp [][2]float64
	mix [][2]float64
}

// newSynthVoice builds the fundamental plus harmonics and schedules the
// attack and decay segments starting at sample start
func newSynthVoice(freq float64, wave WaveType, harmonics []Harmonic, env Envelope, peak float64, rate beep.SampleRate, start int64) *synthVoice {
	v := &synthVoice{
		start:  start,
		stopAt: noEnd,
		env:    NewParam(0),
		peak:   peak,
	}

	v.partials = append(v.partials, partial{osc: newTone(wave, freq, rate), weight: 1})
	for _, h := range harmonics {
		osc, err := generators.SineTone(rate, freq*h.Multiple)
		if err != nil {
			// Above Nyquist, nothing to add
			log.Printf("[audio] skip harmonic %.0fHz: %v", freq*h.Multiple, err)
			continue
		}
		v.partials = append(v.partials, partial{osc: osc, weight: h.Gain})
	}

	attackEnd := start + samplesFor(rate, env.Attack)
	decayEnd := attackEnd + samplesFor(rate, env.Decay)
	v.env.SetValueAt(0, start)
	v.env.LinearRampTo(1, attackEnd)
	v.env.LinearRampTo(env.Sustain, decayEnd)

	return v
}

func (v *synthVoice) buffers(n int) ([][2]float64, [][2]float64) {
	if cap(v.tmp) < n {
		v.tmp = make([][2]float64, n)
		v.mix = make([][2]float64, n)
	}
	return v.tmp[:n], v.mix[:n]
}

func (v *synthVoice) render(out [][2]float64, pos int64) {
	if v.partials == nil {
		return
	}
	k, n := window(pos, len(out), v.start, v.stopAt)
	if n == 0 {
		return
	}

	tmp, mix := v.buffers(n)
	clear(mix)
	for _, p := range v.partials {
		got, _ := p.osc.Stream(tmp)
		for j := 0; j < got; j++ {
			mix[j][0] += tmp[j][0] * p.weight
			mix[j][1] += tmp[j][1] * p.weight
		}
	}

	at := pos + int64(k)
	for j := 0; j < n; j++ {
		g := v.env.ValueAt(at+int64(j)) * v.peak
		out[k+j][0] += mix[j][0] * g
		out[k+j][1] += mix[j][1] * g
	}
	v.env.Compact(at + int64(n))
}

func (v *synthVoice) release(at, length int64) {
	if at < v.start {
		at = v.start
	}
	v.env.HoldAt(at)
	v.env.LinearRampTo(0, at+length)
	v.stopAt = at + length
}

func (v *synthVoice) end() int64 { return v.stopAt }

func (v *synthVoice) dispose() {
	v.partials = nil
	v.tmp, v.mix = nil, nil
}

// sampleVoice plays a (pitch shifted) buffer under a gain envelope
type sampleVoice struct {
	start  int64
	stopAt int64
	src    beep.Streamer
	gain   *Param
	tmp    [][2]float64
}

func newSampleVoice(src beep.Streamer, gain float64, start int64) *sampleVoice {
	v := &sampleVoice{
		start:  start,
		stopAt: noEnd,
		src:    src,
		gain:   NewParam(0),
	}
	v.gain.SetValueAt(gain, start)
	return v
}

func (v *sampleVoice) render(out [][2]float64, pos int64) {
	if v.src == nil {
		return
	}
	k, n := window(pos, len(out), v.start, v.stopAt)
	if n == 0 {
		return
	}

	if cap(v.tmp) < n {
		v.tmp = make([][2]float64, n)
	}
	tmp := v.tmp[:n]

	got, ok := v.src.Stream(tmp)
	at := pos + int64(k)
	for j := 0; j < got; j++ {
		g := v.gain.ValueAt(at + int64(j))
		out[k+j][0] += tmp[j][0] * g
		out[k+j][1] += tmp[j][1] * g
	}
	v.gain.Compact(at + int64(got))

	if !ok || got < n {
		// Buffer exhausted before release
		if e := at + int64(got); e < v.stopAt {
			v.stopAt = e
		}
	}
}

func (v *sampleVoice) release(at, length int64) {
	if at < v.start {
		at = v.start
	}
	v.gain.HoldAt(at)
	v.gain.LinearRampTo(0, at+length)
	if e := at + length; e < v.stopAt {
		v.stopAt = e
	}
}

func (v *sampleVoice) end() int64 { return v.stopAt }

func (v *sampleVoice) dispose() {
	v.src = nil
	v.tmp = nil
}
