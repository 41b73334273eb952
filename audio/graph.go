package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/pianoterm/constant"
)

// source renders into a shared block, out[0] being sample pos
type source interface {
	render(out [][2]float64, pos int64)
}

// Graph is the master bus and the audio clock.
// Each Stream call renders every attached engine at the current sample
// position, applies master volume and the soft limiter, then advances the
// clock. Backends pull it; tests pull it by hand for exact timing.
type Graph struct {
	rate beep.SampleRate
	pos  atomic.Int64

	mu      sync.Mutex
	sources []source
	master  *effects.Volume
	level   float64
}

// NewGraph creates a graph at rate with master volume 0..1
func NewGraph(rate beep.SampleRate, volume float64) *Graph {
	g := &Graph{rate: rate}
	g.master = newVolume(beep.StreamerFunc(g.mix), volume)
	g.level = clampUnit(volume)
	return g
}

func (g *Graph) attach(s source) {
	g.mu.Lock()
	g.sources = append(g.sources, s)
	g.mu.Unlock()
}

// Stream implements beep.Streamer; it never drains
func (g *Graph) Stream(samples [][2]float64) (int, bool) {
	g.mu.Lock()
	n, _ := g.master.Stream(samples)
	g.mu.Unlock()

	for i := range samples[:n] {
		samples[i][0] = softLimit(samples[i][0])
		samples[i][1] = softLimit(samples[i][1])
	}
	g.pos.Add(int64(n))
	return n, true
}

// Err implements beep.Streamer
func (g *Graph) Err() error { return nil }

// mix renders all sources under g.mu
func (g *Graph) mix(samples [][2]float64) (int, bool) {
	clear(samples)
	pos := g.pos.Load()
	for _, s := range g.sources {
		s.render(samples, pos)
	}
	return len(samples), true
}

// SampleRate is the graph output rate
func (g *Graph) SampleRate() beep.SampleRate { return g.rate }

// Position is the number of frames rendered so far
func (g *Graph) Position() int64 { return g.pos.Load() }

// Now is the audio clock
func (g *Graph) Now() time.Duration { return g.TimeAt(g.pos.Load()) }

// SampleAt converts an audio time to a sample index
func (g *Graph) SampleAt(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(g.rate.N(d))
}

// TimeAt converts a sample index to audio time
func (g *Graph) TimeAt(s int64) time.Duration {
	return g.rate.D(int(s))
}

// SetVolume updates master volume (0.0-1.0)
func (g *Graph) SetVolume(vol float64) {
	vol = clampUnit(vol)
	g.mu.Lock()
	setVolume(g.master, vol)
	g.level = vol
	g.mu.Unlock()
}

// Volume returns master volume
func (g *Graph) Volume() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.level
}

// newVolume wraps s in a volume effect.
// math.Log2(0) is -Inf, so 0 volume maps to silent.
func newVolume(s beep.Streamer, vol float64) *effects.Volume {
	v := &effects.Volume{Streamer: s, Base: 2}
	setVolume(v, vol)
	return v
}

func setVolume(v *effects.Volume, vol float64) {
	if vol <= 0 {
		v.Volume, v.Silent = 0, true
		return
	}
	v.Volume, v.Silent = math.Log2(vol), false
}

// softLimit compresses peaks above the knee, then hard clips
func softLimit(v float64) float64 {
	const knee = constant.LimiterThreshold
	if v > knee {
		v = knee + (1-knee)*(1.0-1.0/(1.0+(v-knee)*5.0))
	} else if v < -knee {
		v = -knee - (1-knee)*(1.0-1.0/(1.0+(-v-knee)*5.0))
	}

	if v > 1.0 {
		v = 1.0
	} else if v < -1.0 {
		v = -1.0
	}
	return v
}
