package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/note"
)

// sampleExtensions are tried in order for each library note
var sampleExtensions = []string{".wav", ".mp3"}

// DefaultSampleNotes is the stock library: C, E, G, B in octaves 3 to 5
func DefaultSampleNotes() []note.Note {
	var notes []note.Note
	for octave := 3; octave <= 5; octave++ {
		for _, name := range []string{"C", "E", "G", "B"} {
			notes = append(notes, note.With(name, octave))
		}
	}
	return notes
}

// Library stores decoded sample buffers keyed by note, plus synthesized
// stand-ins for notes with no usable sample
type Library struct {
	rate beep.SampleRate

	mu        sync.RWMutex
	buffers   map[note.Note]*frameBuffer
	fallbacks map[note.Note]*frameBuffer
}

// NewLibrary creates an empty library whose stand-ins render at rate
func NewLibrary(rate beep.SampleRate) *Library {
	return &Library{
		rate:      rate,
		buffers:   make(map[note.Note]*frameBuffer),
		fallbacks: make(map[note.Note]*frameBuffer),
	}
}

// Load decodes <dir>/<Note>.wav or .mp3 for each note. Missing or broken
// files are replaced by a synthesized buffer. Only cancellation is an error.
func (l *Library) Load(ctx context.Context, dir string, notes []note.Note) error {
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return err
		}

		buf, err := l.decodeNote(dir, n)
		if err != nil {
			log.Printf("[audio] sample %s: %v, using synthesized buffer", n, err)
			freq, ok := equalTempered(n)
			if !ok {
				continue
			}
			buf = synthesizeFallback(freq, l.rate)
		}
		l.Put(n, buf)
	}
	return nil
}

var errNoSampleFile = errors.New("no sample file")

func (l *Library) decodeNote(dir string, n note.Note) (*frameBuffer, error) {
	if dir == "" {
		return nil, errNoSampleFile
	}
	for _, ext := range sampleExtensions {
		path := filepath.Join(dir, string(n)+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return decodeFile(path)
	}
	return nil, errNoSampleFile
}

// decodeFile reads a whole wav or mp3 file into memory
func decodeFile(path string) (*frameBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".mp3":
		s, format, err = mp3.Decode(f)
	default:
		err = fmt.Errorf("unsupported sample format %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer s.Close()

	frames := make([][2]float64, 0, s.Len())
	chunk := make([][2]float64, 512)
	for {
		n, ok := s.Stream(chunk)
		frames = append(frames, chunk[:n]...)
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("decode %s: empty sample", path)
	}
	return &frameBuffer{frames: frames, rate: format.SampleRate}, nil
}

// Put stores a buffer for n
func (l *Library) Put(n note.Note, buf *frameBuffer) {
	l.mu.Lock()
	l.buffers[n] = buf
	l.mu.Unlock()
}

// PutFrames stores raw stereo frames recorded at rate for n
func (l *Library) PutFrames(n note.Note, frames [][2]float64, rate beep.SampleRate) {
	l.Put(n, &frameBuffer{frames: frames, rate: rate})
}

func (l *Library) get(n note.Note) (*frameBuffer, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	buf, ok := l.buffers[n]
	return buf, ok
}

// Notes lists stored notes in pitch order
func (l *Library) Notes() []note.Note {
	l.mu.RLock()
	notes := make([]note.Note, 0, len(l.buffers))
	for n := range l.buffers {
		notes = append(notes, n)
	}
	l.mu.RUnlock()

	sort.Slice(notes, func(i, j int) bool {
		a, _ := note.Semitone(notes[i])
		b, _ := note.Semitone(notes[j])
		return a < b
	})
	return notes
}

// Synthesized reports whether the buffer for n is a stand-in
func (l *Library) Synthesized(n note.Note) bool {
	buf, ok := l.get(n)
	return ok && buf.synthesized
}

// FindClosestSample picks the stored note to pitch shift for n: an exact
// match, else the nearest in the same octave, else the nearest in the
// adjacent octaves. Reports false when nothing is within an octave.
func (l *Library) FindClosestSample(n note.Note) (note.Note, bool) {
	target, ok := note.Semitone(n)
	if !ok {
		return "", false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.buffers[n]; ok {
		return n, true
	}

	octave := n.Octave()
	var (
		best     note.Note
		bestDist = math.MaxInt
		bestSame bool
	)
	for candidate := range l.buffers {
		diff := candidate.Octave() - octave
		if diff < -1 || diff > 1 {
			continue
		}
		s, ok := note.Semitone(candidate)
		if !ok {
			continue
		}
		same := diff == 0
		dist := s - target
		if dist < 0 {
			dist = -dist
		}

		better := false
		switch {
		case same && !bestSame:
			better = true
		case same != bestSame:
		case dist < bestDist:
			better = true
		case dist == bestDist && s < target:
			// Equal distance: prefer shifting up from below
			better = true
		}
		if better {
			best, bestDist, bestSame = candidate, dist, same
		}
	}
	return best, best != ""
}

// fallback returns a cached synthesized buffer for n
func (l *Library) fallback(n note.Note) (*frameBuffer, bool) {
	l.mu.RLock()
	if buf, ok := l.fallbacks[n]; ok {
		l.mu.RUnlock()
		return buf, true
	}
	l.mu.RUnlock()

	freq, ok := equalTempered(n)
	if !ok {
		return nil, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if buf, ok := l.fallbacks[n]; ok {
		return buf, true
	}
	buf := synthesizeFallback(freq, l.rate)
	l.fallbacks[n] = buf
	return buf, true
}

// pitched streams buf shifted by semitones and converted to the graph rate
func (l *Library) pitched(buf *frameBuffer, semitones int) beep.Streamer {
	ratio := math.Pow(2, float64(semitones)/12) * float64(buf.rate) / float64(l.rate)
	s := buf.streamer()
	if ratio == 1 {
		return s
	}
	return beep.ResampleRatio(constant.ResampleQuality, ratio, s)
}

// equalTempered computes the frequency of any well-formed note from A4 = 440Hz
func equalTempered(n note.Note) (float64, bool) {
	s, ok := note.Semitone(n)
	if !ok {
		return 0, false
	}
	a4, _ := note.Semitone("A4")
	return 440 * math.Pow(2, float64(s-a4)/12), true
}
