package audio

import (
	"math"
	"testing"

	"github.com/gopxl/beep"
)

// TestToneRange verifies every waveform stays within [-1, 1]
func TestToneRange(t *testing.T) {
	rate := beep.SampleRate(44100)

	for _, wave := range []WaveType{WaveSine, WaveSquare, WaveSaw, WaveTriangle} {
		t.Run(wave.String(), func(t *testing.T) {
			osc := newTone(wave, 440, rate)
			samples := make([][2]float64, 1000)

			n, ok := osc.Stream(samples)
			if !ok || n != len(samples) {
				t.Fatalf("Expected endless stream, got n=%d ok=%v", n, ok)
			}

			peak := 0.0
			for i := 0; i < n; i++ {
				if samples[i][0] < -1.0 || samples[i][0] > 1.0 {
					t.Errorf("Sample %d out of range: %f", i, samples[i][0])
				}
				if samples[i][0] != samples[i][1] {
					t.Errorf("Sample %d: expected identical channels", i)
				}
				peak = math.Max(peak, math.Abs(samples[i][0]))
			}
			if peak < 0.9 {
				t.Errorf("Expected near full-scale peak, got %f", peak)
			}
			if osc.Err() != nil {
				t.Errorf("Expected no error, got: %v", osc.Err())
			}
		})
	}
}

func TestParseWave(t *testing.T) {
	testCases := []struct {
		name     string
		expected WaveType
		ok       bool
	}{
		{"sine", WaveSine, true},
		{"square", WaveSquare, true},
		{"sawtooth", WaveSaw, true},
		{"triangle", WaveTriangle, true},
		{"noise", WaveSine, false},
	}
	for _, tc := range testCases {
		w, err := ParseWave(tc.name)
		if (err == nil) != tc.ok {
			t.Errorf("ParseWave(%q): unexpected error state %v", tc.name, err)
		}
		if w != tc.expected {
			t.Errorf("ParseWave(%q): expected %v, got %v", tc.name, tc.expected, w)
		}
		if tc.ok && w.String() != tc.name {
			t.Errorf("Expected round trip name %q, got %q", tc.name, w.String())
		}
	}
}

// TestSynthesizeFallback verifies the substitute piano buffer shape
func TestSynthesizeFallback(t *testing.T) {
	rate := beep.SampleRate(44100)
	buf := synthesizeFallback(261.63, rate)

	if !buf.synthesized {
		t.Error("Expected buffer flagged as synthesized")
	}
	if len(buf.frames) != 2*44100 {
		t.Fatalf("Expected 2s of frames, got %d", len(buf.frames))
	}
	if buf.frames[0][0] != 0 {
		t.Errorf("Expected silent first frame, got %f", buf.frames[0][0])
	}

	// Harmonic sum peaks at 1.875, scaled by 0.2
	limit := 1.875 * 0.2
	for i, f := range buf.frames {
		if math.Abs(f[0]) > limit+1e-9 {
			t.Fatalf("Frame %d exceeds %f: %f", i, limit, f[0])
		}
	}

	last := buf.frames[len(buf.frames)-1][0]
	if math.Abs(last) > 0.001 {
		t.Errorf("Expected release to end near silence, got %f", last)
	}
}

func TestBufferReader(t *testing.T) {
	fb := &frameBuffer{frames: [][2]float64{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}}}
	s := fb.streamer()

	out := make([][2]float64, 2)
	if n, ok := s.Stream(out); n != 2 || !ok {
		t.Fatalf("Expected 2 frames, got %d %v", n, ok)
	}
	if n, ok := s.Stream(out); n != 1 || !ok {
		t.Fatalf("Expected 1 trailing frame, got %d %v", n, ok)
	}
	if n, ok := s.Stream(out); n != 0 || ok {
		t.Errorf("Expected drained stream, got %d %v", n, ok)
	}
}
