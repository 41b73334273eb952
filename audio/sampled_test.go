package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/pianoterm/note"
)

// constantFrames returns n frames at level v
func constantFrames(n int, v float64) [][2]float64 {
	frames := make([][2]float64, n)
	for i := range frames {
		frames[i] = [2]float64{v, v}
	}
	return frames
}

func stockLibrary() *Library {
	lib := NewLibrary(44100)
	for _, n := range DefaultSampleNotes() {
		lib.PutFrames(n, constantFrames(100, 0.5), 44100)
	}
	return lib
}

func TestFindClosestSample(t *testing.T) {
	lib := stockLibrary()

	testCases := []struct {
		target   note.Note
		expected note.Note
		ok       bool
	}{
		{"C4", "C4", true},   // exact
		{"D4", "C4", true},   // tie goes to the sample below
		{"F4", "E4", true},   // nearest in octave
		{"A4", "G4", true},   // tie in octave
		{"A3", "G3", true},   // same octave preferred
		{"B2", "C3", true},   // adjacent octave
		{"C2", "C3", true},   // adjacent octave, full octave away
		{"C6", "B5", true},   // above the library
		{"C1", "", false},    // out of reach
		{"bogus", "", false}, // malformed
	}
	for _, tc := range testCases {
		got, ok := lib.FindClosestSample(tc.target)
		if ok != tc.ok || got != tc.expected {
			t.Errorf("FindClosestSample(%s): expected %q/%v, got %q/%v", tc.target, tc.expected, tc.ok, got, ok)
		}
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	lib := NewLibrary(44100)
	notes := []note.Note{"C4", "E4"}

	if err := lib.Load(context.Background(), filepath.Join(t.TempDir(), "missing"), notes); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := lib.Notes(); len(got) != 2 {
		t.Fatalf("Expected 2 stand-ins, got %v", got)
	}
	for _, n := range notes {
		if !lib.Synthesized(n) {
			t.Errorf("Expected %s synthesized", n)
		}
	}
}

func TestLoadCancelled(t *testing.T) {
	lib := NewLibrary(44100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := lib.Load(ctx, "", DefaultSampleNotes()); err == nil {
		t.Error("Expected cancellation error")
	}
	if len(lib.Notes()) != 0 {
		t.Errorf("Expected nothing loaded, got %v", lib.Notes())
	}
}

func TestLoadWAV(t *testing.T) {
	dir := t.TempDir()

	f, err := os.Create(filepath.Join(dir, "C4.wav"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	src := &frameBuffer{frames: constantFrames(2205, 0.5)}
	format := beep.Format{SampleRate: 22050, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, src.streamer(), format); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	f.Close()

	// Broken file next to it
	if err := os.WriteFile(filepath.Join(dir, "E4.wav"), []byte("not a wave file"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	lib := NewLibrary(44100)
	if err := lib.Load(context.Background(), dir, []note.Note{"C4", "E4"}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	buf, ok := lib.get("C4")
	if !ok {
		t.Fatal("Expected C4 loaded")
	}
	if buf.synthesized {
		t.Error("Expected decoded C4, got stand-in")
	}
	if buf.rate != 22050 {
		t.Errorf("Expected file rate kept, got %d", buf.rate)
	}
	if len(buf.frames) != 2205 {
		t.Errorf("Expected 2205 frames, got %d", len(buf.frames))
	}
	if v := buf.frames[100][0]; v < 0.49 || v > 0.51 {
		t.Errorf("Expected decoded level near 0.5, got %f", v)
	}

	if !lib.Synthesized("E4") {
		t.Error("Expected broken E4 replaced by stand-in")
	}
}

func TestQueuedOpsReplay(t *testing.T) {
	r := newRig(t, false, false)
	r.sampled.library = stockLibrary()

	r.sampled.PlayNote("C4")
	r.sampled.PlayNote("E4")
	r.sampled.PlayNote("G4")
	r.sampled.StopNote("E4")

	if r.sampled.Loaded() {
		t.Fatal("Expected engine still loading")
	}
	if len(r.sampled.ActiveNotes()) != 0 {
		t.Fatalf("Expected ops queued, got %v", r.sampled.ActiveNotes())
	}

	r.sampled.MarkLoaded()

	got := r.sampled.ActiveNotes()
	if len(got) != 2 || got[0] != "C4" || got[1] != "G4" {
		t.Errorf("Expected [C4 G4] after replay, got %v", got)
	}
	if r.sampled.State("E4") != Releasing {
		t.Errorf("Expected E4 releasing, got %v", r.sampled.State("E4"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.sampled.WaitLoaded(ctx); err != nil {
		t.Errorf("WaitLoaded failed: %v", err)
	}

	// Second call is a no-op
	r.sampled.MarkLoaded()
}

func TestQueuedTimelineReplay(t *testing.T) {
	r := newRig(t, false, false)
	r.sampled.library = stockLibrary()

	r.sampled.PlayChord([]note.Note{"C4", "E4"}, 100*time.Millisecond)
	r.advance(50*time.Millisecond, nil)
	if len(r.sampled.ActiveNotes()) != 0 {
		t.Fatal("Expected chord queued while loading")
	}

	r.sampled.MarkLoaded()
	if len(r.sampled.ActiveNotes()) != 2 {
		t.Errorf("Expected chord after replay, got %v", r.sampled.ActiveNotes())
	}

	r.advance(60*time.Millisecond, nil)
	if len(r.sampled.ActiveNotes()) != 0 {
		t.Errorf("Expected chord released, got %v", r.sampled.ActiveNotes())
	}
}

func TestSampledFallbackWhenNoSampleNear(t *testing.T) {
	r := newRig(t, false, false)
	r.sampled.MarkLoaded()

	if err := r.sampled.PlayNote("C4"); err != nil {
		t.Fatalf("PlayNote failed: %v", err)
	}
	if _, ok := r.sampled.Library().fallbacks["C4"]; !ok {
		t.Error("Expected synthesized stand-in cached")
	}
	if p := peak(r.advance(100*time.Millisecond, nil)); p == 0 {
		t.Error("Expected stand-in to be audible")
	}
}

func TestSampledOutputAndRelease(t *testing.T) {
	r := newRig(t, false, false)
	lib := NewLibrary(44100)
	lib.PutFrames("C4", constantFrames(44100, 0.5), 44100)
	r.sampled.library = lib
	r.sampled.MarkLoaded()

	r.sampled.PlayNote("C4")
	out := r.advance(100*time.Millisecond, nil)
	for i, f := range out {
		if f[0] != 0.5 {
			t.Fatalf("Frame %d: expected unshifted sample 0.5, got %f", i, f[0])
		}
	}

	// Sampled release is 300ms
	r.sampled.StopNote("C4")
	r.advance(250*time.Millisecond, nil)
	if r.sampled.State("C4") != Releasing {
		t.Errorf("Expected releasing at 250ms, got %v", r.sampled.State("C4"))
	}
	r.advance(60*time.Millisecond, nil)
	if r.sampled.State("C4") != Idle {
		t.Errorf("Expected idle after 300ms, got %v", r.sampled.State("C4"))
	}
}

func TestSampledPitchShift(t *testing.T) {
	r := newRig(t, false, false)
	lib := NewLibrary(44100)
	lib.PutFrames("C4", constantFrames(44100, 0.5), 44100)
	r.sampled.library = lib
	r.sampled.MarkLoaded()

	// Two semitones up consumes the one second buffer early
	r.sampled.PlayNote("D4")
	r.advance(time.Second, nil)

	v := r.sampled.bank.active["D4"].(*sampleVoice)
	shifted := 44100 / 1.122462
	if e := float64(v.end()); e < shifted-1000 || e > shifted+1000 {
		t.Errorf("Expected natural end near %.0f, got %.0f", shifted, e)
	}
}
