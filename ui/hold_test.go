package ui

import (
	"testing"
	"time"

	"github.com/lixenwraith/pianoterm/constant"
)

func TestHoldTracker(t *testing.T) {
	h := newHoldTracker()
	t0 := time.Unix(0, 0)

	if !h.press('z', t0) {
		t.Fatal("Expected first press to start a hold")
	}
	if h.press('z', t0.Add(10*time.Millisecond)) {
		t.Error("Expected repeat to extend the hold")
	}

	// After a repeat the shorter window applies
	at := t0.Add(10*time.Millisecond + constant.KeyHoldRepeat)
	if got := h.expired(at); len(got) != 0 {
		t.Errorf("Expected nothing expired at the window edge, got %q", got)
	}
	got := h.expired(at.Add(time.Millisecond))
	if len(got) != 1 || got[0] != 'z' {
		t.Fatalf("Expected z expired, got %q", got)
	}
	if h.held('z') {
		t.Error("Expected z no longer held")
	}
}

func TestHoldInitialWindow(t *testing.T) {
	h := newHoldTracker()
	t0 := time.Unix(0, 0)
	h.press('x', t0)

	// A single press survives the terminal's repeat delay
	if got := h.expired(t0.Add(constant.KeyHoldRepeat * 2)); len(got) != 0 {
		t.Errorf("Expected x held before the initial window, got %q", got)
	}
	if got := h.expired(t0.Add(constant.KeyHoldInitial + time.Millisecond)); len(got) != 1 {
		t.Errorf("Expected x expired, got %q", got)
	}

	h.press('a', t0)
	h.reset()
	if h.held('a') {
		t.Error("Expected reset to clear holds")
	}
}
