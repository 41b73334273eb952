package ui

import (
	"time"

	"github.com/lixenwraith/pianoterm/constant"
)

type heldKey struct {
	last    time.Time
	repeats int
}

// holdTracker infers key releases from the absence of auto-repeat events
type holdTracker struct {
	keys map[rune]*heldKey
}

func newHoldTracker() holdTracker {
	return holdTracker{keys: make(map[rune]*heldKey)}
}

// press records a key event and reports whether it started a new hold
func (h *holdTracker) press(k rune, now time.Time) bool {
	if hk, ok := h.keys[k]; ok {
		hk.last = now
		hk.repeats++
		return false
	}
	h.keys[k] = &heldKey{last: now}
	return true
}

// expired removes and returns keys whose hold window has lapsed
func (h *holdTracker) expired(now time.Time) []rune {
	var out []rune
	for k, hk := range h.keys {
		window := constant.KeyHoldInitial
		if hk.repeats > 0 {
			window = constant.KeyHoldRepeat
		}
		if now.Sub(hk.last) > window {
			out = append(out, k)
			delete(h.keys, k)
		}
	}
	return out
}

func (h *holdTracker) held(k rune) bool {
	_, ok := h.keys[k]
	return ok
}

func (h *holdTracker) reset() {
	clear(h.keys)
}
