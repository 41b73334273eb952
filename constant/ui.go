package constant

import "time"

// Terminal UI
const (
	FrameInterval  = 16 * time.Millisecond // ~60 FPS
	EventQueueSize = 100
	StatusDuration = 3 * time.Second
	VolumeStep     = 0.1
)

// Key hold detection. Terminals report presses and auto-repeats but no
// releases; a key counts as held while repeats keep arriving.
const (
	KeyHoldInitial = 600 * time.Millisecond // Covers the terminal repeat delay
	KeyHoldRepeat  = 150 * time.Millisecond // Gap allowed between repeats
)

// Virtual keyboard geometry
const (
	WhiteKeyWidth  = 5
	BlackKeyWidth  = 3
	BlackKeyRows   = 3
	KeyboardHeight = 6
)
