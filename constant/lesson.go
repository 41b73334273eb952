package constant

import "time"

// Demo Playback
const (
	DemoTempo            = 120 // BPM for lesson sequences
	ImprovisationTempo   = 100 // BPM for the improvisation melody
	ChordSpacing         = 1500 * time.Millisecond
	LessonChordLength    = 1000 * time.Millisecond
	ImprovChordLength    = 1200 * time.Millisecond
	DemoPartPause        = 1 * time.Second
	DemoEndBuffer        = 500 * time.Millisecond
	MultiPartDemoBuffer  = 1 * time.Second
	FeedbackHighlightDur = 500 * time.Millisecond
)

// Rhythm Patterns
const (
	DottedSlot       = 500 * time.Millisecond
	DottedLong       = 0.75 // Beats, even indices
	DottedShort      = 0.25 // Beats, odd indices
	TripletGroup     = 500 * time.Millisecond
	SyncopationGrid  = 300 * time.Millisecond
	SyncopationDelay = 50 * time.Millisecond
	SyncopationNote  = 250 * time.Millisecond
)
