package note

// frequencies holds the published equal-temperament table, A4 = 440Hz, C2..C6
var frequencies = map[Note]float64{
	"C2": 65.41, "C#2": 69.30, "D2": 73.42, "D#2": 77.78, "E2": 82.41, "F2": 87.31,
	"F#2": 92.50, "G2": 98.00, "G#2": 103.83, "A2": 110.00, "A#2": 116.54, "B2": 123.47,

	"C3": 130.81, "C#3": 138.59, "D3": 146.83, "D#3": 155.56, "E3": 164.81, "F3": 174.61,
	"F#3": 185.00, "G3": 196.00, "G#3": 207.65, "A3": 220.00, "A#3": 233.08, "B3": 246.94,

	"C4": 261.63, "C#4": 277.18, "D4": 293.66, "D#4": 311.13, "E4": 329.63, "F4": 349.23,
	"F#4": 369.99, "G4": 392.00, "G#4": 415.30, "A4": 440.00, "A#4": 466.16, "B4": 493.88,

	"C5": 523.25, "C#5": 554.37, "D5": 587.33, "D#5": 622.25, "E5": 659.25, "F5": 698.46,
	"F#5": 739.99, "G5": 783.99, "G#5": 830.61, "A5": 880.00, "A#5": 932.33, "B5": 987.77,

	"C6": 1046.50,
}

// Frequency returns the table frequency in Hz; false for unknown notes
func Frequency(n Note) (float64, bool) {
	f, ok := frequencies[n]
	return f, ok
}

// Known reports whether n has a frequency
func Known(n Note) bool {
	_, ok := frequencies[n]
	return ok
}

// KeyColor distinguishes piano key rendering
type KeyColor uint8

const (
	White KeyColor = iota
	Black
)

// Key is one key of the on-screen keyboard
type Key struct {
	Note  Note
	Color KeyColor
}

// PianoKeys is the on-screen keyboard, C4..C6
var PianoKeys = func() []Key {
	keys := make([]Key, 0, 25)
	for octave := 4; octave <= 5; octave++ {
		for _, name := range chromaticNames {
			n := With(name, octave)
			c := White
			if n.IsSharp() {
				c = Black
			}
			keys = append(keys, Key{Note: n, Color: c})
		}
	}
	return append(keys, Key{Note: "C6", Color: White})
}()

// fingerNumbers holds right-hand fingering for the C major scale region
var fingerNumbers = map[Note]string{
	"C4": "1", "D4": "2", "E4": "3", "F4": "1", "G4": "2", "A4": "3", "B4": "4", "C5": "5",
	"D5": "1", "E5": "2", "F5": "3", "G5": "4", "A5": "5",
}

// FingerNumber returns the suggested finger for n, empty when none
func FingerNumber(n Note) string {
	return fingerNumbers[n]
}
