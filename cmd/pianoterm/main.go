// Command pianoterm is a terminal piano tutor.
//
// Usage:
//
//	pianoterm [flags] [command]
//
// Commands:
//
//	play      - Interactive lessons, practice and settings (default)
//	lessons   - List the lesson catalog with progress
//	demo      - Play a lesson demo without the UI
//	settings  - Read and change persisted settings
//	midi      - Play from a raw MIDI device
package main

import (
	"fmt"
	"os"

	"github.com/lixenwraith/pianoterm/core"
)

func main() {
	// Ensure terminal is reset even if the UI crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
