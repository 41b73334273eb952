package main

import (
	"os"

	"github.com/spf13/cobra"
)

// options are the global flags
type options struct {
	debug      bool
	configPath string
	dataDir    string
	backend    string
	mute       bool
}

var (
	opts    options
	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "pianoterm",
	Short: "Learn to play piano in the terminal",
	Long: `pianoterm - lessons, practice and free play on a virtual piano.

Play with the computer keyboard (z..m and q..i by default), the mouse, or a
MIDI keyboard. Progress and settings are kept in the user config directory.

Examples:
  # Start the interactive tutor
  pianoterm

  # Hear the demo of the first lesson without the UI
  pianoterm demo b1

  # Switch to the sampled piano
  pianoterm settings set pianoSoundType sampled`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logFile = setupLogging(opts.debug)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	},
	RunE: runPlay,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&opts.debug, "debug", false, "write logs to "+logDir+"/"+logFileName)
	pf.StringVar(&opts.configPath, "config", "", "YAML audio config file")
	pf.StringVar(&opts.dataDir, "data-dir", "", "settings and progress directory (default: user config dir)")
	pf.StringVar(&opts.backend, "backend", "", "audio output: auto, speaker, pipe, null")
	pf.BoolVar(&opts.mute, "mute", false, "play into the null backend")

	rootCmd.AddCommand(playCmd, lessonsCmd, demoCmd, settingsCmd, midiCmd)
}
