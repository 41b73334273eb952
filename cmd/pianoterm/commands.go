package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/pianoterm/core"
	"github.com/lixenwraith/pianoterm/lesson"
	"github.com/lixenwraith/pianoterm/note"
	"github.com/lixenwraith/pianoterm/router"
	"github.com/lixenwraith/pianoterm/schedule"
	"github.com/lixenwraith/pianoterm/settings"
	"github.com/lixenwraith/pianoterm/ui"
)

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// --- play ---

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the interactive tutor",
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	app := ui.NewApp(screen, ui.Deps{
		Audio:    rt.audio,
		Router:   rt.router,
		Settings: rt.settings,
		Catalog:  rt.catalog,
		Apply:    rt.apply,
	})

	ctx, stop := signalContext(cmd)
	defer stop()
	return app.Run(ctx)
}

// --- lessons ---

// listStyles colour CLI output; plain when w is not a terminal
type listStyles struct {
	title lipgloss.Style
	done  lipgloss.Style
	dim   lipgloss.Style
}

func newListStyles(w io.Writer) listStyles {
	r := lipgloss.NewRenderer(w)
	return listStyles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f")),
		done:  r.NewStyle().Foreground(lipgloss.Color("#00ff9f")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("#6e7681")),
	}
}

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List lessons with progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := lesson.Builtin()
		if err != nil {
			return err
		}
		ss, err := openSettings(opts)
		if err != nil {
			return err
		}
		defer ss.Stop()

		records, err := ss.Progress().All(cmd.Context())
		if err != nil {
			return err
		}
		return printLessons(cmd, catalog, records)
	},
}

func printLessons(cmd *cobra.Command, catalog *lesson.Catalog, records map[string]map[string]settings.LessonProgress) error {
	out := cmd.OutOrStdout()
	st := newListStyles(out)
	for _, lvl := range catalog.Levels {
		fmt.Fprintln(out, st.title.Render(lvl.Title))
		for _, l := range lvl.Lessons {
			lp := records[lvl.Name][l.ID]
			mark := st.dim.Render("·")
			switch {
			case lp.Completed:
				mark = st.done.Render("✓")
			case lp.Started:
				mark = "~"
			}
			meta := fmt.Sprintf("%d min, %s", l.Duration, l.Category)
			if lp.Score > 0 {
				meta += fmt.Sprintf(", score %d", lp.Score)
			}
			fmt.Fprintf(out, "  %s %-3s %s %s\n", mark, l.ID, l.Title, st.dim.Render("("+meta+")"))
		}
		fmt.Fprintln(out)
	}
	return nil
}

// --- demo ---

var demoCmd = &cobra.Command{
	Use:   "demo <lessonID>",
	Short: "Play a lesson demo without the UI",
	Long: `Play the demonstration of one lesson and exit when it finishes.

Combine with --mute to run the timeline against the null backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := lesson.Builtin()
		if err != nil {
			return err
		}
		l, err := catalog.Find(args[0])
		if err != nil {
			return err
		}

		rt, err := newRuntime(opts)
		if err != nil {
			return err
		}
		defer rt.close()
		if rt.audio.Disabled() {
			return errors.New("audio playback is unavailable")
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		seq := schedule.Override{Monophonic: true, Release: rt.audio.Config().SequenceRelease}
		tl, buffer := l.Demo(rt.router, seq)
		if tl.Len() == 0 {
			return fmt.Errorf("lesson %s has no demo", l.ID)
		}

		out := cmd.OutOrStdout()
		st := newListStyles(out)
		fmt.Fprintf(out, "%s %s\n", st.title.Render(l.Title),
			st.dim.Render(fmt.Sprintf("(%s, %s on %s)", l.Shape(), (tl.Duration()+buffer).Round(100*time.Millisecond), rt.router.Kind())))
		return rt.router.Play(tl, buffer).Wait(ctx)
	},
}

// --- settings ---

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change persisted settings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every setting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ss, err := openSettings(opts)
		if err != nil {
			return err
		}
		defer ss.Stop()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, name := range settings.Names() {
			v, _ := ss.Settings().Value(name)
			fmt.Fprintf(w, "%s\t%s\n", name, v)
		}
		return w.Flush()
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ss, err := openSettings(opts)
		if err != nil {
			return err
		}
		defer ss.Stop()

		v, err := ss.Settings().Value(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Change one setting",
	Long: `Validate and store one setting.

Settings: ` + strings.Join(settings.Names(), ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ss, err := openSettings(opts)
		if err != nil {
			return err
		}
		defer ss.Stop()
		return ss.Settings().Put(cmd.Context(), ss.Store(), args[0], args[1])
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear settings, progress and practice history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ss, err := openSettings(opts)
		if err != nil {
			return err
		}
		defer ss.Stop()
		return settings.ResetAll(cmd.Context(), ss.Store())
	},
}

// --- midi ---

var midiCmd = &cobra.Command{
	Use:   "midi <device>",
	Short: "Play from a raw MIDI device such as /dev/midi1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rt, err := newRuntime(opts)
		if err != nil {
			return err
		}
		defer rt.close()

		out := cmd.OutOrStdout()
		rt.router.OnNotePlayed(func(n note.Note, src router.Source) {
			fmt.Fprintf(out, "%s (%s)\n", n, src)
		})

		ctx, stop := signalContext(cmd)
		defer stop()

		// A blocked device read only returns once the file closes
		core.Go(func() {
			<-ctx.Done()
			f.Close()
		})

		fmt.Fprintf(out, "Listening on %s, Ctrl+C to stop\n", args[0])
		if err := rt.router.ReadMIDI(ctx, f); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsListCmd, settingsGetCmd, settingsSetCmd, settingsResetCmd)
}
