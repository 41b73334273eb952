package audio

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// pipePlayer is a command that plays raw s16le stereo from stdin
type pipePlayer struct {
	typ  BackendType
	name string
	bin  string
	args func(rate string) []string
}

// pipePlayers in preference order
var pipePlayers = []pipePlayer{
	{BackendPulse, "pacat", "pacat", func(r string) []string {
		return []string{"--raw", "--format=s16le", "--rate=" + r, "--channels=2", "--latency-msec=50", "--playback"}
	}},
	{BackendPipeWire, "pw-cat", "pw-cat", func(r string) []string {
		return []string{"--playback", "--format=s16", "--rate=" + r, "--channels=2", "--latency=50ms", "-"}
	}},
	{BackendALSA, "aplay", "aplay", func(r string) []string {
		return []string{"-t", "raw", "-f", "S16_LE", "-r", r, "-c", "2", "-q"}
	}},
	{BackendSoX, "sox", "play", func(r string) []string {
		return []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", r, "-", "-d", "-q"}
	}},
	{BackendFFplay, "ffplay", "ffplay", func(r string) []string {
		return []string{
			"-nodisp", "-autoexit",
			"-f", "s16le", "-ac", "2", "-ar", r,
			"-probesize", "32", "-analyzeduration", "0",
			"-i", "pipe:0", "-loglevel", "quiet",
		}
	}},
}

// DetectBackend returns the first pipe player on PATH for rate, falling back
// to direct /dev/dsp writes on FreeBSD
func DetectBackend(rate int) (*BackendConfig, error) {
	return detectWith(exec.LookPath, rate)
}

func detectWith(lookPath func(string) (string, error), rate int) (*BackendConfig, error) {
	r := strconv.Itoa(rate)
	for _, p := range pipePlayers {
		if path, err := lookPath(p.bin); err == nil {
			return &BackendConfig{Type: p.typ, Name: p.name, Path: path, Args: p.args(r)}, nil
		}
	}

	if runtime.GOOS == "freebsd" {
		if _, err := os.Stat("/dev/dsp"); err == nil {
			return &BackendConfig{Type: BackendOSS, Name: "oss", Path: "/dev/dsp"}, nil
		}
	}
	return nil, ErrNoAudioBackend
}
