package audio

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/core"
)

// Backend pulls the master graph into an output device
type Backend interface {
	Name() string
	Start(src beep.Streamer) error
	Stop()
	// Failed is closed when output breaks after a successful start
	Failed() <-chan struct{}
}

// NewBackend builds a backend by name: speaker, pipe or null
func NewBackend(name string, rate beep.SampleRate) (Backend, error) {
	switch name {
	case "speaker":
		return &speakerBackend{rate: rate}, nil
	case "pipe":
		cfg, err := DetectBackend(int(rate))
		if err != nil {
			return nil, err
		}
		return newPipeBackend(cfg, rate), nil
	case "null":
		return newNullBackend(rate), nil
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}

// speakerBackend plays through beep/speaker (oto)
type speakerBackend struct {
	rate    beep.SampleRate
	started atomic.Bool
	failed  chan struct{}
}

func (b *speakerBackend) Name() string { return "speaker" }

func (b *speakerBackend) Start(src beep.Streamer) error {
	if err := speaker.Init(b.rate, b.rate.N(constant.SpeakerBufferDuration)); err != nil {
		return fmt.Errorf("%w: speaker: %v", ErrNoAudioBackend, err)
	}
	b.failed = make(chan struct{})
	speaker.Play(src)
	b.started.Store(true)
	return nil
}

func (b *speakerBackend) Stop() {
	if b.started.CompareAndSwap(true, false) {
		speaker.Clear()
		speaker.Close()
	}
}

func (b *speakerBackend) Failed() <-chan struct{} { return b.failed }

// pipeBackend feeds a system player process (or OSS device) over stdin
type pipeBackend struct {
	config *BackendConfig
	rate   beep.SampleRate

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	ossFile *os.File // For direct OSS writes
	writer  *pipeWriter

	running  atomic.Bool
	failed   chan struct{}
	failOnce sync.Once
	wg       sync.WaitGroup
}

func newPipeBackend(cfg *BackendConfig, rate beep.SampleRate) *pipeBackend {
	return &pipeBackend{config: cfg, rate: rate, failed: make(chan struct{})}
}

func (b *pipeBackend) Name() string { return b.config.Name }

func (b *pipeBackend) Start(src beep.Streamer) error {
	if b.running.Load() {
		return fmt.Errorf("audio backend %s already running", b.config.Name)
	}

	var out io.Writer
	if b.config.Type == BackendOSS {
		// Direct file write for OSS
		f, err := os.OpenFile(b.config.Path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoAudioBackend, err)
		}
		b.ossFile = f
		out = f
	} else {
		cmd := exec.Command(b.config.Path, b.config.Args...)
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoAudioBackend, err)
		}
		if err := cmd.Start(); err != nil {
			stdin.Close()
			return fmt.Errorf("%w: %s: %v", ErrNoAudioBackend, b.config.Name, err)
		}
		b.cmd = cmd
		b.stdin = stdin
		out = stdin

		b.wg.Add(1)
		core.Go(b.monitorProcess)
	}

	b.writer = newPipeWriter(out, src, b.rate)
	b.writer.Start()

	b.wg.Add(1)
	core.Go(b.monitorWriter)

	b.running.Store(true)
	return nil
}

// monitorProcess watches for subprocess exit
func (b *pipeBackend) monitorProcess() {
	defer b.wg.Done()
	if err := b.cmd.Wait(); err != nil && b.running.Load() {
		b.fail()
	}
}

// monitorWriter watches for pipe errors
func (b *pipeBackend) monitorWriter() {
	defer b.wg.Done()
	select {
	case <-b.writer.Errors():
		b.fail()
	case <-b.writer.stopChan:
	}
}

func (b *pipeBackend) fail() {
	b.failOnce.Do(func() { close(b.failed) })
}

func (b *pipeBackend) Failed() <-chan struct{} { return b.failed }

// Stop terminates the writer and the player process
func (b *pipeBackend) Stop() {
	if !b.running.CompareAndSwap(true, false) {
		return
	}

	b.writer.Stop()
	if b.stdin != nil {
		b.stdin.Close()
	}
	if b.ossFile != nil {
		b.ossFile.Close()
	}
	if b.cmd != nil && b.cmd.Process != nil {
		b.cmd.Process.Kill()
	}
	b.wg.Wait()
}

// nullBackend pulls the graph in real time and discards the output.
// Keeps the audio clock running for --mute and headless demos.
type nullBackend struct {
	rate    beep.SampleRate
	writer  *pipeWriter
	running atomic.Bool
	failed  chan struct{}
}

func newNullBackend(rate beep.SampleRate) *nullBackend {
	return &nullBackend{rate: rate, failed: make(chan struct{})}
}

func (b *nullBackend) Name() string { return "null" }

func (b *nullBackend) Start(src beep.Streamer) error {
	if !b.running.CompareAndSwap(false, true) {
		return fmt.Errorf("audio backend null already running")
	}
	b.writer = newPipeWriter(io.Discard, src, b.rate)
	b.writer.Start()
	return nil
}

func (b *nullBackend) Stop() {
	if b.running.CompareAndSwap(true, false) {
		b.writer.Stop()
	}
}

func (b *nullBackend) Failed() <-chan struct{} { return b.failed }
