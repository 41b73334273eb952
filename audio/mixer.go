package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/pianoterm/constant"
	"github.com/lixenwraith/pianoterm/core"
)

// pipeWriter pulls a streamer on a fixed tick and writes s16le stereo
type pipeWriter struct {
	output io.Writer
	src    beep.Streamer
	frames int

	stopChan chan struct{}
	stopped  atomic.Bool
	wg       sync.WaitGroup

	written atomic.Uint64

	// Error signaling
	errChan chan error
}

// newPipeWriter creates a writer pulling one buffer of src per tick
func newPipeWriter(out io.Writer, src beep.Streamer, rate beep.SampleRate) *pipeWriter {
	return &pipeWriter{
		output:   out,
		src:      src,
		frames:   rate.N(constant.AudioBufferDuration),
		stopChan: make(chan struct{}),
		errChan:  make(chan error, 1),
	}
}

// Start begins the write loop
func (w *pipeWriter) Start() {
	w.wg.Add(1)
	core.Go(w.loop)
}

// Stop halts the loop and waits for it
func (w *pipeWriter) Stop() {
	if w.stopped.CompareAndSwap(false, true) {
		close(w.stopChan)
	}
	w.wg.Wait()
}

// Errors returns channel for pipe errors
func (w *pipeWriter) Errors() <-chan error {
	return w.errChan
}

// Written is the number of frames delivered
func (w *pipeWriter) Written() uint64 {
	return w.written.Load()
}

func (w *pipeWriter) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(constant.AudioBufferDuration)
	defer ticker.Stop()

	mixBuf := make([][2]float64, w.frames)
	outBytes := make([]byte, w.frames*constant.AudioBytesPerFrame)

	for {
		select {
		case <-w.stopChan:
			return

		case <-ticker.C:
			n, _ := w.src.Stream(mixBuf)
			framesToBytes(mixBuf[:n], outBytes)

			if _, err := w.output.Write(outBytes[:n*constant.AudioBytesPerFrame]); err != nil {
				select {
				case w.errChan <- fmt.Errorf("%w: %v", ErrPipeClosed, err):
				default:
				}
				return
			}
			w.written.Add(uint64(n))
		}
	}
}

// framesToBytes converts stereo frames to interleaved int16 LE bytes with a hard clip
func framesToBytes(in [][2]float64, out []byte) {
	for i, f := range in {
		for ch, v := range f {
			if v > 1.0 {
				v = 1.0
			} else if v < -1.0 {
				v = -1.0
			}
			binary.LittleEndian.PutUint16(out[i*4+ch*2:], uint16(int16(v*32767)))
		}
	}
}
