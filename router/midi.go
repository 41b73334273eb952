package router

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"

	"gitlab.com/gomidi/midi/v2"

	"github.com/lixenwraith/pianoterm/note"
)

// HandleMIDI routes one channel message. Note-on with velocity above zero
// plays; note-off or note-on with zero velocity releases. Any channel.
func (r *Router) HandleMIDI(msg midi.Message) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		r.NoteOn(note.FromMIDI(key), SourceMIDI)
	case msg.GetNoteEnd(&ch, &key):
		r.NoteOff(note.FromMIDI(key))
	}
}

// ReadMIDI feeds a raw MIDI byte stream, such as /dev/midi1, into the router
// until EOF or ctx is done. Running status is honoured; system messages are
// skipped.
func (r *Router) ReadMIDI(ctx context.Context, src io.Reader) error {
	br := bufio.NewReader(src)
	var status byte
	data := make([]byte, 0, 2)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch {
		case b >= 0xF8:
			// Realtime bytes may interleave with anything
			continue
		case b >= 0xF0:
			// System common and sysex cancel running status
			status = 0
			data = data[:0]
			continue
		case b&0x80 != 0:
			status = b
			data = data[:0]
			continue
		}

		if status == 0 {
			continue
		}
		data = append(data, b)
		if len(data) < channelDataLen(status) {
			continue
		}

		msg := midi.Message(append([]byte{status}, data...))
		data = data[:0]
		switch status & 0xF0 {
		case 0x80, 0x90:
			r.HandleMIDI(msg)
		default:
			log.Printf("[router] midi: ignored % X", []byte(msg))
		}
	}
}

// channelDataLen is the number of data bytes after a channel status byte
func channelDataLen(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	default:
		return 2
	}
}
