package rnet

import (
	"errors"
	"fmt"
	"io"
)

// Frame markers.
const (
	// StartOfMessage opens every frame.
	StartOfMessage byte = 0xF0

	// EndOfMessage closes every frame.
	EndOfMessage byte = 0xF7

	// EscapeMarker means the next byte is transmitted complemented.
	EscapeMarker byte = 0xF1
)

// MaxFrameSize bounds the unescaped size of a frame. Config packets are the
// largest frames observed and stay well below it.
const MaxFrameSize = 512

// Frame is one de-framed message.
type Frame struct {
	// Data is the unescaped frame: F0 at index 0, checksum at len-2 and F7
	// at len-1.
	Data []byte

	// Raw is the frame as transmitted, escapes included. The checksum is
	// defined over these bytes.
	Raw []byte
}

// Header returns the header bytes of a frame long enough to carry one, so
// the type and sender are known even when the rest does not decode.
func (f Frame) Header() (Header, bool) {
	if len(f.Data) < minFrameSize {
		return Header{}, false
	}
	d := f.Data
	return Header{
		TargetController: d[1],
		TargetZone:       d[2],
		TargetKeypad:     d[3],
		SourceController: d[4],
		SourceZone:       d[5],
		SourceKeypad:     d[6],
		MessageType:      MessageType(d[offsetType]),
	}, true
}

// FramerState is the de-framing state.
type FramerState uint8

const (
	// FramerIdle discards bytes until a start marker.
	FramerIdle FramerState = iota

	// FramerInFrame accumulates bytes until an end marker.
	FramerInFrame
)

// String returns the state name.
func (s FramerState) String() string {
	switch s {
	case FramerIdle:
		return "IDLE"
	case FramerInFrame:
		return "IN_FRAME"
	default:
		return "UNKNOWN"
	}
}

// Framer splits a byte stream into frames and removes escaping. Partial
// frames are retained across Feed calls, so arbitrary chunk boundaries are
// fine. A Framer is not safe for concurrent use; it belongs to the receive
// loop that feeds it.
type Framer struct {
	state   FramerState
	escaped bool
	data    []byte
	raw     []byte
	maxSize int
}

// NewFramer creates a framer with the default size limit.
func NewFramer() *Framer {
	return NewFramerWithMaxSize(MaxFrameSize)
}

// NewFramerWithMaxSize creates a framer with a custom size limit.
func NewFramerWithMaxSize(maxSize int) *Framer {
	if maxSize <= 0 {
		maxSize = MaxFrameSize
	}
	return &Framer{
		maxSize: maxSize,
		data:    make([]byte, 0, 64),
		raw:     make([]byte, 0, 64),
	}
}

// State returns the current de-framing state.
func (f *Framer) State() FramerState {
	return f.state
}

// Reset discards any partial frame.
func (f *Framer) Reset() {
	f.state = FramerIdle
	f.escaped = false
	f.data = f.data[:0]
	f.raw = f.raw[:0]
}

// Feed consumes a chunk and returns the frames it completed. Dropped partial
// frames are reported through the returned error (joined when more than one);
// completed frames are valid even when err is non-nil.
func (f *Framer) Feed(chunk []byte) ([]Frame, error) {
	var frames []Frame
	var errs []error

	for _, b := range chunk {
		if f.state == FramerIdle {
			if b == StartOfMessage {
				f.begin()
			}
			continue
		}

		f.raw = append(f.raw, b)

		switch {
		case f.escaped:
			f.escaped = false
			f.data = append(f.data, ^b)
		case b == EscapeMarker:
			f.escaped = true
		case b == StartOfMessage:
			errs = append(errs, fmt.Errorf("%w after %d bytes", ErrFrameAbandoned, len(f.data)))
			f.begin()
		case b == EndOfMessage:
			f.data = append(f.data, b)
			frames = append(frames, Frame{
				Data: append([]byte(nil), f.data...),
				Raw:  append([]byte(nil), f.raw...),
			})
			f.Reset()
		default:
			f.data = append(f.data, b)
		}

		if f.state == FramerInFrame && len(f.data) > f.maxSize {
			errs = append(errs, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(f.data), f.maxSize))
			f.Reset()
		}
	}

	return frames, errors.Join(errs...)
}

func (f *Framer) begin() {
	f.state = FramerInFrame
	f.escaped = false
	f.data = append(f.data[:0], StartOfMessage)
	f.raw = append(f.raw[:0], StartOfMessage)
}

// Escape returns b with every byte above 0x7F replaced by F1 and its
// complement. Frame markers never appear in the result.
func Escape(b []byte) []byte {
	out := make([]byte, 0, len(b)+len(b)/4)
	for _, c := range b {
		if c > 0x7F {
			out = append(out, EscapeMarker, ^c)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Unescape reverses Escape. A trailing lone escape marker is dropped.
func Unescape(b []byte) []byte {
	out := make([]byte, 0, len(b))
	escaped := false
	for _, c := range b {
		switch {
		case escaped:
			out = append(out, ^c)
			escaped = false
		case c == EscapeMarker:
			escaped = true
		default:
			out = append(out, c)
		}
	}
	return out
}

// FrameReader reads frames from a stream transport.
type FrameReader struct {
	r       io.Reader
	framer  *Framer
	buf     []byte
	pending []Frame

	// OnDrop, if set, receives framing errors for dropped partial frames.
	OnDrop func(err error)
}

// NewFrameReader creates a frame reader with a 4 KB read buffer.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{
		r:      r,
		framer: NewFramer(),
		buf:    make([]byte, 4096),
	}
}

// ReadFrame returns the next complete frame. Bytes belonging to a partial
// frame when the stream ends are discarded and the read error is returned.
func (fr *FrameReader) ReadFrame() (Frame, error) {
	for len(fr.pending) == 0 {
		n, err := fr.r.Read(fr.buf)
		if n > 0 {
			frames, dropErr := fr.framer.Feed(fr.buf[:n])
			if dropErr != nil && fr.OnDrop != nil {
				fr.OnDrop(dropErr)
			}
			fr.pending = append(fr.pending, frames...)
		}
		if err != nil && len(fr.pending) == 0 {
			return Frame{}, err
		}
	}

	frame := fr.pending[0]
	fr.pending = fr.pending[1:]
	return frame, nil
}
