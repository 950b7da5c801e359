package log

import (
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// StreamLogger writes events as a CBOR sequence. It is safe for concurrent
// use.
type StreamLogger struct {
	w       io.Writer
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewStreamLogger writes events to w. If w is an io.Closer, Close closes it.
func NewStreamLogger(w io.Writer) *StreamLogger {
	return &StreamLogger{w: w, encoder: newEncoder(w)}
}

// NewFileLogger appends events to the file at path, creating it with mode
// 0644.
func NewFileLogger(path string) (*StreamLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return NewStreamLogger(f), nil
}

// Log encodes the event. Encoding errors are dropped.
func (l *StreamLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	_ = l.encoder.Encode(event)
}

// Close stops logging and closes the underlying writer. Later Log calls are
// ignored.
func (l *StreamLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ Logger = (*StreamLogger)(nil)
