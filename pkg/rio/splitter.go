package rio

import "fmt"

// DefaultMaxLineSize bounds an unterminated line.
const DefaultMaxLineSize = 4096

// LineSplitter splits a byte stream into lines. CR, LF and CRLF all end a
// line; empty lines are skipped. Partial lines are kept across Feed calls.
type LineSplitter struct {
	buf     []byte
	maxSize int
}

// NewLineSplitter creates a splitter with the default line limit.
func NewLineSplitter() *LineSplitter {
	return &LineSplitter{maxSize: DefaultMaxLineSize}
}

// Feed consumes a chunk and returns the complete lines in it. When the
// partial line grows past the limit it is discarded and ErrLineTooLong is
// returned with any lines completed before it.
func (s *LineSplitter) Feed(chunk []byte) ([]string, error) {
	var lines []string
	var err error
	for _, b := range chunk {
		if b == '\r' || b == '\n' {
			if len(s.buf) > 0 {
				lines = append(lines, string(s.buf))
				s.buf = s.buf[:0]
			}
			continue
		}
		s.buf = append(s.buf, b)
		if len(s.buf) > s.maxSize {
			err = fmt.Errorf("%w: more than %d bytes", ErrLineTooLong, s.maxSize)
			s.buf = s.buf[:0]
		}
	}
	return lines, err
}

// Pending returns the buffered partial line.
func (s *LineSplitter) Pending() string {
	return string(s.buf)
}
