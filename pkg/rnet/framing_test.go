package rnet

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeRoundTrip(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	inputs := [][]byte{
		nil,
		{},
		{0x00},
		{StartOfMessage, EscapeMarker, EndOfMessage},
		{0x7F, 0x80, 0xFF},
		all,
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		b := make([]byte, rng.Intn(64))
		rng.Read(b)
		inputs = append(inputs, b)
	}

	for _, in := range inputs {
		escaped := Escape(in)
		assert.NotContains(t, string(escaped), string([]byte{StartOfMessage}))
		assert.NotContains(t, string(escaped), string([]byte{EndOfMessage}))
		for _, c := range escaped {
			if c > 0x7F {
				assert.Equal(t, EscapeMarker, c)
			}
		}

		got := Unescape(escaped)
		if len(in) == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, in, got)
	}
}

func TestFramerSingleFrame(t *testing.T) {
	frame, err := Volume(1, 2, 30)
	require.NoError(t, err)

	f := NewFramer()
	frames, err := f.Feed(frame)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	assert.Equal(t, frame, frames[0].Raw)
	assert.Equal(t, StartOfMessage, frames[0].Data[0])
	assert.Equal(t, EndOfMessage, frames[0].Data[len(frames[0].Data)-1])
	assert.NotContains(t, string(frames[0].Data[1:len(frames[0].Data)-1]), string([]byte{EscapeMarker}))
	assert.Equal(t, FramerIdle, f.State())
}

func TestFramerChunkBoundaries(t *testing.T) {
	a, err := SetSource(1, 2, 3)
	require.NoError(t, err)
	b, err := SetParam(1, 4, ParamBass, 0x90)
	require.NoError(t, err)
	stream := append(append([]byte(nil), a...), b...)

	for size := 1; size <= len(stream); size++ {
		f := NewFramer()
		var frames []Frame
		for off := 0; off < len(stream); off += size {
			end := off + size
			if end > len(stream) {
				end = len(stream)
			}
			got, err := f.Feed(stream[off:end])
			require.NoError(t, err)
			frames = append(frames, got...)
		}
		require.Len(t, frames, 2, "chunk size %d", size)
		assert.Equal(t, a, frames[0].Raw)
		assert.Equal(t, b, frames[1].Raw)
	}
}

func TestFramerResynchronises(t *testing.T) {
	frame, err := Acknowledge(1)
	require.NoError(t, err)

	var stream []byte
	stream = append(stream, 0x11, 0x22, EndOfMessage)        // noise while idle
	stream = append(stream, StartOfMessage, 0x01, 0x02, 0x03) // truncated frame
	stream = append(stream, frame...)

	f := NewFramer()
	frames, err := f.Feed(stream)
	require.Len(t, frames, 1)
	assert.Equal(t, frame, frames[0].Raw)
	assert.True(t, errors.Is(err, ErrFrameAbandoned))
}

func TestFramerTooLarge(t *testing.T) {
	f := NewFramerWithMaxSize(16)
	chunk := append([]byte{StartOfMessage}, bytes.Repeat([]byte{0x01}, 32)...)

	frames, err := f.Feed(chunk)
	assert.Empty(t, frames)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Equal(t, FramerIdle, f.State())

	// The framer recovers on the next frame.
	frame, err := Acknowledge(2)
	require.NoError(t, err)
	frames, err = f.Feed(frame)
	require.NoError(t, err)
	require.Len(t, frames, 1)
}

func TestFramerEscapedEndMarker(t *testing.T) {
	// F1 08 is an escaped F7 and must not end the frame.
	f := NewFramer()
	frames, err := f.Feed([]byte{StartOfMessage, 0x01, EscapeMarker, ^EndOfMessage, 0x02, EndOfMessage})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{StartOfMessage, 0x01, EndOfMessage, 0x02, EndOfMessage}, frames[0].Data)
}

func TestFramerReset(t *testing.T) {
	f := NewFramer()
	_, err := f.Feed([]byte{StartOfMessage, 0x01})
	require.NoError(t, err)
	assert.Equal(t, FramerInFrame, f.State())

	f.Reset()
	assert.Equal(t, FramerIdle, f.State())
	assert.Equal(t, "IDLE", f.State().String())
}

func TestFrameReader(t *testing.T) {
	a, err := Volume(1, 1, 10)
	require.NoError(t, err)
	b, err := SetState(1, 1, false)
	require.NoError(t, err)

	var dropped []error
	fr := NewFrameReader(bytes.NewReader(append(append(append([]byte(nil), a...), StartOfMessage, 0x01), b...)))
	fr.OnDrop = func(err error) { dropped = append(dropped, err) }

	got, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, a, got.Raw)

	got, err = fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, b, got.Raw)

	_, err = fr.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, dropped, 1)
	assert.ErrorIs(t, dropped[0], ErrFrameAbandoned)
}

func TestFrameHeader(t *testing.T) {
	raw := []byte{0xF0, 0x00, 0x00, 0x7F, 0x02, 0x00, 0x70, 0x00, 0x09, 0x02, 0x00, 0x00, 0x00, 0xF7}
	frames, err := NewFramer().Feed(raw)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	// The paths do not decode but the header is still readable.
	_, err = DecodeFrame(frames[0])
	require.ErrorIs(t, err, ErrTruncatedPath)
	h, ok := frames[0].Header()
	require.True(t, ok)
	assert.Equal(t, Header{TargetKeypad: 0x7F, SourceController: 0x02, SourceKeypad: 0x70, MessageType: TypeSetData}, h)

	_, ok = Frame{Data: []byte{0xF0, 0x00, 0xF7}}.Header()
	assert.False(t, ok)
}
