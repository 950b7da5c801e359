package rnet

import "errors"

// Framing and decode errors. All of them are non-fatal: the frame is dropped
// and the Framer resynchronises on the next start marker.
var (
	// ErrFrameTooShort indicates a frame without room for header and trailer.
	ErrFrameTooShort = errors.New("frame too short")

	// ErrFrameTooLarge indicates a frame exceeding MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrFrameAbandoned indicates a start marker arrived inside a frame.
	ErrFrameAbandoned = errors.New("frame abandoned by new start marker")

	// ErrMalformedFrame indicates missing start or end markers.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrTruncatedPath indicates a path length running past the frame body.
	ErrTruncatedPath = errors.New("truncated path")

	// ErrTruncatedPayload indicates a payload shorter than its grammar needs.
	ErrTruncatedPayload = errors.New("truncated payload")

	// ErrChecksumMismatch indicates the checksum byte does not match.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Configuration reassembly errors.
var (
	// ErrPacketOutOfOrder indicates a gap, duplicate or out-of-order packet.
	ErrPacketOutOfOrder = errors.New("config packet out of order")

	// ErrInvalidPacketCount indicates a packet count of zero.
	ErrInvalidPacketCount = errors.New("invalid config packet count")

	// ErrConfigTruncated indicates table offsets past the assembled buffer.
	ErrConfigTruncated = errors.New("config buffer truncated")
)

// Builder errors.
var (
	// ErrInvalidController indicates a controller number outside 1..127.
	ErrInvalidController = errors.New("invalid controller number")

	// ErrInvalidZone indicates a zone number that does not fit a byte.
	ErrInvalidZone = errors.New("invalid zone number")

	// ErrInvalidParam indicates an unknown parameter index.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrInvalidInfoCode indicates an info code with an unsupported depth.
	ErrInvalidInfoCode = errors.New("invalid info code")
)
