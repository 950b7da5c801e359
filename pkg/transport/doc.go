// Package transport connects to a controller and runs the receive loop.
//
// A Conn owns exactly one transport:
//
//	┌─────────────────────┬──────────┬────────────────────────────┐
//	│ Kind                │ socket   │ payload                    │
//	├─────────────────────┼──────────┼────────────────────────────┤
//	│ BinaryStream        │ TCP      │ RNET frames, any chunking  │
//	│ BinaryDatagram      │ UDP      │ one RNET frame per packet  │
//	│ TextStream          │ TCP 9621 │ RIO lines                  │
//	└─────────────────────┴──────────┴────────────────────────────┘
//
// Received data is decoded on the receive goroutine and passed to the
// Handler synchronously, so handlers must not block. Every Set-Data frame is
// answered with a handshake when AutoAck is set.
//
// When a stream drops, the Conn moves to Disconnected, delivers
// rnet.LostConnectionMessage (binary streams) and reports ErrConnectionLost.
// It does not retry; see package connection for a supervisor that does.
//
// Synchronous RIO requests (Get, Discover, RequestConfig) must be issued from
// a goroutine other than the receive loop.
package transport
