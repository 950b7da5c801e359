// Package rnet implements the binary bus protocol of the audio matrix
// controllers.
//
// The package covers both directions of the protocol:
//   - Framing: an F0/F7 delimited byte stream with F1 escaping (Framer)
//   - Decoding: frames into typed Messages (Decode)
//   - Building: every outbound command frame (GetInfo, SetParam, ...)
//   - Configuration: multi-packet controller config reassembly (Reassembler)
//
// # Frame Layout
//
//	┌──────┬───────────────┬───────────────┬──────┬───────┬───────┬─────────┬──────┬──────┐
//	│ F0   │ tgt c/z/k (3) │ src c/z/k (3) │ type │ tpath │ spath │ payload │ csum │ F7   │
//	└──────┴───────────────┴───────────────┴──────┴───────┴───────┴─────────┴──────┴──────┘
//
// Paths are length-prefixed byte sequences. Handshake (0x02) and rendered
// display (0x06) frames carry no paths.
//
// # Escaping
//
// Any byte above 0x7F inside a frame is transmitted as F1 followed by its
// bitwise complement. The Framer removes the escaping exactly once, so every
// decoder in this package works on plain bytes.
//
// # Checksum
//
// The checksum byte sits just before F7:
//
//	csum = (sum(raw[1:csOffset]) + len(raw)) & 0x7F
//
// where raw is the frame as transmitted (escaped).
//
// # Numbering
//
// Controller numbers are 1-based at the API and 0-based on the wire. Zone and
// source numbers are passed through as the device indexes them.
package rnet
