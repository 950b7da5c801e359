// Package log captures protocol traffic of RNET and RIO connections.
//
// It is separate from operational logging (slog). A capture holds every frame
// or line exchanged with a controller together with its decoded form,
// connection state changes and protocol errors.
//
// # Usage
//
//	// Console, during development:
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Capture file:
//	capture, _ := log.NewFileLogger("/var/log/rnet/living-room.rlog")
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), capture)
//
// # Events
//
//   - Transport: raw RNET frames (FrameEvent) and RIO lines (LineEvent)
//   - Codec: decoded RNET messages (MessageEvent)
//   - State: connection, config and discovery transitions (StateChangeEvent)
//   - Errors at any layer (ErrorEventData)
//
// # File format
//
// Captures are CBOR sequences with integer map keys, conventionally named
// with the .rlog extension. The rnet-log tool views, filters and exports them.
package log
