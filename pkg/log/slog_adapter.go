package log

import (
	"context"
	"encoding/hex"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("protocol", event.Protocol.String()),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.String("frame", hex.EncodeToString(event.Frame.Data)),
		)
		if event.Frame.Truncated {
			attrs = append(attrs, slog.Bool("truncated", true))
		}
		if event.Frame.ChecksumOK != nil {
			attrs = append(attrs, slog.Bool("checksum_ok", *event.Frame.ChecksumOK))
		}
	case event.Message != nil:
		m := event.Message
		attrs = append(attrs,
			slog.Int("msg_type", int(m.Type)),
			slog.String("kind", m.Kind),
		)
		if m.Controller != nil {
			attrs = append(attrs, slog.Int("controller", *m.Controller))
		}
		if m.Zone != nil {
			attrs = append(attrs, slog.Int("zone", *m.Zone))
		}
		if m.Value != nil {
			attrs = append(attrs, slog.Int("value", *m.Value))
		}
		if m.EventID != nil {
			attrs = append(attrs, slog.Int("event_id", int(*m.EventID)))
		}
	case event.Line != nil:
		attrs = append(attrs, slog.String("line", event.Line.Raw))
		if event.Line.Attribute != "" {
			attrs = append(attrs,
				slog.String("path", event.Line.Path),
				slog.String("attr", event.Line.Attribute),
			)
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
