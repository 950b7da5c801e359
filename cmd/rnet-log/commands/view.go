// Package commands implements the rnet-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/rnetctl/rnet-go/pkg/log"
	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// timeFormat is used for every timestamp printed or exported.
const timeFormat = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [conn:id] DIRECTION LAYER protocol Type
	ts := event.Timestamp.UTC().Format(timeFormat)
	connID := shortenConnID(event.ConnectionID)

	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s %s\n",
		ts, connID, event.Direction, event.Layer, event.Protocol, eventType(event))

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.Line != nil:
		formatLineDetails(w, event.Line)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// eventType returns the label for the event's payload.
func eventType(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "Frame"
	case event.Message != nil:
		return event.Message.Kind
	case event.Line != nil:
		if event.Line.Tag == "" {
			return "Command"
		}
		return "Line"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
	if frame.ChecksumOK != nil && !*frame.ChecksumOK {
		fmt.Fprintln(w, "  Checksum: MISMATCH")
	}
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	fmt.Fprintf(w, "  Type: %s\n", rnet.MessageType(msg.Type))
	fmt.Fprintf(w, "  Target: %d/%d/%02x  Source: %d/%d/%02x\n",
		msg.TargetController, msg.TargetZone, msg.TargetKeypad,
		msg.SourceController, msg.SourceZone, msg.SourceKeypad)
	if len(msg.TargetPath) > 0 || len(msg.SourcePath) > 0 {
		fmt.Fprintf(w, "  Paths: %s -> %s\n", rnet.Path(msg.SourcePath), rnet.Path(msg.TargetPath))
	}

	var parts []string
	if msg.Controller != nil {
		parts = append(parts, fmt.Sprintf("Controller: %d", *msg.Controller))
	}
	if msg.Zone != nil {
		parts = append(parts, fmt.Sprintf("Zone: %d", *msg.Zone+1))
	}
	if msg.Value != nil {
		parts = append(parts, fmt.Sprintf("Value: %d", *msg.Value))
	}
	if msg.EventID != nil {
		parts = append(parts, fmt.Sprintf("Event: 0x%02x", *msg.EventID))
	}
	if msg.RenderType != nil {
		parts = append(parts, fmt.Sprintf("Render: 0x%02x", *msg.RenderType))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, "  "))
	}
}

func formatLineDetails(w io.Writer, l *log.LineEvent) {
	fmt.Fprintf(w, "  %s\n", l.Raw)
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseLayerFlag parses a layer string (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "codec":
		return log.LayerCodec, nil
	case "client":
		return log.LayerClient, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, codec, or client)", s)
	}
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}

// ParseProtocolFlag parses a protocol string (case-insensitive).
func ParseProtocolFlag(s string) (log.Protocol, error) {
	switch strings.ToLower(s) {
	case "rnet":
		return log.ProtocolRNET, nil
	case "rio":
		return log.ProtocolRIO, nil
	default:
		return 0, fmt.Errorf("invalid protocol: %s (must be rnet or rio)", s)
	}
}

// RunView prints every event matching filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
