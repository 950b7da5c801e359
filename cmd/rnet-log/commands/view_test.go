package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rnetctl/rnet-go/pkg/log"
)

func TestFormatFrameEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[0])
	output := buf.String()

	for _, want := range []string{
		"2026-03-01T10:15:32.123456Z",
		"[conn:abc12345]",
		"IN  TRANSPORT RNET Frame",
		"Size: 5 bytes",
		"Data: f07d007ff7",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestFormatFrameChecksumMismatch(t *testing.T) {
	ok := false
	event := sampleEvents()[0]
	event.Frame.ChecksumOK = &ok

	var buf bytes.Buffer
	formatEvent(&buf, event)
	if !strings.Contains(buf.String(), "Checksum: MISMATCH") {
		t.Errorf("expected checksum mismatch, got:\n%s", buf.String())
	}
}

func TestFormatMessageEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[1])
	output := buf.String()

	if !strings.Contains(output, "CODEC RNET ZONE_VOLUME") {
		t.Errorf("expected kind label, got:\n%s", output)
	}
	// Zones are shown 1-based.
	if !strings.Contains(output, "Controller: 1  Zone: 3  Value: 30") {
		t.Errorf("expected zone value, got:\n%s", output)
	}
}

func TestFormatLineEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[2])
	output := buf.String()

	if !strings.Contains(output, "RIO Line") {
		t.Errorf("expected Line label, got:\n%s", output)
	}
	if !strings.Contains(output, `N C[1].Z[2].volume="12"`) {
		t.Errorf("expected raw line, got:\n%s", output)
	}

	buf.Reset()
	formatEvent(&buf, log.Event{Direction: log.DirectionOut, Protocol: log.ProtocolRIO, Line: log.CommandEvent("GET C[1].Z[1].volume")})
	if !strings.Contains(buf.String(), "OUT TRANSPORT RIO Command") {
		t.Errorf("expected Command label, got:\n%s", buf.String())
	}
}

func TestFormatStateChangeEvent(t *testing.T) {
	event := log.Event{
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: "CONNECTED",
			NewState: "DISCONNECTED",
			Reason:   "EOF",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{"State", "Entity: CONNECTION", "CONNECTED -> DISCONNECTED", "Reason: EOF"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestFormatErrorEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[3])
	output := buf.String()

	if !strings.Contains(output, "Error") || !strings.Contains(output, "Message: connection lost") {
		t.Errorf("expected error details, got:\n%s", output)
	}
}

func TestRunViewWithFilter(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	proto := log.ProtocolRIO
	var buf bytes.Buffer
	if err := RunView(path, log.Filter{Protocol: &proto}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "RNET") {
		t.Errorf("RNET events not filtered:\n%s", output)
	}
	if got := strings.Count(output, "[conn:def67890]"); got != 2 {
		t.Errorf("expected 2 RIO events, got %d", got)
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLayerFlag("CODEC"); err != nil || l != log.LayerCodec {
		t.Errorf("ParseLayerFlag(CODEC) = %v, %v", l, err)
	}
	if _, err := ParseLayerFlag("wire"); err == nil {
		t.Error("ParseLayerFlag(wire) succeeded")
	}
	if d, err := ParseDirectionFlag("out"); err != nil || d != log.DirectionOut {
		t.Errorf("ParseDirectionFlag(out) = %v, %v", d, err)
	}
	if c, err := ParseCategoryFlag("State"); err != nil || c != log.CategoryState {
		t.Errorf("ParseCategoryFlag(State) = %v, %v", c, err)
	}
	if p, err := ParseProtocolFlag("rio"); err != nil || p != log.ProtocolRIO {
		t.Errorf("ParseProtocolFlag(rio) = %v, %v", p, err)
	}
	if _, err := ParseProtocolFlag("rs232"); err == nil {
		t.Error("ParseProtocolFlag(rs232) succeeded")
	}
}
