package commands

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rnetctl/rnet-go/pkg/log"
)

// createTestLogFile writes events to a capture in a temp dir.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func intPtr(v int) *int { return &v }

func sampleEvents() []log.Event {
	ts := time.Date(2026, 3, 1, 10, 15, 32, 123456000, time.UTC)
	return []log.Event{
		{
			Timestamp:    ts,
			ConnectionID: "abc12345-6789",
			Direction:    log.DirectionIn,
			Layer:        log.LayerTransport,
			Category:     log.CategoryMessage,
			Protocol:     log.ProtocolRNET,
			RemoteAddr:   "10.0.0.20:4999",
			Frame:        log.NewFrameEvent([]byte{0xF0, 0x7D, 0x00, 0x7F, 0xF7}),
		},
		{
			Timestamp:    ts.Add(time.Millisecond),
			ConnectionID: "abc12345-6789",
			Direction:    log.DirectionIn,
			Layer:        log.LayerCodec,
			Category:     log.CategoryMessage,
			Protocol:     log.ProtocolRNET,
			Message: &log.MessageEvent{
				Type:       0x00,
				Kind:       "ZONE_VOLUME",
				Controller: intPtr(1),
				Zone:       intPtr(2),
				Value:      intPtr(30),
			},
		},
		{
			Timestamp:    ts.Add(2 * time.Millisecond),
			ConnectionID: "def67890-1234",
			Direction:    log.DirectionIn,
			Layer:        log.LayerTransport,
			Category:     log.CategoryMessage,
			Protocol:     log.ProtocolRIO,
			Line: &log.LineEvent{
				Tag:       "N",
				Path:      "C[1].Z[2]",
				Attribute: "volume",
				Value:     "12",
				Raw:       `N C[1].Z[2].volume="12"`,
			},
		},
		{
			Timestamp:    ts.Add(3 * time.Millisecond),
			ConnectionID: "def67890-1234",
			Direction:    log.DirectionIn,
			Layer:        log.LayerTransport,
			Category:     log.CategoryError,
			Protocol:     log.ProtocolRIO,
			Error:        &log.ErrorEventData{Layer: log.LayerTransport, Message: "connection lost"},
		},
	}
}

func TestExportToJSONL(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0]["ConnectionID"] != "abc12345-6789" {
		t.Errorf("ConnectionID = %v", lines[0]["ConnectionID"])
	}
	msg, ok := lines[1]["Message"].(map[string]any)
	if !ok || msg["Kind"] != "ZONE_VOLUME" {
		t.Errorf("Message = %v, want kind ZONE_VOLUME", lines[1]["Message"])
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(records))
	}
	if records[0][0] != "timestamp" || records[0][6] != "type" {
		t.Errorf("unexpected header: %v", records[0])
	}

	frame := records[1]
	if frame[0] != "2026-03-01T10:15:32.123456Z" {
		t.Errorf("timestamp = %q", frame[0])
	}
	if frame[6] != "Frame" || frame[10] != "f07d007ff7" {
		t.Errorf("frame row = %v", frame)
	}

	// Zones are exported 1-based.
	msg := records[2]
	if msg[5] != "RNET" || msg[6] != "ZONE_VOLUME" || msg[7] != "1" || msg[8] != "3" || msg[9] != "30" {
		t.Errorf("message row = %v", msg)
	}

	line := records[3]
	if line[5] != "RIO" || line[10] != `N C[1].Z[2].volume="12"` {
		t.Errorf("line row = %v", line)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	if err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExportMissingFile(t *testing.T) {
	if err := RunExport(filepath.Join(t.TempDir(), "missing.rlog"), "jsonl", ""); err == nil {
		t.Error("expected error for missing file")
	}
}
