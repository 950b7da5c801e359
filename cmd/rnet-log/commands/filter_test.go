package commands

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rnetctl/rnet-go/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		events = append(events, event)
	}
}

func TestFilterByConnectionID(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	n, err := RunFilter(path, outPath, FilterOptions{ConnID: "def67890-1234"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 events, got %d", n)
	}
	for _, e := range readAll(t, outPath) {
		if e.ConnectionID != "def67890-1234" {
			t.Errorf("unexpected connection %s", e.ConnectionID)
		}
	}
}

func TestFilterByKindAndAttribute(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	tests := []struct {
		name string
		opts FilterOptions
		want int
	}{
		{"kind", FilterOptions{Kind: "ZONE_VOLUME"}, 1},
		{"attribute", FilterOptions{Attribute: "volume"}, 1},
		{"protocol", FilterOptions{Protocol: "rnet"}, 2},
		{"category", FilterOptions{Category: "error"}, 1},
		{"layer and direction", FilterOptions{Layer: "transport", Direction: "in"}, 3},
		{"no match", FilterOptions{Kind: "ZONE_BASS"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outPath := filepath.Join(t.TempDir(), "filtered.rlog")
			n, err := RunFilter(path, outPath, tt.opts)
			if err != nil {
				t.Fatalf("RunFilter failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, n)
			}
			if got := len(readAll(t, outPath)); got != tt.want {
				t.Errorf("output has %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, ConnectionID: "conn-1"},
		{Timestamp: base.Add(time.Hour), ConnectionID: "conn-1"},
		{Timestamp: base.Add(2 * time.Hour), ConnectionID: "conn-1"},
	}
	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	_, err := RunFilter(path, outPath, FilterOptions{
		TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
		TimeEnd:   base.Add(90 * time.Minute).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readAll(t, outPath)
	if len(got) != 1 || !got[0].Timestamp.Equal(base.Add(time.Hour)) {
		t.Errorf("expected only the 11:00 event, got %v", got)
	}
}

func TestFilterInvalidOptions(t *testing.T) {
	for _, opts := range []FilterOptions{
		{TimeStart: "yesterday"},
		{TimeEnd: "tomorrow"},
		{Layer: "wire"},
		{Direction: "sideways"},
		{Category: "control"},
		{Protocol: "rs232"},
	} {
		if _, err := opts.Build(); err == nil {
			t.Errorf("Build(%+v) succeeded", opts)
		}
	}
}
