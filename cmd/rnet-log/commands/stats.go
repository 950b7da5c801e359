package commands

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/rnetctl/rnet-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	EventsByProtocol  map[log.Protocol]int
	MessagesByKind    map[string]int
	Connections       map[string]*ConnectionStats
	Errors            int
	ChecksumErrors    int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ConnectionStats holds statistics for a single connection.
type ConnectionStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	RemoteAddr string
	Protocol   log.Protocol
	Frames     int
	Lines      int
}

// CollectStats reads the whole log file.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		EventsByProtocol:  make(map[log.Protocol]int),
		MessagesByKind:    make(map[string]int),
		Connections:       make(map[string]*ConnectionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++
	s.EventsByProtocol[event.Protocol]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	conn, ok := s.Connections[event.ConnectionID]
	if !ok {
		conn = &ConnectionStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
			Protocol:  event.Protocol,
		}
		s.Connections[event.ConnectionID] = conn
	}
	conn.Events++
	if event.Timestamp.After(conn.LastSeen) {
		conn.LastSeen = event.Timestamp
	}
	if event.RemoteAddr != "" && conn.RemoteAddr == "" {
		conn.RemoteAddr = event.RemoteAddr
	}

	switch {
	case event.Frame != nil:
		conn.Frames++
		if event.Frame.ChecksumOK != nil && !*event.Frame.ChecksumOK {
			s.ChecksumErrors++
		}
	case event.Message != nil:
		s.MessagesByKind[event.Message.Kind]++
	case event.Line != nil:
		conn.Lines++
	case event.Error != nil:
		s.Errors++
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Russound Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	printCounts(w, "Events by Layer:", stats.EventsByLayer,
		[]log.Layer{log.LayerTransport, log.LayerCodec, log.LayerClient})
	printCounts(w, "Events by Category:", stats.EventsByCategory,
		[]log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError})
	printCounts(w, "Events by Direction:", stats.EventsByDirection,
		[]log.Direction{log.DirectionIn, log.DirectionOut})
	printCounts(w, "Events by Protocol:", stats.EventsByProtocol,
		[]log.Protocol{log.ProtocolRNET, log.ProtocolRIO})

	if len(stats.MessagesByKind) > 0 {
		fmt.Fprintln(w, "Messages by Kind:")
		kinds := slices.Collect(maps.Keys(stats.MessagesByKind))
		// Most frequent first
		slices.SortFunc(kinds, func(a, b string) int {
			if c := cmp.Compare(stats.MessagesByKind[b], stats.MessagesByKind[a]); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-28s %d\n", k+":", stats.MessagesByKind[k])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Connections: %d\n", len(stats.Connections))
	if len(stats.Connections) > 0 {
		ids := slices.Collect(maps.Keys(stats.Connections))
		slices.SortFunc(ids, func(a, b string) int {
			return stats.Connections[a].FirstSeen.Compare(stats.Connections[b].FirstSeen)
		})

		fmt.Fprintln(w)
		for _, id := range ids {
			c := stats.Connections[id]
			duration := c.LastSeen.Sub(c.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s %d events, duration %s\n", shortenConnID(id), c.Protocol, c.Events, duration)
			if c.RemoteAddr != "" {
				fmt.Fprintf(w, "           Remote: %s\n", c.RemoteAddr)
			}
			if c.Frames > 0 {
				fmt.Fprintf(w, "           Frames: %d\n", c.Frames)
			}
			if c.Lines > 0 {
				fmt.Fprintf(w, "           Lines: %d\n", c.Lines)
			}
		}
	}

	if stats.Errors > 0 || stats.ChecksumErrors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
		if stats.ChecksumErrors > 0 {
			fmt.Fprintf(w, "Checksum mismatches: %d\n", stats.ChecksumErrors)
		}
	}
}

type countKey interface {
	comparable
	fmt.Stringer
}

func printCounts[K countKey](w io.Writer, title string, counts map[K]int, order []K) {
	fmt.Fprintln(w, title)
	for _, k := range order {
		if count := counts[k]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", k.String()+":", count)
		}
	}
	fmt.Fprintln(w)
}
