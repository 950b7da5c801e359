package rnet

import (
	"fmt"
	"sync"
)

// Config blob layout.
const (
	customNameOffset = 0x2728
	customNameStride = 20
	customNameSize   = 13
	customNameSlots  = 10

	sourceTableOffset = 2
	sourceTableStride = 24

	zoneTableOffset = 0x92
	zoneTableStride = 562
)

// CountOrder selects which of the first two config bytes holds the source
// count.
type CountOrder uint8

const (
	// SourcesFirst reads byte 0 as source count and byte 1 as zone count.
	SourcesFirst CountOrder = iota

	// ZonesFirst reads byte 0 as zone count and byte 1 as source count.
	ZonesFirst
)

// CustomNameTable holds the ten user-defined names.
type CustomNameTable [customNameSlots]string

// ZoneSourceTable is the parsed controller configuration.
type ZoneSourceTable struct {
	Controller  int
	ZoneCount   int
	SourceCount int
	ZoneNames   []string
	SourceNames []string
	CustomNames CustomNameTable
}

// Reassembler accumulates ControllerConfig packets and parses the assembled
// blob. Feed is intended for the receive goroutine; Done and Table may be
// used from any goroutine.
type Reassembler struct {
	// Order is the count byte order. SourcesFirst by default.
	Order CountOrder

	// OnReady, if set, is called with every completed table.
	OnReady func(*ZoneSourceTable)

	buf        []byte
	next       uint16
	count      uint16
	active     bool
	controller int

	mu    sync.Mutex
	table *ZoneSourceTable
	done  chan struct{}
	once  sync.Once
}

// NewReassembler creates a reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{done: make(chan struct{})}
}

// Done returns a channel closed when the first table completes.
func (r *Reassembler) Done() <-chan struct{} {
	return r.done
}

// Table returns the most recently completed table, or nil.
func (r *Reassembler) Table() *ZoneSourceTable {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table
}

// FeedMessage feeds a decoded ControllerConfig message. Other messages are
// ignored.
func (r *Reassembler) FeedMessage(msg *Message) (*ZoneSourceTable, error) {
	if msg.Kind != KindControllerConfig {
		return nil, nil
	}
	pkt, ok := msg.Payload.(DataPacket)
	if !ok {
		return nil, nil
	}
	r.controller = int(msg.SourceController) + 1
	return r.Feed(pkt)
}

// Feed adds one packet. It returns the table when the packet completes the
// blob. Packets that do not continue the current sequence discard it; the
// next packet 0 starts over.
func (r *Reassembler) Feed(pkt DataPacket) (*ZoneSourceTable, error) {
	if pkt.Count == 0 {
		r.abort()
		return nil, ErrInvalidPacketCount
	}

	if pkt.Number == 0 {
		r.buf = r.buf[:0]
		r.next = 0
		r.count = pkt.Count
		r.active = true
	}

	if !r.active || pkt.Number != r.next || pkt.Count != r.count {
		expected := r.next
		r.abort()
		return nil, fmt.Errorf("%w: got %d/%d, want %d", ErrPacketOutOfOrder, pkt.Number, pkt.Count, expected)
	}

	r.buf = append(r.buf, pkt.Data...)
	r.next++

	if pkt.Number != pkt.Count-1 {
		return nil, nil
	}

	r.active = false
	table, err := ParseConfig(r.buf, r.Order)
	if err != nil {
		return nil, err
	}
	table.Controller = r.controller

	r.mu.Lock()
	r.table = table
	r.mu.Unlock()
	r.once.Do(func() { close(r.done) })
	if r.OnReady != nil {
		r.OnReady(table)
	}
	return table, nil
}

func (r *Reassembler) abort() {
	r.buf = r.buf[:0]
	r.next = 0
	r.count = 0
	r.active = false
}

// ParseConfig parses an assembled config blob. A blob too short to hold the
// custom-name table yields empty custom names; zone or source entries past
// the end of the blob yield ErrConfigTruncated.
func ParseConfig(buf []byte, order CountOrder) (*ZoneSourceTable, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrConfigTruncated, len(buf))
	}

	t := &ZoneSourceTable{
		SourceCount: int(buf[0]),
		ZoneCount:   int(buf[1]),
	}
	if order == ZonesFirst {
		t.SourceCount, t.ZoneCount = t.ZoneCount, t.SourceCount
	}

	if len(buf) >= customNameOffset+customNameStride*(customNameSlots-1)+customNameSize {
		for i := range t.CustomNames {
			off := customNameOffset + i*customNameStride
			t.CustomNames[i] = string(trimNUL(buf[off : off+customNameSize]))
		}
	}

	t.SourceNames = make([]string, t.SourceCount)
	for i := range t.SourceNames {
		off := sourceTableOffset + i*sourceTableStride
		if off >= len(buf) {
			return nil, fmt.Errorf("%w: source %d at 0x%x", ErrConfigTruncated, i+1, off)
		}
		t.SourceNames[i] = sourceName(int(buf[off]), t.CustomNames)
	}

	t.ZoneNames = make([]string, t.ZoneCount)
	for i := range t.ZoneNames {
		off := zoneTableOffset + i*zoneTableStride
		if off >= len(buf) {
			return nil, fmt.Errorf("%w: zone %d at 0x%x", ErrConfigTruncated, i+1, off)
		}
		t.ZoneNames[i] = zoneName(int(buf[off]), t.CustomNames)
	}

	return t, nil
}
