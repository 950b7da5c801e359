package rnet

import (
	"fmt"
	"strings"
)

// Well-known keypad IDs used in headers.
const (
	// KeypadController addresses the controller itself.
	KeypadController byte = 0x7F

	// KeypadExternal identifies an external system such as this library.
	KeypadExternal byte = 0x70

	// KeypadPeripheral identifies a peripheral; used for config requests
	// and handshakes.
	KeypadPeripheral byte = 0x7B

	// ControllerAll broadcasts to every controller on the bus.
	ControllerAll byte = 0x7F
)

// Header holds the fixed six ID bytes and the type byte.
type Header struct {
	TargetController byte
	TargetZone       byte
	TargetKeypad     byte
	SourceController byte
	SourceZone       byte
	SourceKeypad     byte
	MessageType      MessageType
}

// Path is a length-prefixed sequence of small integers addressing an object
// on the controller.
type Path []byte

// String returns the path as slash-separated hex bytes.
func (p Path) String() string {
	if len(p) == 0 {
		return "-"
	}
	parts := make([]string, len(p))
	for i, b := range p {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, "/")
}

// Event is the seven byte event record. Each 16-bit field is transmitted low
// byte first.
type Event struct {
	ID        uint16
	Timestamp uint16
	Data      uint16
	Priority  uint8
}

// eventRecordSize is the unescaped size of an event record.
const eventRecordSize = 7

// Message is a decoded frame. Kind determines the concrete Payload type.
type Message struct {
	Header
	TargetPath Path
	SourcePath Path
	Kind       Kind
	Payload    Payload
}

// Type returns the frame type.
func (m *Message) Type() MessageType {
	return m.MessageType
}

// String returns a compact description for logs.
func (m *Message) String() string {
	return fmt.Sprintf("%s %s tgt=%d/%d/%02x src=%d/%d/%02x tpath=%s spath=%s",
		m.MessageType, m.Kind,
		m.TargetController, m.TargetZone, m.TargetKeypad,
		m.SourceController, m.SourceZone, m.SourceKeypad,
		m.TargetPath, m.SourcePath)
}

// Payload is the kind-specific content of a Message. The set of
// implementations is closed; switch on the concrete type.
type Payload interface {
	payload()
}

// ZoneValue is a single zone parameter value (volume, source, power, tone,
// loudness, etc.) carried by a Set-Data frame.
type ZoneValue struct {
	// Controller is the 1-based controller number.
	Controller int

	// Zone is the device zone index.
	Zone int

	// Value is the raw device value.
	Value byte
}

// ZoneInfo is the all-info record of one zone. Fields missing from a short
// record are zero.
type ZoneInfo struct {
	Controller   int
	Zone         int
	Power        byte
	Source       byte
	Volume       byte
	Bass         byte
	Treble       byte
	Loudness     byte
	Balance      byte
	SystemOn     byte
	SharedSource byte
	PartyMode    byte
	DoNotDisturb byte
}

// EventPayload is a decoded event record with the zone and value it refers
// to, as far as the event id defines them.
type EventPayload struct {
	Event Event

	// Controller is the addressed 1-based controller number.
	Controller int

	// Zone is the device zone index the event concerns.
	Zone int

	// Value is the event's value (state, level, source or raw data).
	Value int
}

// SourceSelection reports which sources a keypad can currently select.
type SourceSelection struct {
	Event Event

	// Bitmap has bit n set when source n+1 is active.
	Bitmap uint16
}

// Active returns the 1-based numbers of the active sources.
func (s SourceSelection) Active() []int {
	var active []int
	for n := 0; n < 16; n++ {
		if s.Bitmap&(1<<n) != 0 {
			active = append(active, n+1)
		}
	}
	return active
}

// Display is a rendered local-display record.
type Display struct {
	Value      uint16
	Flash      uint16
	RenderType byte

	// Zone is the source zone from the header.
	Zone int
}

// DisplayText is text sent to keypad displays.
type DisplayText struct {
	Alignment byte
	Flash     uint16
	Text      string
}

// DataPacket is the Set-Data envelope: packet number, packet count and the
// packet data. Controller config responses arrive as a sequence of these.
type DataPacket struct {
	Number uint16
	Count  uint16
	Data   []byte
}

// ControllerData is an opaque controller object value.
type ControllerData struct {
	Path Path
	Data []byte
}

// Handshake is the acknowledgement record.
type Handshake struct {
	// Acknowledged is the type byte carried by the handshake.
	Acknowledged byte
}

// RawPayload holds the bytes following the paths of an unmapped message.
type RawPayload struct {
	Data []byte
}

func (ZoneValue) payload()       {}
func (ZoneInfo) payload()        {}
func (EventPayload) payload()    {}
func (SourceSelection) payload() {}
func (Display) payload()         {}
func (DisplayText) payload()     {}
func (DataPacket) payload()      {}
func (ControllerData) payload()  {}
func (Handshake) payload()       {}
func (RawPayload) payload()      {}

// LostConnectionMessage returns the synthetic message delivered when a stream
// transport drops.
func LostConnectionMessage() *Message {
	return &Message{
		Header: Header{
			TargetController: 0xFF,
			SourceKeypad:     0xFF,
			MessageType:      TypeLostConnection,
		},
		Kind: KindLostConnection,
	}
}
