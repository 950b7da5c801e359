package log

import (
	"time"

	"github.com/rnetctl/rnet-go/pkg/rio"
	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// Event is one captured protocol event. CBOR encoding uses integer keys.
type Event struct {
	Timestamp    time.Time `cbor:"1,keyasint"`
	ConnectionID string    `cbor:"2,keyasint"`
	Direction    Direction `cbor:"3,keyasint"`
	Layer        Layer     `cbor:"4,keyasint"`
	Category     Category  `cbor:"5,keyasint"`
	Protocol     Protocol  `cbor:"6,keyasint"`

	// RemoteAddr is the controller address (host:port).
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// One of these is set.
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"`
	Line        *LineEvent        `cbor:"12,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"13,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"`
}

// Direction indicates message flow.
type Direction uint8

const (
	DirectionIn  Direction = 0
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates where the event was captured.
type Layer uint8

const (
	// LayerTransport carries raw frames or lines.
	LayerTransport Layer = 0
	// LayerCodec carries decoded messages.
	LayerCodec Layer = 1
	// LayerClient carries request correlation and discovery.
	LayerClient Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerCodec:
		return "CODEC"
	case LayerClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event.
type Category uint8

const (
	CategoryMessage Category = 0
	CategoryState   Category = 1
	CategoryError   Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Protocol is the controller protocol of the connection.
type Protocol uint8

const (
	ProtocolRNET Protocol = 0
	ProtocolRIO  Protocol = 1
)

// String returns the protocol name.
func (p Protocol) String() string {
	switch p {
	case ProtocolRNET:
		return "RNET"
	case ProtocolRIO:
		return "RIO"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent is a raw RNET frame as transmitted.
type FrameEvent struct {
	Size int    `cbor:"1,keyasint"`
	Data []byte `cbor:"2,keyasint"`

	// Truncated is set when Data holds only a prefix of the frame.
	Truncated bool `cbor:"3,keyasint,omitempty"`

	// ChecksumOK is nil when the checksum was not verified.
	ChecksumOK *bool `cbor:"4,keyasint,omitempty"`
}

// MaxFrameCapture bounds FrameEvent.Data.
const MaxFrameCapture = 256

// NewFrameEvent captures raw frame bytes, truncating them to MaxFrameCapture.
func NewFrameEvent(raw []byte) *FrameEvent {
	fe := &FrameEvent{Size: len(raw)}
	if len(raw) > MaxFrameCapture {
		raw = raw[:MaxFrameCapture]
		fe.Truncated = true
	}
	fe.Data = append([]byte(nil), raw...)
	return fe
}

// MessageEvent is a decoded RNET message.
type MessageEvent struct {
	Type uint8  `cbor:"1,keyasint"`
	Kind string `cbor:"2,keyasint"`

	TargetController uint8 `cbor:"3,keyasint"`
	TargetZone       uint8 `cbor:"4,keyasint"`
	TargetKeypad     uint8 `cbor:"5,keyasint"`
	SourceController uint8 `cbor:"6,keyasint"`
	SourceZone       uint8 `cbor:"7,keyasint"`
	SourceKeypad     uint8 `cbor:"8,keyasint"`

	TargetPath []byte `cbor:"9,keyasint,omitempty"`
	SourcePath []byte `cbor:"10,keyasint,omitempty"`

	// Addressing and value extracted from the payload, when it has them.
	Controller *int `cbor:"11,keyasint,omitempty"`
	Zone       *int `cbor:"12,keyasint,omitempty"`
	Value      *int `cbor:"13,keyasint,omitempty"`

	EventID    *uint16 `cbor:"14,keyasint,omitempty"`
	RenderType *uint8  `cbor:"15,keyasint,omitempty"`
}

// NewMessageEvent summarizes a decoded message.
func NewMessageEvent(msg *rnet.Message) *MessageEvent {
	me := &MessageEvent{
		Type:             uint8(msg.MessageType),
		Kind:             msg.Kind.String(),
		TargetController: msg.TargetController,
		TargetZone:       msg.TargetZone,
		TargetKeypad:     msg.TargetKeypad,
		SourceController: msg.SourceController,
		SourceZone:       msg.SourceZone,
		SourceKeypad:     msg.SourceKeypad,
		TargetPath:       append([]byte(nil), msg.TargetPath...),
		SourcePath:       append([]byte(nil), msg.SourcePath...),
	}

	switch p := msg.Payload.(type) {
	case rnet.ZoneValue:
		me.Controller, me.Zone, me.Value = ptr(p.Controller), ptr(p.Zone), ptr(int(p.Value))
	case rnet.ZoneInfo:
		me.Controller, me.Zone, me.Value = ptr(p.Controller), ptr(p.Zone), ptr(int(p.Volume))
	case rnet.EventPayload:
		me.Controller, me.Zone, me.Value = ptr(p.Controller), ptr(p.Zone), ptr(p.Value)
		me.EventID = ptr(p.Event.ID)
	case rnet.SourceSelection:
		me.EventID = ptr(p.Event.ID)
		me.Value = ptr(int(p.Bitmap))
	case rnet.Display:
		me.Zone, me.Value = ptr(p.Zone), ptr(int(p.Value))
		me.RenderType = ptr(p.RenderType)
	}
	return me
}

func ptr[T any](v T) *T {
	return &v
}

// LineEvent is one RIO line.
type LineEvent struct {
	Tag       string `cbor:"1,keyasint,omitempty"`
	Path      string `cbor:"2,keyasint,omitempty"`
	Attribute string `cbor:"3,keyasint,omitempty"`
	Value     string `cbor:"4,keyasint,omitempty"`
	Raw       string `cbor:"5,keyasint"`
}

// NewLineEvent captures a parsed inbound line.
func NewLineEvent(l rio.Line) *LineEvent {
	return &LineEvent{
		Tag:       l.Tag.String(),
		Path:      l.Path,
		Attribute: l.Attribute,
		Value:     l.Value,
		Raw:       l.Raw,
	}
}

// CommandEvent captures an outbound command line.
func CommandEvent(cmd string) *LineEvent {
	return &LineEvent{Raw: cmd}
}

// StateChangeEvent records a state transition.
type StateChangeEvent struct {
	Entity   StateEntity `cbor:"1,keyasint"`
	OldState string      `cbor:"2,keyasint"`
	NewState string      `cbor:"3,keyasint"`
	Reason   string      `cbor:"4,keyasint,omitempty"`
}

// StateEntity identifies what changed state.
type StateEntity uint8

const (
	StateEntityConnection StateEntity = 0
	StateEntityConfig     StateEntity = 1
	StateEntityDiscovery  StateEntity = 2
)

// String returns the entity name.
func (e StateEntity) String() string {
	switch e {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityConfig:
		return "CONFIG"
	case StateEntityDiscovery:
		return "DISCOVERY"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData describes an error.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`
	Context string `cbor:"3,keyasint,omitempty"`
}
