package rnet

import "fmt"

// InfoCode selects a zone parameter for GetInfo. The high byte is the path
// depth and the low byte the parameter code at the end of the path.
type InfoCode uint16

const (
	InfoVolume          InfoCode = 0x0401
	InfoSource          InfoCode = 0x0402
	InfoState           InfoCode = 0x0406
	InfoAll             InfoCode = 0x0407
	InfoBass            InfoCode = 0x0500
	InfoTreble          InfoCode = 0x0501
	InfoLoudness        InfoCode = 0x0502
	InfoBalance         InfoCode = 0x0503
	InfoTurnOnVolume    InfoCode = 0x0504
	InfoBackgroundColor InfoCode = 0x0505
	InfoDoNotDisturb    InfoCode = 0x0506
	InfoPartyMode       InfoCode = 0x0507
)

// Depth returns the path depth encoded in the code.
func (c InfoCode) Depth() int {
	return int(c >> 8)
}

// Param is a zone sub-parameter index for SetParam.
type Param uint8

const (
	ParamBass         Param = 0
	ParamTreble       Param = 1
	ParamLoudness     Param = 2
	ParamBalance      Param = 3
	ParamTurnOnVolume Param = 4
	ParamMute         Param = 5
	ParamDoNotDisturb Param = 6
	ParamPartyMode    Param = 7

	// ParamBackgroundColor shares slot 5 with mute.
	ParamBackgroundColor = ParamMute
)

// Kind returns the kind a Set-Data report of the parameter decodes to.
func (p Param) Kind() Kind {
	if int(p) < len(zoneSubParamKinds) {
		return zoneSubParamKinds[p]
	}
	return KindUnknown
}

// eventPriority is the priority of command events.
const eventPriority = 0x01

var (
	eventPath = Path{pathRootEvent, 0x00}
	zonePath  = Path{pathRootZone, 0x00}
)

// frameBuilder assembles an unescaped frame body and finishes it by
// escaping, checksumming and terminating it.
type frameBuilder struct {
	b []byte
}

func newFrame(target, source [3]byte, t MessageType) *frameBuilder {
	b := make([]byte, 0, 32)
	b = append(b, StartOfMessage)
	b = append(b, target[:]...)
	b = append(b, source[:]...)
	b = append(b, byte(t))
	return &frameBuilder{b: b}
}

func (f *frameBuilder) paths(target, source Path) *frameBuilder {
	f.b = append(f.b, byte(len(target)))
	f.b = append(f.b, target...)
	f.b = append(f.b, byte(len(source)))
	f.b = append(f.b, source...)
	return f
}

func (f *frameBuilder) bytes(p ...byte) *frameBuilder {
	f.b = append(f.b, p...)
	return f
}

func (f *frameBuilder) u16(v uint16) *frameBuilder {
	f.b = putLE16(f.b, v)
	return f
}

func (f *frameBuilder) event(ev Event) *frameBuilder {
	return f.u16(ev.ID).u16(ev.Timestamp).u16(ev.Data).bytes(ev.Priority)
}

func (f *frameBuilder) envelope(number, count uint16, data []byte) *frameBuilder {
	return f.u16(number).u16(count).u16(uint16(len(data))).bytes(data...)
}

// finish escapes everything after the start marker, then appends checksum
// and end marker.
func (f *frameBuilder) finish() []byte {
	out := make([]byte, 0, len(f.b)*2+2)
	out = append(out, StartOfMessage)
	out = append(out, Escape(f.b[1:])...)
	out = append(out, Checksum(out, len(out)))
	return append(out, EndOfMessage)
}

func controllerByte(controller int) (byte, error) {
	if controller < 1 || controller > 127 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidController, controller)
	}
	return byte(controller - 1), nil
}

func zoneByte(zone int) (byte, error) {
	if zone < 0 || zone > 0xFF {
		return 0, fmt.Errorf("%w: %d", ErrInvalidZone, zone)
	}
	return byte(zone), nil
}

func ids(controller, zone int) (byte, byte, error) {
	c, err := controllerByte(controller)
	if err != nil {
		return 0, 0, err
	}
	z, err := zoneByte(zone)
	if err != nil {
		return 0, 0, err
	}
	return c, z, nil
}

// GetInfo builds a Request-Data frame asking for one zone parameter.
func GetInfo(controller, zone int, code InfoCode) ([]byte, error) {
	c, z, err := ids(controller, zone)
	if err != nil {
		return nil, err
	}

	var path Path
	switch code.Depth() {
	case 4:
		path = Path{pathRootZone, c, z, byte(code)}
	case 5:
		path = Path{pathRootZone, c, z, 0x00, byte(code)}
	default:
		return nil, fmt.Errorf("%w: 0x%04x", ErrInvalidInfoCode, uint16(code))
	}

	return newFrame([3]byte{c, 0, KeypadController}, [3]byte{0, z, KeypadExternal}, TypeRequestData).
		paths(path, nil).
		bytes(0x00).
		finish(), nil
}

// SetParam builds a Set-Data frame writing a zone sub-parameter.
func SetParam(controller, zone int, param Param, level byte) ([]byte, error) {
	c, z, err := ids(controller, zone)
	if err != nil {
		return nil, err
	}
	if int(param) >= len(zoneSubParamKinds) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidParam, param)
	}

	return newFrame([3]byte{c, 0, KeypadController}, [3]byte{0, 0, KeypadExternal}, TypeSetData).
		paths(Path{pathRootZone, c, z, 0x00, byte(param)}, nil).
		envelope(0, 1, []byte{level}).
		finish(), nil
}

// SetSource builds the select-source event. source is the device's 0-based
// source index.
func SetSource(controller, zone, source int) ([]byte, error) {
	c, z, err := ids(controller, zone)
	if err != nil {
		return nil, err
	}
	return newFrame([3]byte{c, 0, KeypadController}, [3]byte{0, z, KeypadExternal}, TypeEvent).
		paths(eventPath, nil).
		event(Event{ID: EventZoneSource, Data: uint16(source) & 0xFF, Priority: eventPriority}).
		finish(), nil
}

// SetState builds the zone power event.
func SetState(controller, zone int, on bool) ([]byte, error) {
	c, z, err := ids(controller, zone)
	if err != nil {
		return nil, err
	}
	var state uint16
	if on {
		state = 1
	}
	return newFrame([3]byte{c, 0, KeypadController}, [3]byte{0, 0, KeypadExternal}, TypeEvent).
		paths(zonePath, nil).
		event(Event{ID: EventZoneState, Timestamp: state, Data: uint16(z), Priority: eventPriority}).
		finish(), nil
}

// Volume builds the set-volume event. level is on the device scale 0..50.
func Volume(controller, zone int, level byte) ([]byte, error) {
	c, z, err := ids(controller, zone)
	if err != nil {
		return nil, err
	}
	return newFrame([3]byte{c, 0, KeypadController}, [3]byte{0, z, KeypadExternal}, TypeEvent).
		paths(zonePath, nil).
		event(Event{ID: EventZoneVolumeSet, Timestamp: uint16(level), Data: uint16(z), Priority: eventPriority}).
		finish(), nil
}

// SendEvent builds a keypad button event as if pressed on the zone's keypad.
func SendEvent(controller, zone int, code KeypadCode) ([]byte, error) {
	c, z, err := ids(controller, zone)
	if err != nil {
		return nil, err
	}
	return newFrame([3]byte{c, 0, KeypadController}, [3]byte{0, z, KeypadExternal}, TypeEvent).
		paths(eventPath, nil).
		event(Event{ID: uint16(code), Data: uint16(z), Priority: eventPriority}).
		finish(), nil
}

// RequestConfig builds the request that makes a controller send its
// configuration as a sequence of ControllerConfig packets.
func RequestConfig(controller int) ([]byte, error) {
	c, err := controllerByte(controller)
	if err != nil {
		return nil, err
	}
	return newFrame([3]byte{c, 0, KeypadController}, [3]byte{0, 0, KeypadPeripheral}, TypeRequestData).
		paths(Path{pathRootController, c, 0x02}, Path{pathRootController, 0x00, 0x02}).
		bytes(0x00, 0xFF, 0xFF).
		finish(), nil
}

// Acknowledge builds the handshake that must answer every Set-Data frame.
func Acknowledge(controller int) ([]byte, error) {
	c, err := controllerByte(controller)
	if err != nil {
		return nil, err
	}
	return newFrame([3]byte{c, 0, KeypadController}, [3]byte{0, 0, KeypadPeripheral}, TypeHandshake).
		bytes(byte(TypeHandshake)).
		finish(), nil
}

// displayTextSize is the visible width of a keypad display line.
const displayTextSize = 13

// DisplayMessage builds a text message shown on every keypad. Text longer
// than the display is cut.
func DisplayMessage(alignment byte, flash uint16, text string) []byte {
	data := make([]byte, 0, 3+displayTextSize)
	data = append(data, alignment)
	data = putLE16(data, flash)
	t := []byte(text)
	if len(t) > displayTextSize {
		t = t[:displayTextSize]
	}
	data = append(data, t...)
	for len(data) < 3+displayTextSize {
		data = append(data, 0x00)
	}

	return newFrame([3]byte{ControllerAll, 0, 0}, [3]byte{0, 0, KeypadExternal}, TypeSetData).
		paths(Path{pathRootDisplay, 0x01}, nil).
		envelope(0, 1, data).
		finish()
}
