package rnet

// Event ids that are not keypad buttons.
const (
	EventZoneState             uint16 = 0xDC
	EventAllZoneState          uint16 = 0xDD
	EventZoneVolumeSet         uint16 = 0xDE
	EventZoneSource            uint16 = 0xC1
	EventKeypadPowerLight      uint16 = 0xC5
	EventUpdateSourceSelection uint16 = 0xC8
	EventZoneVolume            uint16 = 0xCE
	EventIRRemote              uint16 = 0xBF
)

// KeypadCode is the event id of a keypad button press.
type KeypadCode uint16

const (
	KeypadSetup      KeypadCode = 0x64
	KeypadPrevious   KeypadCode = 0x67
	KeypadNext       KeypadCode = 0x68
	KeypadPlus       KeypadCode = 0x69
	KeypadMinus      KeypadCode = 0x6A
	KeypadSource     KeypadCode = 0x6B
	KeypadPower      KeypadCode = 0x6C
	KeypadStop       KeypadCode = 0x6D
	KeypadPause      KeypadCode = 0x6E
	KeypadFav1       KeypadCode = 0x6F
	KeypadFav2       KeypadCode = 0x70
	KeypadPlay       KeypadCode = 0x73
	KeypadVolUp      KeypadCode = 0x7F
	KeypadVolDown    KeypadCode = 0x80
	KeypadVolUpAlt   KeypadCode = 0x97
	KeypadVolDownAlt KeypadCode = 0x98
)

var eventKinds = map[uint16]Kind{
	EventZoneState:             KindZoneState,
	EventAllZoneState:          KindAllZoneState,
	EventZoneVolumeSet:         KindZoneVolume,
	EventZoneSource:            KindZoneSource,
	EventKeypadPowerLight:      KindKeypadPowerLight,
	EventUpdateSourceSelection: KindUpdateSourceSelection,
	EventZoneVolume:            KindZoneVolume,
	EventIRRemote:              KindIRRemote,

	uint16(KeypadSetup):      KindKeypadSetup,
	uint16(KeypadPrevious):   KindKeypadPrevious,
	uint16(KeypadNext):       KindKeypadNext,
	uint16(KeypadPlus):       KindKeypadPlus,
	uint16(KeypadMinus):      KindKeypadMinus,
	uint16(KeypadSource):     KindKeypadSource,
	uint16(KeypadPower):      KindKeypadPower,
	uint16(KeypadStop):       KindKeypadStop,
	uint16(KeypadPause):      KindKeypadPause,
	uint16(KeypadFav1):       KindKeypadFav1,
	uint16(KeypadFav2):       KindKeypadFav2,
	uint16(KeypadPlay):       KindKeypadPlay,
	uint16(KeypadVolUp):      KindKeypadVolUp,
	uint16(KeypadVolUpAlt):   KindKeypadVolUp,
	uint16(KeypadVolDown):    KindKeypadVolDown,
	uint16(KeypadVolDownAlt): KindKeypadVolDown,
}

// keypadCodes is the inverse table used by SendEvent. Where two ids map to
// the same kind the primary id is used.
var keypadCodes = map[Kind]KeypadCode{
	KindKeypadSetup:    KeypadSetup,
	KindKeypadPrevious: KeypadPrevious,
	KindKeypadNext:     KeypadNext,
	KindKeypadPlus:     KeypadPlus,
	KindKeypadMinus:    KeypadMinus,
	KindKeypadSource:   KeypadSource,
	KindKeypadPower:    KeypadPower,
	KindKeypadStop:     KeypadStop,
	KindKeypadPause:    KeypadPause,
	KindKeypadFav1:     KeypadFav1,
	KindKeypadFav2:     KeypadFav2,
	KindKeypadPlay:     KeypadPlay,
	KindKeypadVolUp:    KeypadVolUp,
	KindKeypadVolDown:  KeypadVolDown,
}

// LookupEvent maps an event id to its kind, KindUnknownEvent if unmapped.
func LookupEvent(id uint16) Kind {
	if k, ok := eventKinds[id]; ok {
		return k
	}
	return KindUnknownEvent
}

// KeypadCodeFor returns the event id sent for a keypad kind.
func KeypadCodeFor(k Kind) (KeypadCode, bool) {
	code, ok := keypadCodes[k]
	return code, ok
}

// decodeEventRecord reads the seven byte event record at b.
func decodeEventRecord(b []byte) Event {
	return Event{
		ID:        le16(b[0:2]),
		Timestamp: le16(b[2:4]),
		Data:      le16(b[4:6]),
		Priority:  b[6],
	}
}

// eventPayload builds the payload for an event frame. Command-form events
// carry the zone in the data field and the value in the timestamp field;
// source selection carries the source in data and relies on the header for
// the zone.
func eventPayload(h Header, ev Event) Payload {
	controller := int(h.TargetController) + 1

	switch ev.ID {
	case EventZoneState, EventAllZoneState, EventZoneVolumeSet, EventZoneVolume:
		return EventPayload{
			Event:      ev,
			Controller: controller,
			Zone:       int(ev.Data & 0xFF),
			Value:      int(ev.Timestamp & 0xFF),
		}
	case EventZoneSource:
		return EventPayload{
			Event:      ev,
			Controller: controller,
			Zone:       int(h.SourceZone),
			Value:      int(ev.Data & 0xFF),
		}
	case EventUpdateSourceSelection:
		return SourceSelection{Event: ev, Bitmap: ev.Data}
	}

	return EventPayload{
		Event:      ev,
		Controller: controller,
		Zone:       int(h.SourceZone),
		Value:      int(ev.Data),
	}
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func putLE16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}
