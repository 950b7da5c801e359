package rnet

// MessageType is the frame type byte at offset 7.
type MessageType uint8

const (
	// TypeSetData sets (or reports) a parameter value.
	TypeSetData MessageType = 0x00

	// TypeRequestData requests a parameter value.
	TypeRequestData MessageType = 0x01

	// TypeHandshake acknowledges a Set-Data frame.
	TypeHandshake MessageType = 0x02

	// TypeEvent carries an event record.
	TypeEvent MessageType = 0x05

	// TypeRenderedDisplay carries a keypad local-display record.
	TypeRenderedDisplay MessageType = 0x06

	// TypeLostConnection is never transmitted. It marks the synthetic message
	// delivered when a stream transport drops.
	TypeLostConnection MessageType = 0xFF
)

// String returns the message type name.
func (t MessageType) String() string {
	switch t {
	case TypeSetData:
		return "SET_DATA"
	case TypeRequestData:
		return "REQUEST_DATA"
	case TypeHandshake:
		return "HANDSHAKE"
	case TypeEvent:
		return "EVENT"
	case TypeRenderedDisplay:
		return "RENDERED_DISPLAY"
	case TypeLostConnection:
		return "LOST_CONNECTION"
	default:
		return "UNKNOWN"
	}
}

// Kind classifies a decoded message. The message type together with the
// path, event id or render type determines it.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindEvent
	KindAllZoneState
	KindAllZoneInfo
	KindZoneState
	KindZoneSource
	KindZoneVolume
	KindZoneBass
	KindZoneTreble
	KindZoneLoudness
	KindZoneBalance
	KindZoneTurnOnVolume
	KindZoneBackgroundColor
	KindZoneDoNotDisturb
	KindZonePartyMode
	KindDisplayFeedback
	KindControllerConfig
	KindControllerData

	KindKeypadSetup
	KindKeypadPrevious
	KindKeypadNext
	KindKeypadPlus
	KindKeypadMinus
	KindKeypadSource
	KindKeypadPower
	KindKeypadStop
	KindKeypadPause
	KindKeypadFav1
	KindKeypadFav2
	KindKeypadPlay
	KindKeypadVolUp
	KindKeypadVolDown
	KindKeypadPowerLight
	KindIRRemote
	KindUpdateSourceSelection
	KindUnknownEvent

	KindDisplaySource
	KindDisplayVolume
	KindDisplayBass
	KindDisplayTreble
	KindDisplayBalance
	KindDisplayLoudness
	KindDisplayTurnOnVolume
	KindDisplayBackgroundColor
	KindDisplayDoNotDisturb
	KindDisplayPartyMode
	KindDisplayTime
	KindUnknownDisplay

	KindHandshake
	KindReceiveData
	KindLostConnection
)

var kindNames = map[Kind]string{
	KindUnknown:                "UNKNOWN",
	KindEvent:                  "EVENT",
	KindAllZoneState:           "ALL_ZONE_STATE",
	KindAllZoneInfo:            "ALL_ZONE_INFO",
	KindZoneState:              "ZONE_STATE",
	KindZoneSource:             "ZONE_SOURCE",
	KindZoneVolume:             "ZONE_VOLUME",
	KindZoneBass:               "ZONE_BASS",
	KindZoneTreble:             "ZONE_TREBLE",
	KindZoneLoudness:           "ZONE_LOUDNESS",
	KindZoneBalance:            "ZONE_BALANCE",
	KindZoneTurnOnVolume:       "ZONE_TURN_ON_VOLUME",
	KindZoneBackgroundColor:    "ZONE_BACKGROUND_COLOR",
	KindZoneDoNotDisturb:       "ZONE_DO_NOT_DISTURB",
	KindZonePartyMode:          "ZONE_PARTY_MODE",
	KindDisplayFeedback:        "DISPLAY_FEEDBACK",
	KindControllerConfig:       "CONTROLLER_CONFIG",
	KindControllerData:         "CONTROLLER_DATA",
	KindKeypadSetup:            "KEYPAD_SETUP",
	KindKeypadPrevious:         "KEYPAD_PREVIOUS",
	KindKeypadNext:             "KEYPAD_NEXT",
	KindKeypadPlus:             "KEYPAD_PLUS",
	KindKeypadMinus:            "KEYPAD_MINUS",
	KindKeypadSource:           "KEYPAD_SOURCE",
	KindKeypadPower:            "KEYPAD_POWER",
	KindKeypadStop:             "KEYPAD_STOP",
	KindKeypadPause:            "KEYPAD_PAUSE",
	KindKeypadFav1:             "KEYPAD_FAV1",
	KindKeypadFav2:             "KEYPAD_FAV2",
	KindKeypadPlay:             "KEYPAD_PLAY",
	KindKeypadVolUp:            "KEYPAD_VOL_UP",
	KindKeypadVolDown:          "KEYPAD_VOL_DOWN",
	KindKeypadPowerLight:       "KEYPAD_POWER_LIGHT",
	KindIRRemote:               "IR_REMOTE",
	KindUpdateSourceSelection:  "UPDATE_SOURCE_SELECTION",
	KindUnknownEvent:           "UNKNOWN_EVENT",
	KindDisplaySource:          "DISPLAY_SOURCE",
	KindDisplayVolume:          "DISPLAY_VOLUME",
	KindDisplayBass:            "DISPLAY_BASS",
	KindDisplayTreble:          "DISPLAY_TREBLE",
	KindDisplayBalance:         "DISPLAY_BALANCE",
	KindDisplayLoudness:        "DISPLAY_LOUDNESS",
	KindDisplayTurnOnVolume:    "DISPLAY_TURN_ON_VOLUME",
	KindDisplayBackgroundColor: "DISPLAY_BACKGROUND_COLOR",
	KindDisplayDoNotDisturb:    "DISPLAY_DO_NOT_DISTURB",
	KindDisplayPartyMode:       "DISPLAY_PARTY_MODE",
	KindDisplayTime:            "DISPLAY_TIME",
	KindUnknownDisplay:         "UNKNOWN_DISPLAY",
	KindHandshake:              "HANDSHAKE",
	KindReceiveData:            "RECEIVE_DATA",
	KindLostConnection:         "LOST_CONNECTION",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "INVALID"
}

// IsUnknown reports whether the kind is one of the unmapped placeholders.
func (k Kind) IsUnknown() bool {
	return k == KindUnknown || k == KindUnknownEvent || k == KindUnknownDisplay
}

// IsKeypad reports whether the kind is a keypad button event.
func (k Kind) IsKeypad() bool {
	return k >= KindKeypadSetup && k <= KindKeypadVolDown
}

// IsDisplay reports whether the kind came from a rendered display record.
func (k Kind) IsDisplay() bool {
	return k >= KindDisplaySource && k <= KindUnknownDisplay
}
