package rio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// LineTerminator ends every outbound command.
const LineTerminator = "\r"

// Terminate appends the line terminator unless cmd already ends in one.
func Terminate(cmd string) string {
	if strings.HasSuffix(cmd, LineTerminator) {
		return cmd
	}
	return cmd + LineTerminator
}

// Get formats GET path.attr.
func Get(path string, attr Attr) string {
	return "GET " + path + "." + string(attr)
}

// Set formats SET path.attr="value".
func Set(path string, attr Attr, value string) string {
	return fmt.Sprintf("SET %s.%s=%q", path, attr, value)
}

// Watch formats WATCH path ON|OFF.
func Watch(path string, on bool) string {
	return "WATCH " + path + " " + onOff(on)
}

// WatchSystem formats WATCH System ON|OFF.
func WatchSystem(on bool) string {
	return Watch("System", on)
}

// Event formats EVENT path!key args.
func Event(path, key string, args ...string) string {
	cmd := "EVENT " + path + "!" + key
	if len(args) > 0 {
		cmd += " " + strings.Join(args, " ")
	}
	return cmd
}

// GetInfo requests one zone attribute. The pseudo attribute "all" subscribes
// to every attribute of the zone instead.
func GetInfo(zone Address, attr Attr) string {
	if attr == "all" {
		return Watch(zone.String(), true)
	}
	return Get(zone.String(), attr)
}

// SetParam writes a zone sub-parameter using the binary protocol's
// parameter indexes and device scale: tone levels are 0..20, on/off
// parameters treat zero as off.
func SetParam(zone Address, param rnet.Param, level int) (string, error) {
	path := zone.String()
	switch param {
	case rnet.ParamBass:
		return Set(path, AttrBass, strconv.Itoa(level-toneOffset)), nil
	case rnet.ParamTreble:
		return Set(path, AttrTreble, strconv.Itoa(level-toneOffset)), nil
	case rnet.ParamLoudness:
		return Set(path, AttrLoudness, onOff(level != 0)), nil
	case rnet.ParamBalance:
		return Set(path, AttrBalance, strconv.Itoa(level-toneOffset)), nil
	case rnet.ParamTurnOnVolume:
		return Set(path, AttrTurnOnVolume, strconv.Itoa(level)), nil
	case rnet.ParamMute:
		if level == 0 {
			return Event(path, "ZoneMuteOff"), nil
		}
		return Event(path, "ZoneMuteOn"), nil
	case rnet.ParamDoNotDisturb:
		return Event(path, "DoNotDisturb", onOff(level != 0)), nil
	case rnet.ParamPartyMode:
		return Event(path, "PartyMode", onOff(level != 0)), nil
	}
	return "", fmt.Errorf("%w: %d", ErrInvalidParam, param)
}

// SetSource selects a source. source is 0-based like the binary protocol;
// the text protocol numbers sources from 1.
func SetSource(zone Address, source int) string {
	return Event(zone.String(), "KeyRelease", "SelectSource", strconv.Itoa(source+1))
}

// SetState switches a zone on or off.
func SetState(zone Address, on bool) string {
	if on {
		return Event(zone.String(), "ZoneOn")
	}
	return Event(zone.String(), "ZoneOff")
}

// Volume sets the zone volume on the device scale 0..50.
func Volume(zone Address, level int) string {
	return Event(zone.String(), "KeyPress", "Volume", strconv.Itoa(level))
}

// VolumeUp and VolumeDown step the zone volume.
func VolumeUp(zone Address) string {
	return Event(zone.String(), "KeyPress", "VolumeUp")
}

func VolumeDown(zone Address) string {
	return Event(zone.String(), "KeyPress", "VolumeDown")
}

// keypadKeys maps keypad kinds to their key names.
var keypadKeys = map[rnet.Kind]string{
	rnet.KindKeypadPrevious: "Previous",
	rnet.KindKeypadNext:     "Next",
	rnet.KindKeypadPlus:     "Plus",
	rnet.KindKeypadMinus:    "Minus",
	rnet.KindKeypadPlay:     "Play",
	rnet.KindKeypadStop:     "Stop",
	rnet.KindKeypadPause:    "Pause",
	rnet.KindKeypadFav1:     "Favorite1",
	rnet.KindKeypadFav2:     "Favorite2",
	rnet.KindKeypadVolUp:    "VolumeUp",
	rnet.KindKeypadVolDown:  "VolumeDown",
	rnet.KindKeypadPower:    "Power",
}

// KeyPress sends a keypad key for the zone.
func KeyPress(zone Address, key rnet.Kind) (string, error) {
	name, ok := keypadKeys[key]
	if !ok {
		return "", fmt.Errorf("%w: no key for %s", ErrInvalidParam, key)
	}
	return Event(zone.String(), "KeyPress", name), nil
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
