package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rnetctl/rnet-go/pkg/rio"
	"github.com/rnetctl/rnet-go/pkg/rnet"
	"github.com/rnetctl/rnet-go/pkg/transport"
)

// ErrUsage marks a malformed operator command.
var ErrUsage = errors.New("usage")

// action is an operator command encoded for one protocol. Exactly one of
// frame, line or query is set.
type action struct {
	frame []byte
	line  string
	query *query
}

// query is a synchronous RIO GET.
type query struct {
	path string
	attr rio.Attr
}

const commandHelp = `Zone commands take <controller> <zone>, both 1-based:
  on|off <c> <z>                 Switch the zone
  volume <c> <z> <0-50>          Set the volume
  source <c> <z> <n>             Select source n
  bass|treble|balance <c> <z> <-10..10>
  loudness|mute|dnd|party <c> <z> on|off
  turnon <c> <z> <0-50>          Set the turn-on volume
  key <c> <z> <name>             Press a keypad key (` + "%s" + `)
  get <c> <z> <attr>             Request a value (` + "%s" + `)
Other commands:
  msg <text>                     Show a message on every keypad (RNET)
  raw <hex bytes | RIO line>     Send a raw frame or line`

func usage() string {
	return fmt.Sprintf(commandHelp, strings.Join(sortedKeys(keyNames), ", "), strings.Join(sortedKeys(getAttrs), ", "))
}

// toneParams take -10..10 from the operator and send the device scale 0..20.
var toneParams = map[string]rnet.Param{
	"bass":    rnet.ParamBass,
	"treble":  rnet.ParamTreble,
	"balance": rnet.ParamBalance,
}

var switchParams = map[string]rnet.Param{
	"loudness": rnet.ParamLoudness,
	"mute":     rnet.ParamMute,
	"dnd":      rnet.ParamDoNotDisturb,
	"party":    rnet.ParamPartyMode,
}

var keyNames = map[string]rnet.Kind{
	"prev":    rnet.KindKeypadPrevious,
	"next":    rnet.KindKeypadNext,
	"plus":    rnet.KindKeypadPlus,
	"minus":   rnet.KindKeypadMinus,
	"play":    rnet.KindKeypadPlay,
	"stop":    rnet.KindKeypadStop,
	"pause":   rnet.KindKeypadPause,
	"fav1":    rnet.KindKeypadFav1,
	"fav2":    rnet.KindKeypadFav2,
	"volup":   rnet.KindKeypadVolUp,
	"voldown": rnet.KindKeypadVolDown,
	"power":   rnet.KindKeypadPower,
}

type getAttr struct {
	info rnet.InfoCode
	attr rio.Attr
}

var getAttrs = map[string]getAttr{
	"volume":   {rnet.InfoVolume, rio.AttrVolume},
	"source":   {rnet.InfoSource, rio.AttrCurrentSource},
	"state":    {rnet.InfoState, rio.AttrStatus},
	"bass":     {rnet.InfoBass, rio.AttrBass},
	"treble":   {rnet.InfoTreble, rio.AttrTreble},
	"loudness": {rnet.InfoLoudness, rio.AttrLoudness},
	"balance":  {rnet.InfoBalance, rio.AttrBalance},
	"turnon":   {rnet.InfoTurnOnVolume, rio.AttrTurnOnVolume},
	"dnd":      {rnet.InfoDoNotDisturb, rio.AttrDoNotDisturb},
	"party":    {rnet.InfoPartyMode, rio.AttrPartyMode},
	"all":      {rnet.InfoAll, "all"},
}

// parseCommand encodes an operator command for the transport kind.
func parseCommand(kind transport.Kind, words []string) (action, error) {
	if len(words) == 0 {
		return action{}, fmt.Errorf("%w: empty command", ErrUsage)
	}
	verb := strings.ToLower(words[0])
	args := words[1:]
	text := kind == transport.TextStream

	switch verb {
	case "raw":
		return parseRaw(kind, args)
	case "msg":
		if text {
			return action{}, fmt.Errorf("%w: msg requires RNET", ErrUsage)
		}
		if len(args) == 0 {
			return action{}, fmt.Errorf("%w: msg <text>", ErrUsage)
		}
		return action{frame: rnet.DisplayMessage(0, 0, strings.Join(args, " "))}, nil
	}

	c, z, rest, err := zoneArgs(verb, args)
	if err != nil {
		return action{}, err
	}
	zone := rio.ZoneAddress(c, z)
	// RNET addresses zones by device index.
	dz := z - 1

	switch verb {
	case "on", "off":
		if text {
			return action{line: rio.SetState(zone, verb == "on")}, nil
		}
		return frame(rnet.SetState(c, dz, verb == "on"))

	case "volume", "turnon":
		level, err := intArg(verb, rest, 0, 50)
		if err != nil {
			return action{}, err
		}
		switch {
		case verb == "turnon" && text:
			return line(rio.SetParam(zone, rnet.ParamTurnOnVolume, level))
		case verb == "turnon":
			return frame(rnet.SetParam(c, dz, rnet.ParamTurnOnVolume, byte(level)))
		case text:
			return action{line: rio.Volume(zone, level)}, nil
		default:
			return frame(rnet.Volume(c, dz, byte(level)))
		}

	case "source":
		src, err := intArg(verb, rest, 1, 12)
		if err != nil {
			return action{}, err
		}
		if text {
			return action{line: rio.SetSource(zone, src-1)}, nil
		}
		return frame(rnet.SetSource(c, dz, src-1))

	case "key":
		if len(rest) != 1 {
			return action{}, fmt.Errorf("%w: key <c> <z> <name>", ErrUsage)
		}
		k, ok := keyNames[strings.ToLower(rest[0])]
		if !ok {
			return action{}, fmt.Errorf("%w: unknown key %q", ErrUsage, rest[0])
		}
		if text {
			return line(rio.KeyPress(zone, k))
		}
		code, _ := rnet.KeypadCodeFor(k)
		return frame(rnet.SendEvent(c, dz, code))

	case "get":
		if len(rest) != 1 {
			return action{}, fmt.Errorf("%w: get <c> <z> <attr>", ErrUsage)
		}
		ga, ok := getAttrs[strings.ToLower(rest[0])]
		if !ok {
			return action{}, fmt.Errorf("%w: unknown attribute %q", ErrUsage, rest[0])
		}
		switch {
		case text && ga.attr == "all":
			return action{line: rio.GetInfo(zone, ga.attr)}, nil
		case text:
			return action{query: &query{path: zone.String(), attr: ga.attr}}, nil
		default:
			return frame(rnet.GetInfo(c, dz, ga.info))
		}
	}

	if p, ok := toneParams[verb]; ok {
		level, err := intArg(verb, rest, -10, 10)
		if err != nil {
			return action{}, err
		}
		if text {
			return line(rio.SetParam(zone, p, level+10))
		}
		return frame(rnet.SetParam(c, dz, p, byte(level+10)))
	}
	if p, ok := switchParams[verb]; ok {
		on, err := switchArg(verb, rest)
		if err != nil {
			return action{}, err
		}
		if text {
			return line(rio.SetParam(zone, p, on))
		}
		return frame(rnet.SetParam(c, dz, p, byte(on)))
	}

	return action{}, fmt.Errorf("%w: unknown command %q", ErrUsage, verb)
}

func frame(b []byte, err error) (action, error) {
	return action{frame: b}, err
}

func line(s string, err error) (action, error) {
	return action{line: s}, err
}

func parseRaw(kind transport.Kind, args []string) (action, error) {
	if len(args) == 0 {
		return action{}, fmt.Errorf("%w: raw <data>", ErrUsage)
	}
	if kind == transport.TextStream {
		return action{line: strings.Join(args, " ")}, nil
	}
	b, err := hex.DecodeString(strings.Join(args, ""))
	if err != nil {
		return action{}, fmt.Errorf("%w: raw frame must be hex: %w", ErrUsage, err)
	}
	if len(b) == 0 || b[0] != rnet.StartOfMessage || b[len(b)-1] != rnet.EndOfMessage {
		return action{}, fmt.Errorf("%w: raw frame must start with F0 and end with F7", ErrUsage)
	}
	return action{frame: b}, nil
}

// zoneArgs reads the controller and zone arguments.
func zoneArgs(verb string, args []string) (controller, zone int, rest []string, err error) {
	if len(args) < 2 {
		return 0, 0, nil, fmt.Errorf("%w: %s <controller> <zone> ...", ErrUsage, verb)
	}
	if controller, err = strconv.Atoi(args[0]); err != nil || controller < 1 || controller > 127 {
		return 0, 0, nil, fmt.Errorf("%w: controller %q", ErrUsage, args[0])
	}
	if zone, err = strconv.Atoi(args[1]); err != nil || zone < 1 || zone > 8 {
		return 0, 0, nil, fmt.Errorf("%w: zone %q", ErrUsage, args[1])
	}
	return controller, zone, args[2:], nil
}

func intArg(verb string, rest []string, lo, hi int) (int, error) {
	if len(rest) != 1 {
		return 0, fmt.Errorf("%w: %s <c> <z> <%d..%d>", ErrUsage, verb, lo, hi)
	}
	v, err := strconv.Atoi(rest[0])
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%w: %s value %q not in %d..%d", ErrUsage, verb, rest[0], lo, hi)
	}
	return v, nil
}

func switchArg(verb string, rest []string) (int, error) {
	if len(rest) != 1 {
		return 0, fmt.Errorf("%w: %s <c> <z> on|off", ErrUsage, verb)
	}
	switch strings.ToLower(rest[0]) {
	case "on", "1":
		return 1, nil
	case "off", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %s value %q is not on or off", ErrUsage, verb, rest[0])
}
