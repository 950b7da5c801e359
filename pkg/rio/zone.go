package rio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// Attr is a zone or source attribute name.
type Attr string

// Zone attributes.
const (
	AttrStatus        Attr = "status"
	AttrName          Attr = "name"
	AttrVolume        Attr = "volume"
	AttrMute          Attr = "mute"
	AttrPage          Attr = "page"
	AttrSharedSource  Attr = "sharedSource"
	AttrBass          Attr = "bass"
	AttrTreble        Attr = "treble"
	AttrBalance       Attr = "balance"
	AttrCurrentSource Attr = "currentSource"
	AttrLoudness      Attr = "loudness"
	AttrPartyMode     Attr = "partyMode"
	AttrDoNotDisturb  Attr = "doNotDisturb"
	AttrTurnOnVolume  Attr = "turnOnVolume"
)

// Source and controller attributes.
const (
	AttrType Attr = "type"
)

// toneOffset maps the -10..10 text scale onto the 0..20 device scale.
const toneOffset = 10

// Tri-state values of partyMode and doNotDisturb.
const (
	ModeOff    = 0
	ModeOn     = 1
	ModeMaster = 2 // partyMode
	ModeSlave  = 2 // doNotDisturb
)

var attrKinds = map[Attr]rnet.Kind{
	AttrStatus:        rnet.KindZoneState,
	AttrVolume:        rnet.KindZoneVolume,
	AttrCurrentSource: rnet.KindZoneSource,
	AttrBass:          rnet.KindZoneBass,
	AttrTreble:        rnet.KindZoneTreble,
	AttrLoudness:      rnet.KindZoneLoudness,
	AttrBalance:       rnet.KindZoneBalance,
	AttrTurnOnVolume:  rnet.KindZoneTurnOnVolume,
	AttrDoNotDisturb:  rnet.KindZoneDoNotDisturb,
	AttrPartyMode:     rnet.KindZonePartyMode,
}

// ZoneUpdate is a decoded zone attribute line. Value is on the same scale
// the binary protocol uses: tone levels 0..20, source 0-based, on/off 1/0.
type ZoneUpdate struct {
	Controller int
	Zone       int
	Attr       Attr
	Value      int

	// Text holds textual attributes such as name.
	Text string
}

// Kind returns the binary protocol kind with the same meaning, or
// rnet.KindUnknown for attributes the binary protocol lacks. Mute has no kind
// of its own: its parameter slot reports background colour.
func (u ZoneUpdate) Kind() rnet.Kind {
	if k, ok := attrKinds[u.Attr]; ok {
		return k
	}
	return rnet.KindUnknown
}

// SourceUpdate is a decoded source attribute line. Controller is zero for
// system-wide source addresses.
type SourceUpdate struct {
	Controller int
	Source     int
	Attr       Attr
	Text       string
}

// DecodeZoneUpdate decodes a zone attribute line. Unknown attributes are
// returned with the raw value in Text.
func DecodeZoneUpdate(l Line) (ZoneUpdate, error) {
	a, err := l.Address()
	if err != nil {
		return ZoneUpdate{}, err
	}
	if a.Scope != ScopeZone {
		return ZoneUpdate{}, fmt.Errorf("%w: %s is not a zone", ErrInvalidAddress, l.Path)
	}

	u := ZoneUpdate{Controller: a.Controller, Zone: a.Zone, Attr: Attr(l.Attribute), Text: l.Value}

	switch u.Attr {
	case AttrStatus, AttrLoudness, AttrMute, AttrPage, AttrSharedSource:
		u.Value, err = ParseOnOff(l.Value)
	case AttrVolume, AttrTurnOnVolume:
		u.Value, err = strconv.Atoi(l.Value)
	case AttrBass, AttrTreble, AttrBalance:
		u.Value, err = ParseTone(l.Value)
	case AttrCurrentSource:
		u.Value, err = strconv.Atoi(l.Value)
		u.Value--
	case AttrPartyMode:
		u.Value, err = parseMode(l.Value, "MASTER")
	case AttrDoNotDisturb:
		u.Value, err = parseMode(l.Value, "SLAVE")
	}
	if err != nil {
		return ZoneUpdate{}, fmt.Errorf("%s.%s=%q: %w", l.Path, l.Attribute, l.Value, err)
	}
	return u, nil
}

// DecodeSourceUpdate decodes a source attribute line.
func DecodeSourceUpdate(l Line) (SourceUpdate, error) {
	a, err := l.Address()
	if err != nil {
		return SourceUpdate{}, err
	}
	if a.Scope != ScopeSource {
		return SourceUpdate{}, fmt.Errorf("%w: %s is not a source", ErrInvalidAddress, l.Path)
	}
	return SourceUpdate{Controller: a.Controller, Source: a.Source, Attr: Attr(l.Attribute), Text: l.Value}, nil
}

// ParseOnOff parses ON/OFF (any case) as 1/0.
func ParseOnOff(s string) (int, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ON", "1", "TRUE":
		return 1, nil
	case "OFF", "0", "FALSE":
		return 0, nil
	}
	return 0, fmt.Errorf("not on/off: %q", s)
}

// ParseTone parses a -10..10 tone value onto the 0..20 device scale.
func ParseTone(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return v + toneOffset, nil
}

func parseMode(s, third string) (int, error) {
	if strings.EqualFold(strings.TrimSpace(s), third) {
		return 2, nil
	}
	return ParseOnOff(s)
}
