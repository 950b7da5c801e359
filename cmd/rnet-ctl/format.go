package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rnetctl/rnet-go/pkg/rio"
	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// names resolves zone and source names from cached controller tables.
type names map[int]*rnet.ZoneSourceTable

// zone returns "C1 Z3 (Kitchen)" for a 1-based zone.
func (n names) zone(controller, zone int) string {
	s := fmt.Sprintf("C%d Z%d", controller, zone)
	if t := n[controller]; t != nil && zone >= 1 && zone <= len(t.ZoneNames) {
		s += " (" + t.ZoneNames[zone-1] + ")"
	}
	return s
}

// source returns the name of a 0-based source index.
func (n names) source(controller, source int) string {
	if t := n[controller]; t != nil && source >= 0 && source < len(t.SourceNames) {
		return fmt.Sprintf("%d (%s)", source+1, t.SourceNames[source])
	}
	return fmt.Sprint(source + 1)
}

// formatMessage renders a decoded RNET message as one line.
func (n names) formatMessage(msg *rnet.Message) string {
	kind := msg.Kind.String()
	switch p := msg.Payload.(type) {
	case rnet.ZoneValue:
		value := fmt.Sprint(p.Value)
		if msg.Kind == rnet.KindZoneSource {
			value = n.source(p.Controller, int(p.Value))
		}
		return fmt.Sprintf("%-22s %s = %s", kind, n.zone(p.Controller, p.Zone+1), value)

	case rnet.ZoneInfo:
		return fmt.Sprintf("%-22s %s power=%d source=%s volume=%d bass=%d treble=%d loudness=%d balance=%d party=%d dnd=%d",
			kind, n.zone(p.Controller, p.Zone+1), p.Power, n.source(p.Controller, int(p.Source)),
			p.Volume, p.Bass, p.Treble, p.Loudness, p.Balance, p.PartyMode, p.DoNotDisturb)

	case rnet.EventPayload:
		return fmt.Sprintf("%-22s %s value=%d id=0x%02x", kind, n.zone(p.Controller, p.Zone+1), p.Value, p.Event.ID)

	case rnet.SourceSelection:
		return fmt.Sprintf("%-22s active=%v", kind, p.Active())

	case rnet.Display:
		return fmt.Sprintf("%-22s zone=%d value=%d flash=%d render=0x%02x", kind, p.Zone+1, p.Value, p.Flash, p.RenderType)

	case rnet.DisplayText:
		return fmt.Sprintf("%-22s %q", kind, p.Text)

	case rnet.DataPacket:
		return fmt.Sprintf("%-22s packet %d/%d (%d bytes)", kind, p.Number+1, p.Count, len(p.Data))

	case rnet.ControllerData:
		return fmt.Sprintf("%-22s path=%s data=% x", kind, p.Path, p.Data)

	case rnet.Handshake:
		return fmt.Sprintf("%-22s type=0x%02x", kind, p.Acknowledged)

	case rnet.RawPayload:
		return fmt.Sprintf("%-22s %s data=% x", kind, msg.TargetPath, p.Data)
	}
	return fmt.Sprintf("%-22s %s", kind, msg)
}

// formatLine renders a RIO line, decoding zone attributes on the binary
// protocol's scale.
func (n names) formatLine(l rio.Line) string {
	if !l.IsStateUpdate() {
		return l.Raw
	}
	a, err := l.Address()
	if err != nil || a.Scope != rio.ScopeZone {
		return l.Raw
	}
	u, err := rio.DecodeZoneUpdate(l)
	if err != nil {
		return l.Raw + "  (" + err.Error() + ")"
	}

	kind := u.Kind()
	value := u.Text
	switch {
	case kind == rnet.KindZoneSource:
		value = n.source(u.Controller, u.Value)
	case !kind.IsUnknown():
		value = fmt.Sprint(u.Value)
	}
	label := kind.String()
	if kind.IsUnknown() {
		label = strings.ToUpper(string(u.Attr))
	}
	return fmt.Sprintf("%-22s %s = %s", label, n.zone(u.Controller, u.Zone), value)
}

// formatTable renders a controller table.
func formatTable(t *rnet.ZoneSourceTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Controller %d: %d zones, %d sources\n", t.Controller, t.ZoneCount, t.SourceCount)
	for i, z := range t.ZoneNames {
		fmt.Fprintf(&b, "  zone   %2d  %s\n", i+1, z)
	}
	for i, s := range t.SourceNames {
		fmt.Fprintf(&b, "  source %2d  %s\n", i+1, s)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
