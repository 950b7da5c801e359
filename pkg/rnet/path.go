package rnet

// Path roots.
const (
	pathRootEvent      byte = 0x00
	pathRootDisplay    byte = 0x01
	pathRootZone       byte = 0x02
	pathRootController byte = 0x03
	pathRootObject     byte = 0x04
)

// Zone parameter codes at depth 4 (path[3]).
const (
	zoneParamVolume   byte = 0x01
	zoneParamSource   byte = 0x02
	zoneParamAllInfo  byte = 0x04
	zoneParamState    byte = 0x06
	zoneParamAllInfo2 byte = 0x07
)

// zoneSubParamKinds maps path[4] of a depth 5 zone path.
var zoneSubParamKinds = [...]Kind{
	KindZoneBass,
	KindZoneTreble,
	KindZoneLoudness,
	KindZoneBalance,
	KindZoneTurnOnVolume,
	KindZoneBackgroundColor,
	KindZoneDoNotDisturb,
	KindZonePartyMode,
}

// LookupPath classifies a path. It is total: every input, including nil,
// maps to a kind, with KindUnknown for anything not in the table.
//
// Zone paths have the form 02/controller/zone/param or
// 02/controller/zone/00/subparam; any controller byte is accepted.
func LookupPath(p Path) Kind {
	if len(p) == 0 {
		return KindUnknown
	}

	switch p[0] {
	case pathRootEvent:
		if len(p) == 2 && p[1] == 0x00 {
			return KindEvent
		}

	case pathRootDisplay:
		if len(p) == 2 {
			switch p[1] {
			case 0x01:
				return KindDisplayFeedback
			case 0x00:
				return KindEvent
			}
		}

	case pathRootZone:
		return lookupZonePath(p)

	case pathRootController:
		if len(p) == 3 {
			if p[1] == 0x00 && p[2] == 0x02 {
				return KindControllerConfig
			}
			return KindControllerData
		}

	case pathRootObject:
		if len(p) == 2 {
			return KindControllerData
		}
	}

	return KindUnknown
}

func lookupZonePath(p Path) Kind {
	switch len(p) {
	case 4:
		switch p[3] {
		case zoneParamVolume:
			return KindZoneVolume
		case zoneParamSource:
			return KindZoneSource
		case zoneParamAllInfo, zoneParamAllInfo2:
			return KindAllZoneInfo
		case zoneParamState:
			return KindZoneState
		}
	case 5:
		if p[3] == 0x00 && int(p[4]) < len(zoneSubParamKinds) {
			return zoneSubParamKinds[p[4]]
		}
	}
	return KindUnknown
}

// isZoneKind reports whether k is addressed through a zone path.
func isZoneKind(k Kind) bool {
	return k >= KindZoneState && k <= KindZonePartyMode
}
