package rio

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope is what an address refers to.
type Scope uint8

const (
	// ScopeController is C[c].
	ScopeController Scope = iota + 1

	// ScopeZone is C[c].Z[z].
	ScopeZone

	// ScopeSource is S[s] or C[c].S[s].
	ScopeSource
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeController:
		return "CONTROLLER"
	case ScopeZone:
		return "ZONE"
	case ScopeSource:
		return "SOURCE"
	default:
		return "UNKNOWN"
	}
}

// Address is a parsed text protocol path. Numbers are 1-based as on the
// wire. Controller is zero for a system-wide source address S[s].
type Address struct {
	Scope      Scope
	Controller int
	Zone       int
	Source     int
}

// ControllerAddress returns C[c].
func ControllerAddress(controller int) Address {
	return Address{Scope: ScopeController, Controller: controller}
}

// ZoneAddress returns C[c].Z[z].
func ZoneAddress(controller, zone int) Address {
	return Address{Scope: ScopeZone, Controller: controller, Zone: zone}
}

// SourceAddress returns S[s].
func SourceAddress(source int) Address {
	return Address{Scope: ScopeSource, Source: source}
}

// String formats the address as it appears on the wire.
func (a Address) String() string {
	switch a.Scope {
	case ScopeController:
		return fmt.Sprintf("C[%d]", a.Controller)
	case ScopeZone:
		return fmt.Sprintf("C[%d].Z[%d]", a.Controller, a.Zone)
	case ScopeSource:
		if a.Controller > 0 {
			return fmt.Sprintf("C[%d].S[%d]", a.Controller, a.Source)
		}
		return fmt.Sprintf("S[%d]", a.Source)
	default:
		return ""
	}
}

// ParseAddress parses C[c], C[c].Z[z], C[c].S[s] or S[s].
func ParseAddress(path string) (Address, error) {
	parts := strings.Split(path, ".")
	if len(parts) == 0 || len(parts) > 2 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, path)
	}

	first, n, err := parseSegment(parts[0])
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", err, path)
	}

	switch first {
	case 'S':
		if len(parts) != 1 {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, path)
		}
		return SourceAddress(n), nil
	case 'C':
		if len(parts) == 1 {
			return ControllerAddress(n), nil
		}
	default:
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, path)
	}

	second, m, err := parseSegment(parts[1])
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", err, path)
	}
	switch second {
	case 'Z':
		return ZoneAddress(n, m), nil
	case 'S':
		return Address{Scope: ScopeSource, Controller: n, Source: m}, nil
	}
	return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, path)
}

// parseSegment parses X[n].
func parseSegment(s string) (byte, int, error) {
	if len(s) < 4 || s[1] != '[' || s[len(s)-1] != ']' {
		return 0, 0, ErrInvalidAddress
	}
	n, err := strconv.Atoi(s[2 : len(s)-1])
	if err != nil || n < 1 {
		return 0, 0, ErrInvalidAddress
	}
	return s[0], n, nil
}
