package rio

import (
	"fmt"
	"strings"
)

// Tag classifies an inbound line.
type Tag byte

const (
	TagSuccess Tag = 'S'
	TagError   Tag = 'E'
	TagNotify  Tag = 'N'
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagSuccess:
		return "SUCCESS"
	case TagError:
		return "ERROR"
	case TagNotify:
		return "NOTIFY"
	default:
		return "UNKNOWN"
	}
}

// Line is one parsed inbound line.
type Line struct {
	Tag Tag

	// Path is the address part of path.attribute, e.g. C[1].Z[2].
	Path string

	// Attribute is the part after the last dot of the key.
	Attribute string

	// Value is the text after '=' with surrounding quotes removed. For lines
	// without a key it is the whole remainder, and for E lines the error
	// message.
	Value string

	// Raw is the line as received, without terminator.
	Raw string
}

// Key returns path.attribute, or "" for lines without a key.
func (l Line) Key() string {
	if l.Path == "" && l.Attribute == "" {
		return ""
	}
	if l.Path == "" {
		return l.Attribute
	}
	return l.Path + "." + l.Attribute
}

// Address parses the line's path.
func (l Line) Address() (Address, error) {
	return ParseAddress(l.Path)
}

// IsStateUpdate reports whether the line carries a zone or source attribute
// that belongs to the consumer's state model.
func (l Line) IsStateUpdate() bool {
	if l.Tag == TagError || l.Attribute == "" {
		return false
	}
	a, err := l.Address()
	if err != nil {
		return false
	}
	return a.Scope == ScopeZone || a.Scope == ScopeSource
}

// String returns the raw line.
func (l Line) String() string {
	return l.Raw
}

// ParseLine parses one line. Line terminators and surrounding whitespace are
// ignored.
func ParseLine(s string) (Line, error) {
	raw := strings.TrimRight(s, "\r\n")
	s = strings.TrimSpace(raw)
	if s == "" {
		return Line{}, ErrEmptyLine
	}

	l := Line{Tag: Tag(s[0]), Raw: raw}
	switch l.Tag {
	case TagSuccess, TagError, TagNotify:
	default:
		return Line{}, fmt.Errorf("%w: %q", ErrUnknownTag, s[0])
	}
	if len(s) > 1 && s[1] != ' ' {
		return Line{}, fmt.Errorf("%w: %q", ErrUnknownTag, s)
	}

	rest := strings.TrimSpace(s[1:])
	if l.Tag == TagError {
		l.Value = rest
		return l, nil
	}

	key, value, ok := strings.Cut(rest, "=")
	if !ok {
		l.Value = unquote(rest)
		return l, nil
	}

	key = strings.TrimSpace(key)
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		l.Path = key[:i]
		l.Attribute = key[i+1:]
	} else {
		l.Attribute = key
	}
	l.Value = unquote(strings.TrimSpace(value))
	return l, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return strings.Trim(s, `"`)
}
