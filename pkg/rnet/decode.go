package rnet

import (
	"bytes"
	"fmt"
)

// minFrameSize is start, six ids, type, checksum and end.
const minFrameSize = 10

// Offsets within an unescaped frame.
const (
	offsetType  = 7
	offsetPaths = 8
)

// setDataEnvelopeSize is packet number, packet count and length.
const setDataEnvelopeSize = 6

// DecodeFrame decodes a de-framed frame. The checksum is not checked here;
// see VerifyChecksum.
func DecodeFrame(f Frame) (*Message, error) {
	return Decode(f.Data)
}

// Decode decodes an unescaped frame, start and end markers included. It never
// panics: malformed input yields a FrameError (ErrFrameTooShort,
// ErrMalformedFrame, ErrTruncatedPath or ErrTruncatedPayload) and unmapped
// content yields a message with one of the Unknown kinds. A Set-Data payload
// that does not fit its envelope decodes as KindUnknown with a RawPayload.
func Decode(data []byte) (*Message, error) {
	if len(data) < minFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(data))
	}
	if data[0] != StartOfMessage || data[len(data)-1] != EndOfMessage {
		return nil, ErrMalformedFrame
	}

	// Body runs up to, not including, the checksum.
	body := data[:len(data)-2]

	header, _ := Frame{Data: data}.Header()
	msg := &Message{Header: header}

	var err error
	switch msg.MessageType {
	case TypeSetData:
		err = decodeSetData(msg, body)
	case TypeRequestData:
		msg.Kind = KindReceiveData
		_, err = decodePaths(msg, body)
	case TypeHandshake:
		msg.Kind = KindHandshake
		if len(body) > offsetPaths {
			msg.Payload = Handshake{Acknowledged: body[offsetPaths]}
		}
	case TypeEvent:
		err = decodeEvent(msg, body)
	case TypeRenderedDisplay:
		err = decodeDisplay(msg, body)
	case TypeLostConnection:
		msg.Kind = KindLostConnection
	default:
		msg.Kind = KindUnknown
		msg.Payload = RawPayload{Data: append([]byte(nil), body[offsetPaths:]...)}
	}

	if err != nil {
		return nil, err
	}
	return msg, nil
}

// decodePaths reads the length-prefixed target and source paths and returns
// the offset following them.
func decodePaths(msg *Message, body []byte) (int, error) {
	off := offsetPaths
	var err error
	if msg.TargetPath, off, err = readPath(body, off); err != nil {
		return 0, fmt.Errorf("target %w", err)
	}
	if msg.SourcePath, off, err = readPath(body, off); err != nil {
		return 0, fmt.Errorf("source %w", err)
	}
	return off, nil
}

func readPath(body []byte, off int) (Path, int, error) {
	if off >= len(body) {
		return nil, off, fmt.Errorf("%w: missing length at %d", ErrTruncatedPath, off)
	}
	n := int(body[off])
	off++
	if off+n > len(body) {
		return nil, off, fmt.Errorf("%w: length %d at %d", ErrTruncatedPath, n, off-1)
	}
	if n == 0 {
		return nil, off, nil
	}
	return Path(append([]byte(nil), body[off:off+n]...)), off + n, nil
}

func decodeSetData(msg *Message, body []byte) error {
	off, err := decodePaths(msg, body)
	if err != nil {
		return err
	}

	if len(msg.TargetPath) > 0 {
		msg.Kind = LookupPath(msg.TargetPath)
	} else {
		msg.Kind = LookupPath(msg.SourcePath)
	}

	// Payloads that do not fit the envelope pass through untyped.
	rest := body[off:]
	raw := func() error {
		msg.Kind = KindUnknown
		msg.Payload = RawPayload{Data: append([]byte(nil), rest...)}
		return nil
	}
	if len(rest) < setDataEnvelopeSize {
		return raw()
	}

	pkt := DataPacket{
		Number: le16(rest[0:2]),
		Count:  le16(rest[2:4]),
	}
	length := int(le16(rest[4:6]))
	if length > len(rest)-setDataEnvelopeSize {
		return raw()
	}
	pkt.Data = append([]byte(nil), rest[setDataEnvelopeSize:setDataEnvelopeSize+length]...)

	path := msg.TargetPath
	if len(path) == 0 {
		path = msg.SourcePath
	}

	switch {
	case isZoneKind(msg.Kind):
		if len(pkt.Data) == 0 {
			return raw()
		}
		msg.Payload = ZoneValue{
			Controller: int(path[1]) + 1,
			Zone:       int(path[2]),
			Value:      pkt.Data[0],
		}
	case msg.Kind == KindAllZoneInfo:
		msg.Payload = decodeZoneInfo(path, pkt.Data)
	case msg.Kind == KindDisplayFeedback:
		msg.Payload = decodeDisplayText(pkt.Data)
	case msg.Kind == KindControllerData:
		msg.Payload = ControllerData{Path: path, Data: pkt.Data}
	default:
		msg.Payload = pkt
	}
	return nil
}

func decodeZoneInfo(path Path, data []byte) ZoneInfo {
	info := ZoneInfo{
		Controller: int(path[1]) + 1,
		Zone:       int(path[2]),
	}
	fields := []*byte{
		&info.Power, &info.Source, &info.Volume, &info.Bass, &info.Treble,
		&info.Loudness, &info.Balance, &info.SystemOn, &info.SharedSource,
		&info.PartyMode, &info.DoNotDisturb,
	}
	for i, f := range fields {
		if i >= len(data) {
			break
		}
		*f = data[i]
	}
	return info
}

func decodeDisplayText(data []byte) DisplayText {
	if len(data) < 3 {
		return DisplayText{Text: string(trimNUL(data))}
	}
	return DisplayText{
		Alignment: data[0],
		Flash:     le16(data[1:3]),
		Text:      string(trimNUL(data[3:])),
	}
}

func decodeEvent(msg *Message, body []byte) error {
	off, err := decodePaths(msg, body)
	if err != nil {
		return err
	}
	if off+eventRecordSize > len(body) {
		return fmt.Errorf("%w: event record needs %d bytes, have %d",
			ErrTruncatedPayload, eventRecordSize, len(body)-off)
	}

	ev := decodeEventRecord(body[off : off+eventRecordSize])
	msg.Kind = LookupEvent(ev.ID)
	msg.Payload = eventPayload(msg.Header, ev)
	return nil
}

func decodeDisplay(msg *Message, body []byte) error {
	if offsetPaths+displayRecordSize > len(body) {
		return fmt.Errorf("%w: display record needs %d bytes, have %d",
			ErrTruncatedPayload, displayRecordSize, len(body)-offsetPaths)
	}
	d := decodeDisplayRecord(msg.Header, body[offsetPaths:offsetPaths+displayRecordSize])
	msg.Kind = LookupRender(d.RenderType)
	msg.Payload = d
	return nil
}

// trimNUL cuts b at the first NUL byte.
func trimNUL(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}
