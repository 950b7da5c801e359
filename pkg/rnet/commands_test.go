package rnet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSourceWireBytes(t *testing.T) {
	frame, err := SetSource(1, 2, 3)
	require.NoError(t, err)

	want := []byte{
		0xF0,
		0x00, 0x00, 0x7F, 0x00, 0x02, 0x70, 0x05,
		0x02, 0x00, 0x00, 0x00,
		0xF1, 0x3E, 0x00, 0x00, 0x00, 0x03, 0x00, 0x01,
		0x41, 0xF7,
	}
	assert.Equal(t, want, frame)
}

func TestAcknowledgeWireBytes(t *testing.T) {
	frame, err := Acknowledge(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF0, 0x00, 0x00, 0x7F, 0x00, 0x00, 0x7B, 0x02, 0x02, 0x09, 0xF7}, frame)

	msg := decodeRaw(t, frame)
	assert.Equal(t, KindHandshake, msg.Kind)
	assert.Equal(t, Handshake{Acknowledged: byte(TypeHandshake)}, msg.Payload)
}

func TestEventIDsOnTheWire(t *testing.T) {
	state, err := SetState(1, 1, true)
	require.NoError(t, err)
	vol, err := Volume(1, 1, 10)
	require.NoError(t, err)
	src, err := SetSource(1, 1, 0)
	require.NoError(t, err)

	assert.True(t, bytes.Contains(state, []byte{0xF1, 0x23}))
	assert.True(t, bytes.Contains(vol, []byte{0xF1, 0x21}))
	assert.True(t, bytes.Contains(src, []byte{0xF1, 0x3E}))
}

func TestBuilderRoundTrip(t *testing.T) {
	t.Run("volume", func(t *testing.T) {
		frame, err := Volume(2, 5, 30)
		require.NoError(t, err)
		msg := decodeRaw(t, frame)

		assert.Equal(t, KindZoneVolume, msg.Kind)
		assert.Equal(t, EventPayload{
			Event:      Event{ID: EventZoneVolumeSet, Timestamp: 30, Data: 5, Priority: 1},
			Controller: 2, Zone: 5, Value: 30,
		}, msg.Payload)
	})

	t.Run("state", func(t *testing.T) {
		for _, on := range []bool{true, false} {
			frame, err := SetState(3, 4, on)
			require.NoError(t, err)
			msg := decodeRaw(t, frame)

			require.Equal(t, KindZoneState, msg.Kind)
			ev := msg.Payload.(EventPayload)
			assert.Equal(t, 3, ev.Controller)
			assert.Equal(t, 4, ev.Zone)
			if on {
				assert.Equal(t, 1, ev.Value)
			} else {
				assert.Equal(t, 0, ev.Value)
			}
		}
	})

	t.Run("source", func(t *testing.T) {
		frame, err := SetSource(1, 6, 2)
		require.NoError(t, err)
		msg := decodeRaw(t, frame)

		require.Equal(t, KindZoneSource, msg.Kind)
		ev := msg.Payload.(EventPayload)
		assert.Equal(t, 1, ev.Controller)
		assert.Equal(t, 6, ev.Zone)
		assert.Equal(t, 2, ev.Value)
	})

	t.Run("params", func(t *testing.T) {
		for p := ParamBass; p <= ParamPartyMode; p++ {
			for _, level := range []byte{0, 12, 0x7F, 0x90, 0xFF} {
				frame, err := SetParam(2, 3, p, level)
				require.NoError(t, err)
				msg := decodeRaw(t, frame)

				assert.Equal(t, p.Kind(), msg.Kind)
				assert.Equal(t, ZoneValue{Controller: 2, Zone: 3, Value: level}, msg.Payload)
			}
		}
	})

	t.Run("keypad events", func(t *testing.T) {
		for k := KindKeypadSetup; k <= KindKeypadVolDown; k++ {
			code, _ := KeypadCodeFor(k)
			frame, err := SendEvent(1, 7, code)
			require.NoError(t, err)
			msg := decodeRaw(t, frame)

			assert.Equal(t, k, msg.Kind)
			assert.Equal(t, 7, msg.Payload.(EventPayload).Zone)
			assert.Equal(t, Path{0x00, 0x00}, msg.TargetPath)
		}
	})

	t.Run("get info", func(t *testing.T) {
		codes := map[InfoCode]Kind{
			InfoVolume:          KindZoneVolume,
			InfoSource:          KindZoneSource,
			InfoState:           KindZoneState,
			InfoAll:             KindAllZoneInfo,
			InfoBass:            KindZoneBass,
			InfoTreble:          KindZoneTreble,
			InfoLoudness:        KindZoneLoudness,
			InfoBalance:         KindZoneBalance,
			InfoTurnOnVolume:    KindZoneTurnOnVolume,
			InfoBackgroundColor: KindZoneBackgroundColor,
			InfoDoNotDisturb:    KindZoneDoNotDisturb,
			InfoPartyMode:       KindZonePartyMode,
		}
		for code, want := range codes {
			frame, err := GetInfo(2, 4, code)
			require.NoError(t, err)
			msg := decodeRaw(t, frame)

			assert.Equal(t, KindReceiveData, msg.Kind)
			assert.Equal(t, want, LookupPath(msg.TargetPath), "code 0x%04x", uint16(code))
			assert.Equal(t, byte(1), msg.TargetPath[1])
			assert.Equal(t, byte(4), msg.TargetPath[2])
			assert.Equal(t, byte(4), msg.SourceZone)
		}
	})

	t.Run("display message", func(t *testing.T) {
		frame := DisplayMessage(0x01, 0x0102, "a message for every keypad")
		msg := decodeRaw(t, frame)

		assert.Equal(t, KindDisplayFeedback, msg.Kind)
		assert.Equal(t, ControllerAll, msg.TargetController)
		assert.Equal(t, DisplayText{Alignment: 1, Flash: 0x0102, Text: "a message for"}, msg.Payload)
	})
}

func TestRequestConfig(t *testing.T) {
	frame, err := RequestConfig(2)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(frame, []byte{0x00, 0xF1, 0x00, 0xF1, 0x00}))

	msg := decodeRaw(t, frame)
	assert.Equal(t, TypeRequestData, msg.Type())
	assert.Equal(t, Path{0x03, 0x01, 0x02}, msg.TargetPath)
	assert.Equal(t, Path{0x03, 0x00, 0x02}, msg.SourcePath)
	assert.Equal(t, KeypadPeripheral, msg.SourceKeypad)
	assert.Equal(t, byte(1), msg.TargetController)
}

func TestBuilderErrors(t *testing.T) {
	_, err := GetInfo(0, 1, InfoVolume)
	assert.ErrorIs(t, err, ErrInvalidController)

	_, err = GetInfo(1, 1, InfoCode(0x0601))
	assert.ErrorIs(t, err, ErrInvalidInfoCode)

	_, err = SetParam(1, 1, Param(8), 1)
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = Volume(128, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidController)

	_, err = SetSource(1, 256, 1)
	assert.ErrorIs(t, err, ErrInvalidZone)

	_, err = Acknowledge(-1)
	assert.ErrorIs(t, err, ErrInvalidController)
}

func TestBuiltFramesHaveValidChecksums(t *testing.T) {
	var frames [][]byte
	for c := 1; c <= 6; c++ {
		for z := 0; z < 8; z++ {
			f, err := Volume(c, z, byte(z*6))
			require.NoError(t, err)
			frames = append(frames, f)
			f, err = SetParam(c, z, ParamBalance, byte(z+8))
			require.NoError(t, err)
			frames = append(frames, f)
		}
		f, err := RequestConfig(c)
		require.NoError(t, err)
		frames = append(frames, f)
	}

	for _, f := range frames {
		cs := f[len(f)-2]
		assert.LessOrEqual(t, cs, byte(0x7F))
		assert.NoError(t, VerifyChecksum(Frame{Raw: f}))
	}
}
