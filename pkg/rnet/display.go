package rnet

// Render types of the rendered display record. These are reverse-engineered
// from captures; rnet-log stats lists the render types seen on a real bus so
// the table can be checked.
const (
	RenderSource          byte = 0x01
	RenderVolume          byte = 0x02
	RenderBass            byte = 0x03
	RenderTreble          byte = 0x04
	RenderBalance         byte = 0x05
	RenderLoudness        byte = 0x06
	RenderTurnOnVolume    byte = 0x07
	RenderBackgroundColor byte = 0x08
	RenderDoNotDisturb    byte = 0x09
	RenderPartyMode       byte = 0x0A
	RenderTime            byte = 0x10
	RenderVolumeAlt       byte = 0x90
)

var renderKinds = map[byte]Kind{
	RenderSource:          KindDisplaySource,
	RenderVolume:          KindDisplayVolume,
	RenderBass:            KindDisplayBass,
	RenderTreble:          KindDisplayTreble,
	RenderBalance:         KindDisplayBalance,
	RenderLoudness:        KindDisplayLoudness,
	RenderTurnOnVolume:    KindDisplayTurnOnVolume,
	RenderBackgroundColor: KindDisplayBackgroundColor,
	RenderDoNotDisturb:    KindDisplayDoNotDisturb,
	RenderPartyMode:       KindDisplayPartyMode,
	RenderTime:            KindDisplayTime,
	RenderVolumeAlt:       KindDisplayVolume,
}

// displayRecordSize is value_lo, value_hi, flash_lo, flash_hi, render_type.
const displayRecordSize = 5

// LookupRender maps a render type to its kind, KindUnknownDisplay if unmapped.
func LookupRender(renderType byte) Kind {
	if k, ok := renderKinds[renderType]; ok {
		return k
	}
	return KindUnknownDisplay
}

func decodeDisplayRecord(h Header, b []byte) Display {
	return Display{
		Value:      le16(b[0:2]),
		Flash:      le16(b[2:4]),
		RenderType: b[4],
		Zone:       int(h.SourceZone),
	}
}
