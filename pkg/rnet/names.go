package rnet

import "strconv"

// Custom-name override ranges. An index inside the range selects slot
// index-first of the custom-name table.
const (
	SourceCustomFirst = 73
	SourceCustomLast  = 82
	ZoneCustomFirst   = 52
	ZoneCustomLast    = 61
)

// SourceNames are the built-in source names, addressed by the index stored
// in a source table entry.
var SourceNames = []string{
	"Source 1", "Source 2", "Source 3", "Source 4", "Source 5", "Source 6",
	"Source 7", "Source 8", "AM/FM Tuner", "Tuner 1", "Tuner 2", "CD",
	"CD Changer", "DVD", "DVD Changer", "Satellite", "Satellite Radio",
	"Cable", "Cable TV", "TV", "HDTV", "DVR", "VCR", "Laser Disc", "Turntable",
	"Cassette", "Tape", "Aux", "Aux 1", "Aux 2", "Computer", "Media Server",
	"Music Server", "iPod", "iPod Dock", "MP3", "Internet Radio", "XM Radio",
	"Sirius Radio", "HD Radio", "Streaming", "Bluetooth", "AirPlay",
	"Network", "Game", "Game Console", "Karaoke", "Piano", "Intercom",
	"Doorbell", "Camera", "Security", "Phone", "Video", "Video 1", "Video 2",
	"Audio", "Audio 1", "Audio 2", "Jukebox", "Receiver", "Preamp", "Mic",
	"Local Source", "Zone Source", "Front Door", "Back Door", "Patio",
	"Music", "Movies", "Radio", "Off", "None",
}

// ZoneNames are the built-in zone names, addressed by the index stored in a
// zone table entry.
var ZoneNames = []string{
	"Zone 1", "Zone 2", "Zone 3", "Zone 4", "Zone 5", "Zone 6", "Zone 7",
	"Zone 8", "Living Room", "Family Room", "Great Room", "Kitchen",
	"Dining Room", "Breakfast Nook", "Master Bedroom", "Master Bath",
	"Bedroom", "Bedroom 2", "Bedroom 3", "Guest Room", "Guest Bath",
	"Bathroom", "Office", "Study", "Library", "Den", "Media Room", "Theater",
	"Game Room", "Rec Room", "Basement", "Garage", "Workshop", "Gym",
	"Laundry", "Hallway", "Foyer", "Entry", "Nursery", "Playroom", "Loft",
	"Attic", "Sun Room", "Porch", "Patio", "Deck", "Pool", "Spa", "Yard",
	"Garden", "Bar", "Wine Cellar",
}

// sourceName resolves a source table index.
func sourceName(idx int, custom CustomNameTable) string {
	if idx >= SourceCustomFirst && idx <= SourceCustomLast {
		return custom[idx-SourceCustomFirst]
	}
	if idx >= 0 && idx < len(SourceNames) {
		return SourceNames[idx]
	}
	return "Source #" + strconv.Itoa(idx)
}

// zoneName resolves a zone table index.
func zoneName(idx int, custom CustomNameTable) string {
	if idx >= ZoneCustomFirst && idx <= ZoneCustomLast {
		return custom[idx-ZoneCustomFirst]
	}
	if idx >= 0 && idx < len(ZoneNames) {
		return ZoneNames[idx]
	}
	return "Zone #" + strconv.Itoa(idx)
}
