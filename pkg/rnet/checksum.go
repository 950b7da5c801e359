package rnet

import "fmt"

// Checksum computes the checksum for a transmitted frame whose checksum byte
// sits at csOffset. Bytes 1 through csOffset-1 are summed, the total frame
// length (csOffset plus checksum and end marker) is added and the result is
// masked to 7 bits.
func Checksum(raw []byte, csOffset int) byte {
	if csOffset > len(raw) {
		csOffset = len(raw)
	}
	sum := 0
	for i := 1; i < csOffset; i++ {
		sum += int(raw[i])
	}
	sum += csOffset + 2
	return byte(sum & 0x7F)
}

// StartChecksum computes the checksum the way the RNET protocol reference
// does: bytes 0 through csOffset-1, start marker included, plus csOffset. It
// differs from Checksum by a constant 110 modulo 128.
func StartChecksum(raw []byte, csOffset int) byte {
	if csOffset > len(raw) {
		csOffset = len(raw)
	}
	sum := csOffset
	for _, b := range raw[:csOffset] {
		sum += int(b)
	}
	return byte(sum & 0x7F)
}

// VerifyChecksum checks the checksum byte of a frame against its transmitted
// bytes. A frame passes when it matches either Checksum or StartChecksum;
// builders emit Checksum.
func VerifyChecksum(f Frame) error {
	raw := f.Raw
	if len(raw) < minFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(raw))
	}
	csOffset := len(raw) - 2
	want := Checksum(raw, csOffset)
	got := raw[csOffset]
	if got != want && got != StartChecksum(raw, csOffset) {
		return fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrChecksumMismatch, got, want)
	}
	return nil
}
