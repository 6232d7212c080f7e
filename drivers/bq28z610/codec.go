package bq28z610

import "bq28z610-go/errcode"

// Byte composition helpers. Block payloads carry multi-byte values least
// significant byte first; a few MAC responses (FirmwareVersion) are MSB first,
// which ComposeWord expresses with littleEndian=false.

// ComposeWord combines buf[lsbIndex] with its neighbour into a word. The
// neighbour is the MSB: lsbIndex+1 for little-endian, lsbIndex-1 otherwise.
//
//	[0x11, 0x22], 0, true  -> 0x2211
//	[0x11, 0x22], 1, false -> 0x1122
func ComposeWord(buf []byte, lsbIndex int, littleEndian bool) (uint16, error) {
	msbIndex := lsbIndex - 1
	if littleEndian {
		msbIndex = lsbIndex + 1
	}
	if msbIndex < 0 || lsbIndex < 0 || msbIndex >= len(buf) || lsbIndex >= len(buf) {
		return 0, errcode.New(errcode.Range, "compose_word", "index pair outside buffer")
	}
	return uint16(buf[msbIndex])<<8 | uint16(buf[lsbIndex]), nil
}

// ComposeValue reads the inclusive range buf[from..till] as a little-endian
// unsigned value; from is the least significant byte.
//
//	[0x11, 0x22, 0x33, 0x44], 0, 3 -> 0x44332211
func ComposeValue(buf []byte, from, till int) (uint32, error) {
	if till <= from {
		return 0, errcode.New(errcode.InvalidParams, "compose_value", "till must be greater than from")
	}
	if till-from > 3 {
		return 0, errcode.New(errcode.InvalidParams, "compose_value", "range wider than 32 bits")
	}
	if from < 0 || till >= len(buf) {
		return 0, errcode.New(errcode.Range, "compose_value", "range outside buffer")
	}
	var v uint32
	for i := till; i >= from; i-- {
		v = v<<8 | uint32(buf[i])
	}
	return v, nil
}

// ComposeDoubleWord reads buf[0..3] as a little-endian uint32.
func ComposeDoubleWord(buf []byte) (uint32, error) { return ComposeValue(buf, 0, 3) }

// PutWord stores v little-endian at buf[0:2].
func PutWord(buf []byte, v uint16) {
	buf[0] = byte(v)      // low
	buf[1] = byte(v >> 8) // high
}

// word and dword are the unchecked forms used on payloads whose length the
// caller has already verified.
func word(buf []byte, i int) uint16 { return uint16(buf[i]) | uint16(buf[i+1])<<8 }

func dword(buf []byte, i int) uint32 {
	return uint32(buf[i]) | uint32(buf[i+1])<<8 | uint32(buf[i+2])<<16 | uint32(buf[i+3])<<24
}
