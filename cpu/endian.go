package cpu

import (
	"encoding/binary"
)

// PutWord stores a 16-bit value little-endian, the 6502 byte order.
func PutWord(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

// Word reads a little-endian 16-bit value.
func Word(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// AppendWord appends a little-endian 16-bit value.
func AppendWord(b []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(b, v)
}

// Lo returns the low byte of v.
func Lo(v uint16) byte { return byte(v) }

// Hi returns the high byte of v.
func Hi(v uint16) byte { return byte(v >> 8) }
