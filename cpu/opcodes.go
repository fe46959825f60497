package cpu

import (
	"errors"
	"fmt"
)

// ErrUnsupportedEncoding is returned when a mnemonic has no opcode for the
// requested addressing mode.
var ErrUnsupportedEncoding = errors.New("unsupported addressing mode")

// opcodes is the NMOS 6502 opcode map for the official instruction set.
var opcodes = map[Mnemonic]map[Mode]byte{
	ADC: {Immediate: 0x69, ZeroPage: 0x65, ZeroPageX: 0x75, Absolute: 0x6D, AbsoluteX: 0x7D, AbsoluteY: 0x79, IndexedIndirect: 0x61, IndirectIndexed: 0x71},
	AND: {Immediate: 0x29, ZeroPage: 0x25, ZeroPageX: 0x35, Absolute: 0x2D, AbsoluteX: 0x3D, AbsoluteY: 0x39, IndexedIndirect: 0x21, IndirectIndexed: 0x31},
	ASL: {Accumulator: 0x0A, ZeroPage: 0x06, ZeroPageX: 0x16, Absolute: 0x0E, AbsoluteX: 0x1E},
	BCC: {Relative: 0x90},
	BCS: {Relative: 0xB0},
	BEQ: {Relative: 0xF0},
	BIT: {ZeroPage: 0x24, Absolute: 0x2C},
	BMI: {Relative: 0x30},
	BNE: {Relative: 0xD0},
	BPL: {Relative: 0x10},
	BRK: {Implied: 0x00},
	BVC: {Relative: 0x50},
	BVS: {Relative: 0x70},
	CLC: {Implied: 0x18},
	CLD: {Implied: 0xD8},
	CLI: {Implied: 0x58},
	CLV: {Implied: 0xB8},
	CMP: {Immediate: 0xC9, ZeroPage: 0xC5, ZeroPageX: 0xD5, Absolute: 0xCD, AbsoluteX: 0xDD, AbsoluteY: 0xD9, IndexedIndirect: 0xC1, IndirectIndexed: 0xD1},
	CPX: {Immediate: 0xE0, ZeroPage: 0xE4, Absolute: 0xEC},
	CPY: {Immediate: 0xC0, ZeroPage: 0xC4, Absolute: 0xCC},
	DEC: {ZeroPage: 0xC6, ZeroPageX: 0xD6, Absolute: 0xCE, AbsoluteX: 0xDE},
	DEX: {Implied: 0xCA},
	DEY: {Implied: 0x88},
	EOR: {Immediate: 0x49, ZeroPage: 0x45, ZeroPageX: 0x55, Absolute: 0x4D, AbsoluteX: 0x5D, AbsoluteY: 0x59, IndexedIndirect: 0x41, IndirectIndexed: 0x51},
	INC: {ZeroPage: 0xE6, ZeroPageX: 0xF6, Absolute: 0xEE, AbsoluteX: 0xFE},
	INX: {Implied: 0xE8},
	INY: {Implied: 0xC8},
	JMP: {Absolute: 0x4C, AbsoluteIndirect: 0x6C},
	JSR: {Absolute: 0x20},
	LDA: {Immediate: 0xA9, ZeroPage: 0xA5, ZeroPageX: 0xB5, Absolute: 0xAD, AbsoluteX: 0xBD, AbsoluteY: 0xB9, IndexedIndirect: 0xA1, IndirectIndexed: 0xB1},
	LDX: {Immediate: 0xA2, ZeroPage: 0xA6, ZeroPageY: 0xB6, Absolute: 0xAE, AbsoluteY: 0xBE},
	LDY: {Immediate: 0xA0, ZeroPage: 0xA4, ZeroPageX: 0xB4, Absolute: 0xAC, AbsoluteX: 0xBC},
	LSR: {Accumulator: 0x4A, ZeroPage: 0x46, ZeroPageX: 0x56, Absolute: 0x4E, AbsoluteX: 0x5E},
	NOP: {Implied: 0xEA},
	ORA: {Immediate: 0x09, ZeroPage: 0x05, ZeroPageX: 0x15, Absolute: 0x0D, AbsoluteX: 0x1D, AbsoluteY: 0x19, IndexedIndirect: 0x01, IndirectIndexed: 0x11},
	PHA: {Implied: 0x48},
	PHP: {Implied: 0x08},
	PLA: {Implied: 0x68},
	PLP: {Implied: 0x28},
	ROL: {Accumulator: 0x2A, ZeroPage: 0x26, ZeroPageX: 0x36, Absolute: 0x2E, AbsoluteX: 0x3E},
	ROR: {Accumulator: 0x6A, ZeroPage: 0x66, ZeroPageX: 0x76, Absolute: 0x6E, AbsoluteX: 0x7E},
	RTI: {Implied: 0x40},
	RTS: {Implied: 0x60},
	SBC: {Immediate: 0xE9, ZeroPage: 0xE5, ZeroPageX: 0xF5, Absolute: 0xED, AbsoluteX: 0xFD, AbsoluteY: 0xF9, IndexedIndirect: 0xE1, IndirectIndexed: 0xF1},
	SEC: {Implied: 0x38},
	SED: {Implied: 0xF8},
	SEI: {Implied: 0x78},
	STA: {ZeroPage: 0x85, ZeroPageX: 0x95, Absolute: 0x8D, AbsoluteX: 0x9D, AbsoluteY: 0x99, IndexedIndirect: 0x81, IndirectIndexed: 0x91},
	STX: {ZeroPage: 0x86, ZeroPageY: 0x96, Absolute: 0x8E},
	STY: {ZeroPage: 0x84, ZeroPageX: 0x94, Absolute: 0x8C},
	TAX: {Implied: 0xAA},
	TAY: {Implied: 0xA8},
	TSX: {Implied: 0xBA},
	TXA: {Implied: 0x8A},
	TXS: {Implied: 0x9A},
	TYA: {Implied: 0x98},
}

// Opcode is one entry of the decode table.
type Opcode struct {
	Mnemonic Mnemonic
	Mode     Mode
}

// decodeTable is the reverse of opcodes, indexed by opcode byte.
var decodeTable = func() (t [256]Opcode) {
	for mn, modes := range opcodes {
		for mode, op := range modes {
			t[op] = Opcode{Mnemonic: mn, Mode: mode}
		}
	}
	return t
}()

// Encode returns the opcode byte for a mnemonic in the given addressing mode.
func Encode(mn Mnemonic, mode Mode) (byte, error) {
	op, ok := opcodes[mn][mode]
	if !ok {
		return 0, fmt.Errorf("%w: %s %s", ErrUnsupportedEncoding, mn, mode)
	}
	return op, nil
}

// Supports reports whether the mnemonic has an opcode for the mode.
func Supports(mn Mnemonic, mode Mode) bool {
	_, ok := opcodes[mn][mode]
	return ok
}

// Decode looks up an opcode byte. The boolean is false for bytes outside the
// official instruction set.
func Decode(op byte) (Mnemonic, Mode, bool) {
	e := decodeTable[op]
	if e.Mnemonic == InvalidMnemonic {
		return InvalidMnemonic, Implied, false
	}
	return e.Mnemonic, e.Mode, true
}
