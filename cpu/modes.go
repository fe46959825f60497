package cpu

// Mode is a 6502 addressing mode.
type Mode int

// Addressing modes.
const (
	// Accumulator: ASL A, or a shift written without an operand.
	Accumulator Mode = iota
	// Implied: no operand.
	Implied
	// Immediate: #$nn
	Immediate
	// ZeroPage: $nn
	ZeroPage
	// ZeroPageX: $nn,X
	ZeroPageX
	// ZeroPageY: $nn,Y
	ZeroPageY
	// Relative: signed displacement for conditional branches.
	Relative
	// IndexedIndirect: ($nn,X)
	IndexedIndirect
	// IndirectIndexed: ($nn),Y
	IndirectIndexed
	// Absolute: $nnnn
	Absolute
	// AbsoluteX: $nnnn,X
	AbsoluteX
	// AbsoluteY: $nnnn,Y
	AbsoluteY
	// AbsoluteIndirect: ($nnnn), JMP only.
	AbsoluteIndirect

	modeCount
)

var modeNames = [modeCount]string{
	"Accumulator",
	"Implied",
	"Immediate",
	"ZeroPage",
	"ZeroPageX",
	"ZeroPageY",
	"Relative",
	"IndexedIndirect",
	"IndirectIndexed",
	"Absolute",
	"AbsoluteX",
	"AbsoluteY",
	"AbsoluteIndirect",
}

func (m Mode) String() string {
	if m < 0 || m >= modeCount {
		return "InvalidMode"
	}
	return modeNames[m]
}

// Modes returns all addressing modes.
func Modes() []Mode {
	out := make([]Mode, 0, modeCount)
	for m := Accumulator; m < modeCount; m++ {
		out = append(out, m)
	}
	return out
}

// OperandLength is the number of operand bytes following the opcode.
func (m Mode) OperandLength() int {
	switch m {
	case Accumulator, Implied:
		return 0
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY, Relative, IndexedIndirect, IndirectIndexed:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, AbsoluteIndirect:
		return 2
	}
	return 0
}

// Size is the full instruction length: opcode plus operand.
func (m Mode) Size() int {
	return m.OperandLength() + 1
}

// IsLong reports whether the operand is a 2-byte little-endian word.
func (m Mode) IsLong() bool {
	return m.OperandLength() == 2
}
