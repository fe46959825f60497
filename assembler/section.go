package assembler

import (
	"fmt"

	"github.com/Urethramancer/asm6502/cpu"
)

// Placeholder fills operand bytes whose value is left to the linker.
const Placeholder = 0xFF

// RelocationKind tells a linker how to patch a relocation.
type RelocationKind int

const (
	// Short is a 1-byte absolute value: immediate, zero page, zero page
	// indexed and the indirect zero-page pointer modes.
	Short RelocationKind = iota
	// Long is a 2-byte little-endian address: absolute and absolute indexed.
	Long
	// Absolute is a 2-byte little-endian indirect pointer slot, JMP (label).
	Absolute
	// Relative is a 1-byte signed displacement from the following instruction.
	Relative
)

func (k RelocationKind) String() string {
	switch k {
	case Short:
		return "short"
	case Long:
		return "long"
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	}
	return "unknown"
}

// Width is the number of bytes the relocation patches.
func (k RelocationKind) Width() int {
	if k == Long || k == Absolute {
		return 2
	}
	return 1
}

// Relocation is a deferred patch at Offset within the section.
type Relocation struct {
	Symbol string
	Offset uint16
	Kind   RelocationKind
}

func (r Relocation) String() string {
	return fmt.Sprintf("%04X %-8s %s", r.Offset, r.Kind, r.Symbol)
}

// Relocatable is a section ready for a linker or object writer.
type Relocatable interface {
	RawBytes() ([]byte, error)
	Relocations() []Relocation
	Symbols() map[string]uint16
}

var _ Relocatable = (*Program)(nil)

// relocationKind maps an addressing mode to the kind used for label operands.
func relocationKind(m cpu.Mode) RelocationKind {
	switch m {
	case cpu.Absolute, cpu.AbsoluteX, cpu.AbsoluteY:
		return Long
	case cpu.AbsoluteIndirect:
		return Absolute
	case cpu.Relative:
		return Relative
	}
	return Short
}

// RawBytes emits the section. Label operands become placeholders, even when
// the label is defined here; the linker patches them from Relocations.
// Branches are the exception: every branch target is known once the program
// is built, so displacements are always written out.
func (p *Program) RawBytes() ([]byte, error) {
	out := make([]byte, 0, p.size)
	for i, e := range p.expressions {
		op, err := e.Opcode()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", e.Line, err)
		}
		out = append(out, op)

		if e.Mode == cpu.Relative {
			b, err := p.branchByte(i)
			if err != nil {
				return nil, err
			}
			out = append(out, b)
			continue
		}

		switch e.Mode.OperandLength() {
		case 1:
			if e.Operand.Kind == Label {
				out = append(out, Placeholder)
			} else {
				out = append(out, byte(e.Operand.Number))
			}
		case 2:
			if e.Operand.Kind == Label {
				out = append(out, Placeholder, Placeholder)
			} else {
				out = cpu.AppendWord(out, e.Operand.Number)
			}
		}
	}
	return out, nil
}

func (p *Program) branchByte(i int) (byte, error) {
	e := p.expressions[i]
	if e.Operand.Kind != Label {
		return byte(e.Operand.Number), nil
	}
	target, ok := p.symbols[e.Operand.Label]
	if !ok {
		return 0, &SymbolError{Symbol: e.Operand.Label, Line: e.Line, Err: ErrUndefinedSymbol, Detail: "branch target"}
	}
	b, err := displacement(target.address, p.addresses[i])
	if err != nil {
		return 0, &SymbolError{Symbol: e.Operand.Label, Line: e.Line, Err: ErrBranchOutOfRange, Detail: err.Error()}
	}
	return b, nil
}

// Relocations lists one record per label operand, at the offset of the first
// operand byte. Relative records are informational: RawBytes has already
// written the displacement, so their slot holds a resolved byte rather than
// a placeholder.
func (p *Program) Relocations() []Relocation {
	var out []Relocation
	for i, e := range p.expressions {
		if e.Operand.Kind != Label {
			continue
		}
		out = append(out, Relocation{
			Symbol: e.Operand.Label,
			Offset: uint16(p.addresses[i] + 1),
			Kind:   relocationKind(e.Mode),
		})
	}
	return out
}

// Symbols maps every label to its section offset.
func (p *Program) Symbols() map[string]uint16 {
	out := make(map[string]uint16, len(p.symbols))
	for name, s := range p.symbols {
		out[name] = uint16(s.address)
	}
	return out
}
