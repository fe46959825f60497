package disassembler

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/asm6502/cpu"
)

// labelName generates a name for an unnamed code address.
func labelName(addr uint16, labelType LabelType) string {
	if labelType == SubroutineEntry {
		return fmt.Sprintf("sub_%04X", addr)
	}
	return fmt.Sprintf("L%04X", addr)
}

// formatInstruction renders an instruction in source syntax. Branch and jump
// targets use labels when one is known.
func formatInstruction(inst *Instruction, label func(uint16) (string, bool)) string {
	mn := inst.Mnemonic.String()
	var v string
	if target, ok := inst.Target(); ok {
		if name, ok := label(target); ok {
			v = name
		} else {
			v = fmt.Sprintf("$%04X", target)
		}
	} else if inst.Mode.IsLong() {
		v = fmt.Sprintf("$%04X", inst.Operand)
	} else {
		v = fmt.Sprintf("$%02X", inst.Operand)
	}

	switch inst.Mode {
	case cpu.Accumulator, cpu.Implied:
		return mn
	case cpu.Immediate:
		return fmt.Sprintf("%-4s#%s", mn, v)
	case cpu.ZeroPageX, cpu.AbsoluteX:
		return fmt.Sprintf("%-4s%s,X", mn, v)
	case cpu.ZeroPageY, cpu.AbsoluteY:
		return fmt.Sprintf("%-4s%s,Y", mn, v)
	case cpu.AbsoluteIndirect:
		return fmt.Sprintf("%-4s(%s)", mn, v)
	case cpu.IndexedIndirect:
		return fmt.Sprintf("%-4s(%s,X)", mn, v)
	case cpu.IndirectIndexed:
		return fmt.Sprintf("%-4s(%s),Y", mn, v)
	}
	return fmt.Sprintf("%-4s%s", mn, v)
}

// hexBytes formats bytes as space-separated hex pairs.
func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, " ")
}
