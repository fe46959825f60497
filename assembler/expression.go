package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Urethramancer/asm6502/cpu"
	"github.com/Urethramancer/asm6502/syntax"
)

// ValueKind tells whether an operand value is known at build time.
type ValueKind int

const (
	// NoValue is used by Accumulator and Implied expressions.
	NoValue ValueKind = iota
	// Numeric is a literal. For Relative expressions it is the signed
	// displacement byte.
	Numeric
	// Label is a reference to a symbol by name.
	Label
	// Target is an absolute branch destination written as a long literal.
	// Build turns it into a Numeric displacement once the address is known.
	Target
)

// Value is the operand of an expression.
type Value struct {
	Kind   ValueKind
	Number uint16
	Label  string
}

// Expression is one assembled instruction.
type Expression struct {
	Mnemonic cpu.Mnemonic
	Mode     cpu.Mode
	Operand  Value
	Line     int
}

// Size is the encoded length in bytes.
func (e Expression) Size() int {
	return e.Mode.Size()
}

// Opcode returns the encoded opcode byte.
func (e Expression) Opcode() (byte, error) {
	return cpu.Encode(e.Mnemonic, e.Mode)
}

// String renders the expression in source form.
func (e Expression) String() string {
	var v string
	switch e.Operand.Kind {
	case Label:
		v = e.Operand.Label
	case Numeric, Target:
		if e.Mode.IsLong() || e.Operand.Kind == Target {
			v = fmt.Sprintf("$%04X", e.Operand.Number)
		} else {
			v = fmt.Sprintf("$%02X", e.Operand.Number)
		}
	}

	var op string
	switch e.Mode {
	case cpu.Accumulator, cpu.Implied:
		return e.Mnemonic.String()
	case cpu.Immediate:
		op = "#" + v
	case cpu.ZeroPageX, cpu.AbsoluteX:
		op = v + ",X"
	case cpu.ZeroPageY, cpu.AbsoluteY:
		op = v + ",Y"
	case cpu.AbsoluteIndirect:
		op = "(" + v + ")"
	case cpu.IndexedIndirect:
		op = "(" + v + ",X)"
	case cpu.IndirectIndexed:
		op = "(" + v + "),Y"
	default:
		op = v
	}
	return e.Mnemonic.String() + " " + op
}

// BuildExpression converts one instruction node into its labels and the
// expression it encodes. The addressing mode is chosen from the operand's
// surface syntax and the mnemonic alone.
func BuildExpression(n syntax.Node) ([]string, Expression, error) {
	if n.Type != syntax.NodeInstruction {
		return nil, Expression{}, fmt.Errorf("line %d: expected an instruction, got a %s node", n.Line, n.Type)
	}

	mn, ok := cpu.ParseMnemonic(n.Mnemonic)
	if !ok {
		return nil, Expression{}, fmt.Errorf("line %d: %w: %s", n.Line, ErrUnknownMnemonic, n.Mnemonic)
	}

	e := Expression{Mnemonic: mn, Line: n.Line}
	if n.Operand == nil {
		if mn.IsShift() {
			e.Mode = cpu.Accumulator
		} else {
			e.Mode = cpu.Implied
		}
	} else {
		mode, v, err := selectMode(mn, n.Operand)
		if err != nil {
			return nil, Expression{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		e.Mode = mode
		e.Operand = v
	}

	if !cpu.Supports(e.Mnemonic, e.Mode) {
		return nil, Expression{}, fmt.Errorf("line %d: %w: %s %s", n.Line, ErrUnsupportedEncoding, e.Mnemonic, e.Mode)
	}

	labels := make([]string, len(n.Labels))
	copy(labels, n.Labels)
	return labels, e, nil
}

const hexDigits = "0123456789abcdefABCDEF"

// classify decides Numeric or Label from the text alone and reports the byte
// width: 1 or 2 for literals by digit count, 0 for labels.
func classify(s string) (Value, int, error) {
	if !strings.HasPrefix(s, "$") {
		return Value{Kind: Label, Label: s}, 0, nil
	}

	digits := s[1:]
	if digits == "" || strings.Trim(digits, hexDigits) != "" {
		return Value{}, 0, fmt.Errorf("%w: malformed literal %q", syntax.ErrSyntax, s)
	}
	if len(digits) > 4 {
		return Value{}, 0, fmt.Errorf("%w: %s", ErrOperandWidth, s)
	}
	n, err := strconv.ParseUint(digits, 16, 16)
	if err != nil {
		return Value{}, 0, fmt.Errorf("%w: %s", ErrOperandWidth, s)
	}
	w := 1
	if len(digits) > 2 {
		w = 2
	}
	return Value{Kind: Numeric, Number: uint16(n)}, w, nil
}

func selectMode(mn cpu.Mnemonic, op *syntax.Operand) (cpu.Mode, Value, error) {
	if op.Form == syntax.FormBare && mn.IsShift() && strings.EqualFold(op.Value, "A") {
		return cpu.Accumulator, Value{}, nil
	}

	v, w, err := classify(op.Value)
	if err != nil {
		return 0, Value{}, err
	}
	short := w == 1

	switch op.Form {
	case syntax.FormBare:
		if mn.IsBranch() {
			if w == 2 {
				v.Kind = Target
			}
			return cpu.Relative, v, nil
		}
		if short {
			return cpu.ZeroPage, v, nil
		}
		return cpu.Absolute, v, nil

	case syntax.FormImmediate:
		if w == 2 {
			return 0, Value{}, fmt.Errorf("%w: immediate %s", ErrOperandWidth, op.Value)
		}
		return cpu.Immediate, v, nil

	case syntax.FormIndexed:
		zp, abs := cpu.ZeroPageX, cpu.AbsoluteX
		if op.Index == 'Y' {
			zp, abs = cpu.ZeroPageY, cpu.AbsoluteY
		}
		switch {
		case short:
			return zp, v, nil
		case v.Kind == Label && !cpu.Supports(mn, abs):
			// STX label,Y and STY label,X only exist in page zero.
			return zp, v, nil
		}
		return abs, v, nil

	case syntax.FormIndirect:
		return cpu.AbsoluteIndirect, v, nil

	case syntax.FormIndexedIndirect, syntax.FormIndirectIndexed:
		if w == 2 {
			return 0, Value{}, fmt.Errorf("%w: zero-page pointer %s", ErrOperandWidth, op.Value)
		}
		if op.Form == syntax.FormIndexedIndirect {
			return cpu.IndexedIndirect, v, nil
		}
		return cpu.IndirectIndexed, v, nil
	}
	return 0, Value{}, fmt.Errorf("unhandled operand form %s", op.Form)
}
