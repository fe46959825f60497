package assembler

import (
	"errors"
	"fmt"

	"github.com/Urethramancer/asm6502/cpu"
)

// Assembly errors. Every failure returned by this package wraps one of these.
var (
	ErrUnknownMnemonic     = errors.New("unknown mnemonic")
	ErrUnsupportedEncoding = cpu.ErrUnsupportedEncoding
	ErrDuplicateLabel      = errors.New("duplicate label")
	ErrUndefinedSymbol     = errors.New("undefined symbol")
	ErrBranchOutOfRange    = errors.New("branch out of range")
	ErrOperandWidth        = errors.New("operand too wide")
	ErrValueOutOfRange     = errors.New("value out of range")
)

// SymbolError reports a failure tied to a named symbol.
type SymbolError struct {
	Symbol string
	Line   int
	Err    error
	Detail string
}

func (e *SymbolError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Err, e.Symbol)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *SymbolError) Unwrap() error { return e.Err }
