// Package linker places a relocatable section at an origin and patches its
// relocations into an absolute image.
package linker

import (
	"fmt"

	"github.com/Urethramancer/asm6502/assembler"
	"github.com/Urethramancer/asm6502/cpu"
)

// Link resolves every relocation of r. Section symbols are offset by origin;
// anything else must be supplied by externs.
func Link(r assembler.Relocatable, origin uint16, externs map[string]uint16) ([]byte, error) {
	raw, err := r.RawBytes()
	if err != nil {
		return nil, err
	}
	if int(origin)+len(raw) > 0x10000 {
		return nil, fmt.Errorf("%w: %d bytes at $%04X overrun the address space", assembler.ErrValueOutOfRange, len(raw), origin)
	}

	image := make([]byte, len(raw))
	copy(image, raw)

	symbols := r.Symbols()
	for _, rel := range r.Relocations() {
		value, ok := resolve(rel.Symbol, origin, symbols, externs)
		if !ok {
			return nil, &assembler.SymbolError{Symbol: rel.Symbol, Err: assembler.ErrUndefinedSymbol, Detail: fmt.Sprintf("offset $%04X", rel.Offset)}
		}
		if err := patch(image, rel, origin, value); err != nil {
			return nil, err
		}
	}
	return image, nil
}

func resolve(name string, origin uint16, symbols, externs map[string]uint16) (uint16, bool) {
	if v, ok := symbols[name]; ok {
		return origin + v, true
	}
	v, ok := externs[name]
	return v, ok
}

func patch(image []byte, rel assembler.Relocation, origin, value uint16) error {
	off := int(rel.Offset)
	if off+rel.Kind.Width() > len(image) {
		return fmt.Errorf("relocation %s outside section of %d bytes", rel, len(image))
	}

	switch rel.Kind {
	case assembler.Short:
		if value > 0xFF {
			return &assembler.SymbolError{Symbol: rel.Symbol, Err: assembler.ErrValueOutOfRange, Detail: fmt.Sprintf("$%04X does not fit in a byte", value)}
		}
		image[off] = byte(value)
	case assembler.Long, assembler.Absolute:
		cpu.PutWord(image[off:], value)
	case assembler.Relative:
		// The displacement byte is the last byte of the branch. For section
		// labels this rewrites the byte RawBytes already resolved.
		d := int(value) - (int(origin) + off + 1)
		if d < -128 || d > 127 {
			return &assembler.SymbolError{Symbol: rel.Symbol, Err: assembler.ErrBranchOutOfRange, Detail: fmt.Sprintf("displacement %d", d)}
		}
		image[off] = byte(int8(d))
	default:
		return fmt.Errorf("unknown relocation kind %d", rel.Kind)
	}
	return nil
}
