// Package assembler builds 6502 programs from syntax nodes in a single pass
// and emits them as a relocatable section.
package assembler

import (
	"fmt"
	"sort"

	"github.com/Urethramancer/asm6502/cpu"
	"github.com/Urethramancer/asm6502/syntax"
)

// maxSection is the size of the 6502 address space.
const maxSection = 0x10000

// symbol is a symbol table entry. index is the defining expression, or -1
// for labels placed after the last instruction.
type symbol struct {
	address int
	index   int
	line    int
}

// Program holds the expressions of one source file, their addresses and
// the symbol table. It is immutable once Build returns.
type Program struct {
	expressions []Expression
	addresses   []int
	symbols     map[string]symbol
	order       []string
	size        int
}

// Assemble parses and builds source text.
func Assemble(src string) (*Program, error) {
	nodes, err := syntax.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing error: %w", err)
	}
	return Build(nodes)
}

// Build runs the single addressing pass. Instruction length depends only on
// surface syntax, so every label address is final when it is recorded.
func Build(nodes []syntax.Node) (*Program, error) {
	p := &Program{symbols: make(map[string]symbol)}

	type pendingLabel struct {
		name string
		line int
	}
	var pending []pendingLabel
	cursor := 0

loop:
	for _, n := range nodes {
		switch n.Type {
		case syntax.NodeLabel:
			for _, l := range n.Labels {
				pending = append(pending, pendingLabel{l, n.Line})
			}

		case syntax.NodeInstruction:
			labels, e, err := BuildExpression(n)
			if err != nil {
				return nil, err
			}
			if e.Operand.Kind == Target {
				if e, err = resolveTarget(e, cursor); err != nil {
					return nil, err
				}
			}

			index := len(p.expressions)
			for _, l := range pending {
				if err := p.define(l.name, l.line, cursor, index); err != nil {
					return nil, err
				}
			}
			pending = pending[:0]
			for _, l := range labels {
				if err := p.define(l, n.Line, cursor, index); err != nil {
					return nil, err
				}
			}

			p.expressions = append(p.expressions, e)
			p.addresses = append(p.addresses, cursor)
			cursor += e.Size()
			if cursor > maxSection {
				return nil, fmt.Errorf("line %d: %w: section exceeds 64K", n.Line, ErrValueOutOfRange)
			}

		case syntax.NodeEnd:
			break loop
		}
	}

	for _, l := range pending {
		if err := p.define(l.name, l.line, cursor, -1); err != nil {
			return nil, err
		}
	}
	p.size = cursor
	return p, nil
}

func (p *Program) define(name string, line, address, index int) error {
	if prev, ok := p.symbols[name]; ok {
		return &SymbolError{
			Symbol: name,
			Line:   line,
			Err:    ErrDuplicateLabel,
			Detail: fmt.Sprintf("first declared on line %d", prev.line),
		}
	}
	if address >= maxSection {
		return &SymbolError{Symbol: name, Line: line, Err: ErrValueOutOfRange}
	}
	p.symbols[name] = symbol{address: address, index: index, line: line}
	p.order = append(p.order, name)
	return nil
}

// resolveTarget converts a branch to an absolute address into a displacement
// from the following instruction.
func resolveTarget(e Expression, address int) (Expression, error) {
	d, err := displacement(int(e.Operand.Number), address)
	if err != nil {
		return e, &SymbolError{Symbol: fmt.Sprintf("$%04X", e.Operand.Number), Line: e.Line, Err: ErrBranchOutOfRange, Detail: err.Error()}
	}
	e.Operand = Value{Kind: Numeric, Number: uint16(d)}
	return e, nil
}

// displacement returns target minus the address of the byte after a branch
// at address, as a signed byte.
func displacement(target, address int) (byte, error) {
	d := target - (address + cpu.Relative.Size())
	if d < -128 || d > 127 {
		return 0, fmt.Errorf("displacement %d", d)
	}
	return byte(int8(d)), nil
}

// Len is the number of expressions.
func (p *Program) Len() int { return len(p.expressions) }

// Size is the section size in bytes.
func (p *Program) Size() int { return p.size }

// Expression returns the i-th expression and its address.
func (p *Program) Expression(i int) (Expression, uint16) {
	return p.expressions[i], uint16(p.addresses[i])
}

// Expressions returns a copy of the expression list.
func (p *Program) Expressions() []Expression {
	out := make([]Expression, len(p.expressions))
	copy(out, p.expressions)
	return out
}

// Lookup returns the address of a symbol.
func (p *Program) Lookup(name string) (uint16, bool) {
	s, ok := p.symbols[name]
	return uint16(s.address), ok
}

// Definition returns the expression a label is attached to. The boolean is
// false for unknown names and for labels that trail the last instruction.
func (p *Program) Definition(name string) (Expression, bool) {
	s, ok := p.symbols[name]
	if !ok || s.index < 0 {
		return Expression{}, false
	}
	return p.expressions[s.index], true
}

// Labels lists symbol names in declaration order.
func (p *Program) Labels() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// SortedLabels lists symbol names by address, then name.
func (p *Program) SortedLabels() []string {
	out := p.Labels()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := p.symbols[out[i]], p.symbols[out[j]]
		if a.address != b.address {
			return a.address < b.address
		}
		return out[i] < out[j]
	})
	return out
}
