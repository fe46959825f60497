// Package disassembler turns 6502 machine code back into assembly source.
package disassembler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Urethramancer/asm6502/cpu"
)

// LabelType defines the context of a generated label.
type LabelType int

const (
	// JumpTarget is for a branch or JMP destination.
	JumpTarget LabelType = iota
	// SubroutineEntry is for a JSR target.
	SubroutineEntry
)

// Options control disassembly.
type Options struct {
	// Origin is the address of the first byte.
	Origin uint16
	// Symbols names absolute addresses. Named addresses inside the image are
	// also treated as code entry points.
	Symbols map[string]uint16
	// Listing prefixes every line with its address and bytes.
	Listing bool
}

// Instruction represents a single decoded instruction at a specific address.
type Instruction struct {
	Address  uint16
	Mnemonic cpu.Mnemonic
	Mode     cpu.Mode
	Operand  uint16
	Bytes    []byte
	IsCode   bool // Flag to mark as reachable code
}

// Target returns the destination of a branch, JMP or JSR, if any.
func (i *Instruction) Target() (uint16, bool) {
	switch {
	case i.Mode == cpu.Relative:
		return uint16(int(i.Address) + len(i.Bytes) + int(int8(i.Operand))), true
	case i.Mode == cpu.Absolute && (i.Mnemonic == cpu.JMP || i.Mnemonic == cpu.JSR):
		return i.Operand, true
	}
	return 0, false
}

// Disassemble decodes code starting at offset zero, which is always treated
// as an entry point.
func Disassemble(code []byte, opt Options) (string, error) {
	if len(code) == 0 {
		return "", nil
	}
	if int(opt.Origin)+len(code) > 0x10000 {
		return "", fmt.Errorf("%d bytes at $%04X overrun the address space", len(code), opt.Origin)
	}

	// --- STAGE 1: Linear Sweep ---
	instructions := make(map[int]*Instruction)
	for pc := 0; pc < len(code); pc++ {
		if inst, ok := decode(code, pc, opt.Origin); ok {
			instructions[pc] = inst
		}
	}

	// --- STAGE 2: Control Flow Analysis ---
	names := make(map[uint16]string)
	for name, addr := range opt.Symbols {
		if prev, ok := names[addr]; !ok || name < prev {
			names[addr] = name
		}
	}
	inImage := func(addr uint16) (int, bool) {
		off := int(addr) - int(opt.Origin)
		return off, off >= 0 && off < len(code)
	}

	labelTargets := make(map[uint16]LabelType)
	q := newQueue()
	q.push(0)
	for _, addr := range sortedAddresses(names) {
		if off, ok := inImage(addr); ok {
			q.push(off)
		}
	}

	for {
		off, ok := q.pop()
		if !ok {
			break
		}
		inst, exists := instructions[off]
		if !exists || inst.IsCode {
			continue
		}
		// Truncated decodes keep only the bytes that exist.
		if off+inst.Mode.Size() > len(code) {
			continue
		}
		inst.IsCode = true

		if !isTerminal(inst.Mnemonic) {
			q.push(off + len(inst.Bytes))
		}
		if target, ok := inst.Target(); ok {
			if toff, ok := inImage(target); ok {
				q.push(toff)
				if inst.Mnemonic == cpu.JSR {
					labelTargets[target] = SubroutineEntry
				} else if _, exists := labelTargets[target]; !exists {
					labelTargets[target] = JumpTarget
				}
			}
		}
	}

	// Instructions that overlap an earlier code instruction are dropped.
	for off := 0; off < len(code); {
		inst, ok := instructions[off]
		if !ok || !inst.IsCode {
			off++
			continue
		}
		for i := 1; i < len(inst.Bytes); i++ {
			if other, ok := instructions[off+i]; ok {
				other.IsCode = false
			}
		}
		off += len(inst.Bytes)
	}

	label := func(addr uint16) (string, bool) {
		if name, ok := names[addr]; ok {
			return name, true
		}
		if lt, ok := labelTargets[addr]; ok {
			return labelName(addr, lt), true
		}
		return "", false
	}

	// --- STAGE 3: Render Final Output ---
	var out strings.Builder
	for pc := 0; pc < len(code); {
		if inst, isCode := instructions[pc]; !isCode || !inst.IsCode {
			dataEnd := pc
			for dataEnd < len(code) {
				if inst, isCode := instructions[dataEnd]; isCode && inst.IsCode {
					break
				}
				dataEnd++
			}
			out.WriteString(formatData(code[pc:dataEnd], opt.Origin+uint16(pc), opt.Listing, label))
			pc = dataEnd
			continue
		}

		inst := instructions[pc]
		if name, ok := label(inst.Address); ok {
			fmt.Fprintf(&out, "%s:\n", name)
		}
		if opt.Listing {
			fmt.Fprintf(&out, "%04X  %-9s", inst.Address, hexBytes(inst.Bytes))
		}
		fmt.Fprintf(&out, "    %s\n", strings.TrimRight(formatInstruction(inst, label), " "))
		pc += len(inst.Bytes)
	}

	// Symbols pointing at the end of the image.
	end := opt.Origin + uint16(len(code))
	if int(opt.Origin)+len(code) < 0x10000 {
		if name, ok := names[end]; ok {
			fmt.Fprintf(&out, "%s:\n", name)
		}
	}
	return out.String(), nil
}

// decode reads one instruction at offset pc. Truncated instructions are still
// returned so the sweep can see them; stage 2 refuses to mark them as code.
func decode(code []byte, pc int, origin uint16) (*Instruction, bool) {
	mn, mode, ok := cpu.Decode(code[pc])
	if !ok {
		return nil, false
	}
	end := pc + mode.Size()
	if end > len(code) {
		return &Instruction{Address: origin + uint16(pc), Mnemonic: mn, Mode: mode, Bytes: code[pc:]}, true
	}

	inst := &Instruction{
		Address:  origin + uint16(pc),
		Mnemonic: mn,
		Mode:     mode,
		Bytes:    code[pc:end],
	}
	switch mode.OperandLength() {
	case 1:
		inst.Operand = uint16(code[pc+1])
	case 2:
		inst.Operand = cpu.Word(code[pc+1:])
	}
	return inst, true
}

// isTerminal checks if an instruction unconditionally stops linear execution.
func isTerminal(mn cpu.Mnemonic) bool {
	return mn == cpu.RTS || mn == cpu.RTI || mn == cpu.JMP || mn == cpu.BRK
}

func sortedAddresses(names map[uint16]string) []uint16 {
	out := make([]uint16, 0, len(names))
	for a := range names {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// addrQueue is a simple worklist queue for offsets to decode.
type addrQueue struct {
	items []int
	seen  map[int]bool
}

func newQueue() *addrQueue {
	return &addrQueue{seen: make(map[int]bool)}
}

func (q *addrQueue) push(off int) {
	if !q.seen[off] {
		q.items = append(q.items, off)
		q.seen[off] = true
	}
}

func (q *addrQueue) pop() (int, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	a := q.items[0]
	q.items = q.items[1:]
	return a, true
}
