package assembler_test

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Urethramancer/asm6502/assembler"
	"github.com/Urethramancer/asm6502/cpu"
)

// Assembles source and checks the raw section against an expected byte
// sequence (in hex).
func assembleAndMatchHex(t *testing.T, name, src, expectedHex string) *assembler.Program {
	t.Helper()

	expectedHex = strings.ToLower(strings.Join(strings.Fields(expectedHex), ""))
	expected, err := hex.DecodeString(expectedHex)
	if err != nil {
		t.Fatalf("[%s] invalid expected hex string: %v", name, err)
	}

	p, err := assembler.Assemble(src)
	if err != nil {
		t.Fatalf("[%s] failed to assemble:\n%s\nerror: %v", name, src, err)
	}
	code, err := p.RawBytes()
	if err != nil {
		t.Fatalf("[%s] failed to emit:\n%s\nerror: %v", name, src, err)
	}
	if len(code) != len(expected) {
		t.Fatalf("[%s] expected %d bytes, got %d\nexpected: % X\ngot:      % X",
			name, len(expected), len(code), expected, code)
	}
	for i := range code {
		if code[i] != expected[i] {
			t.Errorf("[%s] mismatch at byte %d\nexpected: % X\ngot:      % X",
				name, i, expected, code)
			break
		}
	}
	return p
}

func TestBasicEncodings(t *testing.T) {
	tests := []struct {
		name, src, hex string
	}{
		{"LDA_Immediate", "LDA #$10", "A9 10"},
		{"LDA_ZeroPage", "lda $10", "A5 10"},
		{"LDA_Absolute", "LDA $1234", "AD 34 12"},
		{"LDA_Absolute_Padded", "LDA $0010", "AD 10 00"},
		{"LDA_ZeroPageX", "LDA $10,X", "B5 10"},
		{"LDX_ZeroPageY", "LDX $10,Y", "B6 10"},
		{"LDA_AbsoluteX", "LDA $1234,X", "BD 34 12"},
		{"LDA_AbsoluteY", "LDA $1234,Y", "B9 34 12"},
		{"LDA_IndexedIndirect", "LDA ($23,X)", "A1 23"},
		{"LDA_IndirectIndexed", "LDA ($23),Y", "B1 23"},
		{"JMP_Absolute", "JMP $C000", "4C 00 C0"},
		{"JMP_Indirect", "JMP ($FFFC)", "6C FC FF"},
		{"JSR", "JSR $FFD2", "20 D2 FF"},
		{"ASL_Accumulator", "ASL", "0A"},
		{"ROL_A", "ROL A", "2A"},
		{"LSR_ZeroPage", "LSR $80", "46 80"},
		{"NOP", "NOP", "EA"},
		{"BRK", "BRK", "00"},
		{"RTS", "RTS", "60"},
		{"BEQ_Displacement", "BEQ $05", "F0 05"},
		{"BNE_AbsoluteTarget", "BNE $0000", "D0 FE"},
		{"STA_AbsoluteY", "STA $0200,Y", "99 00 02"},
	}
	for _, tc := range tests {
		assembleAndMatchHex(t, tc.name, tc.src, tc.hex)
	}
}

func TestImmediateRoundTrip(t *testing.T) {
	p := assembleAndMatchHex(t, "LDA_Immediate", "LDA #$10", "A9 10")

	require.Equal(t, 1, p.Len())
	e, addr := p.Expression(0)
	assert.Equal(t, cpu.LDA, e.Mnemonic)
	assert.Equal(t, cpu.Immediate, e.Mode)
	assert.Equal(t, assembler.Value{Kind: assembler.Numeric, Number: 0x10}, e.Operand)
	assert.Equal(t, uint16(0), addr)
	assert.Empty(t, p.Relocations())
	assert.Empty(t, p.Symbols())
}

func TestLabelledIndexed(t *testing.T) {
	p := assembleAndMatchHex(t, "LabelledIndexed", "label: LDA $10,X", "B5 10")

	e, _ := p.Expression(0)
	assert.Equal(t, cpu.ZeroPageX, e.Mode)
	assert.Equal(t, uint16(0x10), e.Operand.Number)
	assert.Equal(t, []string{"label"}, p.Labels())
	assert.Equal(t, map[string]uint16{"label": 0}, p.Symbols())
}

func TestForwardBranch(t *testing.T) {
	src := "BEQ target\nNOP\ntarget: BRK"
	p := assembleAndMatchHex(t, "ForwardBranch", src, "F0 01 EA 00")

	// The displacement is already in place; the record only names the target.
	want := []assembler.Relocation{{Symbol: "target", Offset: 1, Kind: assembler.Relative}}
	assert.Equal(t, want, p.Relocations())

	addr, ok := p.Lookup("target")
	require.True(t, ok)
	assert.Equal(t, uint16(3), addr)
}

func TestBackwardBranch(t *testing.T) {
	src := `
loop:
    DEX
    BNE loop
`
	assembleAndMatchHex(t, "BackwardBranch", src, "CA D0 FD")
}

func TestBranchLimits(t *testing.T) {
	// Exactly +127 and -128 are legal.
	fwd := "BEQ far\n" + strings.Repeat("NOP\n", 127) + "far: RTS"
	p, err := assembler.Assemble(fwd)
	require.NoError(t, err)
	code, err := p.RawBytes()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7F), code[1])

	back := "back: " + strings.Repeat("NOP\n", 126) + "BNE back"
	p, err = assembler.Assemble(back)
	require.NoError(t, err)
	code, err = p.RawBytes()
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), code[len(code)-1])
}

func TestBranchOutOfRange(t *testing.T) {
	tests := map[string]string{
		"forward":  "BEQ far\n" + strings.Repeat("NOP\n", 128) + "far: RTS",
		"backward": "back: " + strings.Repeat("NOP\n", 127) + "BNE back",
	}
	for name, src := range tests {
		p, err := assembler.Assemble(src)
		require.NoError(t, err, name)
		code, err := p.RawBytes()
		assert.Nil(t, code, name)
		assert.ErrorIs(t, err, assembler.ErrBranchOutOfRange, name)
	}

	// A literal target is checked while building.
	_, err := assembler.Assemble(strings.Repeat("NOP\n", 200) + "BNE $0000")
	assert.ErrorIs(t, err, assembler.ErrBranchOutOfRange)
}

func TestUndefinedBranchTarget(t *testing.T) {
	p, err := assembler.Assemble("BCC nowhere")
	require.NoError(t, err)
	_, err = p.RawBytes()
	require.ErrorIs(t, err, assembler.ErrUndefinedSymbol)

	var se *assembler.SymbolError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "nowhere", se.Symbol)
	assert.Equal(t, 1, se.Line)
}

func TestLabelAddresses(t *testing.T) {
	src := `
a:
b: c: NOP
d:  LDA $1234
    LDA #$01
e:  JMP (d)
end:
`
	p, err := assembler.Assemble(src)
	require.NoError(t, err)

	want := map[string]uint16{"a": 0, "b": 0, "c": 0, "d": 1, "e": 6, "end": 9}
	if diff := pretty.Compare(p.Symbols(), want); diff != "" {
		t.Errorf("symbol table mismatch (-got +want):\n%s", diff)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "end"}, p.Labels())
	assert.Equal(t, 9, p.Size())

	def, ok := p.Definition("d")
	require.True(t, ok)
	assert.Equal(t, "LDA $1234", def.String())
	_, ok = p.Definition("end")
	assert.False(t, ok, "trailing label has no defining expression")
}

func TestDuplicateLabel(t *testing.T) {
	src := "start: NOP\nother: NOP\nstart: RTS"
	p, err := assembler.Assemble(src)
	assert.Nil(t, p)
	require.ErrorIs(t, err, assembler.ErrDuplicateLabel)

	var se *assembler.SymbolError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "start", se.Symbol)
	assert.Equal(t, 3, se.Line)

	_, err = assembler.Assemble("twice:\ntwice: NOP")
	assert.ErrorIs(t, err, assembler.ErrDuplicateLabel)
}

func TestAssemblyErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"UnknownMnemonic", "FOO $10", assembler.ErrUnknownMnemonic},
		{"StoreImmediate", "STA #$10", assembler.ErrUnsupportedEncoding},
		{"LdaZeroPageY", "LDA $10,Y", assembler.ErrUnsupportedEncoding},
		{"IndirectLoad", "LDA ($1234)", assembler.ErrUnsupportedEncoding},
		{"ImpliedWithOperand", "NOP $10", assembler.ErrUnsupportedEncoding},
		{"WideImmediate", "LDA #$1234", assembler.ErrOperandWidth},
		{"WidePointer", "LDA ($1234),Y", assembler.ErrOperandWidth},
		{"TooManyDigits", "LDA $12345", assembler.ErrOperandWidth},
	}
	for _, tc := range tests {
		_, err := assembler.Assemble(tc.src)
		assert.ErrorIs(t, err, tc.want, tc.name)
	}
}

func TestUnresolvedSymbolsBecomeRelocations(t *testing.T) {
	src := `
    LDA data
    JMP (vector)
    LDA #lo
    LDA (ptr),Y
    STA table,X
    LDA column,Y
    INC counter,X
    STX ptr,Y
    STY ptr,X
    NOP
`
	p := assembleAndMatchHex(t, "Relocations", src,
		"AD FF FF 6C FF FF A9 FF B1 FF 9D FF FF B9 FF FF FE FF FF 96 FF 94 FF EA")

	want := []assembler.Relocation{
		{Symbol: "data", Offset: 1, Kind: assembler.Long},
		{Symbol: "vector", Offset: 4, Kind: assembler.Absolute},
		{Symbol: "lo", Offset: 7, Kind: assembler.Short},
		{Symbol: "ptr", Offset: 9, Kind: assembler.Short},
		{Symbol: "table", Offset: 11, Kind: assembler.Long},
		{Symbol: "column", Offset: 14, Kind: assembler.Long},
		{Symbol: "counter", Offset: 17, Kind: assembler.Long},
		{Symbol: "ptr", Offset: 20, Kind: assembler.Short},
		{Symbol: "ptr", Offset: 22, Kind: assembler.Short},
	}
	assert.Equal(t, want, p.Relocations())
}

func TestInternalLabelsStillRelocate(t *testing.T) {
	src := `
start:
    JMP start
`
	p := assembleAndMatchHex(t, "InternalJump", src, "4C FF FF")
	relocs := p.Relocations()
	require.Len(t, relocs, 1)
	assert.Equal(t, "start", relocs[0].Symbol)

	addr, ok := p.Symbols()[relocs[0].Symbol]
	require.True(t, ok)
	assert.Equal(t, uint16(0), addr)
}

func TestSectionConsistency(t *testing.T) {
	src := `
reset:
    SEI
    CLD
    LDX #$FF
    TXS
    LDA #$00
clear:
    STA $0200,X
    STA buffer,X
    DEX
    BNE clear
    LDA (ptr),Y
    ASL
    JSR print
    JMP (vector)
done:
    BRK
`
	p, err := assembler.Assemble(src)
	require.NoError(t, err)
	code, err := p.RawBytes()
	require.NoError(t, err)

	sum := 0
	for _, e := range p.Expressions() {
		sum += e.Mode.OperandLength() + 1
	}
	assert.Equal(t, sum, len(code))
	assert.Equal(t, p.Size(), len(code))

	symbols := p.Symbols()
	relative := 0
	for _, r := range p.Relocations() {
		if r.Kind == assembler.Relative {
			relative++
			target, ok := symbols[r.Symbol]
			require.True(t, ok, r.String())
			assert.Equal(t, byte(int8(int(target)-int(r.Offset)-1)), code[r.Offset], r.String())
			continue
		}
		for i := 0; i < r.Kind.Width(); i++ {
			assert.Equal(t, byte(assembler.Placeholder), code[int(r.Offset)+i], r.String())
		}
	}
	assert.Equal(t, 1, relative)
}

func TestIndexedLabelWithoutAbsoluteForm(t *testing.T) {
	tests := []struct {
		name, src, hex string
		mode           cpu.Mode
	}{
		{"STY_ZeroPageX", "ptr: BRK\nSTY ptr,X", "00 94 FF", cpu.ZeroPageX},
		{"STX_ZeroPageY", "ptr: BRK\nSTX ptr,Y", "00 96 FF", cpu.ZeroPageY},
		{"LDX_AbsoluteY", "ptr: BRK\nLDX ptr,Y", "00 BE FF FF", cpu.AbsoluteY},
	}
	for _, tc := range tests {
		p := assembleAndMatchHex(t, tc.name, tc.src, tc.hex)
		e, _ := p.Expression(1)
		assert.Equal(t, tc.mode, e.Mode, tc.name)

		relocs := p.Relocations()
		require.Len(t, relocs, 1, tc.name)
		assert.Equal(t, uint16(2), relocs[0].Offset, tc.name)
	}
}

func TestExpressionString(t *testing.T) {
	src := `
    LDA #$10
    STA $0200,Y
    LDA ($23,X)
    LDA ($23),Y
    JMP (vector)
    ROR
    LDX $10,Y
`
	p, err := assembler.Assemble(src)
	require.NoError(t, err)

	var got []string
	for _, e := range p.Expressions() {
		got = append(got, e.String())
	}
	want := []string{
		"LDA #$10",
		"STA $0200,Y",
		"LDA ($23,X)",
		"LDA ($23),Y",
		"JMP (vector)",
		"ROR",
		"LDX $10,Y",
	}
	assert.Equal(t, want, got)
}
