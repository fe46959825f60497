package cpu

import "strings"

// Mnemonic identifies one of the official 6502 instructions.
type Mnemonic int

// Mnemonics in alphabetical order. The zero value is not a valid instruction.
const (
	InvalidMnemonic Mnemonic = iota
	ADC
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA
	mnemonicCount
)

var mnemonicNames = [mnemonicCount]string{
	"???",
	"ADC", "AND", "ASL", "BCC", "BCS", "BEQ", "BIT", "BMI", "BNE", "BPL",
	"BRK", "BVC", "BVS", "CLC", "CLD", "CLI", "CLV", "CMP", "CPX", "CPY",
	"DEC", "DEX", "DEY", "EOR", "INC", "INX", "INY", "JMP", "JSR", "LDA",
	"LDX", "LDY", "LSR", "NOP", "ORA", "PHA", "PHP", "PLA", "PLP", "ROL",
	"ROR", "RTI", "RTS", "SBC", "SEC", "SED", "SEI", "STA", "STX", "STY",
	"TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
}

var mnemonicByName = func() map[string]Mnemonic {
	m := make(map[string]Mnemonic, mnemonicCount)
	for i := ADC; i < mnemonicCount; i++ {
		m[mnemonicNames[i]] = i
	}
	return m
}()

// String returns the upper-case mnemonic text.
func (m Mnemonic) String() string {
	if m <= InvalidMnemonic || m >= mnemonicCount {
		return mnemonicNames[0]
	}
	return mnemonicNames[m]
}

// ParseMnemonic looks up a mnemonic, ignoring case.
func ParseMnemonic(s string) (Mnemonic, bool) {
	m, ok := mnemonicByName[strings.ToUpper(strings.TrimSpace(s))]
	return m, ok
}

// Mnemonics returns every valid mnemonic in table order.
func Mnemonics() []Mnemonic {
	out := make([]Mnemonic, 0, mnemonicCount-1)
	for i := ADC; i < mnemonicCount; i++ {
		out = append(out, i)
	}
	return out
}

// IsBranch reports whether m is a conditional branch. Branches always take a
// signed displacement, never an address.
func (m Mnemonic) IsBranch() bool {
	switch m {
	case BCC, BCS, BEQ, BMI, BNE, BPL, BVC, BVS:
		return true
	}
	return false
}

// IsShift reports whether m belongs to the shift/rotate family, which
// operates on the accumulator when written without an operand.
func (m Mnemonic) IsShift() bool {
	switch m {
	case ASL, LSR, ROL, ROR:
		return true
	}
	return false
}
