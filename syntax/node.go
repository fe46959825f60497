package syntax

// NodeType defines the type of a syntax node.
type NodeType int

const (
	// NodeInstruction is a mnemonic with optional leading labels and operand.
	NodeInstruction NodeType = iota
	// NodeLabel is a line carrying only label declarations.
	NodeLabel
	// NodeEnd marks the end of input.
	NodeEnd
)

func (t NodeType) String() string {
	switch t {
	case NodeInstruction:
		return "instruction"
	case NodeLabel:
		return "label"
	case NodeEnd:
		return "end"
	}
	return "unknown"
}

// Form is the surface shape of an operand.
type Form int

const (
	// FormBare is a plain value: $10, $1234 or label.
	FormBare Form = iota
	// FormImmediate is #value.
	FormImmediate
	// FormIndexed is value,X or value,Y.
	FormIndexed
	// FormIndirect is (value).
	FormIndirect
	// FormIndexedIndirect is (value,X).
	FormIndexedIndirect
	// FormIndirectIndexed is (value),Y.
	FormIndirectIndexed
)

func (f Form) String() string {
	switch f {
	case FormBare:
		return "bare"
	case FormImmediate:
		return "immediate"
	case FormIndexed:
		return "indexed"
	case FormIndirect:
		return "indirect"
	case FormIndexedIndirect:
		return "indexed-indirect"
	case FormIndirectIndexed:
		return "indirect-indexed"
	}
	return "unknown"
}

// Operand is the unclassified text of an instruction operand. Value holds the
// literal or label text exactly as written, with the form's punctuation
// removed. Index is 'X' or 'Y' for indexed forms, otherwise zero.
type Operand struct {
	Form  Form
	Value string
	Index byte
	Raw   string
}

// Node represents one parsed element from the assembly source.
type Node struct {
	Type     NodeType
	Line     int
	Labels   []string
	Mnemonic string
	Operand  *Operand
}
