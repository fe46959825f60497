// Package syntax turns 6502 assembly text into a flat list of syntax nodes.
// It does not know about mnemonics or addressing modes; it only records the
// surface shape of each line.
package syntax

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("syntax error")

var (
	reIdentifier        = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reValue             = regexp.MustCompile(`^(\$[0-9A-Fa-f]+|[A-Za-z_][A-Za-z0-9_]*)$`)
	reImmediate         = regexp.MustCompile(`^#\s*(\S+)$`)
	reIndexed           = regexp.MustCompile(`(?i)^([^,()\s]+)\s*,\s*([xy])$`)
	reIndexedIndirect   = regexp.MustCompile(`(?i)^\(\s*([^,()\s]+)\s*,\s*x\s*\)$`)
	reIndirectIndexed   = regexp.MustCompile(`(?i)^\(\s*([^,()\s]+)\s*\)\s*,\s*y$`)
	reIndirect          = regexp.MustCompile(`^\(\s*([^,()\s]+)\s*\)$`)
	reLabelDeclarations = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// Parse converts source text into nodes. The returned slice always ends with
// a NodeEnd node.
func Parse(src string) ([]Node, error) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	var nodes []Node
	for i, line := range lines {
		n, ok, err := parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		if ok {
			nodes = append(nodes, n)
		}
	}
	nodes = append(nodes, Node{Type: NodeEnd, Line: len(lines)})
	return nodes, nil
}

// parseLine returns false when the line holds nothing but whitespace or a
// comment.
func parseLine(line string, lineNo int) (Node, bool, error) {
	if commentIndex := strings.IndexRune(line, ';'); commentIndex != -1 {
		line = line[:commentIndex]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return Node{}, false, nil
	}

	n := Node{Type: NodeInstruction, Line: lineNo}
	for {
		m := reLabelDeclarations.FindStringSubmatchIndex(line)
		if m == nil {
			break
		}
		n.Labels = append(n.Labels, line[m[2]:m[3]])
		line = strings.TrimSpace(line[m[1]:])
	}
	if strings.Contains(line, ":") {
		return Node{}, false, fmt.Errorf("line %d: %w: invalid label declaration %q", lineNo, ErrSyntax, line)
	}
	if line == "" {
		n.Type = NodeLabel
		return n, true, nil
	}

	var operandStr string
	if firstSpace := strings.IndexAny(line, " \t"); firstSpace == -1 {
		n.Mnemonic = line
	} else {
		n.Mnemonic = line[:firstSpace]
		operandStr = strings.TrimSpace(line[firstSpace:])
	}
	if !reIdentifier.MatchString(n.Mnemonic) {
		return Node{}, false, fmt.Errorf("line %d: %w: invalid mnemonic %q", lineNo, ErrSyntax, n.Mnemonic)
	}

	if operandStr != "" {
		op, err := parseOperand(operandStr)
		if err != nil {
			return Node{}, false, fmt.Errorf("line %d: %w", lineNo, err)
		}
		n.Operand = &op
	}
	return n, true, nil
}

// parseOperand matches the operand against each form, most specific first.
func parseOperand(s string) (Operand, error) {
	op := Operand{Raw: s}
	var value string
	switch {
	case reImmediate.MatchString(s):
		op.Form = FormImmediate
		value = reImmediate.FindStringSubmatch(s)[1]
	case reIndexedIndirect.MatchString(s):
		op.Form = FormIndexedIndirect
		op.Index = 'X'
		value = reIndexedIndirect.FindStringSubmatch(s)[1]
	case reIndirectIndexed.MatchString(s):
		op.Form = FormIndirectIndexed
		op.Index = 'Y'
		value = reIndirectIndexed.FindStringSubmatch(s)[1]
	case reIndirect.MatchString(s):
		op.Form = FormIndirect
		value = reIndirect.FindStringSubmatch(s)[1]
	case reIndexed.MatchString(s):
		m := reIndexed.FindStringSubmatch(s)
		op.Form = FormIndexed
		op.Index = strings.ToUpper(m[2])[0]
		value = m[1]
	default:
		op.Form = FormBare
		value = s
	}

	if !reValue.MatchString(value) {
		return Operand{}, fmt.Errorf("%w: invalid operand %q", ErrSyntax, s)
	}
	op.Value = value
	return op, nil
}
