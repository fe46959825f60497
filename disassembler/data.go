package disassembler

import (
	"fmt"
	"strings"
)

const bytesPerLine = 8

// formatData renders bytes that are not reachable code as .byte lines. A
// labelled address always starts a new line.
func formatData(data []byte, baseAddr uint16, listing bool, label func(uint16) (string, bool)) string {
	var sb strings.Builder
	for i := 0; i < len(data); {
		addr := baseAddr + uint16(i)
		if name, ok := label(addr); ok {
			sb.WriteString(name + ":\n")
		}

		end := i + 1
		for end < len(data) && end-i < bytesPerLine {
			if _, ok := label(baseAddr + uint16(end)); ok {
				break
			}
			end++
		}
		chunk := data[i:end]

		if listing {
			fmt.Fprintf(&sb, "%04X  %-9s", addr, "")
		}
		sb.WriteString("    .byte ")
		for j, b := range chunk {
			if j > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, "$%02X", b)
		}
		sb.WriteString("\n")
		i = end
	}
	return sb.String()
}
