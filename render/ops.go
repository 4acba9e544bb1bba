package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/textpos/contentstream"
)

// Operations writes a "Content Operations:" listing, one line per
// operation with its operands in file syntax:
//
//	Content Operations:
//	  Operator: Tf, Operands: [/F1 12]
func Operations(w io.Writer, ops []contentstream.Operation) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("Content Operations:\n")
	for _, op := range ops {
		operands := make([]string, len(op.Operands))
		for i, obj := range op.Operands {
			if obj == nil {
				operands[i] = "null"
				continue
			}
			operands[i] = obj.String()
		}
		fmt.Fprintf(bw, "  Operator: %s, Operands: [%s]\n", op.Operator, strings.Join(operands, " "))
	}
	return bw.Flush()
}
