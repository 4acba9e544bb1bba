// Package contentstream parses decoded page content streams into a flat
// sequence of operations.
//
// A content stream is postfix: operands come first and the operator that
// consumes them follows.
//
//	ops, err := contentstream.Parse([]byte("BT /F1 12 Tf 72 712 Td (Hi) Tj ET"))
//	for _, op := range ops {
//		fmt.Println(contentstream.Format(op))
//	}
//
// The parser keeps its operand stack per instance, so separate parsers may
// run on separate goroutines. Inline images (BI ... ID ... EI) are returned
// as one BI operation carrying the image dictionary and the raw sample
// bytes; their binary payload never reaches the tokenizer.
//
// Operator.Kind classifies the operators that move or show text. Anything
// else is OpUnknown and is passed through untouched.
package contentstream
