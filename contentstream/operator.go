package contentstream

// Operator is a content stream operator as it appears in the stream,
// e.g. "Tj" or "T*".
type Operator string

// OpKind enumerates the operators that affect text placement. Every other
// operator maps to OpUnknown.
type OpKind int

const (
	OpUnknown OpKind = iota
	OpBeginText
	OpEndText
	OpSetFont
	OpMoveText
	OpMoveTextSetLeading
	OpSetTextMatrix
	OpShowText
	OpShowTextAdjusted
)

var opKinds = map[Operator]OpKind{
	"BT": OpBeginText,
	"ET": OpEndText,
	"Tf": OpSetFont,
	"Td": OpMoveText,
	"TD": OpMoveTextSetLeading,
	"Tm": OpSetTextMatrix,
	"Tj": OpShowText,
	"TJ": OpShowTextAdjusted,
}

var opKindNames = [...]string{
	OpUnknown:            "unknown",
	OpBeginText:          "begin-text",
	OpEndText:            "end-text",
	OpSetFont:            "set-font",
	OpMoveText:           "move-text",
	OpMoveTextSetLeading: "move-text-set-leading",
	OpSetTextMatrix:      "set-text-matrix",
	OpShowText:           "show-text",
	OpShowTextAdjusted:   "show-text-adjusted",
}

// Kind classifies o. Matching is exact and case-sensitive.
func (o Operator) Kind() OpKind {
	return opKinds[o]
}

func (k OpKind) String() string {
	if k >= 0 && int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return "unknown"
}
