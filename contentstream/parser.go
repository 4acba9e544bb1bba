package contentstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/textpos/core"
)

// Operation is one operator together with the operands that preceded it.
type Operation struct {
	Operator Operator
	Operands []core.Object
}

// SyntaxError reports malformed content stream syntax.
type SyntaxError struct {
	Offset int64
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("content stream offset %d: %v", e.Offset, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parser turns a decoded content stream into operations. A Parser is
// single-use; create a new one to walk the same bytes again.
type Parser struct {
	lex   *core.Lexer
	stack []core.Object
}

// NewParser returns a parser over data.
func NewParser(data []byte) *Parser {
	return &Parser{lex: core.NewLexer(bytes.NewReader(data))}
}

// NewStreamParser returns a parser reading from r.
func NewStreamParser(r io.Reader) *Parser {
	return &Parser{lex: core.NewLexer(r)}
}

// Parse is shorthand for NewParser(data).Parse().
func Parse(data []byte) ([]Operation, error) {
	return NewParser(data).Parse()
}

// Parse returns all remaining operations in stream order.
func (p *Parser) Parse() ([]Operation, error) {
	var ops []Operation
	for {
		op, err := p.Next()
		if errors.Is(err, io.EOF) {
			return ops, nil
		}
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
}

// Next returns the next operation, or io.EOF once the stream is exhausted.
// Operands left over at the end of the stream are discarded.
func (p *Parser) Next() (Operation, error) {
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return Operation{}, &SyntaxError{Offset: p.lex.Pos(), Err: err}
		}
		switch tok.Type {
		case core.TokenEOF:
			p.stack = nil
			return Operation{}, io.EOF
		case core.TokenKeyword, core.TokenRef:
			if obj, ok := keywordObject(tok.Value); ok {
				p.stack = append(p.stack, obj)
				continue
			}
			return p.emit(Operator(tok.Value))
		}
		obj, err := p.operand(tok)
		if err != nil {
			return Operation{}, err
		}
		p.stack = append(p.stack, obj)
	}
}

func (p *Parser) emit(op Operator) (Operation, error) {
	if op == "BI" {
		return p.inlineImage()
	}
	operation := Operation{Operator: op, Operands: p.stack}
	p.stack = nil
	return operation, nil
}

func keywordObject(kw []byte) (core.Object, bool) {
	switch string(kw) {
	case "true":
		return core.Bool(true), true
	case "false":
		return core.Bool(false), true
	case "null":
		return core.Null{}, true
	}
	return nil, false
}

func (p *Parser) operand(tok *core.Token) (core.Object, error) {
	switch tok.Type {
	case core.TokenInteger:
		if n, err := strconv.ParseInt(string(tok.Value), 10, 64); err == nil {
			return core.Int(n), nil
		}
		return p.real(tok)
	case core.TokenReal:
		return p.real(tok)
	case core.TokenString, core.TokenHexString:
		return core.ByteString(tok.Value), nil
	case core.TokenName:
		return core.Name(tok.Value), nil
	case core.TokenArrayStart:
		return p.array(tok.Pos)
	case core.TokenDictStart:
		return p.dict(tok.Pos)
	case core.TokenKeyword:
		if obj, ok := keywordObject(tok.Value); ok {
			return obj, nil
		}
	}
	return nil, &SyntaxError{Offset: tok.Pos, Err: fmt.Errorf("unexpected %s", tok.Type)}
}

func (p *Parser) real(tok *core.Token) (core.Object, error) {
	f, err := strconv.ParseFloat(string(tok.Value), 64)
	if err != nil {
		return nil, &SyntaxError{Offset: tok.Pos, Err: fmt.Errorf("malformed number %q", tok.Value)}
	}
	return core.Real(f), nil
}

func (p *Parser) array(start int64) (core.Object, error) {
	arr := core.Array{}
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, &SyntaxError{Offset: p.lex.Pos(), Err: err}
		}
		switch tok.Type {
		case core.TokenArrayEnd:
			return arr, nil
		case core.TokenEOF:
			return nil, &SyntaxError{Offset: start, Err: errors.New("unterminated array")}
		}
		obj, err := p.operand(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) dict(start int64) (core.Object, error) {
	d := core.Dict{}
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, &SyntaxError{Offset: p.lex.Pos(), Err: err}
		}
		switch tok.Type {
		case core.TokenDictEnd:
			return d, nil
		case core.TokenEOF:
			return nil, &SyntaxError{Offset: start, Err: errors.New("unterminated dictionary")}
		case core.TokenName:
		default:
			return nil, &SyntaxError{Offset: tok.Pos, Err: fmt.Errorf("dictionary key is %s, not a name", tok.Type)}
		}
		valTok, err := p.lex.NextToken()
		if err != nil {
			return nil, &SyntaxError{Offset: p.lex.Pos(), Err: err}
		}
		val, err := p.operand(valTok)
		if err != nil {
			return nil, err
		}
		d[string(tok.Value)] = val
	}
}

// inlineImage reads "BI <key value>... ID <data> EI" as a single BI
// operation whose operands are the image dictionary and the raw data.
// The data is binary and must not reach the tokenizer.
func (p *Parser) inlineImage() (Operation, error) {
	start := p.lex.Pos()
	p.stack = nil
	dict := core.Dict{}
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return Operation{}, &SyntaxError{Offset: p.lex.Pos(), Err: err}
		}
		if tok.Type == core.TokenKeyword && string(tok.Value) == "ID" {
			break
		}
		if tok.Type != core.TokenName {
			return Operation{}, &SyntaxError{Offset: tok.Pos, Err: fmt.Errorf("inline image key is %s, not a name", tok.Type)}
		}
		valTok, err := p.lex.NextToken()
		if err != nil {
			return Operation{}, &SyntaxError{Offset: p.lex.Pos(), Err: err}
		}
		val, err := p.operand(valTok)
		if err != nil {
			return Operation{}, err
		}
		dict[string(tok.Value)] = val
	}

	// A single white-space byte separates ID from the data.
	if c, err := p.lex.PeekByte(); err == nil && core.IsWhitespace(c) {
		p.lex.ReadByte()
	}

	data, err := p.imageData()
	if err != nil {
		return Operation{}, &SyntaxError{Offset: start, Err: err}
	}
	return Operation{Operator: "BI", Operands: []core.Object{dict, core.ByteString(data)}}, nil
}

// imageData reads up to an EI keyword that is preceded by white space and
// followed by white space, a delimiter or end of input.
func (p *Parser) imageData() ([]byte, error) {
	var buf []byte
	for {
		c, err := p.lex.ReadByte()
		if err != nil {
			return nil, errors.New("inline image without EI")
		}
		buf = append(buf, c)
		n := len(buf)
		if n < 2 || buf[n-2] != 'E' || buf[n-1] != 'I' {
			continue
		}
		if n > 2 && !core.IsWhitespace(buf[n-3]) {
			continue
		}
		next, err := p.lex.PeekByte()
		if err == nil && !core.IsWhitespace(next) && !core.IsDelimiter(next) {
			continue
		}
		end := n - 2
		if end > 0 {
			end--
		}
		return buf[:end], nil
	}
}

// Format renders op in content stream syntax.
func Format(op Operation) string {
	var sb strings.Builder
	for _, obj := range op.Operands {
		if obj == nil {
			sb.WriteString("null ")
			continue
		}
		sb.WriteString(obj.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(string(op.Operator))
	return sb.String()
}
