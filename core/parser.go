package core

import (
	"fmt"
	"io"
	"strconv"
)

// Resolver resolves indirect references. The parser needs one to read
// streams whose /Length is itself an indirect object.
type Resolver interface {
	ResolveReference(ref Ref) (Object, error)
}

// Parser reads PDF objects from file syntax.
type Parser struct {
	lex      *Lexer
	pending  []*Token // lookahead, oldest first
	resolver Resolver
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{lex: NewLexer(r)}
}

// SetResolver installs the resolver used for indirect stream lengths.
func (p *Parser) SetResolver(r Resolver) {
	p.resolver = r
}

// peek returns the i-th token ahead without consuming it.
func (p *Parser) peek(i int) (*Token, error) {
	for len(p.pending) <= i {
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		p.pending = append(p.pending, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	if i >= len(p.pending) {
		return p.pending[len(p.pending)-1], nil
	}
	return p.pending[i], nil
}

func (p *Parser) next() (*Token, error) {
	tok, err := p.peek(0)
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenEOF {
		p.pending = p.pending[1:]
	}
	return tok, nil
}

// ParseObject parses one direct object. It returns io.EOF at end of input.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	return p.object(tok)
}

func (p *Parser) object(tok *Token) (Object, error) {
	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF
	case TokenInteger:
		return p.integerOrRef(tok)
	case TokenReal:
		f, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q at offset %d", tok.Value, tok.Pos)
		}
		return Real(f), nil
	case TokenString, TokenHexString:
		return ByteString(tok.Value), nil
	case TokenName:
		return Name(tok.Value), nil
	case TokenArrayStart:
		return p.array()
	case TokenDictStart:
		return p.dict()
	case TokenKeyword:
		switch string(tok.Value) {
		case "null":
			return Null{}, nil
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return nil, fmt.Errorf("unexpected keyword %q at offset %d", tok.Value, tok.Pos)
	}
	return nil, fmt.Errorf("unexpected %s at offset %d", tok.Type, tok.Pos)
}

// integerOrRef returns an Int, or a Ref when the next two tokens are
// another integer and R.
func (p *Parser) integerOrRef(tok *Token) (Object, error) {
	n, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil {
		// "+.5"-style oddities and overlong integers still make a number.
		f, ferr := strconv.ParseFloat(string(tok.Value), 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid number %q at offset %d", tok.Value, tok.Pos)
		}
		return Real(f), nil
	}

	gen, err := p.peek(0)
	if err != nil || gen.Type != TokenInteger {
		return Int(n), nil
	}
	r, err := p.peek(1)
	if err != nil || r.Type != TokenRef {
		return Int(n), nil
	}
	g, err := strconv.Atoi(string(gen.Value))
	if err != nil {
		return Int(n), nil
	}
	p.pending = p.pending[2:]
	return Ref{Number: int(n), Generation: g}, nil
}

func (p *Parser) array() (Object, error) {
	arr := Array{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenArrayEnd:
			return arr, nil
		case TokenEOF:
			return nil, fmt.Errorf("unterminated array")
		}
		obj, err := p.object(tok)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", len(arr), err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) dict() (Object, error) {
	d := make(Dict)
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenDictEnd:
			return d, nil
		case TokenEOF:
			return nil, fmt.Errorf("unterminated dictionary")
		case TokenName:
		default:
			return nil, fmt.Errorf("dictionary key must be a name, got %s at offset %d", tok.Type, tok.Pos)
		}
		key := string(tok.Value)
		val, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("dictionary value /%s: %w", key, err)
		}
		// A null value is equivalent to an absent key.
		if _, isNull := val.(Null); isNull {
			continue
		}
		d[key] = val
	}
}

// ParseIndirectObject parses "num gen obj ... endobj", including stream
// objects.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	num, err := p.expectInt("object number")
	if err != nil {
		return nil, err
	}
	gen, err := p.expectInt("generation number")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("obj"); err != nil {
		return nil, err
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
	}

	tok, err := p.peek(0)
	if err != nil {
		return nil, err
	}
	if tok.Type == TokenKeyword && string(tok.Value) == "stream" {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("object %d %d: stream keyword after %s", num, gen, obj.Kind())
		}
		p.pending = p.pending[:0]
		stm, err := p.streamBody(dict)
		if err != nil {
			return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
		}
		obj = stm
	}

	// Some writers omit endobj; accept that silently.
	if tok, err := p.peek(0); err == nil && tok.Type == TokenKeyword && string(tok.Value) == "endobj" {
		p.next()
	}

	return &IndirectObject{Ref: Ref{Number: num, Generation: gen}, Object: obj}, nil
}

func (p *Parser) expectInt(what string) (int, error) {
	tok, err := p.next()
	if err != nil {
		return 0, err
	}
	if tok.Type != TokenInteger {
		return 0, fmt.Errorf("expected %s, got %s at offset %d", what, tok.Type, tok.Pos)
	}
	n, err := strconv.Atoi(string(tok.Value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, tok.Value, err)
	}
	return n, nil
}

func (p *Parser) expectKeyword(kw string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.Type != TokenKeyword || string(tok.Value) != kw {
		return fmt.Errorf("expected %q, got %s", kw, tok)
	}
	return nil
}

// streamBody reads stream data after the "stream" keyword. The lexer is
// positioned directly after the keyword, so no token may be buffered.
func (p *Parser) streamBody(dict Dict) (*Stream, error) {
	if err := p.lex.SkipStreamEOL(); err != nil {
		return nil, fmt.Errorf("after stream keyword: %w", err)
	}

	length, err := p.streamLength(dict)
	if err != nil {
		return nil, err
	}

	var data []byte
	if length >= 0 {
		data, err = p.lex.ReadBytes(length)
		if err != nil {
			return nil, err
		}
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if tok.Type != TokenKeyword || string(tok.Value) != "endstream" {
			return nil, fmt.Errorf("expected endstream after %d bytes, got %s", length, tok)
		}
	} else {
		// No usable /Length: scan for the endstream keyword instead.
		raw, err := p.lex.ReadUntil([]byte("endstream"))
		if err != nil {
			return nil, fmt.Errorf("stream without endstream: %w", err)
		}
		data = trimStreamEnd(raw[:len(raw)-len("endstream")])
	}

	return &Stream{Dict: dict, Data: data}, nil
}

// streamLength returns the /Length value, or -1 when it is missing or
// cannot be resolved.
func (p *Parser) streamLength(dict Dict) (int, error) {
	switch v := dict.Get("Length").(type) {
	case Int:
		if v < 0 {
			return 0, fmt.Errorf("negative stream length %d", v)
		}
		return int(v), nil
	case Ref:
		if p.resolver == nil {
			return -1, nil
		}
		obj, err := p.resolver.ResolveReference(v)
		if err != nil {
			return -1, nil
		}
		if n, ok := obj.(Int); ok && n >= 0 {
			return int(n), nil
		}
	}
	return -1, nil
}

func trimStreamEnd(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}
