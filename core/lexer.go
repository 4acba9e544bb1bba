package core

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenKeyword
	TokenInteger
	TokenReal
	TokenString
	TokenHexString
	TokenName
	TokenArrayStart
	TokenArrayEnd
	TokenDictStart
	TokenDictEnd
	TokenRef // the R in "num gen R"
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenKeyword:    "keyword",
	TokenInteger:    "integer",
	TokenReal:       "real",
	TokenString:     "string",
	TokenHexString:  "hex string",
	TokenName:       "name",
	TokenArrayStart: "[",
	TokenArrayEnd:   "]",
	TokenDictStart:  "<<",
	TokenDictEnd:    ">>",
	TokenRef:        "R",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexical token. For strings, Value holds the decoded bytes;
// for names, the name without its slash and with #xx escapes resolved.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64
}

func (t *Token) String() string {
	return fmt.Sprintf("%s %q at %d", t.Type, t.Value, t.Pos)
}

// Lexer splits PDF file syntax into tokens. Comments are dropped.
type Lexer struct {
	r   *bufio.Reader
	pos int64
}

// NewLexer returns a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r)}
}

// Pos returns the number of bytes consumed so far.
func (l *Lexer) Pos() int64 {
	return l.pos
}

// NextToken returns the next token. At end of input it returns a
// TokenEOF token and a nil error.
func (l *Lexer) NextToken() (*Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		if errors.Is(err, io.EOF) {
			return &Token{Type: TokenEOF, Pos: l.pos}, nil
		}
		return nil, err
	}

	start := l.pos
	c, err := l.peekByte()
	if err != nil {
		return nil, err
	}

	switch {
	case c == '[':
		l.readByte()
		return &Token{Type: TokenArrayStart, Pos: start}, nil
	case c == ']':
		l.readByte()
		return &Token{Type: TokenArrayEnd, Pos: start}, nil
	case c == '(':
		val, err := l.literalString()
		return &Token{Type: TokenString, Value: val, Pos: start}, err
	case c == '<':
		if next, _ := l.r.Peek(2); len(next) == 2 && next[1] == '<' {
			l.discard(2)
			return &Token{Type: TokenDictStart, Pos: start}, nil
		}
		val, err := l.hexString()
		return &Token{Type: TokenHexString, Value: val, Pos: start}, err
	case c == '>':
		if next, _ := l.r.Peek(2); len(next) == 2 && next[1] == '>' {
			l.discard(2)
			return &Token{Type: TokenDictEnd, Pos: start}, nil
		}
		return nil, fmt.Errorf("stray '>' at offset %d", start)
	case c == '/':
		l.readByte()
		val, err := l.name()
		return &Token{Type: TokenName, Value: val, Pos: start}, err
	case isDigit(c) || c == '+' || c == '-' || c == '.':
		val, isReal := l.number()
		typ := TokenInteger
		if isReal {
			typ = TokenReal
		}
		return &Token{Type: typ, Value: val, Pos: start}, nil
	case isRegular(c):
		val := l.regularRun()
		if len(val) == 1 && val[0] == 'R' {
			return &Token{Type: TokenRef, Value: val, Pos: start}, nil
		}
		return &Token{Type: TokenKeyword, Value: val, Pos: start}, nil
	}
	return nil, fmt.Errorf("unexpected byte %q at offset %d", c, start)
}

func (l *Lexer) readByte() (byte, error) {
	c, err := l.r.ReadByte()
	if err == nil {
		l.pos++
	}
	return c, err
}

func (l *Lexer) peekByte() (byte, error) {
	b, err := l.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (l *Lexer) discard(n int) {
	d, _ := l.r.Discard(n)
	l.pos += int64(d)
}

func (l *Lexer) skipSpaceAndComments() error {
	for {
		c, err := l.peekByte()
		if err != nil {
			return err
		}
		switch {
		case IsWhitespace(c):
			l.readByte()
		case c == '%':
			for {
				c, err := l.readByte()
				if err != nil {
					return err
				}
				if c == '\n' || c == '\r' {
					break
				}
			}
		default:
			return nil
		}
	}
}

// literalString reads "( ... )" and returns the unescaped bytes.
func (l *Lexer) literalString() ([]byte, error) {
	l.readByte()
	var buf bytes.Buffer
	depth := 1
	for {
		c, err := l.readByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated string: %w", err)
		}
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return buf.Bytes(), nil
			}
		case '\\':
			if err := l.escape(&buf); err != nil {
				return nil, err
			}
			continue
		case '\r':
			// An unescaped end-of-line in a literal string reads as LF.
			if next, err := l.peekByte(); err == nil && next == '\n' {
				l.readByte()
			}
			c = '\n'
		}
		buf.WriteByte(c)
	}
}

func (l *Lexer) escape(buf *bytes.Buffer) error {
	c, err := l.readByte()
	if err != nil {
		return fmt.Errorf("unterminated escape: %w", err)
	}
	if b, ok := simpleEscapes[c]; ok {
		buf.WriteByte(b)
		return nil
	}
	switch {
	case c == '\n':
	case c == '\r':
		if next, err := l.peekByte(); err == nil && next == '\n' {
			l.readByte()
		}
	case isOctalDigit(c):
		v := c - '0'
		for i := 0; i < 2; i++ {
			next, err := l.peekByte()
			if err != nil || !isOctalDigit(next) {
				break
			}
			l.readByte()
			v = v<<3 | (next - '0')
		}
		buf.WriteByte(v)
	default:
		buf.WriteByte(c)
	}
	return nil
}

var simpleEscapes = map[byte]byte{
	'n': '\n', 'r': '\r', 't': '\t', 'b': '\b', 'f': '\f',
	'(': '(', ')': ')', '\\': '\\',
}

// hexString reads "< ... >" and returns the decoded bytes. An odd final
// digit is treated as if followed by 0.
func (l *Lexer) hexString() ([]byte, error) {
	l.readByte()
	var out []byte
	var hi byte
	half := false
	for {
		c, err := l.readByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated hex string: %w", err)
		}
		if c == '>' {
			break
		}
		if IsWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex digit %q at offset %d", c, l.pos-1)
		}
		if half {
			out = append(out, hi<<4|hexValue(c))
		} else {
			hi = hexValue(c)
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out, nil
}

func (l *Lexer) name() ([]byte, error) {
	var buf bytes.Buffer
	for {
		c, err := l.peekByte()
		if err != nil || !isRegular(c) {
			return buf.Bytes(), nil
		}
		l.readByte()
		if c == '#' {
			pair, err := l.r.Peek(2)
			if err == nil && isHexDigit(pair[0]) && isHexDigit(pair[1]) {
				l.discard(2)
				buf.WriteByte(hexValue(pair[0])<<4 | hexValue(pair[1]))
				continue
			}
		}
		buf.WriteByte(c)
	}
}

// number reads a signed integer or real. The second result reports a
// decimal point.
func (l *Lexer) number() ([]byte, bool) {
	var buf []byte
	isReal := false
	for {
		c, err := l.peekByte()
		if err != nil {
			break
		}
		if c == '.' && !isReal {
			isReal = true
		} else if !(isDigit(c) || (len(buf) == 0 && (c == '+' || c == '-'))) {
			break
		}
		l.readByte()
		buf = append(buf, c)
	}
	return buf, isReal
}

func (l *Lexer) regularRun() []byte {
	var buf []byte
	for {
		c, err := l.peekByte()
		if err != nil || !isRegular(c) {
			return buf
		}
		l.readByte()
		buf = append(buf, c)
	}
}

// SkipStreamEOL consumes the end-of-line marker that follows the
// "stream" keyword: CRLF, LF, or (leniently) a lone CR.
func (l *Lexer) SkipStreamEOL() error {
	for {
		c, err := l.peekByte()
		if err != nil {
			return err
		}
		if c != ' ' && c != '\t' {
			break
		}
		l.readByte()
	}
	c, err := l.peekByte()
	if err != nil {
		return err
	}
	switch c {
	case '\n':
		l.readByte()
	case '\r':
		l.readByte()
		if next, err := l.peekByte(); err == nil && next == '\n' {
			l.readByte()
		}
	}
	return nil
}

// ReadBytes reads exactly n raw bytes.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	data := make([]byte, n)
	got, err := io.ReadFull(l.r, data)
	l.pos += int64(got)
	if err != nil {
		return data[:got], fmt.Errorf("read %d of %d stream bytes: %w", got, n, err)
	}
	return data, nil
}

// ReadUntil reads raw bytes up to and including the first occurrence of
// marker. It is used to recover streams whose /Length is wrong.
func (l *Lexer) ReadUntil(marker []byte) ([]byte, error) {
	var buf []byte
	for {
		c, err := l.readByte()
		if err != nil {
			return buf, err
		}
		buf = append(buf, c)
		if bytes.HasSuffix(buf, marker) {
			return buf, nil
		}
	}
}

// IsWhitespace reports whether c is PDF white space.
func IsWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

// IsDelimiter reports whether c is a PDF delimiter character.
func IsDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !IsWhitespace(c) && !IsDelimiter(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isOctalDigit(c byte) bool { return c >= '0' && c <= '7' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// PeekByte returns the next raw byte without consuming it.
func (l *Lexer) PeekByte() (byte, error) {
	return l.peekByte()
}

// ReadByte consumes and returns the next raw byte.
func (l *Lexer) ReadByte() (byte, error) {
	return l.readByte()
}
