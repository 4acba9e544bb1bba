package placement

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/textpos/core"
)

// DecodePolicy decides what happens to string bytes that are not valid
// UTF-8.
type DecodePolicy int

const (
	// Lossy replaces each invalid sequence with U+FFFD.
	Lossy DecodePolicy = iota
	// Strict replaces the whole fragment with "".
	Strict
)

func (p DecodePolicy) String() string {
	switch p {
	case Lossy:
		return "lossy"
	case Strict:
		return "strict"
	}
	return "unknown"
}

// textDecoder converts shown strings to text. It holds transformer state
// and belongs to a single Engine.
type textDecoder struct {
	t         transform.Transformer
	normalize bool
}

func newTextDecoder(p DecodePolicy, normalize bool) *textDecoder {
	var t transform.Transformer = unicode.UTF8.NewDecoder()
	if p == Strict {
		t = encoding.UTF8Validator
	}
	return &textDecoder{t: t, normalize: normalize}
}

func (d *textDecoder) decode(s core.ByteString) (string, error) {
	out, _, err := transform.String(d.t, string(s))
	if err != nil {
		return "", err
	}
	return out, nil
}

func (d *textDecoder) finish(text string) string {
	if d.normalize {
		return norm.NFC.String(text)
	}
	return text
}
