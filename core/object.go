package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Object is a PDF object. The set of implementations is closed: only the
// types in this package satisfy it.
type Object interface {
	Kind() Kind
	String() string
	isObject()
}

// Kind identifies the variant of an Object.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindByteString
	KindName
	KindArray
	KindDict
	KindRef
	KindStream
)

var kindNames = [...]string{
	KindNull:       "Null",
	KindBool:       "Bool",
	KindInt:        "Int",
	KindReal:       "Real",
	KindByteString: "ByteString",
	KindName:       "Name",
	KindArray:      "Array",
	KindDict:       "Dict",
	KindRef:        "Ref",
	KindStream:     "Stream",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsNumber reports whether k is one of the numeric kinds.
func (k Kind) IsNumber() bool {
	return k == KindInt || k == KindReal
}

// KindOf returns the kind of obj. A nil Object is reported as KindNull.
func KindOf(obj Object) Kind {
	if obj == nil {
		return KindNull
	}
	return obj.Kind()
}

// Null is the PDF null object.
type Null struct{}

func (Null) Kind() Kind     { return KindNull }
func (Null) String() string { return "null" }
func (Null) isObject()      {}

// Bool is a PDF boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (b Bool) String() string {
	return strconv.FormatBool(bool(b))
}
func (Bool) isObject() {}

// Int is an integer-valued PDF number.
type Int int64

func (Int) Kind() Kind       { return KindInt }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (Int) isObject()        {}

// Real is a real-valued PDF number.
type Real float64

func (Real) Kind() Kind       { return KindReal }
func (r Real) String() string { return strconv.FormatFloat(float64(r), 'f', -1, 64) }
func (Real) isObject()        {}

// ByteString is a PDF string: raw bytes that have not been decoded to text.
// Literal and hexadecimal strings both produce a ByteString.
type ByteString string

func (ByteString) Kind() Kind { return KindByteString }

// String renders s in literal string syntax, escaping bytes that would
// otherwise break the syntax.
func (s ByteString) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '(' || c == ')' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, "\\%03o", c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func (ByteString) isObject() {}

// Bytes returns a copy of the raw bytes.
func (s ByteString) Bytes() []byte {
	return []byte(s)
}

// Name is a PDF name, stored without the leading slash.
type Name string

func (Name) Kind() Kind       { return KindName }
func (n Name) String() string { return "/" + string(n) }
func (Name) isObject()        {}

// Array is a PDF array.
type Array []Object

func (Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = objString(obj)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
func (Array) isObject() {}

// Get returns the element at index, or nil when index is out of range.
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index]
}

// Dict is a PDF dictionary. Keys are names without the leading slash.
type Dict map[string]Object

func (Dict) Kind() Kind { return KindDict }

// String renders the dictionary with its keys sorted, so the output is
// stable across runs.
func (d Dict) String() string {
	keys := d.Keys()
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, "/"+k+" "+objString(d[k]))
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}
func (Dict) isObject() {}

// Get returns the value stored under key, or nil.
func (d Dict) Get(key string) Object {
	return d[key]
}

// GetName returns the value under key if it is a Name.
func (d Dict) GetName(key string) (Name, bool) {
	n, ok := d[key].(Name)
	return n, ok
}

// GetInt returns the value under key if it is an Int.
func (d Dict) GetInt(key string) (Int, bool) {
	i, ok := d[key].(Int)
	return i, ok
}

// GetArray returns the value under key if it is an Array.
func (d Dict) GetArray(key string) (Array, bool) {
	a, ok := d[key].(Array)
	return a, ok
}

// GetDict returns the value under key if it is a Dict.
func (d Dict) GetDict(key string) (Dict, bool) {
	sub, ok := d[key].(Dict)
	return sub, ok
}

// Has reports whether key is present.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Keys returns the keys in unspecified order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	return keys
}

// Ref is an indirect object reference.
type Ref struct {
	Number     int
	Generation int
}

func (Ref) Kind() Kind { return KindRef }
func (r Ref) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}
func (Ref) isObject() {}

// Stream is a stream object: a dictionary followed by raw, still encoded
// data. Streams only ever come from the file reader.
type Stream struct {
	Dict Dict
	Data []byte
}

func (*Stream) Kind() Kind { return KindStream }
func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict.String(), len(s.Data))
}
func (*Stream) isObject() {}

// IndirectObject is a "num gen obj ... endobj" definition.
type IndirectObject struct {
	Ref    Ref
	Object Object
}

func objString(obj Object) string {
	if obj == nil {
		return "null"
	}
	return obj.String()
}
