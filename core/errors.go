package core

import (
	"errors"
	"fmt"
)

// Sentinels for operand coercion failures. A *TypeError unwraps to one of
// these, so callers test with errors.Is.
var (
	ErrNotANumber     = errors.New("not a number")
	ErrNotAByteString = errors.New("not a byte string")
	ErrNotAnArray     = errors.New("not an array")
	ErrNotADict       = errors.New("not a dictionary")
)

// TypeError reports an operand of the wrong kind.
type TypeError struct {
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Want, e.Got)
}

// Unwrap returns the sentinel matching the wanted kind.
func (e *TypeError) Unwrap() error {
	switch e.Want {
	case KindInt, KindReal:
		return ErrNotANumber
	case KindByteString:
		return ErrNotAByteString
	case KindArray:
		return ErrNotAnArray
	case KindDict:
		return ErrNotADict
	}
	return nil
}

// AsNumber returns the numeric value of obj. Only Int and Real succeed;
// there is no implicit conversion from strings, names or booleans.
func AsNumber(obj Object) (float64, error) {
	switch v := obj.(type) {
	case Int:
		return float64(v), nil
	case Real:
		return float64(v), nil
	}
	return 0, &TypeError{Want: KindReal, Got: KindOf(obj)}
}

// AsInt returns the value of obj if it is an Int.
func AsInt(obj Object) (int64, error) {
	if v, ok := obj.(Int); ok {
		return int64(v), nil
	}
	return 0, &TypeError{Want: KindInt, Got: KindOf(obj)}
}

// AsByteString returns obj as a ByteString.
func AsByteString(obj Object) (ByteString, error) {
	if s, ok := obj.(ByteString); ok {
		return s, nil
	}
	return "", &TypeError{Want: KindByteString, Got: KindOf(obj)}
}

// AsArray returns obj as an Array.
func AsArray(obj Object) (Array, error) {
	if a, ok := obj.(Array); ok {
		return a, nil
	}
	return nil, &TypeError{Want: KindArray, Got: KindOf(obj)}
}

// AsDict returns obj as a Dict.
func AsDict(obj Object) (Dict, error) {
	if d, ok := obj.(Dict); ok {
		return d, nil
	}
	return nil, &TypeError{Want: KindDict, Got: KindOf(obj)}
}
