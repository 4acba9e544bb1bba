package core

import (
	"bytes"
	"fmt"
)

// ObjectStream is a decoded /Type /ObjStm stream. It is immutable once
// built and safe for concurrent use.
type ObjectStream struct {
	first   int
	extends *Ref
	numbers []int // object number by index
	offsets []int // offset relative to first, by index
	data    []byte
}

// NewObjectStream decodes stm and reads its header of object number and
// offset pairs. r resolves indirect filter parameters and may be nil.
func NewObjectStream(stm *Stream, r Resolver) (*ObjectStream, error) {
	if stm == nil {
		return nil, fmt.Errorf("object stream is nil")
	}
	if typ, _ := stm.Dict.GetName("Type"); typ != "ObjStm" {
		return nil, fmt.Errorf("stream type is %v, not /ObjStm", stm.Dict.Get("Type"))
	}
	n, ok := stm.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream has invalid /N %v", stm.Dict.Get("N"))
	}
	first, ok := stm.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream has invalid /First %v", stm.Dict.Get("First"))
	}

	os := &ObjectStream{first: int(first)}
	if ref, ok := stm.Dict.Get("Extends").(Ref); ok {
		os.extends = &ref
	}

	data, err := stm.DecodeWith(r)
	if err != nil {
		return nil, fmt.Errorf("decode object stream: %w", err)
	}
	if os.first > len(data) {
		return nil, fmt.Errorf("/First %d beyond %d decoded bytes", os.first, len(data))
	}
	os.data = data

	p := NewParser(bytes.NewReader(data[:os.first]))
	for i := 0; i < int(n); i++ {
		num, err := p.expectInt("object number")
		if err != nil {
			return nil, fmt.Errorf("header pair %d: %w", i, err)
		}
		off, err := p.expectInt("offset")
		if err != nil {
			return nil, fmt.Errorf("header pair %d: %w", i, err)
		}
		os.numbers = append(os.numbers, num)
		os.offsets = append(os.offsets, off)
	}
	return os, nil
}

// N returns the number of objects in the stream.
func (os *ObjectStream) N() int {
	return len(os.numbers)
}

// Extends returns the /Extends reference, or nil.
func (os *ObjectStream) Extends() *Ref {
	return os.extends
}

// ObjectNumbers lists the stored object numbers in header order.
func (os *ObjectStream) ObjectNumbers() []int {
	return append([]int(nil), os.numbers...)
}

// Contains reports whether objNum is stored in the stream.
func (os *ObjectStream) Contains(objNum int) bool {
	for _, n := range os.numbers {
		if n == objNum {
			return true
		}
	}
	return false
}

// ObjectAt parses the object at header position index and returns it
// with its object number.
func (os *ObjectStream) ObjectAt(index int) (Object, int, error) {
	if index < 0 || index >= len(os.numbers) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(os.numbers))
	}

	start := os.first + os.offsets[index]
	end := len(os.data)
	if index+1 < len(os.offsets) {
		if next := os.first + os.offsets[index+1]; next < end {
			end = next
		}
	}
	if start < os.first || start >= end {
		return nil, 0, fmt.Errorf("object %d has bad offset %d", os.numbers[index], os.offsets[index])
	}

	obj, err := NewParser(bytes.NewReader(os.data[start:end])).ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("object %d in object stream: %w", os.numbers[index], err)
	}
	return obj, os.numbers[index], nil
}

// Object finds objNum in the stream and parses it.
func (os *ObjectStream) Object(objNum int) (Object, error) {
	for i, n := range os.numbers {
		if n == objNum {
			obj, _, err := os.ObjectAt(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not in object stream", objNum)
}
