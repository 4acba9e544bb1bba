package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/textpos/internal/pdftest"
)

func objStm(t *testing.T, dict Dict, data string) *Stream {
	t.Helper()
	if dict == nil {
		dict = Dict{}
	}
	dict["Type"] = Name("ObjStm")
	dict["Filter"] = Name("FlateDecode")
	return &Stream{Dict: dict, Data: pdftest.Deflate([]byte(data))}
}

func TestObjectStream(t *testing.T) {
	header := "10 0 11 16 12 22 "
	body := "<</Type /Page>> [1 2] (str)"
	stm := objStm(t, Dict{"N": Int(3), "First": Int(len(header))}, header+body)

	os, err := NewObjectStream(stm, nil)
	if err != nil {
		t.Fatalf("NewObjectStream error: %v", err)
	}
	if os.N() != 3 {
		t.Errorf("N() = %d, want 3", os.N())
	}
	if diff := cmp.Diff([]int{10, 11, 12}, os.ObjectNumbers()); diff != "" {
		t.Errorf("ObjectNumbers mismatch (-want +got):\n%s", diff)
	}
	if !os.Contains(11) || os.Contains(13) {
		t.Error("Contains misreports membership")
	}

	tests := []struct {
		num  int
		want Object
	}{
		{10, Dict{"Type": Name("Page")}},
		{11, Array{Int(1), Int(2)}},
		{12, ByteString("str")},
	}
	for _, tt := range tests {
		got, err := os.Object(tt.num)
		if err != nil {
			t.Errorf("Object(%d) error: %v", tt.num, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Object(%d) mismatch (-want +got):\n%s", tt.num, diff)
		}
	}

	obj, num, err := os.ObjectAt(1)
	if err != nil || num != 11 {
		t.Errorf("ObjectAt(1) = %v, %d, %v", obj, num, err)
	}
	if _, _, err := os.ObjectAt(3); err == nil {
		t.Error("ObjectAt(3) succeeded")
	}
	if _, err := os.Object(99); err == nil {
		t.Error("Object(99) succeeded")
	}
}

func TestObjectStreamExtends(t *testing.T) {
	stm := objStm(t, Dict{"N": Int(1), "First": Int(4), "Extends": Ref{Number: 8}}, "1 0 null")
	os, err := NewObjectStream(stm, nil)
	if err != nil {
		t.Fatal(err)
	}
	if os.Extends() == nil || *os.Extends() != (Ref{Number: 8}) {
		t.Errorf("Extends() = %v", os.Extends())
	}
}

func TestObjectStreamErrors(t *testing.T) {
	tests := []struct {
		name string
		stm  *Stream
	}{
		{"nil", nil},
		{"wrong type", &Stream{Dict: Dict{"Type": Name("XRef"), "N": Int(0), "First": Int(0)}}},
		{"missing N", objStm(t, Dict{"First": Int(0)}, "")},
		{"negative First", objStm(t, Dict{"N": Int(0), "First": Int(-1)}, "")},
		{"First beyond data", objStm(t, Dict{"N": Int(1), "First": Int(50)}, "1 0 ")},
		{"short header", objStm(t, Dict{"N": Int(2), "First": Int(4)}, "1 0 null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewObjectStream(tt.stm, nil); err == nil {
				t.Error("NewObjectStream succeeded, want error")
			}
		})
	}
}
