package core

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/textpos/internal/pdftest"
)

func xrefParser(data []byte) *XRefParser {
	return NewXRefParser(bytes.NewReader(data), int64(len(data)))
}

func TestFindXRef(t *testing.T) {
	tests := []struct {
		name    string
		tail    string
		want    int64
		wantErr bool
	}{
		{"LF", "startxref\n9\n%%EOF\n", 9, false},
		{"CR", "startxref\r9\r%%EOF", 9, false},
		{"last one wins", "startxref\n3\n%%EOF\nstartxref\n9\n%%EOF", 9, false},
		{"missing", "%%EOF", 0, true},
		{"no offset", "startxref\n", 0, true},
		{"offset outside file", "startxref\n99999\n%%EOF", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte("%PDF-1.4\n" + strings.Repeat(" ", 20) + tt.tail)
			got, err := xrefParser(data).FindXRef()
			if tt.wantErr {
				if err == nil {
					t.Errorf("FindXRef = %d, want error", got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("FindXRef = %d, %v, want %d", got, err, tt.want)
			}
		})
	}

	_, err := xrefParser([]byte("%PDF-1.4\n%%EOF")).FindXRef()
	if !errors.Is(err, ErrNoStartXRef) {
		t.Errorf("error = %v, want ErrNoStartXRef", err)
	}
}

func TestLoadXRefTable(t *testing.T) {
	b := pdftest.New("1.4")
	b.Object(1, "<< /Type /Catalog >>")
	b.Object(2, "(two)")
	b.Object(4, "4")
	b.XRefTable("/Root 1 0 R")

	table, err := xrefParser(b.Bytes()).Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if e, ok := table.Get(0); !ok || e.Type != XRefFree {
		t.Errorf("entry 0 = %+v, want free", e)
	}
	for _, num := range []int{1, 2, 4} {
		e, ok := table.Get(num)
		if !ok || e.Type != XRefInUse {
			t.Fatalf("entry %d = %+v, want in use", num, e)
		}
		prefix := b.Bytes()[e.Offset:]
		if !bytes.HasPrefix(prefix, []byte(fmt.Sprintf("%d 0 obj", num))) {
			t.Errorf("entry %d offset %d points at %q", num, e.Offset, prefix[:10])
		}
	}
	if _, ok := table.Get(3); ok {
		t.Error("entry 3 present, want absent")
	}
	if size, _ := table.Trailer.GetInt("Size"); size != 5 {
		t.Errorf("trailer /Size = %d, want 5", size)
	}
	if table.Trailer.Get("Root") != (Ref{Number: 1}) {
		t.Errorf("trailer /Root = %v", table.Trailer.Get("Root"))
	}
}

func TestLoadIncrementalUpdate(t *testing.T) {
	b := pdftest.New("1.4")
	b.Object(1, "<< /Type /Catalog >>")
	b.Object(2, "(old)")
	first := b.XRefTable("/Root 1 0 R")
	b.Object(2, "(new)")
	b.Object(3, "(added)")
	b.XRefTable("/Root 1 0 R /Prev " + fmt.Sprint(first))

	table, err := xrefParser(b.Bytes()).Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	e, _ := table.Get(2)
	if !bytes.HasPrefix(b.Bytes()[e.Offset:], []byte("2 0 obj\n(new)")) {
		t.Errorf("object 2 resolves to the old revision")
	}
	if _, ok := table.Get(1); !ok {
		t.Error("object 1 from the first revision is missing")
	}
	if _, ok := table.Get(3); !ok {
		t.Error("object 3 from the update is missing")
	}
	if _, ok := table.Trailer.GetInt("Prev"); !ok {
		t.Error("merged trailer is not the newest one")
	}
}

func TestLoadXRefStream(t *testing.T) {
	b := pdftest.New("1.5")
	b.Object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.ObjectStream(5, map[int]string{2: "<< /Type /Pages /Count 0 >>", 3: "(packed)"})
	b.XRefStream(6, "/Root 1 0 R")

	table, err := xrefParser(b.Bytes()).Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	tests := []struct {
		num    int
		typ    XRefEntryType
		stream int
		index  int
	}{
		{0, XRefFree, 0, 0},
		{1, XRefInUse, 0, 0},
		{2, XRefCompressed, 5, 0},
		{3, XRefCompressed, 5, 1},
		{5, XRefInUse, 0, 0},
		{6, XRefInUse, 0, 0},
	}
	for _, tt := range tests {
		e, ok := table.Get(tt.num)
		if !ok {
			t.Errorf("entry %d missing", tt.num)
			continue
		}
		if e.Type != tt.typ || e.Stream != tt.stream || e.Index != tt.index {
			t.Errorf("entry %d = %+v, want %v in stream %d index %d", tt.num, e, tt.typ, tt.stream, tt.index)
		}
	}
	if table.Trailer.Get("Root") != (Ref{Number: 1}) {
		t.Errorf("trailer /Root = %v", table.Trailer.Get("Root"))
	}
}

func TestLoadHybrid(t *testing.T) {
	b := pdftest.New("1.5")
	b.Object(1, "<< /Type /Catalog >>")
	b.ObjectStream(4, map[int]string{2: "(in stream)"})
	stm := b.XRefStream(5, "")

	// The classic table lists only object 1; everything else is reachable
	// only through /XRefStm.
	b.Object(1, "<< /Type /Catalog >>")
	b.XRefTable("/Root 1 0 R /XRefStm " + fmt.Sprint(stm))

	table, err := xrefParser(b.Bytes()).Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	e, ok := table.Get(2)
	if !ok || e.Type != XRefCompressed || e.Stream != 4 {
		t.Errorf("entry 2 = %+v, want compressed in stream 4", e)
	}
}

func TestLoadPrevCycle(t *testing.T) {
	b := pdftest.New("1.4")
	b.Object(1, "<< >>")
	// The section points back at itself.
	start := b.Len()
	b.XRefTable("/Prev " + fmt.Sprint(start))

	if _, err := xrefParser(b.Bytes()).Load(); err == nil || !strings.Contains(err.Error(), "loops") {
		t.Errorf("Load error = %v, want loop error", err)
	}
}

func TestParseXRefErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing trailer", "xref\n0 1\n0000000000 65535 f \n"},
		{"bad flag", "xref\n0 1\n0000000000 65535 x \ntrailer\n<<>>"},
		{"short subsection", "xref\n0 2\n0000000000 65535 f \ntrailer\n<<>>"},
		{"trailer not a dictionary", "xref\n0 0\ntrailer\n[1]"},
		{"not an xref", "garbage"},
		{"stream of wrong type", "1 0 obj\n<< /Type /ObjStm /Length 0 >>\nstream\n\nendstream\nendobj"},
		{"xref stream without W", "1 0 obj\n<< /Type /XRef /Size 1 /Length 0 >>\nstream\n\nendstream\nendobj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(tt.body)
			if _, err := xrefParser(data).ParseXRef(0); err == nil {
				t.Error("ParseXRef succeeded, want error")
			}
		})
	}

	if _, err := xrefParser([]byte("xref")).ParseXRef(100); err == nil {
		t.Error("ParseXRef past end of file succeeded")
	}
}

func TestMergeXRefTables(t *testing.T) {
	older := NewXRefTable()
	older.Set(1, &XRefEntry{Type: XRefInUse, Offset: 10})
	older.Set(2, &XRefEntry{Type: XRefInUse, Offset: 20})
	older.Trailer = Dict{"Size": Int(3)}

	newer := NewXRefTable()
	newer.Set(2, &XRefEntry{Type: XRefInUse, Offset: 200})
	newer.Trailer = Dict{"Size": Int(4)}

	merged := MergeXRefTables(older, newer)
	if merged.Size() != 2 {
		t.Errorf("Size() = %d, want 2", merged.Size())
	}
	if e, _ := merged.Get(2); e.Offset != 200 {
		t.Errorf("entry 2 offset = %d, want 200", e.Offset)
	}
	if size, _ := merged.Trailer.GetInt("Size"); size != 4 {
		t.Errorf("trailer /Size = %d, want 4", size)
	}
	if XRefCompressed.String() != "compressed" {
		t.Errorf("XRefCompressed.String() = %q", XRefCompressed.String())
	}
}
