package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// XRefEntryType says where an object lives.
type XRefEntryType int

const (
	XRefFree XRefEntryType = iota
	XRefInUse
	// XRefCompressed objects are stored inside an object stream.
	XRefCompressed
)

func (t XRefEntryType) String() string {
	switch t {
	case XRefFree:
		return "free"
	case XRefInUse:
		return "in use"
	case XRefCompressed:
		return "compressed"
	}
	return fmt.Sprintf("XRefEntryType(%d)", int(t))
}

// XRefEntry is one cross-reference entry.
type XRefEntry struct {
	Type XRefEntryType
	// Offset is the byte offset of an in-use object.
	Offset     int64
	Generation int
	// Stream and Index locate a compressed object: the object number of
	// its object stream and its position inside it.
	Stream int
	Index  int
}

// XRefTable maps object numbers to entries. Trailer is the trailer
// dictionary, or the xref stream's dictionary.
type XRefTable struct {
	Entries map[int]*XRefEntry
	Trailer Dict
}

// NewXRefTable returns an empty table.
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]*XRefEntry),
		Trailer: make(Dict),
	}
}

func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	entry, ok := x.Entries[objNum]
	return entry, ok
}

func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// MergeXRefTables merges sections given oldest first. Entries of later
// sections win, and the merged trailer is the last one.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	merged := NewXRefTable()
	for _, table := range tables {
		for objNum, entry := range table.Entries {
			merged.Set(objNum, entry)
		}
		merged.Trailer = table.Trailer
	}
	return merged
}

// ErrNoStartXRef is returned when the file tail has no startxref keyword.
var ErrNoStartXRef = errors.New("startxref not found")

// XRefParser reads cross-reference sections. Every section is read
// through its own section reader, so the parser never moves a shared
// file offset.
type XRefParser struct {
	r    io.ReaderAt
	size int64
}

// NewXRefParser returns a parser for a file of the given size.
func NewXRefParser(r io.ReaderAt, size int64) *XRefParser {
	return &XRefParser{r: r, size: size}
}

// FindXRef returns the offset recorded after the last startxref keyword.
func (x *XRefParser) FindXRef() (int64, error) {
	readSize := int64(1024)
	if x.size < readSize {
		readSize = x.size
	}
	buf := make([]byte, readSize)
	n, err := x.r.ReadAt(buf, x.size-readSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read file tail: %w", err)
	}
	buf = buf[:n]

	idx := bytes.LastIndex(buf, []byte("startxref"))
	if idx < 0 {
		return 0, ErrNoStartXRef
	}
	fields := bytes.Fields(buf[idx+len("startxref"):])
	if len(fields) == 0 {
		return 0, fmt.Errorf("startxref without offset")
	}
	offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid startxref offset %q: %w", fields[0], err)
	}
	if offset < 0 || offset >= x.size {
		return 0, fmt.Errorf("startxref offset %d outside file of %d bytes", offset, x.size)
	}
	return offset, nil
}

func (x *XRefParser) section(offset int64) *Parser {
	return NewParser(io.NewSectionReader(x.r, offset, x.size-offset))
}

// ParseXRef parses the section at offset, which may be a classic table
// or an xref stream. For a hybrid file the table's /XRefStm stream is
// folded in, filling entries the table leaves free or absent.
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	if offset < 0 || offset >= x.size {
		return nil, fmt.Errorf("xref offset %d outside file of %d bytes", offset, x.size)
	}
	p := x.section(offset)
	tok, err := p.peek(0)
	if err != nil {
		return nil, fmt.Errorf("xref at %d: %w", offset, err)
	}

	switch {
	case tok.Type == TokenKeyword && string(tok.Value) == "xref":
		p.next()
		table, err := parseXRefTable(p)
		if err != nil {
			return nil, fmt.Errorf("xref table at %d: %w", offset, err)
		}
		if stm, ok := table.Trailer.GetInt("XRefStm"); ok {
			hybrid, err := x.parseXRefStream(x.section(int64(stm)))
			if err != nil {
				return nil, fmt.Errorf("hybrid xref stream at %d: %w", stm, err)
			}
			for num, e := range hybrid.Entries {
				if cur, ok := table.Entries[num]; !ok || cur.Type == XRefFree {
					table.Entries[num] = e
				}
			}
		}
		return table, nil
	case tok.Type == TokenInteger:
		table, err := x.parseXRefStream(p)
		if err != nil {
			return nil, fmt.Errorf("xref stream at %d: %w", offset, err)
		}
		return table, nil
	}
	return nil, fmt.Errorf("no xref section at %d: found %s", offset, tok)
}

// Load reads the newest section and every older one reachable through
// /Prev, and merges them.
func (x *XRefParser) Load() (*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var sections []*XRefTable // newest first
	for {
		if seen[offset] {
			return nil, fmt.Errorf("xref /Prev chain loops at offset %d", offset)
		}
		seen[offset] = true

		table, err := x.ParseXRef(offset)
		if err != nil {
			return nil, err
		}
		sections = append(sections, table)

		prev, ok := table.Trailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = int64(prev)
	}

	for i, j := 0, len(sections)-1; i < j; i, j = i+1, j-1 {
		sections[i], sections[j] = sections[j], sections[i]
	}
	return MergeXRefTables(sections...), nil
}

// parseXRefTable reads subsections after the xref keyword, then the
// trailer dictionary.
func parseXRefTable(p *Parser) (*XRefTable, error) {
	table := NewXRefTable()
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Type == TokenKeyword && string(tok.Value) == "trailer":
			obj, err := p.ParseObject()
			if err != nil {
				return nil, fmt.Errorf("trailer: %w", err)
			}
			trailer, ok := obj.(Dict)
			if !ok {
				return nil, fmt.Errorf("trailer is %s, not a dictionary", KindOf(obj))
			}
			table.Trailer = trailer
			return table, nil
		case tok.Type == TokenEOF:
			return nil, errors.New("missing trailer")
		case tok.Type != TokenInteger:
			return nil, fmt.Errorf("unexpected %s in xref table", tok)
		}

		first, err := strconv.Atoi(string(tok.Value))
		if err != nil {
			return nil, fmt.Errorf("invalid first object number %q", tok.Value)
		}
		count, err := p.expectInt("subsection count")
		if err != nil {
			return nil, err
		}
		for i := 0; i < count; i++ {
			entry, err := parseXRefEntry(p)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", first+i, err)
			}
			if _, dup := table.Entries[first+i]; !dup {
				table.Set(first+i, entry)
			}
		}
	}
}

func parseXRefEntry(p *Parser) (*XRefEntry, error) {
	offset, err := p.expectInt("offset")
	if err != nil {
		return nil, err
	}
	gen, err := p.expectInt("generation")
	if err != nil {
		return nil, err
	}
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenKeyword {
		return nil, fmt.Errorf("expected n or f, got %s", tok)
	}
	switch string(tok.Value) {
	case "n":
		return &XRefEntry{Type: XRefInUse, Offset: int64(offset), Generation: gen}, nil
	case "f":
		return &XRefEntry{Type: XRefFree, Generation: gen}, nil
	}
	return nil, fmt.Errorf("invalid in-use flag %q", tok.Value)
}

// parseXRefStream reads a /Type /XRef stream object. The returned
// table's trailer is the stream dictionary.
func (x *XRefParser) parseXRefStream(p *Parser) (*XRefTable, error) {
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, err
	}
	stm, ok := ind.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("object %s is %s, not a stream", ind.Ref, KindOf(ind.Object))
	}
	if typ, _ := stm.Dict.GetName("Type"); typ != "XRef" {
		return nil, fmt.Errorf("object %s is not an xref stream", ind.Ref)
	}

	size, ok := stm.Dict.GetInt("Size")
	if !ok || size < 0 {
		return nil, errors.New("xref stream missing /Size")
	}

	w, err := xrefWidths(stm.Dict)
	if err != nil {
		return nil, err
	}
	index := []int{0, int(size)}
	if arr, ok := stm.Dict.GetArray("Index"); ok {
		index, err = intArray(arr)
		if err != nil || len(index)%2 != 0 {
			return nil, fmt.Errorf("invalid /Index %s", arr)
		}
	}

	data, err := stm.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode xref stream: %w", err)
	}

	table := NewXRefTable()
	table.Trailer = stm.Dict
	rowLen := w[0] + w[1] + w[2]
	pos := 0
	for ; len(index) > 0; index = index[2:] {
		start, n := index[0], index[1]
		for i := 0; i < n; i++ {
			if pos+rowLen > len(data) {
				return nil, fmt.Errorf("xref stream data ends after %d rows", pos/rowLen)
			}
			row := data[pos : pos+rowLen]
			pos += rowLen

			typ := 1
			if w[0] > 0 {
				typ = decodeBigEndian(row[:w[0]])
			}
			f2 := decodeBigEndian(row[w[0] : w[0]+w[1]])
			f3 := decodeBigEndian(row[w[0]+w[1]:])

			var entry *XRefEntry
			switch typ {
			case 0:
				entry = &XRefEntry{Type: XRefFree, Generation: f3}
			case 1:
				entry = &XRefEntry{Type: XRefInUse, Offset: int64(f2), Generation: f3}
			case 2:
				entry = &XRefEntry{Type: XRefCompressed, Stream: f2, Index: f3}
			default:
				// Unknown types are references to the null object.
				continue
			}
			if _, dup := table.Entries[start+i]; !dup {
				table.Set(start+i, entry)
			}
		}
	}
	return table, nil
}

func xrefWidths(d Dict) ([3]int, error) {
	var w [3]int
	arr, ok := d.GetArray("W")
	if !ok {
		return w, errors.New("xref stream missing /W")
	}
	vals, err := intArray(arr)
	if err != nil || len(vals) < 3 {
		return w, fmt.Errorf("invalid /W %s", arr)
	}
	for i := range w {
		if vals[i] < 0 || vals[i] > 8 {
			return w, fmt.Errorf("invalid /W %s", arr)
		}
		w[i] = vals[i]
	}
	return w, nil
}

func intArray(arr Array) ([]int, error) {
	out := make([]int, len(arr))
	for i, obj := range arr {
		n, err := AsInt(obj)
		if err != nil {
			return nil, err
		}
		out[i] = int(n)
	}
	return out, nil
}

func decodeBigEndian(b []byte) int {
	x := 0
	for _, c := range b {
		x = x<<8 | int(c)
	}
	return x
}
