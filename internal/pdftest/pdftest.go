// Package pdftest assembles small PDF files in memory for tests.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

type entry struct {
	compressed bool
	offset     int64
	stream     int
	index      int
}

// Builder writes objects and records where they start so that it can emit
// correct cross-reference sections. Each section lists only the objects
// added since the previous one, which makes incremental updates easy to
// build.
type Builder struct {
	buf     bytes.Buffer
	pending map[int]entry
	size    int
	first   bool
}

// New starts a file with a %PDF header for version.
func New(version string) *Builder {
	b := &Builder{pending: make(map[int]entry), first: true}
	fmt.Fprintf(&b.buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version)
	return b
}

func (b *Builder) track(num int, e entry) {
	b.pending[num] = e
	if num+1 > b.size {
		b.size = num + 1
	}
}

// Object writes "num 0 obj body endobj".
func (b *Builder) Object(num int, body string) {
	b.track(num, entry{offset: int64(b.buf.Len())})
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

// Stream writes a stream object. dict holds extra entries; /Length is
// added.
func (b *Builder) Stream(num int, dict string, data []byte) {
	b.track(num, entry{offset: int64(b.buf.Len())})
	fmt.Fprintf(&b.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\n", num, dict, len(data))
	b.buf.Write(data)
	b.buf.WriteString("\nendstream\nendobj\n")
}

// ObjectStream writes a /Type /ObjStm stream holding bodies, keyed by
// object number, and records them as compressed objects.
func (b *Builder) ObjectStream(num int, bodies map[int]string) {
	nums := make([]int, 0, len(bodies))
	for n := range bodies {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var header, payload strings.Builder
	for i, n := range nums {
		fmt.Fprintf(&header, "%d %d ", n, payload.Len())
		payload.WriteString(bodies[n])
		payload.WriteString("\n")
		b.track(n, entry{compressed: true, stream: num, index: i})
	}
	data := header.String() + payload.String()
	b.Stream(num, fmt.Sprintf("/Type /ObjStm /N %d /First %d /Filter /FlateDecode", len(nums), header.Len()),
		Deflate([]byte(data)))
}

// Raw appends s unchanged.
func (b *Builder) Raw(s string) {
	b.buf.WriteString(s)
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int64 {
	return int64(b.buf.Len())
}

// Bytes returns the file.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *Builder) takePending() []int {
	nums := make([]int, 0, len(b.pending)+1)
	for n := range b.pending {
		nums = append(nums, n)
	}
	if b.first {
		if _, ok := b.pending[0]; !ok {
			nums = append(nums, 0)
		}
		b.first = false
	}
	sort.Ints(nums)
	return nums
}

// subsections groups sorted object numbers into runs.
func subsections(nums []int) [][]int {
	var runs [][]int
	for i, n := range nums {
		if i == 0 || n != nums[i-1]+1 {
			runs = append(runs, nil)
		}
		runs[len(runs)-1] = append(runs[len(runs)-1], n)
	}
	return runs
}

// XRefTable writes a classic table for the pending objects, the trailer
// (extra entries plus /Size) and the file tail. It returns the offset of
// the section.
func (b *Builder) XRefTable(trailer string) int64 {
	nums := b.takePending()
	start := b.Len()
	b.buf.WriteString("xref\n")
	for _, run := range subsections(nums) {
		fmt.Fprintf(&b.buf, "%d %d\n", run[0], len(run))
		for _, n := range run {
			e, ok := b.pending[n]
			if !ok || e.compressed {
				b.buf.WriteString("0000000000 65535 f \n")
				continue
			}
			fmt.Fprintf(&b.buf, "%010d 00000 n \n", e.offset)
		}
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", b.size, trailer, start)
	b.pending = make(map[int]entry)
	return start
}

// XRefStream writes the pending objects as an xref stream object numbered
// num, followed by the file tail. It returns the offset of the stream.
func (b *Builder) XRefStream(num int, trailer string) int64 {
	start := b.Len()
	b.track(num, entry{offset: start})
	nums := b.takePending()

	var rows bytes.Buffer
	var index []string
	for _, run := range subsections(nums) {
		index = append(index, fmt.Sprintf("%d %d", run[0], len(run)))
		for _, n := range run {
			e, ok := b.pending[n]
			row := make([]byte, 7)
			switch {
			case !ok:
				binary.BigEndian.PutUint16(row[5:], 0xffff)
			case e.compressed:
				row[0] = 2
				binary.BigEndian.PutUint32(row[1:], uint32(e.stream))
				binary.BigEndian.PutUint16(row[5:], uint16(e.index))
			default:
				row[0] = 1
				binary.BigEndian.PutUint32(row[1:], uint32(e.offset))
			}
			rows.Write(row)
		}
	}

	data := Deflate(rows.Bytes())
	fmt.Fprintf(&b.buf, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] /Index [%s] /Filter /FlateDecode /Length %d %s >>\nstream\n",
		num, b.size, strings.Join(index, " "), len(data), trailer)
	b.buf.Write(data)
	fmt.Fprintf(&b.buf, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", start)
	b.pending = make(map[int]entry)
	return start
}

// Deflate compresses data with zlib.
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// Document returns a complete single-revision file with one page per
// content stream. Objects: 1 catalog, 2 page tree, then a page and its
// content for each entry.
func Document(contents ...string) []byte {
	b := New("1.7")
	b.Object(1, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(contents))
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	b.Object(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
		strings.Join(kids, " "), len(contents)))

	for i, content := range contents {
		page, stream := 3+2*i, 4+2*i
		b.Object(page, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Contents %d 0 R >>", stream))
		b.Stream(stream, "/Filter /FlateDecode", Deflate([]byte(content)))
	}
	b.XRefTable("/Root 1 0 R")
	return b.Bytes()
}
