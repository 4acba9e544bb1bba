package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"sync"

	"github.com/tsawler/textpos/contentstream"
	"github.com/tsawler/textpos/core"
	"github.com/tsawler/textpos/pages"
)

var (
	// ErrNoCatalog is returned when the trailer has no usable /Root.
	ErrNoCatalog = errors.New("document has no catalog")
	// ErrPageRange is returned for a page number outside the document.
	ErrPageRange = errors.New("page out of range")
	// ErrEncrypted is returned by NewReader for files with an /Encrypt
	// dictionary.
	ErrEncrypted = errors.New("encrypted documents are not supported")
)

// PageError reports a failure while reading one page. Op names the step
// that failed: "page", "contents" or "parse".
type PageError struct {
	Page int
	Op   string
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %s: %v", e.Page, e.Op, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// PDFVersion is the version from the file header.
type PDFVersion struct {
	Major int
	Minor int
}

func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

var headerRE = regexp.MustCompile(`^%PDF-(\d+)\.(\d+)`)

// Reader gives access to the objects and pages of one file. It is safe
// for concurrent use once NewReader returns.
type Reader struct {
	r       io.ReaderAt
	closer  io.Closer
	size    int64
	version PDFVersion
	xref    *core.XRefTable

	mu      sync.Mutex
	objects map[int]core.Object
	streams map[int]*core.ObjectStream

	treeOnce sync.Once
	tree     []*pages.Page
	treeErr  error
}

var (
	_ pages.ObjectResolver = (*Reader)(nil)
	_ core.Resolver        = (*Reader)(nil)
)

// Open opens the named file. Close releases it.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads the header and cross-reference data from rs. When rs
// also implements io.ReaderAt objects are read in place; otherwise the
// whole input is buffered. NewReader does not close rs.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("find input size: %w", err)
	}

	ra, ok := rs.(io.ReaderAt)
	if !ok {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind input: %w", err)
		}
		data, err := io.ReadAll(rs)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		ra = bytes.NewReader(data)
		size = int64(len(data))
	}

	r := &Reader{
		r:       ra,
		size:    size,
		objects: make(map[int]core.Object),
		streams: make(map[int]*core.ObjectStream),
	}

	if r.version, err = r.parseHeader(); err != nil {
		return nil, err
	}
	if r.xref, err = core.NewXRefParser(ra, size).Load(); err != nil {
		return nil, fmt.Errorf("load xref: %w", err)
	}
	if r.xref.Trailer.Has("Encrypt") {
		return nil, ErrEncrypted
	}
	return r, nil
}

// Close closes the file opened by Open. It is a no-op for readers built
// with NewReader.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *Reader) parseHeader() (PDFVersion, error) {
	buf := make([]byte, 16)
	n, err := r.r.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return PDFVersion{}, fmt.Errorf("read header: %w", err)
	}
	m := headerRE.FindSubmatch(buf[:n])
	if m == nil {
		return PDFVersion{}, fmt.Errorf("invalid PDF header %q", bytes.TrimSpace(buf[:n]))
	}
	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

// Version returns the header version.
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the merged trailer dictionary.
func (r *Reader) Trailer() core.Dict {
	return r.xref.Trailer
}

// XRefTable returns the merged cross-reference table.
func (r *Reader) XRefTable() *core.XRefTable {
	return r.xref
}

// FileSize returns the input size in bytes.
func (r *Reader) FileSize() int64 {
	return r.size
}

// GetObject loads object objNum. Free and unknown objects are the null
// object.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	return r.getObject(objNum, loading{})
}

// loading holds the objects a single GetObject call is in the middle of
// reading, so a stream whose /Length leads back to itself fails instead
// of recursing.
type loading map[int]bool

// loader resolves references on behalf of one GetObject call.
type loader struct {
	r     *Reader
	chain loading
}

func (l loader) ResolveReference(ref core.Ref) (core.Object, error) {
	return l.r.getObject(ref.Number, l.chain)
}

func (r *Reader) getObject(objNum int, chain loading) (core.Object, error) {
	r.mu.Lock()
	obj, ok := r.objects[objNum]
	r.mu.Unlock()
	if ok {
		return obj, nil
	}

	entry, ok := r.xref.Get(objNum)
	if !ok || entry.Type == core.XRefFree {
		return core.Null{}, nil
	}
	if chain[objNum] {
		return nil, fmt.Errorf("object %d refers back to itself while loading", objNum)
	}
	chain[objNum] = true
	defer delete(chain, objNum)

	var err error
	switch entry.Type {
	case core.XRefInUse:
		obj, err = r.readObject(objNum, entry.Offset, chain)
	case core.XRefCompressed:
		obj, err = r.readCompressed(objNum, entry, chain)
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.objects[objNum] = obj
	r.mu.Unlock()
	return obj, nil
}

func (r *Reader) readObject(objNum int, offset int64, chain loading) (core.Object, error) {
	if offset < 0 || offset >= r.size {
		return nil, fmt.Errorf("object %d: offset %d outside file", objNum, offset)
	}
	p := core.NewParser(io.NewSectionReader(r.r, offset, r.size-offset))
	p.SetResolver(loader{r: r, chain: chain})
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", objNum, err)
	}
	if ind.Ref.Number != objNum {
		return nil, fmt.Errorf("object %d: found object %d at offset %d", objNum, ind.Ref.Number, offset)
	}
	return ind.Object, nil
}

func (r *Reader) readCompressed(objNum int, entry *core.XRefEntry, chain loading) (core.Object, error) {
	objs, err := r.objectStream(entry.Stream, chain)
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", objNum, err)
	}
	obj, num, err := objs.ObjectAt(entry.Index)
	if err != nil || num != objNum {
		// The index is a hint; fall back to a search by number.
		obj, err = objs.Object(objNum)
	}
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", objNum, err)
	}
	return obj, nil
}

func (r *Reader) objectStream(num int, chain loading) (*core.ObjectStream, error) {
	r.mu.Lock()
	objs, ok := r.streams[num]
	r.mu.Unlock()
	if ok {
		return objs, nil
	}

	entry, ok := r.xref.Get(num)
	if !ok || entry.Type != core.XRefInUse {
		return nil, fmt.Errorf("object stream %d is not a plain object", num)
	}
	if chain[num] {
		return nil, fmt.Errorf("object stream %d refers back to itself while loading", num)
	}
	chain[num] = true
	defer delete(chain, num)

	obj, err := r.readObject(num, entry.Offset, chain)
	if err != nil {
		return nil, err
	}
	stm, ok := obj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %d is %s", num, core.KindOf(obj))
	}
	objs, err = core.NewObjectStream(stm, loader{r: r, chain: chain})
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", num, err)
	}

	r.mu.Lock()
	r.streams[num] = objs
	r.mu.Unlock()
	return objs, nil
}

// ResolveReference loads the object ref points to.
func (r *Reader) ResolveReference(ref core.Ref) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// maxRefChain bounds how many references Resolve follows in a row.
const maxRefChain = 32

// Resolve returns obj unchanged unless it is a reference. A reference is
// loaded, and so is any reference it leads to, until a direct object is
// reached.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	start := obj
	for i := 0; ; i++ {
		ref, ok := obj.(core.Ref)
		if !ok {
			return obj, nil
		}
		if i == maxRefChain {
			return nil, fmt.Errorf("reference chain from %s is longer than %d", start, maxRefChain)
		}
		var err error
		if obj, err = r.ResolveReference(ref); err != nil {
			return nil, err
		}
	}
}

// GetCatalog returns the document catalog.
func (r *Reader) GetCatalog() (*pages.Catalog, error) {
	root := r.xref.Trailer.Get("Root")
	if root == nil {
		return nil, ErrNoCatalog
	}
	obj, err := r.Resolve(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCatalog, err)
	}
	dict, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: /Root is %s", ErrNoCatalog, core.KindOf(obj))
	}
	return pages.NewCatalog(dict, r), nil
}

// GetInfo returns the document information dictionary, or nil.
func (r *Reader) GetInfo() (core.Dict, error) {
	info := r.xref.Trailer.Get("Info")
	if info == nil {
		return nil, nil
	}
	obj, err := r.Resolve(info)
	if err != nil {
		return nil, fmt.Errorf("resolve /Info: %w", err)
	}
	dict, _ := obj.(core.Dict)
	return dict, nil
}

func (r *Reader) pages() ([]*pages.Page, error) {
	r.treeOnce.Do(func() {
		catalog, err := r.GetCatalog()
		if err != nil {
			r.treeErr = err
			return
		}
		tree, err := catalog.PageTree()
		if err != nil {
			r.treeErr = err
			return
		}
		r.tree, r.treeErr = tree.Pages()
	})
	return r.tree, r.treeErr
}

// PageCount returns the number of pages reachable from the page tree.
func (r *Reader) PageCount() (int, error) {
	all, err := r.pages()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// Page returns page n, counting from 1.
func (r *Reader) Page(n int) (*pages.Page, error) {
	all, err := r.pages()
	if err != nil {
		return nil, &PageError{Page: n, Op: "page", Err: err}
	}
	if n < 1 || n > len(all) {
		return nil, &PageError{Page: n, Op: "page", Err: fmt.Errorf("%w: document has %d pages", ErrPageRange, len(all))}
	}
	return all[n-1], nil
}

// PageOperations decodes the content of page n and parses it into
// operations.
func (r *Reader) PageOperations(n int) ([]contentstream.Operation, error) {
	page, err := r.Page(n)
	if err != nil {
		return nil, err
	}
	data, err := page.ContentData()
	if err != nil {
		return nil, &PageError{Page: n, Op: "contents", Err: err}
	}
	ops, err := contentstream.Parse(data)
	if err != nil {
		return nil, &PageError{Page: n, Op: "parse", Err: err}
	}
	return ops, nil
}

// CacheSize returns the number of cached objects.
func (r *Reader) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// ClearCache drops cached objects and object streams.
func (r *Reader) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = make(map[int]core.Object)
	r.streams = make(map[int]*core.ObjectStream)
}
