package pages

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tsawler/textpos/core"
)

// ObjectResolver resolves indirect references. Resolve returns obj
// unchanged when it is not a core.Ref.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// ErrPageTreeCycle is returned when a /Kids entry leads back to a node
// that is already being visited.
var ErrPageTreeCycle = errors.New("page tree contains a cycle")

// maxDepth bounds page tree nesting for trees built without references.
const maxDepth = 256

// inheritable lists the page attributes a page takes from its ancestors
// when it does not set them itself.
var inheritable = []string{"MediaBox", "CropBox"}

// Catalog is the document catalog.
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog wraps the catalog dictionary.
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Type returns the /Type name, normally "Catalog".
func (c *Catalog) Type() string {
	name, _ := c.dict.GetName("Type")
	return string(name)
}

// Version returns the /Version override, or "" when absent.
func (c *Catalog) Version() string {
	name, _ := c.dict.GetName("Version")
	return string(name)
}

// Pages returns the root of the page tree.
func (c *Catalog) Pages() (core.Dict, error) {
	ref := c.dict.Get("Pages")
	if ref == nil {
		return nil, fmt.Errorf("catalog missing /Pages")
	}
	obj, err := c.resolver.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("resolve /Pages: %w", err)
	}
	root, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("/Pages is %s, not a dictionary", core.KindOf(obj))
	}
	return root, nil
}

// PageTree returns the page tree rooted at /Pages.
func (c *Catalog) PageTree() (*PageTree, error) {
	root, err := c.Pages()
	if err != nil {
		return nil, err
	}
	return NewPageTree(root, c.resolver), nil
}

// PageTree flattens the page tree into document order. It is not safe
// for concurrent use until Pages has returned once.
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page
}

// NewPageTree returns a tree rooted at root.
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Count returns the root's /Count. It is what the file claims; use
// len(Pages()) for the number of pages actually reachable.
func (t *PageTree) Count() (int, error) {
	count, ok := t.root.GetInt("Count")
	if !ok {
		return 0, fmt.Errorf("page tree has no integer /Count")
	}
	return int(count), nil
}

// Pages returns every page in document order.
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages != nil {
		return t.pages, nil
	}
	w := walker{resolver: t.resolver, visiting: make(map[core.Ref]bool)}
	if err := w.node(t.root, core.Dict{}, 0); err != nil {
		return nil, fmt.Errorf("page tree: %w", err)
	}
	if w.pages == nil {
		w.pages = []*Page{}
	}
	t.pages = w.pages
	return t.pages, nil
}

// GetPage returns the page at a 0-based index.
func (t *PageTree) GetPage(index int) (*Page, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(pages))
	}
	return pages[index], nil
}

type walker struct {
	resolver ObjectResolver
	visiting map[core.Ref]bool
	pages    []*Page
}

func (w *walker) node(node, inherited core.Dict, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxDepth)
	}

	typ, _ := node.GetName("Type")
	if typ == "" {
		// Some writers omit /Type; a node with /Kids is an interior node.
		typ = "Page"
		if node.Has("Kids") {
			typ = "Pages"
		}
	}

	switch typ {
	case "Page":
		w.pages = append(w.pages, &Page{
			dict:      node,
			inherited: inherited,
			resolver:  w.resolver,
			number:    len(w.pages) + 1,
		})
		return nil
	case "Pages":
	default:
		return fmt.Errorf("unexpected page tree node type /%s", typ)
	}

	// Attributes set here override those inherited from further up.
	next := make(core.Dict, len(inherited))
	for k, v := range inherited {
		next[k] = v
	}
	for _, key := range inheritable {
		if v := node.Get(key); v != nil {
			next[key] = v
		}
	}

	kidsObj, err := w.resolver.Resolve(node.Get("Kids"))
	if err != nil {
		return fmt.Errorf("resolve /Kids: %w", err)
	}
	kids, ok := kidsObj.(core.Array)
	if !ok {
		return fmt.Errorf("/Kids is %s, not an array", core.KindOf(kidsObj))
	}

	for i, kid := range kids {
		ref, isRef := kid.(core.Ref)
		if isRef {
			if w.visiting[ref] {
				return fmt.Errorf("%w: %s", ErrPageTreeCycle, ref)
			}
			w.visiting[ref] = true
		}

		obj, err := w.resolver.Resolve(kid)
		if err != nil {
			return fmt.Errorf("resolve kid %d: %w", i, err)
		}
		dict, ok := obj.(core.Dict)
		if !ok {
			return fmt.Errorf("kid %d is %s, not a dictionary", i, core.KindOf(obj))
		}
		if err := w.node(dict, next, depth+1); err != nil {
			return err
		}

		if isRef {
			delete(w.visiting, ref)
		}
	}
	return nil
}

// Page is one leaf of the page tree.
type Page struct {
	dict      core.Dict
	inherited core.Dict
	resolver  ObjectResolver
	number    int
}

// NewPage returns a page built from its dictionary and the attributes
// inherited from its ancestors. inherited may be nil.
func NewPage(dict, inherited core.Dict, resolver ObjectResolver) *Page {
	return &Page{dict: dict, inherited: inherited, resolver: resolver}
}

// Number is the 1-based position of the page in the document, or 0 for a
// page built with NewPage.
func (p *Page) Number() int {
	return p.number
}

// Dict returns the page dictionary.
func (p *Page) Dict() core.Dict {
	return p.dict
}

// attr looks key up on the page, then among inherited attributes, and
// resolves the result.
func (p *Page) attr(key string) (core.Object, error) {
	obj := p.dict.Get(key)
	if obj == nil && p.inherited != nil {
		obj = p.inherited.Get(key)
	}
	if obj == nil {
		return nil, nil
	}
	return p.resolver.Resolve(obj)
}

// MediaBox returns [llx lly urx ury].
func (p *Page) MediaBox() ([]float64, error) {
	return p.box("MediaBox")
}

// CropBox returns the crop box, which defaults to the media box.
func (p *Page) CropBox() ([]float64, error) {
	box, err := p.box("CropBox")
	if err != nil {
		return p.MediaBox()
	}
	return box, nil
}

func (p *Page) box(name string) ([]float64, error) {
	obj, err := p.attr(name)
	if err != nil {
		return nil, fmt.Errorf("resolve /%s: %w", name, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("/%s not found", name)
	}
	arr, ok := obj.(core.Array)
	if !ok || len(arr) != 4 {
		return nil, fmt.Errorf("/%s is not a four-element array", name)
	}
	box := make([]float64, 4)
	for i, elem := range arr {
		v, err := core.AsNumber(elem)
		if err != nil {
			return nil, fmt.Errorf("/%s element %d: %w", name, i, err)
		}
		box[i] = v
	}
	return box, nil
}

// Width returns the media box width.
func (p *Page) Width() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[2] - box[0], nil
}

// Height returns the media box height.
func (p *Page) Height() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[3] - box[1], nil
}

// Contents returns the page's content streams in order. A page without
// /Contents has none. Null entries in a /Contents array are skipped.
func (p *Page) Contents() ([]*core.Stream, error) {
	obj, err := p.resolver.Resolve(p.dict.Get("Contents"))
	if err != nil {
		return nil, fmt.Errorf("resolve /Contents: %w", err)
	}

	switch v := obj.(type) {
	case nil, core.Null:
		return nil, nil
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			resolved, err := p.resolver.Resolve(elem)
			if err != nil {
				return nil, fmt.Errorf("resolve /Contents[%d]: %w", i, err)
			}
			switch s := resolved.(type) {
			case *core.Stream:
				streams = append(streams, s)
			case nil, core.Null:
			default:
				return nil, fmt.Errorf("/Contents[%d] is %s, not a stream", i, core.KindOf(resolved))
			}
		}
		return streams, nil
	}
	return nil, fmt.Errorf("/Contents is %s, not a stream or array", core.KindOf(obj))
}

// ContentData decodes the content streams and joins them with a newline,
// so a token split across two streams stays split.
func (p *Page) ContentData() ([]byte, error) {
	streams, err := p.Contents()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for i, s := range streams {
		data, err := s.DecodeWith(refResolver{p.resolver})
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// refResolver lets an ObjectResolver resolve stream filter parameters.
type refResolver struct{ ObjectResolver }

func (r refResolver) ResolveReference(ref core.Ref) (core.Object, error) {
	return r.Resolve(ref)
}
