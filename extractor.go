package textpos

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tsawler/textpos/contentstream"
	"github.com/tsawler/textpos/placement"
	"github.com/tsawler/textpos/reader"
)

// ErrNoFile is returned when an Extractor has neither a file name nor a
// reader.
var ErrNoFile = errors.New("no file specified")

// Extractor configures and runs extraction. Every configuration method
// returns a new Extractor, so a partly configured chain can be reused.
type Extractor struct {
	filename string
	reader   *reader.Reader

	ownsReader   bool
	readerOpened bool

	options extractOptions
}

func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:     e.filename,
		reader:       e.reader,
		ownsReader:   e.ownsReader,
		readerOpened: e.readerOpened,
		options:      e.options.clone(),
	}
}

func (e *Extractor) ensureReader() error {
	if e.readerOpened {
		return nil
	}
	if e.filename == "" {
		return ErrNoFile
	}
	r, err := reader.Open(e.filename)
	if err != nil {
		return err
	}
	e.reader = r
	e.ownsReader = true
	e.readerOpened = true
	return nil
}

// Close releases a file opened by the Extractor. Readers passed to
// FromReader are left open. It is safe to call Close more than once.
func (e *Extractor) Close() error {
	if !e.ownsReader || e.reader == nil {
		return nil
	}
	err := e.reader.Close()
	e.reader = nil
	e.ownsReader = false
	e.readerOpened = false
	return err
}

// Pages restricts extraction to the given 1-based page numbers. Calls
// accumulate.
//
// Example:
//
//	pages, err := textpos.Open("doc.pdf").Pages(1, 3).Items(ctx)
func (e *Extractor) Pages(pages ...int) *Extractor {
	next := e.clone()
	next.options.pages = append(next.options.pages, pages...)
	return next
}

// PageRange adds pages start through end, inclusive.
func (e *Extractor) PageRange(start, end int) *Extractor {
	next := e.clone()
	for i := start; i <= end; i++ {
		next.options.pages = append(next.options.pages, i)
	}
	return next
}

// Strict makes invalid UTF-8 in a shown string drop the whole fragment
// instead of replacing the bad bytes with U+FFFD.
func (e *Extractor) Strict() *Extractor {
	next := e.clone()
	next.options.strict = true
	return next
}

// Normalize applies Unicode NFC to item text.
func (e *Extractor) Normalize() *Extractor {
	next := e.clone()
	next.options.normalize = true
	return next
}

// Workers bounds the number of pages processed at once. n < 1 removes the
// bound.
func (e *Extractor) Workers(n int) *Extractor {
	next := e.clone()
	next.options.workers = n
	return next
}

// Observe installs fn to hear about every operation the placement engine
// skipped. Calls are serialised.
//
// Example:
//
//	pages, err := textpos.Open("doc.pdf").
//	    Observe(func(s placement.Skip) { log.Println(s) }).
//	    Items(ctx)
func (e *Extractor) Observe(fn placement.Observer) *Extractor {
	next := e.clone()
	next.options.observer = fn
	return next
}

// PageCount returns the number of pages in the document. It leaves the
// file open for further operations.
func (e *Extractor) PageCount() (int, error) {
	if err := e.ensureReader(); err != nil {
		return 0, err
	}
	return e.reader.PageCount()
}

// Operations returns the parsed content stream of one page. It is a
// terminal operation and closes a file opened by the Extractor.
func (e *Extractor) Operations(ctx context.Context, page int) ([]contentstream.Operation, error) {
	if err := e.ensureReader(); err != nil {
		return nil, err
	}
	defer e.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.reader.PageOperations(page)
}

// Items extracts the text items of every selected page, in page order. A
// page that cannot be read fails the whole call with a *reader.PageError;
// operations the engine cannot apply are skipped and reported to the
// observer. Items is a terminal operation and closes a file opened by the
// Extractor.
func (e *Extractor) Items(ctx context.Context) ([]PageItems, error) {
	if err := e.ensureReader(); err != nil {
		return nil, err
	}
	defer e.Close()

	numbers, err := e.resolvePages()
	if err != nil {
		return nil, err
	}

	input := make([]placement.Page, len(numbers))
	boxes := make([][]float64, len(numbers))
	for i, n := range numbers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ops, err := e.reader.PageOperations(n)
		if err != nil {
			return nil, err
		}
		input[i] = placement.Page{Number: n, Operations: ops}
		if page, err := e.reader.Page(n); err == nil {
			// A page without boxes still has text.
			boxes[i], _ = page.CropBox()
		}
	}

	results, err := placement.ExtractPages(ctx, input, e.options.workers, e.options.placementOptions()...)
	if err != nil {
		return nil, err
	}

	out := make([]PageItems, len(numbers))
	for i, n := range numbers {
		out[i] = PageItems{Page: n, Box: boxes[i], Items: results[i]}
	}
	return out, nil
}

// resolvePages validates the selected pages and returns them sorted and
// without duplicates. No selection means every page.
func (e *Extractor) resolvePages() ([]int, error) {
	count, err := e.reader.PageCount()
	if err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}

	if len(e.options.pages) == 0 {
		all := make([]int, count)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}

	seen := make(map[int]bool)
	var numbers []int
	for _, p := range e.options.pages {
		if p < 1 || p > count {
			return nil, &reader.PageError{
				Page: p,
				Op:   "page",
				Err:  fmt.Errorf("%w: document has %d pages", reader.ErrPageRange, count),
			}
		}
		if !seen[p] {
			seen[p] = true
			numbers = append(numbers, p)
		}
	}
	sort.Ints(numbers)
	return numbers, nil
}
