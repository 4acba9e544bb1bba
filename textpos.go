// Package textpos extracts positioned text from PDF files through a
// fluent API.
//
// Basic usage:
//
//	pages, err := textpos.Open("document.pdf").Items(ctx)
//	if err != nil {
//	    // handle error
//	}
//	for _, p := range pages {
//	    for _, item := range p.Items {
//	        fmt.Printf("%q at (%.2f, %.2f)\n", item.Text, item.X, item.Y)
//	    }
//	}
//
// With options:
//
//	pages, err := textpos.Open("report.pdf").
//	    PageRange(2, 5).
//	    Strict().
//	    Normalize().
//	    Workers(4).
//	    Items(ctx)
//
// Positions come from the text placement engine in package placement; the
// lower-level reader and contentstream packages are also available.
package textpos

import (
	"github.com/tsawler/textpos/placement"
	"github.com/tsawler/textpos/reader"
)

// PageItems holds the text items of one page. Box is the page's crop
// box [llx lly urx ury], nil when the page declares no usable box.
type PageItems struct {
	Page  int                  `json:"page"`
	Box   []float64            `json:"box,omitempty"`
	Items []placement.TextItem `json:"items"`
}

// Open returns an Extractor for the named file. The file is opened by the
// first operation that needs it.
//
// Example:
//
//	pages, err := textpos.Open("document.pdf").Items(ctx)
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader returns an Extractor over an open reader. The caller keeps
// ownership of r and must close it.
//
// Example:
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	pages, err := textpos.FromReader(r).Pages(1).Items(ctx)
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		reader:       r,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must panics if err is non-nil and returns val otherwise. It is meant for
// scripts and tests.
//
// Example:
//
//	count := textpos.Must(textpos.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
