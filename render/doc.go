// Package render writes extracted text items in one of several formats.
//
// [Text] reproduces the classic listing, one "Found:" line per item under
// a "Processing Page N" heading. [JSON] writes one object per page,
// [Table] an aligned text table and [HTML] a standalone page with every
// item absolutely positioned at its coordinates. [Operations] lists a
// page's content stream operations before its items are shown.
package render
