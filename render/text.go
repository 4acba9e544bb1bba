package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tsawler/textpos"
	"github.com/tsawler/textpos/placement"
)

// WriteText writes each page as
//
//	Processing Page 1
//	  Found: "Hello" at (100.00, 700.00) size 12.00
func WriteText(w io.Writer, pages []textpos.PageItems) error {
	bw := bufio.NewWriter(w)
	for _, p := range pages {
		WritePageHeader(bw, p.Page)
		writeItems(bw, p.Items)
	}
	return bw.Flush()
}

// WritePageHeader writes the "Processing Page N" line.
func WritePageHeader(w io.Writer, page int) {
	fmt.Fprintf(w, "Processing Page %d\n", page)
}

// WriteItems writes the "Found:" lines of one page.
func WriteItems(w io.Writer, items []placement.TextItem) error {
	bw := bufio.NewWriter(w)
	writeItems(bw, items)
	return bw.Flush()
}

func writeItems(w io.Writer, items []placement.TextItem) {
	for _, item := range items {
		fmt.Fprintf(w, "  Found: %q at (%.2f, %.2f) size %.2f\n", item.Text, item.X, item.Y, item.FontSize)
	}
}
