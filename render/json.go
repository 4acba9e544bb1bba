package render

import (
	"encoding/json"
	"io"

	"github.com/tsawler/textpos"
	"github.com/tsawler/textpos/placement"
)

// WriteJSON writes pages as an indented JSON array. A page without items
// has an empty "items" array rather than null.
func WriteJSON(w io.Writer, pages []textpos.PageItems) error {
	out := make([]textpos.PageItems, len(pages))
	for i, p := range pages {
		out[i] = p
		if out[i].Items == nil {
			out[i].Items = []placement.TextItem{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
