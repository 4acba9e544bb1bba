package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/textpos"
)

// Format selects an output format.
type Format int

const (
	Text Format = iota
	JSON
	Table
	HTML
)

var formatNames = []string{"text", "json", "table", "html"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// ErrUnknownFormat is returned by ParseFormat and Write for an
// unrecognised format.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat maps a format name, in any case, to its Format.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if strings.EqualFold(name, n) {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, name, strings.Join(formatNames, ", "))
}

// Write renders pages to w in format f.
func Write(w io.Writer, f Format, pages []textpos.PageItems) error {
	switch f {
	case Text:
		return WriteText(w, pages)
	case JSON:
		return WriteJSON(w, pages)
	case Table:
		return WriteTable(w, pages)
	case HTML:
		return WriteHTML(w, pages)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}
