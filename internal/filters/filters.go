package filters

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFilter is returned for filters that never occur in content
// streams (image codecs, encryption) or that are unknown.
var ErrUnsupportedFilter = errors.New("unsupported filter")

// Params holds the /DecodeParms entries the decoders understand.
type Params struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
	EarlyChange      int
}

// DefaultParams returns the values the PDF reference specifies for
// absent entries.
func DefaultParams() Params {
	return Params{
		Predictor:        1,
		Colors:           1,
		BitsPerComponent: 8,
		Columns:          1,
		EarlyChange:      1,
	}
}

// Decode applies the filter called name to data. Both full names and the
// inline-image abbreviations are accepted.
func Decode(name string, data []byte, p Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return FlateDecode(data, p)
	case "LZWDecode", "LZW":
		return LZWDecode(data, p)
	case "ASCIIHexDecode", "AHx":
		return ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return ASCII85Decode(data)
	case "RunLengthDecode", "RL":
		return RunLengthDecode(data)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, name)
}
