package filters

import (
	"bytes"
	"compress/lzw"
	"fmt"
	"io"

	tifflzw "golang.org/x/image/tiff/lzw"
)

// LZWDecode expands PDF LZW data. With the default /EarlyChange 1 the code
// width grows one code early, as in TIFF; /EarlyChange 0 is the GIF-style
// schedule of compress/lzw.
func LZWDecode(data []byte, p Params) ([]byte, error) {
	var r io.ReadCloser
	if p.EarlyChange == 0 {
		r = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	} else {
		r = tifflzw.NewReader(bytes.NewReader(data), tifflzw.MSB, 8)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("LZWDecode: %w", err)
	}
	return unpredict(out, p)
}
