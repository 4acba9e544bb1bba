package filters

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// FlateDecode inflates zlib data and undoes the predictor named in p.
// A stream that is truncated after some output is accepted; content
// streams in the wild are often cut short by a byte or two.
func FlateDecode(data []byte, p Params) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib header: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil && !(errors.Is(err, io.ErrUnexpectedEOF) && len(out) > 0) {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return unpredict(out, p)
}

// unpredict reverses a TIFF or PNG predictor.
func unpredict(data []byte, p Params) ([]byte, error) {
	switch {
	case p.Predictor <= 1:
		return data, nil
	case p.Predictor == 2:
		return tiffUnpredict(data, p)
	case p.Predictor >= 10 && p.Predictor <= 15:
		return pngUnpredict(data, p)
	}
	return nil, fmt.Errorf("unsupported predictor %d", p.Predictor)
}

func tiffUnpredict(data []byte, p Params) ([]byte, error) {
	if p.BitsPerComponent != 8 {
		return nil, fmt.Errorf("TIFF predictor: %d bits per component not supported", p.BitsPerComponent)
	}
	stride := p.Columns * p.Colors
	if stride <= 0 || len(data)%stride != 0 {
		return nil, fmt.Errorf("TIFF predictor: %d bytes is not a whole number of %d-byte rows", len(data), stride)
	}
	out := append([]byte(nil), data...)
	for row := 0; row < len(out); row += stride {
		for i := row + p.Colors; i < row+stride; i++ {
			out[i] += out[i-p.Colors]
		}
	}
	return out, nil
}

// pngUnpredict undoes PNG filtering. Every row carries its own filter
// type byte, so predictors 10 through 15 are handled identically.
func pngUnpredict(data []byte, p Params) ([]byte, error) {
	bpp := (p.Colors*p.BitsPerComponent + 7) / 8
	if bpp < 1 {
		bpp = 1
	}
	stride := (p.Columns*p.Colors*p.BitsPerComponent + 7) / 8
	if stride <= 0 {
		return nil, fmt.Errorf("PNG predictor: invalid row width")
	}
	if len(data)%(stride+1) != 0 {
		return nil, fmt.Errorf("PNG predictor: %d bytes is not a whole number of %d-byte rows", len(data), stride+1)
	}

	rows := len(data) / (stride + 1)
	out := make([]byte, rows*stride)
	prev := make([]byte, stride)
	for r := 0; r < rows; r++ {
		in := data[r*(stride+1):]
		kind, src := in[0], in[1:stride+1]
		cur := out[r*stride : (r+1)*stride]
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch kind {
			case 0:
				cur[i] = src[i]
			case 1:
				cur[i] = src[i] + left
			case 2:
				cur[i] = src[i] + up
			case 3:
				cur[i] = src[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = src[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("PNG predictor: unknown row filter %d in row %d", kind, r)
			}
		}
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
