// Package filters implements the PDF stream filters that can appear on
// page content streams.
//
//	data, err := filters.Decode("FlateDecode", raw, filters.DefaultParams())
//
// Supported: FlateDecode and LZWDecode (both with TIFF 2 and PNG
// predictors), ASCIIHexDecode, ASCII85Decode and RunLengthDecode. Image
// codecs such as DCTDecode or CCITTFaxDecode are rejected with
// [ErrUnsupportedFilter].
package filters
