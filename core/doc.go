// Package core holds the PDF object model and the low-level file syntax:
// lexer, object parser, cross-reference tables and object streams.
//
// # Objects
//
// [Object] is a closed sum type. Its variants are
//
//   - [Null] and [Bool]
//   - [Int] and [Real], the two numeric kinds
//   - [ByteString], the raw bytes of a literal or hexadecimal string
//   - [Name], [Array] and [Dict]
//   - [Ref], an indirect reference
//   - [*Stream], a dictionary with encoded data (file level only)
//
// Use a type switch to narrow an Object, or the coercion helpers
// [AsNumber], [AsByteString] and [AsArray]. The helpers never convert
// between kinds; a mismatch is reported as a [*TypeError] that unwraps to
// [ErrNotANumber], [ErrNotAByteString] or [ErrNotAnArray].
//
// # File syntax
//
// [Parser] reads objects and indirect object definitions from an
// io.Reader. [XRefParser] locates and reads cross-reference data, both
// classic tables and PDF 1.5 cross-reference streams, and [ObjectStream]
// unpacks objects compressed into /ObjStm streams. [Stream.Decode] runs
// a stream's filter chain.
package core
