// Package placement turns a page's content stream operations into
// positioned text items.
//
// The engine tracks a translation-only text position and a font size:
//
//	BT        x, y = 0, 0 (font size kept)
//	Tf        font size = operand 1
//	Td, TD    x += tx; y += ty
//	Tm        x, y = e, f (scale and rotation ignored)
//	Tj        emit one item
//	TJ        emit one item holding every string element, concatenated
//
// Every other operator is ignored. Operators with missing or mistyped
// operands are skipped; Extract always returns, and callers that want to
// know what was skipped install an Observer with WithObserver.
//
// Text positions are not advanced by glyph widths, and Td is applied
// relative to the current position rather than to the start of the line.
// Items from a stream that uses Tm for rotation or scaling report only the
// matrix's translation.
//
// String bytes are decoded as UTF-8. The default Lossy policy replaces
// invalid sequences with U+FFFD; Strict drops the whole fragment instead.
// Both show operators use the same policy.
package placement
