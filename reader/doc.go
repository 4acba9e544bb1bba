// Package reader opens PDF files and turns their pages into content
// stream operations.
//
// Use [Open] for a file on disk or [NewReader] for any io.ReadSeeker:
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	ops, err := r.PageOperations(1)
//
// Pages are numbered from 1. Failures on a single page are reported as
// [*PageError], which wraps the cause ([ErrPageRange], [ErrNoCatalog],
// a filter error or a content stream syntax error).
//
// Cross-reference tables, cross-reference streams, hybrid files and
// incremental updates are all read. Objects are cached, and a Reader may
// be used from several goroutines at once. Encrypted files are refused
// with [ErrEncrypted].
package reader
