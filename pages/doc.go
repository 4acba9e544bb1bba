// Package pages walks the page tree and reads page attributes.
//
// [PageTree] flattens the /Pages hierarchy into document order:
//
//	tree := pages.NewPageTree(root, resolver)
//	all, err := tree.Pages()
//	data, err := all[0].ContentData()
//
// The inheritable page boxes (/MediaBox and /CropBox) are collected along the path from the root, nearer ancestors winning.
// A /Kids entry that refers back to a node on the current path fails with
// [ErrPageTreeCycle].
//
// [Page.ContentData] decodes every content stream of a page and joins them
// with a newline, since a stream boundary counts as white space.
//
// The package resolves indirect references through [ObjectResolver] and
// does not depend on the file reader.
package pages
