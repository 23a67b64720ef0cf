// Package htmlpatch holds the pure text transformations applied to the
// tutorial pages: locating insertion points, injecting lesson sections,
// inserting navigation cards and rewriting hard-coded WebSocket endpoints.
//
// Documents are treated as opaque text. Nothing here parses HTML or touches
// the filesystem; every function maps (document, inputs) to
// (new document, typed result).
package htmlpatch

import "strings"

// Default anchors for lesson sections, in priority order: the class-based nav
// bar, the inline-styled nav bar used by older pages, then end of body.
var DefaultAnchors = []string{
	`<div class="nav-bar">`,
	`<div style="display:flex;gap:10px;justify-content:center;padding:24px`,
	`</body>`,
}

// InsertionPoint is where new content goes in a document.
type InsertionPoint struct {
	Found  bool
	Offset int    // byte offset of Anchor in the document
	Anchor string // the anchor that matched
}

// FindInsertionPoint returns the position of the first anchor (in slice order,
// not document order) present in doc.
func FindInsertionPoint(doc string, anchors []string) InsertionPoint {
	for _, a := range anchors {
		if a == "" {
			continue
		}
		if i := strings.Index(doc, a); i >= 0 {
			return InsertionPoint{Found: true, Offset: i, Anchor: a}
		}
	}
	return InsertionPoint{}
}

// InsertAt splices fragment into doc at p. If p was not found doc is returned
// unchanged.
func InsertAt(doc string, p InsertionPoint, fragment string) string {
	if !p.Found || p.Offset < 0 || p.Offset > len(doc) {
		return doc
	}
	var b strings.Builder
	b.Grow(len(doc) + len(fragment))
	b.WriteString(doc[:p.Offset])
	b.WriteString(fragment)
	b.WriteString(doc[p.Offset:])
	return b.String()
}
