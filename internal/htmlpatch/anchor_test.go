package htmlpatch

import "testing"

// TestFindInsertionPoint_PriorityIsSliceOrder verifies that anchor priority
// follows the slice, not where the anchors occur in the document.
func TestFindInsertionPoint_PriorityIsSliceOrder(t *testing.T) {
	t.Parallel()

	doc := `<body><p>x</p><div class="nav-bar">nav</div></body>`
	p := FindInsertionPoint(doc, []string{`<div class="nav-bar">`, `<p>`})
	if !p.Found {
		t.Fatalf("expected an insertion point")
	}
	if p.Anchor != `<div class="nav-bar">` {
		t.Fatalf("anchor: got %q", p.Anchor)
	}
	if doc[p.Offset:p.Offset+len(p.Anchor)] != p.Anchor {
		t.Fatalf("offset %d does not point at anchor", p.Offset)
	}
}

// TestFindInsertionPoint_FallsBack verifies that later anchors are tried when
// earlier ones are absent, and that empty anchors are ignored.
func TestFindInsertionPoint_FallsBack(t *testing.T) {
	t.Parallel()

	doc := "<html><body>hi</body></html>"
	p := FindInsertionPoint(doc, append([]string{""}, DefaultAnchors...))
	if !p.Found || p.Anchor != "</body>" {
		t.Fatalf("got %+v", p)
	}
	if p.Offset != 14 {
		t.Fatalf("offset: got %d want 14", p.Offset)
	}
}

// TestFindInsertionPoint_NotFound verifies the zero value when nothing matches.
func TestFindInsertionPoint_NotFound(t *testing.T) {
	t.Parallel()

	p := FindInsertionPoint("<p>no anchors</p>", DefaultAnchors)
	if p.Found {
		t.Fatalf("expected not found, got %+v", p)
	}
}

// TestInsertAt verifies splicing before the anchor, and that an unfound
// point leaves the document untouched.
func TestInsertAt(t *testing.T) {
	t.Parallel()

	doc := "abc</body>"
	p := FindInsertionPoint(doc, []string{"</body>"})
	if got := InsertAt(doc, p, "X\n"); got != "abcX\n</body>" {
		t.Fatalf("got %q", got)
	}
	if got := InsertAt(doc, InsertionPoint{}, "X"); got != doc {
		t.Fatalf("unfound point changed doc: %q", got)
	}
}
