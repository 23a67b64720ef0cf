package htmlpatch

import (
	"strings"
	"testing"

	"lessonkit/internal/content"
)

func sampleLesson() content.Lesson {
	return content.Lesson{
		Page:       "learn.html",
		Title:      "Basics",
		CheatSheet: [][]string{{"new WebSocket(url)", "Open a connection", "Client start"}},
		Takeaways:  []string{"Connections are long-lived."},
	}
}

// TestInject_BeforeNavBar verifies the section lands immediately before the
// nav bar and the rest of the document is preserved byte for byte.
func TestInject_BeforeNavBar(t *testing.T) {
	t.Parallel()

	head := "<html><body>\n<main>lesson</main>\n"
	tail := `<div class="nav-bar"><a href="learn2.html">Next</a></div>` + "\n</body></html>"
	doc := head + tail

	out, res := Inject(doc, sampleLesson(), testSentinel, DefaultAnchors)
	if res.Status != Injected {
		t.Fatalf("status: got %v", res.Status)
	}
	if res.Point.Anchor != DefaultAnchors[0] {
		t.Fatalf("anchor: got %q", res.Point.Anchor)
	}
	if !strings.HasPrefix(out, head) || !strings.HasSuffix(out, tail) {
		t.Fatalf("surrounding text changed:\n%s", out)
	}
	want := head + RenderSection(sampleLesson(), testSentinel) + "\n" + tail
	if out != want {
		t.Fatalf("unexpected output:\nwant=%q\ngot=%q", want, out)
	}
}

// TestInject_Idempotent verifies that a second pass sees the sentinel and
// leaves the document unchanged, so the sentinel occurs exactly once.
func TestInject_Idempotent(t *testing.T) {
	t.Parallel()

	doc := "<html><body><p>x</p></body></html>"
	once, res := Inject(doc, sampleLesson(), testSentinel, DefaultAnchors)
	if res.Status != Injected {
		t.Fatalf("first pass: got %v", res.Status)
	}
	twice, res := Inject(once, sampleLesson(), testSentinel, DefaultAnchors)
	if res.Status != AlreadyEnhanced {
		t.Fatalf("second pass: got %v", res.Status)
	}
	if twice != once {
		t.Fatalf("second pass changed the document")
	}
	if n := strings.Count(twice, testSentinel); n != 1 {
		t.Fatalf("sentinel count: got %d want 1", n)
	}
}

// TestInject_NoAnchor verifies a document without any anchor is returned as is.
func TestInject_NoAnchor(t *testing.T) {
	t.Parallel()

	doc := "<p>fragment without body</p>"
	out, res := Inject(doc, sampleLesson(), testSentinel, DefaultAnchors)
	if res.Status != NoAnchor {
		t.Fatalf("status: got %v", res.Status)
	}
	if out != doc {
		t.Fatalf("document changed: %q", out)
	}
}

// TestInjectStatus_String verifies the labels used in logs and reports.
func TestInjectStatus_String(t *testing.T) {
	t.Parallel()

	for s, want := range map[InjectStatus]string{
		Injected:        "injected",
		AlreadyEnhanced: "already-enhanced",
		NoAnchor:        "no-anchor",
		InjectStatus(0): "unknown",
	} {
		if got := s.String(); got != want {
			t.Fatalf("%d: got %q want %q", int(s), got, want)
		}
	}
}
