package htmlpatch

import (
	"strings"
	"testing"

	"lessonkit/internal/content"
)

const testSentinel = "BEGINNER REFERENCE SECTIONS"

// TestCheatColumns verifies the column count is 3 when any row has a third
// field and 2 otherwise.
func TestCheatColumns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		rows [][]string
		want int
	}{
		{"empty", nil, 2},
		{"two", [][]string{{"a", "b"}, {"c", "d"}}, 2},
		{"three first", [][]string{{"a", "b", "c"}, {"d", "e"}}, 3},
		{"three later", [][]string{{"a", "b"}, {"d", "e", "f"}}, 3},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CheatColumns(tc.rows); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

// TestRenderSection_TwoColumns verifies a two-field cheat sheet renders two
// header cells and no "When" column.
func TestRenderSection_TwoColumns(t *testing.T) {
	t.Parallel()

	l := content.Lesson{
		Page:       "learn.html",
		Title:      "Basics",
		CheatSheet: [][]string{{"ws.send(x)", "Send a message"}},
	}
	out := RenderSection(l, testSentinel)

	if n := strings.Count(out, "<th "); n != 2 {
		t.Fatalf("header cells: got %d want 2", n)
	}
	if strings.Contains(out, ">When</th>") {
		t.Fatalf("unexpected When column:\n%s", out)
	}
	if !strings.Contains(out, "<code>ws.send(x)</code>") || !strings.Contains(out, "Send a message") {
		t.Fatalf("row content missing:\n%s", out)
	}
}

// TestRenderSection_ThreeColumns verifies a single three-field row switches
// the table to three columns, and short rows get an empty third cell.
func TestRenderSection_ThreeColumns(t *testing.T) {
	t.Parallel()

	l := content.Lesson{
		Page:  "learn2.html",
		Title: "Rooms",
		CheatSheet: [][]string{
			{"join(room)", "Join a room", "On connect"},
			{"leave(room)", "Leave a room"},
		},
	}
	out := RenderSection(l, testSentinel)

	if n := strings.Count(out, "<th "); n != 3 {
		t.Fatalf("header cells: got %d want 3", n)
	}
	if n := strings.Count(out, "<td "); n != 6 {
		t.Fatalf("data cells: got %d want 6", n)
	}
	if !strings.Contains(out, ">On connect</td>") {
		t.Fatalf("third field missing:\n%s", out)
	}
}

// TestRenderSection_OmitsEmptyBlocks verifies each block appears only when the
// lesson has data for it, while the wrapper and sentinel are always present.
func TestRenderSection_OmitsEmptyBlocks(t *testing.T) {
	t.Parallel()

	full := content.Lesson{
		Page:       "learn.html",
		Title:      "Basics",
		CheatSheet: [][]string{{"a", "b"}},
		Takeaways:  []string{"one", "two"},
		Code:       &content.Code{Source: "const ws = 1;"},
	}

	cases := []struct {
		name   string
		lesson content.Lesson
		want   map[string]bool
	}{
		{"full", full, map[string]bool{"Quick Cheat Sheet": true, "Key Takeaways": true, "Production Pattern": true}},
		{"no cheat", func() content.Lesson { l := full; l.CheatSheet = nil; return l }(),
			map[string]bool{"Quick Cheat Sheet": false, "Key Takeaways": true, "Production Pattern": true}},
		{"no takeaways", func() content.Lesson { l := full; l.Takeaways = nil; return l }(),
			map[string]bool{"Quick Cheat Sheet": true, "Key Takeaways": false, "Production Pattern": true}},
		{"no code", func() content.Lesson { l := full; l.Code = nil; return l }(),
			map[string]bool{"Quick Cheat Sheet": true, "Key Takeaways": true, "Production Pattern": false}},
		{"empty", content.Lesson{Page: "x.html", Title: "X"},
			map[string]bool{"Quick Cheat Sheet": false, "Key Takeaways": false, "Production Pattern": false}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := RenderSection(tc.lesson, testSentinel)
			for marker, want := range tc.want {
				if got := strings.Contains(out, marker); got != want {
					t.Fatalf("%s present=%v want %v", marker, got, want)
				}
			}
			if n := strings.Count(out, testSentinel); n != 1 {
				t.Fatalf("sentinel count: got %d want 1", n)
			}
			if !strings.HasSuffix(out, "  </div>\n") {
				t.Fatalf("wrapper not closed: %q", out[len(out)-20:])
			}
		})
	}
}

// TestRenderSection_TakeawaysAndCode verifies one line per takeaway and the
// default code title.
func TestRenderSection_TakeawaysAndCode(t *testing.T) {
	t.Parallel()

	l := content.Lesson{
		Page:      "learn.html",
		Title:     "Basics",
		Takeaways: []string{"first", "second", "third"},
		Code:      &content.Code{Source: "server.listen(8080);"},
	}
	out := RenderSection(l, testSentinel)

	if n := strings.Count(out, "<span>"); n != 3 {
		t.Fatalf("takeaway lines: got %d want 3", n)
	}
	if !strings.Contains(out, "💻 Basics — production pattern</div>") {
		t.Fatalf("default code title missing:\n%s", out)
	}
	if !strings.Contains(out, "<code>server.listen(8080);</code>") {
		t.Fatalf("code missing:\n%s", out)
	}
}
