package htmlpatch

import (
	"strings"

	"github.com/valyala/fasttemplate"

	"lessonkit/internal/content"
)

const (
	thStyle      = `padding:10px 14px;background:#1a2235;color:#94a3b8;font-weight:600;font-size:.75rem;text-transform:uppercase;letter-spacing:.4px;border-bottom:1px solid #1f2d45;text-align:left`
	tdCodeStyle  = `padding:10px 14px;border-bottom:1px solid #1f2d45;color:#7dd3fc;font-family:'Fira Code',monospace;font-size:.78rem`
	tdDescStyle  = `padding:10px 14px;border-bottom:1px solid #1f2d45;color:#e2e8f0`
	tdWhenStyle  = `padding:10px 14px;border-bottom:1px solid #1f2d45;color:#94a3b8;font-size:.78rem`
	panelStyle   = `background:#111827;border:1px solid #1f2d45;border-radius:14px;overflow:hidden;margin-bottom:24px`
	headingStyle = `padding:14px 18px;border-bottom:1px solid #1f2d45;font-weight:700;font-size:.95rem`
)

var (
	sectionOpenTpl = fasttemplate.New("\n\n  <!-- ═══ {{sentinel}} ═══ -->\n"+
		"  <div style=\"max-width:880px;margin:0 auto;padding:0 24px 32px\">\n", "{{", "}}")

	cheatOpenTpl = fasttemplate.New("    <!-- 📋 Quick Cheat Sheet -->\n"+
		"    <div style=\"{{panel}}\">\n"+
		"      <div style=\"{{heading}};color:#e2e8f0\">📋 Quick Cheat Sheet — {{title}}</div>\n"+
		"      <div style=\"overflow-x:auto\">\n"+
		"        <table style=\"width:100%;border-collapse:collapse;font-size:.83rem\">\n", "{{", "}}")

	takeawayTpl = fasttemplate.New("      <div style=\"display:flex;gap:10px;align-items:flex-start;margin-bottom:10px;font-size:.86rem;color:#cbd5e1;line-height:1.65\">"+
		"<span style=\"color:#38bdf8;flex-shrink:0\">▸</span><span>{{text}}</span></div>\n", "{{", "}}")

	codeTpl = fasttemplate.New("    <!-- 💻 Production Pattern -->\n"+
		"    <div style=\"{{panel}}\">\n"+
		"      <div style=\"{{heading}};color:#86efac\">💻 {{title}}</div>\n"+
		"      <pre style=\"margin:0;padding:16px 18px;font-family:'Fira Code',monospace;font-size:.78rem;color:#94a3b8;overflow-x:auto;line-height:1.8;background:#0d1117\"><code>{{code}}</code></pre>\n"+
		"    </div>\n", "{{", "}}")
)

// RenderSection renders the reference sections for one lesson: cheat sheet,
// takeaways and code example, each only when the lesson has data for it.
// The opening comment carries sentinel exactly once.
//
// Lesson strings are authoring HTML and are emitted verbatim.
func RenderSection(l content.Lesson, sentinel string) string {
	var b strings.Builder

	b.WriteString(sectionOpenTpl.ExecuteString(map[string]interface{}{"sentinel": sentinel}))

	if len(l.CheatSheet) > 0 {
		renderCheatSheet(&b, l)
	}

	if len(l.Takeaways) > 0 {
		b.WriteString("    <!-- 💡 Key Takeaways -->\n")
		b.WriteString(`    <div style="background:rgba(56,189,248,.05);border:1px solid rgba(56,189,248,.18);border-radius:14px;padding:18px 20px;margin-bottom:24px">` + "\n")
		b.WriteString(`      <div style="font-weight:700;font-size:.95rem;color:#38bdf8;margin-bottom:12px">💡 Key Takeaways for Beginners</div>` + "\n")
		for _, t := range l.Takeaways {
			b.WriteString(takeawayTpl.ExecuteString(map[string]interface{}{"text": t}))
		}
		b.WriteString("    </div>\n\n")
	}

	if l.HasCode() {
		b.WriteString(codeTpl.ExecuteString(map[string]interface{}{
			"panel":   panelStyle,
			"heading": headingStyle,
			"title":   l.CodeTitle(),
			"code":    l.Code.Source,
		}))
	}

	b.WriteString("  </div>\n")
	return b.String()
}

// CheatColumns returns 3 when any row carries a "when" field, otherwise 2.
func CheatColumns(rows [][]string) int {
	for _, r := range rows {
		if len(r) > 2 {
			return 3
		}
	}
	return 2
}

func renderCheatSheet(b *strings.Builder, l content.Lesson) {
	cols := CheatColumns(l.CheatSheet)

	b.WriteString(cheatOpenTpl.ExecuteString(map[string]interface{}{
		"panel":   panelStyle,
		"heading": headingStyle,
		"title":   l.Title,
	}))

	b.WriteString("          <thead><tr>")
	for _, h := range []string{"Code", "What it does", "When"}[:cols] {
		b.WriteString(`<th style="` + thStyle + `">` + h + `</th>`)
	}
	b.WriteString("</tr></thead>\n")

	b.WriteString("          <tbody>\n")
	for _, row := range l.CheatSheet {
		b.WriteString("            <tr>")
		b.WriteString(`<td style="` + tdCodeStyle + `"><code>` + cell(row, 0) + `</code></td>`)
		b.WriteString(`<td style="` + tdDescStyle + `">` + cell(row, 1) + `</td>`)
		if cols == 3 {
			b.WriteString(`<td style="` + tdWhenStyle + `">` + cell(row, 2) + `</td>`)
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("          </tbody>\n")
	b.WriteString("        </table>\n")
	b.WriteString("      </div>\n")
	b.WriteString("    </div>\n\n")
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
