// Package inspect reads tutorial pages back with goquery and reports what the
// patchers left in them.
package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Options tunes Audit.
type Options struct {
	// Sentinel is the text of the comment that opens an injected section.
	Sentinel string
	// HelperFile is the script src that provides the endpoint helper.
	HelperFile string
	// Host is the hard-coded endpoint host counted in LiteralURLs.
	Host string
}

// Report summarizes one page.
type Report struct {
	Enhanced     bool
	CheatColumns int
	CheatRows    int
	Takeaways    int
	HasCode      bool
	HelperScript bool
	Cards        int
	LiteralURLs  int
}

// Audit parses page and fills a Report.
func Audit(page string, opts Options) (Report, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Report{}, fmt.Errorf("parse html: %w", err)
	}

	var rep Report
	if opts.HelperFile != "" {
		rep.HelperScript = doc.Find(fmt.Sprintf(`script[src=%q]`, opts.HelperFile)).Length() > 0
	}
	rep.Cards = doc.Find("div.card").Length()
	if opts.Host != "" {
		rep.LiteralURLs = strings.Count(page, "ws://"+opts.Host+":")
	}

	wrapper := sectionAfter(doc, opts.Sentinel)
	if wrapper == nil {
		return rep, nil
	}
	rep.Enhanced = true

	sec := goquery.NewDocumentFromNode(wrapper).Selection
	if table := sec.Find("table").First(); table.Length() > 0 {
		rep.CheatColumns = table.Find("thead th").Length()
		rep.CheatRows = table.Find("tbody tr").Length()
	}
	sec.Find("div").Each(func(_ int, d *goquery.Selection) {
		if strings.TrimSpace(d.ChildrenFiltered("span").First().Text()) == "▸" {
			rep.Takeaways++
		}
	})
	rep.HasCode = sec.Find("pre code").Length() > 0
	return rep, nil
}

// sectionAfter returns the first element following the comment that holds
// sentinel, or nil.
func sectionAfter(doc *goquery.Document, sentinel string) *html.Node {
	if sentinel == "" {
		return nil
	}
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type == html.CommentNode && strings.Contains(c.Data, sentinel) {
				for s := c.NextSibling; s != nil; s = s.NextSibling {
					if s.Type == html.ElementNode {
						found = s
						return
					}
				}
				return
			}
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return found
}

// String renders r as one audit line.
func (r Report) String() string {
	cheat := "-"
	if r.CheatColumns > 0 {
		cheat = fmt.Sprintf("%dx%d", r.CheatColumns, r.CheatRows)
	}
	return fmt.Sprintf("enhanced=%s cheat=%s takeaways=%d code=%s helper=%s cards=%d ws-literals=%d",
		yesNo(r.Enhanced), cheat, r.Takeaways, yesNo(r.HasCode), yesNo(r.HelperScript), r.Cards, r.LiteralURLs)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// PrintSelector prints either outer HTML or trimmed text of each match for
// selector, each followed by a blank line.
func PrintSelector(w io.Writer, page, selector string, textOnly bool) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	var werr error
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var out string
		if textOnly {
			out = strings.TrimSpace(s.Text())
		} else if out, werr = goquery.OuterHtml(s); werr != nil {
			werr = fmt.Errorf("render %s: %w", selector, werr)
			return false
		}
		_, werr = fmt.Fprintf(w, "%s\n\n", out)
		return werr == nil
	})
	return werr
}
