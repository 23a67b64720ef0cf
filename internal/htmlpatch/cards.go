package htmlpatch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"lessonkit/internal/content"
)

// Card list markers, in priority order. The first is an explicit comment left
// in the index page; the second is the literal closing of the card grid.
const (
	EndOfCardsMarker = "      <!-- end of cards -->"
	GridCloseMarker  = "      </div>\n    </main>"
)

var lessonCountRe = regexp.MustCompile(`(\d+)\s*Lessons`)

// CardsStatus is the outcome of the card insertion half of PatchCards.
type CardsStatus int

const (
	// CardsInserted means the card block was inserted before a marker.
	CardsInserted CardsStatus = iota + 1
	// CardsAlreadyPresent means the first card of the deck is already linked.
	CardsAlreadyPresent
	// CardsMarkerMissing means neither marker was found.
	CardsMarkerMissing
)

func (s CardsStatus) String() string {
	switch s {
	case CardsInserted:
		return "inserted"
	case CardsAlreadyPresent:
		return "already-present"
	case CardsMarkerMissing:
		return "marker-missing"
	default:
		return "unknown"
	}
}

// CardsResult describes what PatchCards did.
type CardsResult struct {
	Status       CardsStatus
	Point        InsertionPoint
	CountUpdated bool
}

// PatchCards inserts the rendered deck before the end-of-list marker and sets
// the first "<n> Lessons" label to the deck's lesson count.
//
// The two halves are independent: the label is updated even when no marker is
// found or the cards are already present.
func PatchCards(doc string, deck *content.CardDeck) (string, CardsResult) {
	var res CardsResult

	if strings.Contains(doc, cardLink(deck.FirstCard())) {
		res.Status = CardsAlreadyPresent
	} else {
		p := FindInsertionPoint(doc, []string{EndOfCardsMarker, GridCloseMarker})
		if p.Found {
			doc = InsertAt(doc, p, RenderCards(deck)+"\n")
			res.Status = CardsInserted
			res.Point = p
		} else {
			res.Status = CardsMarkerMissing
		}
	}

	doc, res.CountUpdated = setLessonCount(doc, deck.LessonCount)
	return doc, res
}

// setLessonCount rewrites the first "<n> Lessons" match. It reports false when
// there is no match or the label already shows count.
func setLessonCount(doc string, count int) (string, bool) {
	loc := lessonCountRe.FindStringIndex(doc)
	if loc == nil {
		return doc, false
	}
	repl := strconv.Itoa(count) + " Lessons"
	if doc[loc[0]:loc[1]] == repl {
		return doc, false
	}
	return doc[:loc[0]] + repl + doc[loc[1]:], true
}

// RenderCards renders every section of the deck: a full-width heading row
// followed by one card per lesson.
func RenderCards(deck *content.CardDeck) string {
	var b strings.Builder
	for _, s := range deck.Sections {
		first, last := s.Cards[0].Number, s.Cards[len(s.Cards)-1].Number
		head := fmt.Sprintf("      <!-- ── %s (%d-%d) ", s.Label, first, last)

		b.WriteString("\n")
		b.WriteString(head + strings.Repeat("─", ruleWidth(s, head)) + " -->\n")
		b.WriteString(`      <div style="grid-column:1/-1;margin-top:16px">` + "\n")
		b.WriteString(`        <div style="font-size:.75rem;font-weight:700;color:#64748b;text-transform:uppercase;letter-spacing:1px;margin-bottom:12px;padding:0 2px">` + s.Heading + "</div>\n")
		b.WriteString("      </div>\n")

		for _, c := range s.Cards {
			b.WriteString("\n")
			renderCard(&b, c)
		}
	}
	return b.String()
}

// sectionCommentWidth is the rune width section comments are padded to when a
// section sets no rule length.
const sectionCommentWidth = 70

func ruleWidth(s content.CardSection, head string) int {
	if s.Rule > 0 {
		return s.Rule
	}
	n := sectionCommentWidth - utf8.RuneCountInString(head) - len(" -->")
	if n < 3 {
		n = 3
	}
	return n
}

func renderCard(b *strings.Builder, c content.Card) {
	cardAttr := ""
	if c.Border != "" {
		cardAttr = fmt.Sprintf(` style="border-color:%s"`, c.Border)
	}
	accentAttr := ""
	if c.Accent != "" {
		accentAttr = fmt.Sprintf(` style="color:%s"`, c.Accent)
	}

	fmt.Fprintf(b, `      <div class="card" onclick="%s"%s>`+"\n", cardLink(c), cardAttr)
	fmt.Fprintf(b, `        <div class="card-num"%s>%d</div>`+"\n", accentAttr, c.Number)
	b.WriteString(`        <div class="card-body">` + "\n")
	b.WriteString(`          <div class="card-title">` + c.Title + "</div>\n")
	b.WriteString(`          <div class="card-desc">` + c.Description + "</div>\n")
	if c.Demo != "" {
		b.WriteString(`          <div class="card-demo">` + c.Demo + "</div>\n")
	}
	fmt.Fprintf(b, `          <div class="card-path"%s>%s</div>`+"\n", accentAttr, c.Label())
	b.WriteString("        </div>\n")
	b.WriteString("      </div>\n")
}

func cardLink(c content.Card) string {
	return "window.location='" + c.Path + "'"
}
