// Package content loads the lesson and card tables that the patch commands
// inject into the tutorial site.
//
// The tables are data, not code: defaults are embedded from data/*.yaml and
// an operator may point at an edited copy instead. Loaded tables are
// validated, Unicode-normalised (NFC) and treated as read-only afterwards.
package content

import (
	"embed"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

const (
	lessonsAsset = "data/lessons.yaml"
	cardsAsset   = "data/cards.yaml"
)

//go:embed data/*.yaml
var dataFS embed.FS

// ErrInvalid is returned (wrapped) when a content file parses but fails validation.
var ErrInvalid = errors.New("invalid content")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml keys instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LessonTable is the validated, immutable page -> lesson mapping.
type LessonTable struct {
	sentinel string
	lessons  []Lesson
	byPage   map[string]int
}

// Sentinel is the marker whose presence means a page was already enhanced.
func (t *LessonTable) Sentinel() string { return t.sentinel }

// Pages returns page names in file order.
func (t *LessonTable) Pages() []string {
	out := make([]string, len(t.lessons))
	for i, l := range t.lessons {
		out[i] = l.Page
	}
	return out
}

// Lookup returns the lesson for page.
func (t *LessonTable) Lookup(page string) (Lesson, bool) {
	i, ok := t.byPage[page]
	if !ok {
		return Lesson{}, false
	}
	return t.lessons[i], true
}

// Len returns the number of lessons.
func (t *LessonTable) Len() int { return len(t.lessons) }

// LoadLessons reads lessons from path on fsys, or the embedded defaults when
// path is empty.
func LoadLessons(fsys afero.Fs, path string) (*LessonTable, error) {
	b, err := readAsset(fsys, path, lessonsAsset)
	if err != nil {
		return nil, err
	}
	return ParseLessons(b)
}

// ParseLessons decodes and validates a lessons document.
func ParseLessons(b []byte) (*LessonTable, error) {
	var lf lessonFile
	if err := yaml.Unmarshal(b, &lf); err != nil {
		return nil, fmt.Errorf("parse lessons yaml: %w", err)
	}
	if err := validate.Struct(lf); err != nil {
		return nil, fmt.Errorf("%w: lessons: %v", ErrInvalid, err)
	}

	t := &LessonTable{
		sentinel: nfc(lf.Sentinel),
		lessons:  make([]Lesson, len(lf.Lessons)),
		byPage:   make(map[string]int, len(lf.Lessons)),
	}
	for i, l := range lf.Lessons {
		t.lessons[i] = normalizeLesson(l)
		t.byPage[l.Page] = i
	}
	return t, nil
}

// LoadCards reads the card deck from path on fsys, or the embedded default
// when path is empty.
func LoadCards(fsys afero.Fs, path string) (*CardDeck, error) {
	b, err := readAsset(fsys, path, cardsAsset)
	if err != nil {
		return nil, err
	}
	return ParseCards(b)
}

// ParseCards decodes and validates a card deck document.
func ParseCards(b []byte) (*CardDeck, error) {
	var d CardDeck
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse cards yaml: %w", err)
	}
	if err := validate.Struct(d); err != nil {
		return nil, fmt.Errorf("%w: cards: %v", ErrInvalid, err)
	}

	for si := range d.Sections {
		s := &d.Sections[si]
		s.Label = nfc(s.Label)
		s.Heading = nfc(s.Heading)
		for ci := range s.Cards {
			c := &s.Cards[ci]
			c.Title = nfc(c.Title)
			c.Description = nfc(c.Description)
			c.Demo = nfc(c.Demo)
			c.PathLabel = nfc(c.PathLabel)
		}
	}
	return &d, nil
}

func readAsset(fsys afero.Fs, path, asset string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return dataFS.ReadFile(asset)
	}
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	return b, nil
}

// normalizeLesson returns a deep copy of l with every string in NFC form, so
// the table never aliases decoder-owned slices.
func normalizeLesson(l Lesson) Lesson {
	out := Lesson{
		Page:  l.Page,
		Title: nfc(l.Title),
	}
	if len(l.CheatSheet) > 0 {
		out.CheatSheet = make([][]string, len(l.CheatSheet))
		for i, row := range l.CheatSheet {
			r := make([]string, len(row))
			for j, cell := range row {
				r[j] = nfc(cell)
			}
			out.CheatSheet[i] = r
		}
	}
	if len(l.Takeaways) > 0 {
		out.Takeaways = make([]string, len(l.Takeaways))
		for i, s := range l.Takeaways {
			out.Takeaways[i] = nfc(s)
		}
	}
	if l.Code != nil {
		out.Code = &Code{Title: nfc(l.Code.Title), Source: nfc(l.Code.Source)}
	}
	return out
}

func nfc(s string) string {
	return norm.NFC.String(s)
}
