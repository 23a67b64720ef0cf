package content

// Code is the optional example shown under a lesson's takeaways.
type Code struct {
	Title  string `yaml:"title,omitempty"`
	Source string `yaml:"source" validate:"required"`
}

// Lesson is the educational content injected into one lesson page.
//
// CheatSheet rows carry two fields (code, what it does) or three
// (code, what it does, when).
type Lesson struct {
	Page       string     `yaml:"page" validate:"required,endswith=.html"`
	Title      string     `yaml:"title" validate:"required"`
	CheatSheet [][]string `yaml:"cheat_sheet,omitempty" validate:"dive,min=2,max=3,dive,required"`
	Takeaways  []string   `yaml:"takeaways,omitempty" validate:"dive,required"`
	Code       *Code      `yaml:"code,omitempty"`
}

// CodeTitle returns the label of the code block, falling back to a title
// derived from the lesson name.
func (l Lesson) CodeTitle() string {
	if l.Code != nil && l.Code.Title != "" {
		return l.Code.Title
	}
	return l.Title + " — production pattern"
}

// HasCode reports whether the lesson carries a non-empty code example.
func (l Lesson) HasCode() bool {
	return l.Code != nil && l.Code.Source != ""
}

// lessonFile describes lessons.yaml.
type lessonFile struct {
	Version  int      `yaml:"version" validate:"eq=1"`
	Sentinel string   `yaml:"sentinel" validate:"required"`
	Lessons  []Lesson `yaml:"lessons" validate:"required,min=1,unique=Page,dive"`
}

// Card is one navigation entry on the lesson index.
type Card struct {
	Number      int    `yaml:"number" validate:"gt=0"`
	Title       string `yaml:"title" validate:"required"`
	Description string `yaml:"description" validate:"required"`
	Demo        string `yaml:"demo,omitempty"`
	Path        string `yaml:"path" validate:"required"`
	PathLabel   string `yaml:"path_label,omitempty"`
	Accent      string `yaml:"accent,omitempty"`
	Border      string `yaml:"border,omitempty"`
}

// Label returns the text shown in the card's path line.
func (c Card) Label() string {
	if c.PathLabel != "" {
		return c.PathLabel
	}
	return c.Path
}

// CardSection groups cards under a heading row.
type CardSection struct {
	Label   string `yaml:"label" validate:"required"`
	Heading string `yaml:"heading" validate:"required"`
	// Rule is the length of the ─ run closing the section comment. Zero pads
	// the comment line to a standard width.
	Rule    int    `yaml:"rule,omitempty" validate:"gte=0"`
	Cards   []Card `yaml:"cards" validate:"required,min=1,dive"`
}

// CardDeck describes cards.yaml: the block of cards added to the index page
// and the lesson count the page header should show afterwards.
type CardDeck struct {
	Version     int           `yaml:"version" validate:"eq=1"`
	Target      string        `yaml:"target" validate:"required"`
	LessonCount int           `yaml:"lesson_count" validate:"gt=0"`
	Sections    []CardSection `yaml:"sections" validate:"required,min=1,dive"`
}

// FirstCard returns the first card of the deck. Validation guarantees one exists.
func (d *CardDeck) FirstCard() Card {
	return d.Sections[0].Cards[0]
}
