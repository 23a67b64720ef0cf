package htmlpatch

import (
	"strings"

	"lessonkit/internal/content"
)

// InjectStatus is the outcome of Inject.
type InjectStatus int

const (
	// Injected means the section was inserted before an anchor.
	Injected InjectStatus = iota + 1
	// AlreadyEnhanced means the sentinel was present; nothing changed.
	AlreadyEnhanced
	// NoAnchor means no anchor was found; nothing changed.
	NoAnchor
)

func (s InjectStatus) String() string {
	switch s {
	case Injected:
		return "injected"
	case AlreadyEnhanced:
		return "already-enhanced"
	case NoAnchor:
		return "no-anchor"
	default:
		return "unknown"
	}
}

// InjectResult describes what Inject did.
type InjectResult struct {
	Status InjectStatus
	Point  InsertionPoint
}

// Inject adds the rendered reference sections for l to doc, immediately
// before the first anchor found.
//
// A document that already contains sentinel is returned unchanged, which makes
// repeated runs no-ops.
func Inject(doc string, l content.Lesson, sentinel string, anchors []string) (string, InjectResult) {
	if sentinel != "" && strings.Contains(doc, sentinel) {
		return doc, InjectResult{Status: AlreadyEnhanced}
	}

	p := FindInsertionPoint(doc, anchors)
	if !p.Found {
		return doc, InjectResult{Status: NoAnchor}
	}

	fragment := RenderSection(l, sentinel) + "\n"
	return InsertAt(doc, p, fragment), InjectResult{Status: Injected, Point: p}
}
