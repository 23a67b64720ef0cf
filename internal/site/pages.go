package site

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ListPages returns the names of the regular files directly under root that
// satisfy match, sorted by name.
func ListPages(fsys afero.Fs, root string, match func(name string) bool) ([]string, error) {
	entries, err := afero.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var out []string
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		if match == nil || match(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// RewriteTargets matches the pages that embed endpoint URLs: learn*.html and
// client.html.
func RewriteTargets(name string) bool {
	return name == "client.html" || (strings.HasPrefix(name, "learn") && strings.HasSuffix(name, ".html"))
}

// LessonPages matches learn*.html only.
func LessonPages(name string) bool {
	return strings.HasPrefix(name, "learn") && strings.HasSuffix(name, ".html")
}
