package htmlpatch

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultHelper     = "getWsUrl"
	DefaultHost       = "localhost"
	DefaultHelperFile = "config.js"
)

const quoteChars = "'\"`"

// RewriteOptions configures RewriteWSURLs.
type RewriteOptions struct {
	// Host is the hard-coded endpoint host. Defaults to DefaultHost.
	Host string
	// Ports restricts rewriting to these ports. Empty means any port.
	Ports []int
	// Helper is the client-side function that builds the URL for a port.
	// Defaults to DefaultHelper.
	Helper string
}

// Rewriter rewrites quoted ws://<host>:<port> literals into helper calls.
// It is safe for concurrent use.
type Rewriter struct {
	re     *regexp.Regexp
	ports  map[string]bool
	helper string
}

// NewRewriter compiles opts.
func NewRewriter(opts RewriteOptions) *Rewriter {
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	helper := opts.Helper
	if helper == "" {
		helper = DefaultHelper
	}

	var ports map[string]bool
	if len(opts.Ports) > 0 {
		ports = make(map[string]bool, len(opts.Ports))
		for _, p := range opts.Ports {
			ports[strconv.Itoa(p)] = true
		}
	}

	return &Rewriter{
		re:     regexp.MustCompile(`ws://` + regexp.QuoteMeta(host) + `:(\d+)`),
		ports:  ports,
		helper: helper,
	}
}

// RewriteWSURLs is a convenience wrapper around NewRewriter(opts).Rewrite.
func RewriteWSURLs(doc string, opts RewriteOptions) (string, int) {
	return NewRewriter(opts).Rewrite(doc)
}

// Rewrite replaces every quoted string literal that contains an endpoint URL
// with a concatenation of helper calls and the remaining literal text, and
// returns the number of URLs replaced.
//
//	new WebSocket('ws://localhost:8080')  ->  new WebSocket(getWsUrl(8080))
//	"a-ws://localhost:8080-b"            ->  "a-" + getWsUrl(8080) + "-b"
//
// A literal is opened by an unescaped quote and closed by the next unescaped
// occurrence of the same quote on the same line, pairing quotes from the start
// of the line. URLs outside a literal are left alone. The output contains no rewritable URL, so a second
// pass is a no-op.
func (r *Rewriter) Rewrite(doc string) (string, int) {
	var b strings.Builder
	written := 0
	from := 0
	total := 0

	for from < len(doc) {
		loc := r.re.FindStringSubmatchIndex(doc[from:])
		if loc == nil {
			break
		}
		start, end := from+loc[0], from+loc[1]
		port := doc[from+loc[2] : from+loc[3]]

		if !r.allowed(port) {
			from = end
			continue
		}

		lo, hi, ok := enclosingLiteral(doc, start, end, written)
		if !ok {
			from = end
			continue
		}

		expr, n := r.splitLiteral(doc[lo], doc[lo+1:hi])
		b.WriteString(doc[written:lo])
		b.WriteString(expr)
		total += n

		written = hi + 1
		from = written
	}

	if total == 0 {
		return doc, 0
	}
	b.WriteString(doc[written:])
	return b.String(), total
}

func (r *Rewriter) allowed(port string) bool {
	return r.ports == nil || r.ports[port]
}

// splitLiteral turns the body of a literal quoted with q into a concatenation
// expression. Empty text segments are dropped, so a literal holding only a URL
// becomes a bare helper call.
func (r *Rewriter) splitLiteral(q byte, body string) (string, int) {
	var parts []string
	n := 0
	pos := 0

	for _, m := range r.re.FindAllStringSubmatchIndex(body, -1) {
		port := body[m[2]:m[3]]
		if !r.allowed(port) {
			continue
		}
		if text := body[pos:m[0]]; text != "" {
			parts = append(parts, string(q)+text+string(q))
		}
		parts = append(parts, r.helper+"("+port+")")
		pos = m[1]
		n++
	}
	if text := body[pos:]; text != "" {
		parts = append(parts, string(q)+text+string(q))
	}
	return strings.Join(parts, " + "), n
}

// enclosingLiteral finds the quotes around doc[start:end]. Quotes are paired
// left to right from the start of the line (or floor, if later), so the URL
// must sit inside a literal that is open at start. The closing quote must be
// on the same line.
func enclosingLiteral(doc string, start, end, floor int) (lo, hi int, ok bool) {
	from := strings.LastIndexByte(doc[:start], '\n') + 1
	if from < floor {
		from = floor
	}

	lo = -1
	for i := from; i < start; i++ {
		c := doc[i]
		if lo >= 0 {
			if c == doc[lo] && !escaped(doc, i) {
				lo = -1
			}
			continue
		}
		if strings.IndexByte(quoteChars, c) >= 0 && !escaped(doc, i) && !apostrophe(doc, i) {
			lo = i
		}
	}
	if lo < 0 {
		return 0, 0, false
	}

	q := doc[lo]
	for i := end; i < len(doc); i++ {
		c := doc[i]
		if c == '\n' {
			return 0, 0, false
		}
		if c == q && !escaped(doc, i) {
			return lo, i, true
		}
	}
	return 0, 0, false
}

// apostrophe reports whether doc[i] is a ' between two letters, as in prose
// "don't". Such a quote cannot open a literal.
func apostrophe(doc string, i int) bool {
	return doc[i] == '\'' && i > 0 && i+1 < len(doc) && isLetter(doc[i-1]) && isLetter(doc[i+1])
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// escaped reports whether doc[i] is preceded by an odd number of backslashes.
func escaped(doc string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && doc[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// EnsureScript adds a <script src="src"> tag before the first </head> unless
// the document already references src. It reports whether it inserted.
func EnsureScript(doc, src string) (string, bool) {
	if src == "" || strings.Contains(doc, src) {
		return doc, false
	}
	p := FindInsertionPoint(doc, []string{"</head>"})
	if !p.Found {
		return doc, false
	}
	return InsertAt(doc, p, `  <script src="`+src+`"></script>`+"\n"), true
}
