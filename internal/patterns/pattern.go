// Package patterns holds the recognizers used to segment OCR'd Hansard text:
// date headers, page boilerplate, speaker announcements, paragraph and
// sentence boundaries, and line-level noise.
//
// Patterns are written in the .NET regex dialect (lookarounds included) and
// compiled with regexp2. All offsets returned by this package are byte offsets
// into the searched string.
package patterns

import (
	"sync/atomic"
	"time"

	"github.com/dlclark/regexp2"
)

// Match is one successful pattern match
type Match struct {
	Start  int
	End    int
	Text   string
	groups []string
}

// Group returns capture group n, or "" when it did not participate
func (m Match) Group(n int) string {
	if n < 0 || n >= len(m.groups) {
		return ""
	}
	return m.groups[n]
}

// Pattern is a compiled recognizer. A Pattern is safe for concurrent use.
// A match that exceeds the timeout counts as a miss.
type Pattern struct {
	name     string
	expr     string
	find     *regexp2.Regexp
	anchored *regexp2.Regexp
	full     *regexp2.Regexp
	timeouts atomic.Int64
}

// Compile compiles expr. It panics if expr is invalid; the expressions are
// fixed at build time.
func Compile(name, expr string, timeout time.Duration) *Pattern {
	return &Pattern{
		name:     name,
		expr:     expr,
		find:     mustCompile(expr, timeout),
		anchored: mustCompile(`\A(?:`+expr+`)`, timeout),
		full:     mustCompile(`\A(?:`+expr+`)\z`, timeout),
	}
}

func mustCompile(expr string, timeout time.Duration) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.None)
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re
}

// Name returns the pattern's name
func (p *Pattern) Name() string { return p.name }

// String returns the source expression
func (p *Pattern) String() string { return p.expr }

// Timeouts returns how many matches have been abandoned on timeout
func (p *Pattern) Timeouts() int64 { return p.timeouts.Load() }

// Find returns the leftmost match anywhere in s
func (p *Pattern) Find(s string) (Match, bool) {
	return p.run(p.find, s)
}

// Match returns a match anchored at the start of s
func (p *Pattern) Match(s string) (Match, bool) {
	return p.run(p.anchored, s)
}

// FullMatch reports whether the pattern matches the whole of s
func (p *Pattern) FullMatch(s string) bool {
	ok, err := p.full.MatchString(s)
	if err != nil {
		p.timeouts.Add(1)
		return false
	}
	return ok
}

// RemoveAll deletes every non-overlapping match from s. On timeout s is
// returned unchanged.
func (p *Pattern) RemoveAll(s string) string {
	out, err := p.find.Replace(s, "", -1, -1)
	if err != nil {
		p.timeouts.Add(1)
		return s
	}
	return out
}

func (p *Pattern) run(re *regexp2.Regexp, s string) (Match, bool) {
	m, err := re.FindStringMatch(s)
	if err != nil {
		p.timeouts.Add(1)
		return Match{}, false
	}
	if m == nil {
		return Match{}, false
	}

	start, end := byteSpan(s, m.Index, m.Length)
	groups := make([]string, 0, m.GroupCount())
	for _, g := range m.Groups() {
		if len(g.Captures) == 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, g.String())
	}
	return Match{Start: start, End: end, Text: s[start:end], groups: groups}, true
}

// byteSpan converts a rune index and rune length into byte offsets of s
func byteSpan(s string, runeIndex, runeLength int) (int, int) {
	start, end := len(s), len(s)
	n := 0
	for i := range s {
		if n == runeIndex {
			start = i
		}
		if n == runeIndex+runeLength {
			end = i
			return start, end
		}
		n++
	}
	return start, end
}
