package patterns

import (
	"time"
)

// Recognizer sources. The date and speaker expressions come in two variants
// each; Set picks one per era.
const (
	dateNarrative = `\n[A-Z][a-z]{5,8}, [\dinISl&^]{1,2}[a-zA-Z]{2} [A-Z][!1Ia-z]{2,8}, [\d(A-Z]{4,5}`
	dateModern    = `[A-Z][A-Za-z]{5,8}, \d{1,2} [A-Za-z]{3,9},? \d{4}[^\n–:!?]{0,4}\n`

	// Running heads from volume 359 onwards: up to six lines closed by "]",
	// short title lines, then capitalised contents lines.
	header = `[^\n]*\n((([^\n\]]*\n){0,5}[^\n]*\][^\n]*)\n)?((([^ \n]+( [^ \n,—]+){0,3}))\n)*(([^a-z]([^\n:—](?!([^a-zA-Z]+[a-z]+){3}))*( (?!O )[^a-z\n][^ —:\n]*){2}[^\-\n:]\n)+)*`

	speakerNarrative = `[^a-zA-Z\n]*([A-Z][^—:\n]*( ?[A-Z]){3,}(\s*\([a-zA-Z\s]*\))?)(((\.? ?—\-?)\s*(?=[A-Z£]))|[^a-zA-Z]+(?=said|asked|wished|did|in|replied|hoped|was|thought|supported|desired|obtained|moved|having|by|brought|seconded|announ(c|e)ed))`
	speakerColon     = `([A-Z][^\n]*[)A-Z])(\s+replied)?[:;]`

	paragraph   = `\n[ \t]*\n\s*`
	sentence    = `[.!?]\s+(?=["'‘“(]?[A-ZĀĒĪŌŪ])`
	hyphenation = `(?<=[a-z]) *-\n+ *(?=[a-z])`

	tableHeading = `([^ A-Z]+ )?[A-Z][^ ]*(([^a-zA-Z]+[^ A-Z]*){1,2}[A-Z][^ ]*)*(([^a-zA-Z]+[^ A-Z]*){2})?`
	shortTokens  = `([^ ]{1,3} )+[^ ]{1,3}`
	firstLetter  = `[A-Za-zĀĒĪŌŪāēīōū£$]`
)

// noiseLines are whole-line classes removed from day text, in order. Every
// class needs a visible character: whitespace-only lines are paragraph
// breaks and must survive cleaning.
var noiseLines = []struct{ name, expr string }{
	{"roll-call", `([A-Z][ a-zA-Z.]+, ){2}[A-Z][ a-zA-Z.]+\.`},
	{"division", `(AYE|Aye|NOE|Noe)[^\n]*`},
	{"no-letters", `[^A-Za-zĀĒĪŌŪāēīōū\n]*[^\sA-Za-zĀĒĪŌŪāēīōū][^A-Za-zĀĒĪŌŪāēīōū\n]*`},
	{"short", `(?:\S|[^\n]\S|\S[^\n])`},
	{"capitals", `[ \-\d,A-Z.?!:]*[\-\d,A-Z.?!:][ \-\d,A-Z.?!:]*`},
	{"single-word", `[a-zA-Z]+`},
}

// Set is the recognizer bundle for one era
type Set struct {
	Era          Era
	Date         *Pattern
	Header       *Pattern
	Speaker      *Pattern
	Paragraph    *Pattern
	Sentence     *Pattern
	Hyphenation  *Pattern
	Noise        []*Pattern
	TableHeading *Pattern
	ShortTokens  *Pattern
	FirstLetter  *Pattern
}

// Patterns lists every recognizer in the set
func (s *Set) Patterns() []*Pattern {
	all := []*Pattern{s.Date, s.Header, s.Speaker, s.Paragraph, s.Sentence,
		s.Hyphenation, s.TableHeading, s.ShortTokens, s.FirstLetter}
	return append(all, s.Noise...)
}

// Timeouts sums abandoned matches across the set
func (s *Set) Timeouts() int64 {
	var n int64
	for _, p := range s.Patterns() {
		n += p.Timeouts()
	}
	return n
}

// Library holds one Set per era. Shared recognizers are compiled once.
type Library struct {
	sets map[Era]*Set
}

// NewLibrary compiles every recognizer with the given per-match timeout
// (0 disables timeouts)
func NewLibrary(timeout time.Duration) *Library {
	c := func(name, expr string) *Pattern { return Compile(name, expr, timeout) }

	var (
		narrativeDate    = c("date", dateNarrative)
		modernDate       = c("date", dateModern)
		narrativeSpeaker = c("speaker", speakerNarrative)
		colonSpeaker     = c("speaker", speakerColon)
	)

	noise := make([]*Pattern, 0, len(noiseLines))
	for _, n := range noiseLines {
		noise = append(noise, c("noise:"+n.name, `(?<=\n)`+n.expr+`\n`))
	}

	base := Set{
		Header:       c("header", header),
		Paragraph:    c("paragraph", paragraph),
		Sentence:     c("sentence", sentence),
		Hyphenation:  c("hyphenation", hyphenation),
		Noise:        noise,
		TableHeading: c("table-heading", tableHeading),
		ShortTokens:  c("short-tokens", shortTokens),
		FirstLetter:  c("first-letter", firstLetter),
	}

	a, b, cc := base, base, base
	a.Era, a.Date, a.Speaker = EraA, narrativeDate, narrativeSpeaker
	b.Era, b.Date, b.Speaker = EraB, modernDate, narrativeSpeaker
	cc.Era, cc.Date, cc.Speaker = EraC, modernDate, colonSpeaker

	return &Library{sets: map[Era]*Set{EraA: &a, EraB: &b, EraC: &cc}}
}

// For returns the set for era; unknown eras fall back to EraA
func (l *Library) For(era Era) *Set {
	if s, ok := l.sets[era]; ok {
		return s
	}
	return l.sets[EraA]
}

// ForVolume is shorthand for For(EraFor(volume))
func (l *Library) ForVolume(volume string) *Set {
	return l.For(EraFor(volume))
}
