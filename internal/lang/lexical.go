package lang

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lexical classifies words by reo Māori orthography: a word is reo when it is
// a sequence of (C)V syllables over the consonants h k m n p r t w ng wh.
// Words that also read as common English are ambiguous.
type Lexical struct {
	ambiguous map[string]struct{}
}

// NewLexical creates a lexical classifier with the built-in ambiguous list
func NewLexical() *Lexical {
	amb := make(map[string]struct{}, len(ambiguousWords))
	for _, w := range ambiguousWords {
		amb[w] = struct{}{}
	}
	return &Lexical{ambiguous: amb}
}

// Classify implements Classifier
func (l *Lexical) Classify(text string) (Result, error) {
	var c Counts
	for _, tok := range strings.Split(Normalize(text), " ") {
		for _, w := range words(tok) {
			switch {
			case !isReoWord(w):
				c.Other++
			case l.isAmbiguous(w):
				c.Ambiguous++
			default:
				c.Target++
			}
		}
	}
	return Result{
		Counts:   c,
		Percent:  Percentage(c),
		IsTarget: c.Target > c.Other,
	}, nil
}

func (l *Lexical) isAmbiguous(w string) bool {
	_, ok := l.ambiguous[w]
	return ok
}

// words splits a token on anything that is not a letter and returns the
// lower-cased, macron-folded pieces
func words(tok string) []string {
	parts := strings.FieldsFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r)
	})
	out := parts[:0]
	for _, p := range parts {
		if p = foldMacrons(strings.ToLower(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

// foldMacrons maps ā ē ī ō ū (and any other diacritic) to the bare vowel
func foldMacrons(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			tr := foldPool.Get().(transform.Transformer)
			out, _, err := transform.String(tr, s)
			tr.Reset()
			foldPool.Put(tr)
			if err != nil {
				return s
			}
			return out
		}
	}
	return s
}

// isReoWord reports whether w (lower case, folded) is a run of (C)V syllables
func isReoWord(w string) bool {
	if w == "" {
		return false
	}
	i := 0
	for i < len(w) {
		switch {
		case strings.HasPrefix(w[i:], "ng"), strings.HasPrefix(w[i:], "wh"):
			i += 2
		case strings.IndexByte("hkmnprtw", w[i]) >= 0:
			i++
		}
		if i >= len(w) || strings.IndexByte("aeiou", w[i]) < 0 {
			return false
		}
		i++
	}
	return true
}

// ambiguousWords are valid reo spellings that are also common English words
var ambiguousWords = []string{
	"a", "i", "o", "e", "ha", "he", "hi", "ho", "ma", "me", "mi", "mo", "no", "to",
	"we", "are", "ate", "ape", "hope", "home", "hate", "hare", "here", "hire", "hue",
	"kite", "make", "mate", "mare", "mere", "mike", "mine", "more", "mope", "mote",
	"mute", "name", "nine", "none", "note", "one", "ore", "pane", "pare", "pate",
	"pike", "pine", "pipe", "poke", "pope", "pore", "pure", "rake", "rare", "rate",
	"ripe", "rope", "rote", "rune", "take", "tame", "tape", "tare", "tea", "tie",
	"time", "tire", "toe", "tone", "tope", "tore", "tote", "tune", "wake", "ware",
	"wane", "were", "wine", "wipe", "wire", "woke", "wore", "papa", "mama", "kiwi",
}
