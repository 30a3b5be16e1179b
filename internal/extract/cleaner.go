package extract

import (
	"strings"

	"github.com/ppiankov/tautohetohe/internal/patterns"
)

// Clean rejoins hyphenated line wraps and drops whole noise lines (roll
// calls, division lists, letterless, very short, all-capital and single-word
// lines). Blank lines are kept as paragraph boundaries.
func Clean(set *patterns.Set, text string) string {
	text = set.Hyphenation.RemoveAll(text)

	// Pad so the first and last lines are bounded by newlines too
	text = "\n" + text + "\n"
	for _, noise := range set.Noise {
		text = noise.RemoveAll(text)
	}
	return strings.TrimSpace(text)
}
