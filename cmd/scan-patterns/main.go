// Diagnostic program that runs each era's recognizers over a text file.
// Useful when a volume yields no days: it shows which era finds dates and
// speakers in a sample of its OCR text.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/tautohetohe/internal/extract"
	"github.com/ppiankov/tautohetohe/internal/patterns"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: scan-patterns <text-file>")
		os.Exit(2)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}
	text := "\n" + string(raw)

	lib := patterns.NewLibrary(2 * time.Second)
	fmt.Printf("=== Pattern scan: %s ===\n\n", os.Args[1])

	for _, era := range []patterns.Era{patterns.EraA, patterns.EraB, patterns.EraC} {
		set := lib.For(era)
		fmt.Printf("Era %s\n", era)
		fmt.Println(strings.Repeat("-", 60))

		dates := findAll(set.Date, text)
		fmt.Printf("  Dates:     %d\n", len(dates))
		for _, d := range dates {
			fmt.Printf("     - %s\n", strings.TrimSpace(d))
		}

		speakers := 0
		cleaned := extract.Clean(set, text)
		for _, para := range splitAll(set.Paragraph, cleaned) {
			if m, ok := set.Speaker.Match(para); ok && strings.TrimSpace(m.Group(1)) != "" {
				speakers++
				fmt.Printf("     > %s\n", strings.TrimSpace(m.Group(1)))
			}
		}
		fmt.Printf("  Speakers:  %d\n", speakers)

		if m, ok := set.Header.Find(text); ok {
			fmt.Printf("  Header ends at byte %d\n", m.End)
		}
		if n := set.Timeouts(); n > 0 {
			fmt.Printf("  ⚠️  %d matches abandoned on timeout\n", n)
		}
		fmt.Println()
	}
}

func findAll(p *patterns.Pattern, text string) []string {
	var out []string
	for {
		m, ok := p.Find(text)
		if !ok || m.End == 0 {
			return out
		}
		out = append(out, m.Text)
		text = text[m.End:]
	}
}

func splitAll(p *patterns.Pattern, text string) []string {
	var out []string
	for {
		m, ok := p.Find(text)
		if !ok {
			return append(out, text)
		}
		out = append(out, text[:m.Start])
		text = text[m.End:]
	}
}
