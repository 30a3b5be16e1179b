// Package lang defines the language classification capability used to decide
// which sentences are reo Māori, plus the built-in lexical classifier.
//
// Every Classifier counts words over Normalize(text): whitespace runs collapse
// to a single space so word boundaries agree with the extractor.
package lang

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Counts are per-class word counts for a text fragment
type Counts struct {
	Target    int `json:"reo"`
	Ambiguous int `json:"ambiguous"`
	Other     int `json:"other"`
}

// Total returns the number of classified words
func (c Counts) Total() int { return c.Target + c.Ambiguous + c.Other }

// Add folds o into c
func (c *Counts) Add(o Counts) {
	c.Target += o.Target
	c.Ambiguous += o.Ambiguous
	c.Other += o.Other
}

// Result is the outcome of classifying one fragment. A zero Result means no
// target-language content was detected.
type Result struct {
	Counts
	Percent  float64 `json:"percent"`
	IsTarget bool    `json:"is_target"`
}

// Valid reports whether r could have come from a conforming classifier
func (r Result) Valid() bool {
	if r.Target < 0 || r.Ambiguous < 0 || r.Other < 0 {
		return false
	}
	return !math.IsNaN(r.Percent) && !math.IsInf(r.Percent, 0) && r.Percent >= 0 && r.Percent <= 100
}

// Classifier classifies a text fragment by language
type Classifier interface {
	Classify(text string) (Result, error)
}

// ClassifierFunc adapts a function to the Classifier interface
type ClassifierFunc func(text string) (Result, error)

// Classify calls f(text)
func (f ClassifierFunc) Classify(text string) (Result, error) { return f(text) }

// Percentage returns target / (target + ambiguous + other) as a percentage
// rounded to two places
func Percentage(c Counts) float64 {
	total := c.Total()
	if total == 0 || c.Target == 0 {
		return 0
	}
	return math.Round(float64(c.Target)*10000/float64(total)) / 100
}

// Normalize repairs invalid UTF-8, composes combining macrons (NFC) and
// collapses whitespace runs to single spaces
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
