package validate

import (
	"unicode/utf8"

	"github.com/ppiankov/tautohetohe/internal/lang"
	"github.com/ppiankov/tautohetohe/internal/patterns"
)

// Reason explains why an utterance was rejected
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNoLetters    Reason = "no-letters"
	ReasonTooShort     Reason = "too-short"
	ReasonTableHeading Reason = "table-heading"
	ReasonShortTokens  Reason = "short-tokens"
	ReasonLanguage     Reason = "language-thresholds"
)

// Verdict is the outcome of validating one assembled utterance
type Verdict struct {
	Text       string      // trimmed text
	Result     lang.Result // re-classification of Text, when Classified
	Classified bool
	Accepted   bool
	Reason     Reason
}

// Validator decides whether an utterance buffer is real prose in the target
// language rather than a table, heading or roll call
type Validator struct {
	set            *patterns.Set
	classifier     lang.Classifier
	minTargetWords int
	maxOtherWords  int
}

// NewValidator creates a validator. An utterance is accepted when its target
// word count exceeds minTargetWords and its other word count is below
// maxOtherWords.
func NewValidator(set *patterns.Set, classifier lang.Classifier, minTargetWords, maxOtherWords int) *Validator {
	return &Validator{
		set:            set,
		classifier:     classifier,
		minTargetWords: minTargetWords,
		maxOtherWords:  maxOtherWords,
	}
}

// Validate checks text, the buffer's sentences joined by single spaces.
// Counts in Result must be folded into the day totals whenever Classified is
// set, accepted or not.
func (v *Validator) Validate(text string) Verdict {
	// 1. Trim anything before the first letter or currency symbol
	m, ok := v.set.FirstLetter.Find(text)
	if !ok {
		return Verdict{Text: text, Reason: ReasonNoLetters}
	}
	text = text[m.Start:]
	if utf8.RuneCountInString(text) <= 3 {
		return Verdict{Text: text, Reason: ReasonTooShort}
	}

	// 2. Structural heuristics must not cover the whole text
	if v.set.TableHeading.FullMatch(text) {
		return Verdict{Text: text, Reason: ReasonTableHeading}
	}
	if v.set.ShortTokens.FullMatch(text) {
		return Verdict{Text: text, Reason: ReasonShortTokens}
	}

	// 3. Re-classify the final text
	r, err := v.classifier.Classify(text)
	if err != nil {
		r = lang.Result{}
	}
	verdict := Verdict{Text: text, Result: r, Classified: true}

	// 4. Language thresholds
	if r.Target > v.minTargetWords && r.Other < v.maxOtherWords {
		verdict.Accepted = true
	} else {
		verdict.Reason = ReasonLanguage
	}
	return verdict
}
