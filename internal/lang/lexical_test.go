package lang

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/tautohetohe/internal/cache"
	"github.com/ppiankov/tautohetohe/internal/logger"
)

func TestIsReoWord(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"ka", true},
		{"whenua", true},
		{"ngati", true},
		{"aotearoa", true},
		{"nui", true},
		{"the", false},
		{"house", false},
		{"ang", false},
		{"x", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isReoWord(tt.word); got != tt.want {
			t.Errorf("isReoWord(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestLexical_Classify(t *testing.T) {
	l := NewLexical()

	r, err := l.Classify("Ka nui te pai o te whenua.")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if r.Target != 6 || r.Ambiguous != 1 || r.Other != 0 {
		t.Errorf("Expected 6/1/0, got %d/%d/%d", r.Target, r.Ambiguous, r.Other)
	}
	if !r.IsTarget {
		t.Error("Expected reo sentence to be target")
	}

	r, _ = l.Classify("The House met at noon.")
	if r.Target != 0 || r.Other != 5 {
		t.Errorf("Expected 0 target and 5 other, got %d/%d", r.Target, r.Other)
	}
	if r.IsTarget || r.Percent != 0 {
		t.Errorf("Expected non-target with 0%%, got %+v", r)
	}
}

func TestLexical_FoldsMacrons(t *testing.T) {
	l := NewLexical()

	// Decomposed macron (a + U+0304) and precomposed forms count the same
	a, _ := l.Classify("Ma\u0304ori ta\u0304ngata")
	b, _ := l.Classify("Māori tāngata")
	if a.Counts != b.Counts || a.Target != 2 {
		t.Errorf("Expected identical counts with 2 target, got %+v and %+v", a.Counts, b.Counts)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		c    Counts
		want float64
	}{
		{Counts{}, 0},
		{Counts{Target: 1, Other: 2}, 33.33},
		{Counts{Target: 2, Ambiguous: 1, Other: 1}, 50},
		{Counts{Target: 3}, 100},
		{Counts{Other: 7}, 0},
	}

	for _, tt := range tests {
		if got := Percentage(tt.c); got != tt.want {
			t.Errorf("Percentage(%+v) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  Ka\tnui\n\n te  pai ")
	if got != "Ka nui te pai" {
		t.Errorf("Expected collapsed whitespace, got %q", got)
	}
	if Normalize("ā") != "ā" {
		t.Error("Expected NFC composition")
	}
	if Normalize("") != "" {
		t.Error("Expected empty string")
	}
}

func TestSafe_ErrorBecomesZeroResult(t *testing.T) {
	failing := ClassifierFunc(func(string) (Result, error) {
		return Result{}, errors.New("model unavailable")
	})
	s := NewSafe(failing, logger.Nop(), logger.NewThrottle(1, 1), "vol")

	r, err := s.Classify("Ka pai")
	if err != nil {
		t.Fatalf("Safe must not return errors, got %v", err)
	}
	if r != (Result{}) {
		t.Errorf("Expected zero result, got %+v", r)
	}
}

func TestSafe_PanicAndInvalid(t *testing.T) {
	panicking := ClassifierFunc(func(string) (Result, error) {
		panic("boom")
	})
	r, err := NewSafe(panicking, nil, nil, "vol").Classify("x")
	if err != nil || r != (Result{}) {
		t.Errorf("Expected zero result after panic, got %+v, %v", r, err)
	}

	invalid := ClassifierFunc(func(string) (Result, error) {
		return Result{Counts: Counts{Target: -1}, Percent: 150}, nil
	})
	r, err = NewSafe(invalid, nil, nil, "vol").Classify("x")
	if err != nil || r != (Result{}) {
		t.Errorf("Expected zero result for invalid output, got %+v, %v", r, err)
	}
}

func TestCached_MemoisesByNormalizedText(t *testing.T) {
	calls := 0
	counting := ClassifierFunc(func(text string) (Result, error) {
		calls++
		return NewLexical().Classify(text)
	})
	store := cache.NewMemory(time.Minute)
	c := NewCached(counting, store, "lexical")

	first, err := c.Classify("Ka nui  te pai")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	second, _ := c.Classify("Ka nui te\npai")
	if calls != 1 {
		t.Errorf("Expected 1 underlying call, got %d", calls)
	}
	if first != second {
		t.Errorf("Expected cached result %+v, got %+v", first, second)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 cache entry, got %d", store.Len())
	}
}

func TestCached_DoesNotStoreErrors(t *testing.T) {
	failing := ClassifierFunc(func(string) (Result, error) {
		return Result{}, errors.New("fail")
	})
	store := cache.NewMemory(time.Minute)
	c := NewCached(failing, store, "x")

	if _, err := c.Classify(strings.Repeat("ka ", 3)); err == nil {
		t.Error("Expected error to propagate")
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", store.Len())
	}
}
