package cache

// Tiered checks the memory store before the journal
type Tiered struct {
	memory  *Memory
	journal *Journal
}

// NewTiered fronts journal with memory
func NewTiered(memory *Memory, journal *Journal) *Tiered {
	return &Tiered{memory: memory, journal: journal}
}

// Lookup implements Store. Journal hits are promoted to memory.
func (t *Tiered) Lookup(classifier, text string) (Verdict, bool) {
	if v, ok := t.memory.Lookup(classifier, text); ok {
		return v, true
	}
	v, ok := t.journal.Lookup(classifier, text)
	if ok {
		_ = t.memory.Remember(classifier, text, v)
	}
	return v, ok
}

// Remember implements Store. The memory tier is kept even when the journal
// append fails.
func (t *Tiered) Remember(classifier, text string, v Verdict) error {
	_ = t.memory.Remember(classifier, text, v)
	return t.journal.Remember(classifier, text, v)
}
