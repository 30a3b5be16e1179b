package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory keeps recent verdicts in process memory
type Memory struct {
	items  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemory creates a memory store whose entries expire after ttl
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{items: gocache.New(ttl, 10*time.Minute)}
}

// Lookup implements Store
func (m *Memory) Lookup(classifier, text string) (Verdict, bool) {
	if v, ok := m.items.Get(Key(classifier, text)); ok {
		m.hits.Add(1)
		return v.(Verdict), true
	}
	m.misses.Add(1)
	return Verdict{}, false
}

// Remember implements Store
func (m *Memory) Remember(classifier, text string, v Verdict) error {
	m.items.SetDefault(Key(classifier, text), v)
	return nil
}

// Len reports the number of unexpired verdicts
func (m *Memory) Len() int {
	return m.items.ItemCount()
}

// Stats reports lookup hits and misses since creation
func (m *Memory) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}
