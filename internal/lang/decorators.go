package lang

import (
	"fmt"

	"github.com/ppiankov/tautohetohe/internal/cache"
	"github.com/ppiankov/tautohetohe/internal/logger"
)

// Cached memoises another classifier's results
type Cached struct {
	next      Classifier
	store     cache.Store
	namespace string
}

// NewCached wraps next with store. namespace separates results of different
// classifier implementations sharing one store.
func NewCached(next Classifier, store cache.Store, namespace string) *Cached {
	return &Cached{next: next, store: store, namespace: namespace}
}

// Classify implements Classifier. Errors are never remembered.
func (c *Cached) Classify(text string) (Result, error) {
	key := Normalize(text)
	if v, ok := c.store.Lookup(c.namespace, key); ok {
		return Result{
			Counts:   Counts{Target: v.Target, Ambiguous: v.Ambiguous, Other: v.Other},
			Percent:  v.Percent,
			IsTarget: v.IsTarget,
		}, nil
	}

	r, err := c.next.Classify(text)
	if err != nil {
		return r, err
	}
	_ = c.store.Remember(c.namespace, key, cache.Verdict{
		Target:    r.Target,
		Ambiguous: r.Ambiguous,
		Other:     r.Other,
		Percent:   r.Percent,
		IsTarget:  r.IsTarget,
	})
	return r, nil
}

// Safe shields the extractor from a misbehaving classifier: errors, panics
// and invalid results become a zero, non-target Result and a warning
type Safe struct {
	next     Classifier
	log      *logger.Logger
	throttle *logger.Throttle
	key      string
}

// NewSafe wraps next. key labels throttled warnings, usually the volume name.
func NewSafe(next Classifier, log *logger.Logger, throttle *logger.Throttle, key string) *Safe {
	if log == nil {
		log = logger.Nop()
	}
	return &Safe{next: next, log: log, throttle: throttle, key: key}
}

// Classify implements Classifier and never returns an error
func (s *Safe) Classify(text string) (r Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.throttle.Warn(s.log, s.key, fmt.Errorf("panic: %v", p), "language classifier panicked; treating fragment as other")
			r, err = Result{}, nil
		}
	}()

	r, err = s.next.Classify(text)
	if err != nil {
		s.throttle.Warn(s.log, s.key, err, "language classifier failed; treating fragment as other")
		return Result{}, nil
	}
	if !r.Valid() {
		s.throttle.Warn(s.log, s.key, fmt.Errorf("invalid result %+v", r), "language classifier returned an invalid result; treating fragment as other")
		return Result{}, nil
	}
	return r, nil
}
