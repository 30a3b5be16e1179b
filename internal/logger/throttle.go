package logger

import (
	"sync"

	"golang.org/x/time/rate"
)

// Throttle rate-limits repeated warnings per key (usually a volume name)
type Throttle struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewThrottle creates a throttle allowing perSecond events per key after an
// initial burst
func NewThrottle(perSecond float64, burst int) *Throttle {
	if burst <= 0 {
		burst = 5
	}

	return &Throttle{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(perSecond),
		defaultBurst: burst,
	}
}

// Allow reports whether another event for key may be logged now
func (t *Throttle) Allow(key string) bool {
	return t.limiter(key).Allow()
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	t.mu.RLock()
	limiter, exists := t.limiters[key]
	t.mu.RUnlock()

	if exists {
		return limiter
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := t.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(t.defaultRate, t.defaultBurst)
	t.limiters[key] = limiter
	return limiter
}

// Warn logs msg for key when the throttle allows it
func (t *Throttle) Warn(log *Logger, key string, err error, msg string) {
	if t == nil || t.Allow(key) {
		log.Warn().Err(err).Str("key", key).Msg(msg)
	}
}
