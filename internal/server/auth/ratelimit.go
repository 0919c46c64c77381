package auth

import (
	"sync"
	"time"
)

// LimiterConfig sets the fixed window length and the number of requests
// allowed per window.
type LimiterConfig struct {
	WindowDuration time.Duration
	MaxRequests    int
}

type window struct {
	start time.Time
	count int
}

// Limiter is a fixed-window request counter keyed by client address. Each
// instance owns its window map; instances are constructor-injected so tests
// and multiple endpoints get isolated state.
type Limiter struct {
	mu      sync.Mutex
	config  LimiterConfig
	windows map[string]*window
	now     func() time.Time
}

func NewLimiter(config LimiterConfig) *Limiter {
	return &Limiter{
		config:  config,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow records one request from key and reports whether it is within the
// window budget. A request arriving exactly at windowStart+WindowDuration
// opens a new window. Once the threshold is reached the count saturates, so
// repeated denials within a window do not extend it.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.config.WindowDuration)) {
		l.windows[key] = &window{start: now, count: 1}
		return true
	}

	if w.count >= l.config.MaxRequests {
		return false
	}
	w.count++
	return true
}
