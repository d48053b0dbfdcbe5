package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajbcloud/FutsalCulture-sub006/pkg/responses"
)

// Limiter is a fixed-window counter keyed by client IP. Public admission
// endpoints (get-started, join/by-token, join/by-code) sit behind it so a
// leaked join code cannot be brute-forced from one host. Domain state never
// lives here; counters are process-local by design.
type Limiter struct {
	window time.Duration
	max    int

	mu      sync.Mutex
	windows map[string]*windowEntry
}

type windowEntry struct {
	start time.Time
	count int
}

// New creates a Limiter allowing max requests per key per window.
func New(window time.Duration, max int) *Limiter {
	return &Limiter{
		window:  window,
		max:     max,
		windows: make(map[string]*windowEntry),
	}
}

// Allow reports whether another request from key fits in the current window.
func (l *Limiter) Allow(key string) bool {
	if l.max <= 0 {
		return true // disabled
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.windows[key]
	if !ok || now.Sub(e.start) >= l.window {
		l.windows[key] = &windowEntry{start: now, count: 1}
		l.sweepLocked(now)
		return true
	}
	if e.count >= l.max {
		return false
	}
	e.count++
	return true
}

// sweepLocked drops windows that ended, bounding map growth. Called with
// l.mu held, piggybacked on window rollover so no background goroutine is
// needed.
func (l *Limiter) sweepLocked(now time.Time) {
	for k, e := range l.windows {
		if now.Sub(e.start) >= l.window {
			delete(l.windows, k)
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			responses.SendError(c, http.StatusTooManyRequests, "Too many requests, slow down")
			return
		}
		c.Next()
	}
}
