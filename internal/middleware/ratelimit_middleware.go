package middleware

import (
	"sync"
	"time"
)

const (
	maxInvalidAttempts = 5
	attemptWindow      = time.Minute
)

// InvalidAuthRateLimiter throttles repeated failed authentications per
// source address. Successful requests are never counted.
type InvalidAuthRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*authWindow
}

type authWindow struct {
	count    int
	openedAt time.Time
}

func NewInvalidAuthRateLimiter() *InvalidAuthRateLimiter {
	rl := &InvalidAuthRateLimiter{windows: make(map[string]*authWindow)}
	go rl.sweep()
	return rl
}

// Allow records one failed attempt for ip and reports whether the caller
// is still under the per-window limit.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	w, ok := r.windows[ip]
	if !ok || now.Sub(w.openedAt) > attemptWindow {
		r.windows[ip] = &authWindow{count: 1, openedAt: now}
		return true
	}
	if w.count >= maxInvalidAttempts {
		return false
	}
	w.count++
	return true
}

func (r *InvalidAuthRateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		r.mu.Lock()
		now := time.Now()
		for ip, w := range r.windows {
			if now.Sub(w.openedAt) > attemptWindow {
				delete(r.windows, ip)
			}
		}
		r.mu.Unlock()
	}
}
