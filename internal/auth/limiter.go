package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles credential attempts per remote address.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewLoginLimiter(perSecond float64, burst int) *LoginLimiter {
	return &LoginLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// Allow reports whether the address may attempt a login right now.
func (l *LoginLimiter) Allow(addr string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[addr]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[addr] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
