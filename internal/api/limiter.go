package api

import (
	"sync"

	"estatehub/internal/config"

	"golang.org/x/time/rate"
)

// clientLimiter keeps one token bucket per client key.
type clientLimiter struct {
	limiters sync.Map
	cfg      config.APIRateLimitConfig
}

func newClientLimiter(cfg config.APIRateLimitConfig) *clientLimiter {
	return &clientLimiter{cfg: cfg}
}

// Allow reports whether key may proceed. A non-positive RPS disables limiting.
func (l *clientLimiter) Allow(key string) bool {
	if l == nil || l.cfg.RPS <= 0 {
		return true
	}
	return l.getLimiter(key).Allow()
}

func (l *clientLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
