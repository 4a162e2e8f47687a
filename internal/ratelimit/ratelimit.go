// Package ratelimit paces database calls so a run can be pointed at a shared
// cluster without bursting it.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer maintains one limiter per key (a collection name). Calls for
// different keys do not consume each other's budget.
type Pacer struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewPacer creates a pacer allowing perSecond calls per key with the given burst.
// perSecond <= 0 disables pacing.
func NewPacer(perSecond float64, burst int) *Pacer {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Every(time.Duration(float64(time.Second) / perSecond))
	}
	if burst <= 0 {
		burst = 1
	}
	return &Pacer{
		limit:    limit,
		burst:    burst,
		limiters: map[string]*rate.Limiter{},
	}
}

// Unlimited returns a pacer that never waits.
func Unlimited() *Pacer {
	return NewPacer(0, 1)
}

// getLimiter returns or creates a limiter for key
func (p *Pacer) getLimiter(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.limiters[key]; ok {
		return l
	}
	l := rate.NewLimiter(p.limit, p.burst)
	p.limiters[key] = l
	return l
}

// Allow reports whether a call for key may happen now without waiting.
func (p *Pacer) Allow(key string) bool {
	return p.getLimiter(key).Allow()
}

// Wait blocks until a call for key is permitted or ctx is done.
func (p *Pacer) Wait(ctx context.Context, key string) error {
	return p.getLimiter(key).Wait(ctx)
}
