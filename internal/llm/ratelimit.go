package llm

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per key (provider/model)
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until a request for key may proceed
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

// Allow reports whether a request for key may proceed now
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[key] = limiter
	return limiter
}

// RateLimited makes every collaborator call wait for a token
type RateLimited struct {
	next    Provider
	limiter *Limiter
}

// NewRateLimited wraps a provider with a limiter
func NewRateLimited(next Provider, limiter *Limiter) *RateLimited {
	return &RateLimited{next: next, limiter: limiter}
}

// Name returns the wrapped provider's name
func (r *RateLimited) Name() string { return r.next.Name() }

// IsAvailable delegates to the wrapped provider
func (r *RateLimited) IsAvailable(ctx context.Context) bool { return r.next.IsAvailable(ctx) }

// Complete waits for the limiter, then calls the wrapped provider
func (r *RateLimited) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx, r.next.Name()+"/"+req.Model); err != nil {
		return nil, err
	}
	return r.next.Complete(ctx, req)
}
