package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/dxcite/internal/cache"
	"golang.org/x/sync/singleflight"
)

// Cached serves identical requests from a content-addressed cache and lets
// only one call per key reach the collaborator at a time.
type Cached struct {
	next  Provider
	store cache.Cache
	ttl   time.Duration
	model string // Model requested when a request names none
	group singleflight.Group
}

// NewCached wraps a provider with a response cache
func NewCached(next Provider, store cache.Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, store: store, ttl: ttl}
}

// WithModel sets the model filled into requests that name none, so the
// model that answers is always part of the cache key
func (c *Cached) WithModel(name string) *Cached {
	c.model = name
	return c
}

// Name returns the wrapped provider's name
func (c *Cached) Name() string { return c.next.Name() }

// IsAvailable delegates to the wrapped provider
func (c *Cached) IsAvailable(ctx context.Context) bool { return c.next.IsAvailable(ctx) }

// Complete returns the cached response for an identical request, or calls
// the collaborator once and caches a completed answer. The shared call is
// detached from any single caller's cancellation; each caller still stops
// waiting when its own context ends.
func (c *Cached) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	key := RequestKey(c.next.Name(), req)

	if resp, ok := c.lookup(key); ok {
		return resp, nil
	}

	shared := context.WithoutCancel(ctx)
	flight := c.group.DoChan(key, func() (any, error) {
		if resp, ok := c.lookup(key); ok {
			return resp, nil
		}
		resp, err := c.next.Complete(shared, req)
		if err != nil {
			return nil, err
		}
		if resp.Completed {
			if data, err := json.Marshal(resp); err == nil {
				_ = c.store.Set(key, data, c.ttl)
			}
		}
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		// Callers sharing a flight each get their own copy
		out := *res.Val.(*Response)
		return &out, nil
	}
}

func (c *Cached) lookup(key string) (*Response, bool) {
	data, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		_ = c.store.Delete(key)
		return nil, false
	}
	resp.Cached = true
	return &resp, true
}

// RequestKey is the cache key of a request: provider, model, condition and
// the exact prompt text, which embeds the case description and hypotheses.
func RequestKey(provider string, req Request) string {
	schema := ""
	if req.Schema != nil {
		if data, err := req.Schema.MarshalJSON(); err == nil {
			schema = req.Schema.Name + ":" + string(data)
		}
	}
	return cache.Key("completion", provider, req.Model, string(req.Condition), req.System, req.Prompt, schema)
}
