// Package rates provides exchange-rate lookup with a time-boxed cache and
// last-known-good fallback. Rate lookups are total: they always yield a
// number, never an error.
package rates

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/core"
)

// DefaultTTL is the freshness window for a cached rate. Staleness past the
// window is a performance concern, not a correctness one.
const DefaultTTL = 24 * time.Hour

// Upstream fetches a conversion rate between two currency codes.
type Upstream interface {
	FetchRate(ctx context.Context, from, to string) (float64, error)
}

type cachedRate struct {
	rate      float64
	fetchedAt time.Time
}

// Provider caches upstream rates per (from,to) pair. It is safe for use
// from concurrent requests.
type Provider struct {
	upstream Upstream
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cachedRate
}

// NewProvider constructs a Provider. ttl and now are injectable so tests
// can drive the cache with a fake clock; production callers pass
// DefaultTTL and time.Now.
func NewProvider(upstream Upstream, ttl time.Duration, now func() time.Time) *Provider {
	return &Provider{
		upstream: upstream,
		ttl:      ttl,
		now:      now,
		cache:    make(map[string]cachedRate),
	}
}

// Rate returns the conversion rate from one currency to another.
// Identical currencies short-circuit to 1.0 with no upstream call. A fresh
// cache entry is served without a call. On upstream failure any cached
// value wins, stale included; with no cache at all the rate falls back to
// 1.0.
func (p *Provider) Rate(ctx context.Context, from, to string) float64 {
	if from == to {
		return 1.0
	}

	key := from + "_" + to

	p.mu.Lock()
	if c, ok := p.cache[key]; ok && p.now().Sub(c.fetchedAt) < p.ttl {
		p.mu.Unlock()
		return c.rate
	}
	p.mu.Unlock()

	rate, err := p.upstream.FetchRate(ctx, from, to)
	if err != nil {
		log.Printf("exchange rate fetch failed for %s: %v", key, err)
		p.mu.Lock()
		defer p.mu.Unlock()
		if c, ok := p.cache[key]; ok {
			return c.rate
		}
		return 1.0
	}

	p.mu.Lock()
	p.cache[key] = cachedRate{rate: rate, fetchedAt: p.now()}
	p.mu.Unlock()
	return rate
}

// ConvertToBase converts an amount in the given currency to the base
// currency at the current rate.
func (p *Provider) ConvertToBase(ctx context.Context, amount decimal.Decimal, currency string) decimal.Decimal {
	rate := p.Rate(ctx, currency, core.BaseCurrency)
	return amount.Mul(decimal.NewFromFloat(rate))
}
