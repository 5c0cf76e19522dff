package rates_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/rates"
)

// fakeUpstream counts calls and can be switched to failing mid-test.
type fakeUpstream struct {
	mu    sync.Mutex
	rate  float64
	err   error
	calls int
}

func (f *fakeUpstream) FetchRate(ctx context.Context, from, to string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.rate, nil
}

func (f *fakeUpstream) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeUpstream) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestProvider(upstream *fakeUpstream) (*rates.Provider, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	return rates.NewProvider(upstream, rates.DefaultTTL, clock.Now), clock
}

func TestRate_IdenticalCurrencies(t *testing.T) {
	upstream := &fakeUpstream{rate: 4.2}
	p, _ := newTestProvider(upstream)

	if got := p.Rate(context.Background(), "USD", "USD"); got != 1.0 {
		t.Errorf("Rate(USD, USD) = %v, want 1.0", got)
	}
	if upstream.callCount() != 0 {
		t.Errorf("identity conversion must not hit the upstream, got %d calls", upstream.callCount())
	}
}

func TestRate_CachesWithinFreshnessWindow(t *testing.T) {
	upstream := &fakeUpstream{rate: 4.2}
	p, clock := newTestProvider(upstream)
	ctx := context.Background()

	if got := p.Rate(ctx, "USD", "PLN"); got != 4.2 {
		t.Fatalf("first Rate = %v, want 4.2", got)
	}

	clock.advance(23 * time.Hour)
	if got := p.Rate(ctx, "USD", "PLN"); got != 4.2 {
		t.Errorf("cached Rate = %v, want 4.2", got)
	}
	if upstream.callCount() != 1 {
		t.Errorf("expected 1 upstream call, got %d", upstream.callCount())
	}

	// Past the window a fresh fetch happens.
	clock.advance(2 * time.Hour)
	upstream.mu.Lock()
	upstream.rate = 4.5
	upstream.mu.Unlock()
	if got := p.Rate(ctx, "USD", "PLN"); got != 4.5 {
		t.Errorf("refreshed Rate = %v, want 4.5", got)
	}
	if upstream.callCount() != 2 {
		t.Errorf("expected 2 upstream calls, got %d", upstream.callCount())
	}
}

func TestRate_FallsBackToStaleValue(t *testing.T) {
	upstream := &fakeUpstream{rate: 4.2}
	p, clock := newTestProvider(upstream)
	ctx := context.Background()

	if got := p.Rate(ctx, "USD", "PLN"); got != 4.2 {
		t.Fatalf("first Rate = %v", got)
	}

	clock.advance(48 * time.Hour)
	upstream.fail(fmt.Errorf("upstream down"))

	if got := p.Rate(ctx, "USD", "PLN"); got != 4.2 {
		t.Errorf("stale fallback = %v, want 4.2", got)
	}
}

func TestRate_FallsBackToOneWithoutCache(t *testing.T) {
	upstream := &fakeUpstream{}
	upstream.fail(fmt.Errorf("upstream down"))
	p, _ := newTestProvider(upstream)

	if got := p.Rate(context.Background(), "EUR", "PLN"); got != 1.0 {
		t.Errorf("Rate with no cache = %v, want 1.0", got)
	}
}

func TestConvertToBase(t *testing.T) {
	upstream := &fakeUpstream{rate: 4.0}
	p, _ := newTestProvider(upstream)

	got := p.ConvertToBase(context.Background(), decimal.NewFromInt(250), "USD")
	if !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("ConvertToBase(250, USD) = %s, want 1000", got)
	}

	// Base-currency amounts pass through at 1.0 with no upstream call.
	calls := upstream.callCount()
	got = p.ConvertToBase(context.Background(), decimal.NewFromInt(77), "PLN")
	if !got.Equal(decimal.NewFromInt(77)) {
		t.Errorf("ConvertToBase(77, PLN) = %s, want 77", got)
	}
	if upstream.callCount() != calls {
		t.Errorf("base-currency conversion hit the upstream")
	}
}

func TestRate_ConcurrentAccess(t *testing.T) {
	upstream := &fakeUpstream{rate: 4.2}
	p, _ := newTestProvider(upstream)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := p.Rate(context.Background(), "USD", "PLN"); got != 4.2 {
				t.Errorf("concurrent Rate = %v", got)
			}
		}()
	}
	wg.Wait()
}
