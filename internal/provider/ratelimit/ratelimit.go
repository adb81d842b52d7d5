package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"metalquotes/internal/provider"
)

// Limited wraps an adapter with a local request budget. Calls over budget
// are refused with a RateLimited error instead of waiting.
type Limited struct {
	A provider.Adapter
	L *rate.Limiter
}

// New allows one call per interval with the given burst. A non-positive
// interval returns a disabled wrapper.
func New(a provider.Adapter, interval time.Duration, burst int) *Limited {
	if interval <= 0 {
		return &Limited{A: a}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limited{A: a, L: rate.NewLimiter(rate.Every(interval), burst)}
}

func (l *Limited) Name() string { return l.A.Name() }

func (l *Limited) FetchSpot(ctx context.Context, symbol provider.Symbol) (provider.RawQuote, error) {
	if l.L != nil && !l.L.Allow() {
		return provider.RawQuote{}, provider.Errorf(l.A.Name(), provider.RateLimited, "local budget exhausted")
	}
	return l.A.FetchSpot(ctx, symbol)
}
