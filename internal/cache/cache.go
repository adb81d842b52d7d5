// Package cache memoizes resolved spot quotes per symbol.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"metalquotes/internal/logutils"
	"metalquotes/internal/metrics"
	"metalquotes/internal/provider"
	"metalquotes/internal/resolver"
)

// Entry is the last successful resolution for one symbol.
type Entry struct {
	FetchedAtMs int64
	Value       resolver.SpotQuote
}

// Spot holds one entry per supported symbol. Each slot is an atomic pointer,
// so readers never block; concurrent writers race and the last store wins.
// Slots are allocated up front and the map is never written afterwards.
type Spot struct {
	slots map[provider.Symbol]*atomic.Pointer[Entry]
}

// NewSpot allocates an empty slot for every supported symbol.
func NewSpot() *Spot {
	s := &Spot{slots: make(map[provider.Symbol]*atomic.Pointer[Entry], len(provider.Symbols))}
	for _, sym := range provider.Symbols {
		s.slots[sym] = new(atomic.Pointer[Entry])
	}
	return s
}

// Load returns the entry for sym, if any.
func (s *Spot) Load(sym provider.Symbol) (Entry, bool) {
	slot, ok := s.slots[sym]
	if !ok {
		return Entry{}, false
	}
	e := slot.Load()
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

// Store replaces the entry for sym. Unknown symbols are ignored.
func (s *Spot) Store(sym provider.Symbol, e Entry) {
	if slot, ok := s.slots[sym]; ok {
		slot.Store(&e)
	}
}

// Source resolves a spot quote without caching.
type Source interface {
	Resolve(ctx context.Context, symbol provider.Symbol) (resolver.SpotQuote, error)
}

// Config controls freshness. A TTL <= 0 disables memoization.
type Config struct {
	TTL time.Duration
	// ServeStale returns an expired entry, flagged Degraded, when a refresh
	// fails.
	ServeStale bool
}

// Resolver memoizes a Source per symbol for Config.TTL. Failures never clear
// or extend an entry.
type Resolver struct {
	src    Source
	spot   *Spot
	cfg    Config
	now    func() time.Time
	logger *zap.Logger

	sf singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the clock used for entry age.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = logutils.OrNop(l) }
}

// New wraps src. A nil spot gets a fresh store.
func New(src Source, spot *Spot, cfg Config, opts ...Option) *Resolver {
	if spot == nil {
		spot = NewSpot()
	}
	r := &Resolver{src: src, spot: spot, cfg: cfg, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetSpot returns the cached quote while it is fresh and resolves otherwise.
// Concurrent misses for one symbol share a single resolution.
func (r *Resolver) GetSpot(ctx context.Context, sym provider.Symbol) (resolver.SpotQuote, error) {
	e, ok := r.spot.Load(sym)
	if ok && r.fresh(e) {
		metrics.ObserveCacheLookup(string(sym), metrics.CacheHit)
		return e.Value, nil
	}

	v, err, _ := r.sf.Do(string(sym), func() (any, error) {
		// Waiters share this call, so one caller going away must not cancel
		// it for the rest. Its deadline still applies.
		rctx := context.WithoutCancel(ctx)
		if dl, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			rctx, cancel = context.WithDeadline(rctx, dl)
			defer cancel()
		}
		q, err := r.src.Resolve(rctx, sym)
		if err != nil {
			return nil, err
		}
		r.spot.Store(sym, Entry{FetchedAtMs: r.now().UnixMilli(), Value: q})
		return q, nil
	})
	if err == nil {
		metrics.ObserveCacheLookup(string(sym), metrics.CacheMiss)
		return v.(resolver.SpotQuote), nil
	}

	if r.cfg.ServeStale {
		if e, ok := r.spot.Load(sym); ok {
			metrics.ObserveCacheLookup(string(sym), metrics.CacheStale)
			r.logger.Warn("serving stale spot",
				zap.String("symbol", string(sym)),
				zap.Int64("ageMs", r.now().UnixMilli()-e.FetchedAtMs),
				zap.Error(err))
			q := e.Value
			q.Degraded = true
			return q, nil
		}
	}
	return resolver.SpotQuote{}, err
}

// Peek returns the stored entry regardless of age.
func (r *Resolver) Peek(sym provider.Symbol) (Entry, bool) { return r.spot.Load(sym) }

func (r *Resolver) fresh(e Entry) bool {
	if r.cfg.TTL <= 0 {
		return false
	}
	return r.now().UnixMilli()-e.FetchedAtMs < r.cfg.TTL.Milliseconds()
}
