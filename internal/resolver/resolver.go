// Package resolver produces one trustworthy spot quote per symbol by walking
// an ordered chain of (provider, credential) attempts.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"metalquotes/internal/logutils"
	"metalquotes/internal/metrics"
	"metalquotes/internal/normalize"
	"metalquotes/internal/provider"
)

// Attempt is one step of the fallback chain.
type Attempt struct {
	// Provider groups attempts that share a quota; a RateLimited failure
	// skips the group's remaining attempts.
	Provider string
	// Label identifies the credential, e.g. "metalprice#2".
	Label   string
	Adapter provider.Adapter
	// Timeout bounds this attempt. Zero leaves only the parent deadline.
	Timeout time.Duration
}

// SpotQuote is a normalized USD per troy ounce price.
type SpotQuote struct {
	Symbol        provider.Symbol `json:"symbol"`
	PriceUSDPerOz float64         `json:"price"`
	AsOfMs        int64           `json:"timestampMs"`
	Provider      string          `json:"provider"`
	Degraded      bool            `json:"degraded"`
}

// Failure records why one attempt did not produce a quote.
type Failure struct {
	Provider string
	Label    string
	Err      error
}

// AggregateError is returned when no attempt succeeded. Failures are in
// attempt order; skipped attempts are absent.
type AggregateError struct {
	Symbol   provider.Symbol
	Failures []Failure
	// Cause is set when the parent context ended the chain early.
	Cause error
}

func (e *AggregateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "resolve %s: ", e.Symbol)
	if len(e.Failures) == 0 && e.Cause == nil {
		b.WriteString("no providers configured")
		return b.String()
	}
	fmt.Fprintf(&b, "%d attempt(s) failed", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; %s: %v", f.Label, f.Err)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, "; stopped: %v", e.Cause)
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Resolver walks the attempt chain sequentially.
type Resolver struct {
	attempts []Attempt
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = logutils.OrNop(l) }
}

// WithClock sets the clock used to stamp quotes that carry no timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New returns a Resolver that tries attempts in slice order.
func New(attempts []Attempt, opts ...Option) *Resolver {
	r := &Resolver{
		attempts: attempts,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attempts returns the configured chain.
func (r *Resolver) Attempts() []Attempt { return r.attempts }

// Resolve returns the first normalized quote in chain order. Once an attempt
// succeeds no later attempt is invoked. If every attempt fails the error is
// an *AggregateError.
func (r *Resolver) Resolve(ctx context.Context, symbol provider.Symbol) (SpotQuote, error) {
	if !symbol.Valid() {
		return SpotQuote{}, fmt.Errorf("resolve: unsupported symbol %q", symbol)
	}
	agg := &AggregateError{Symbol: symbol}
	limited := map[string]bool{}
	for _, a := range r.attempts {
		if err := ctx.Err(); err != nil {
			agg.Cause = err
			break
		}
		if limited[a.Provider] {
			continue
		}
		q, err := r.try(ctx, a, symbol)
		if err == nil {
			return q, nil
		}
		r.logger.Debug("spot attempt failed",
			zap.String("symbol", string(symbol)),
			zap.String("attempt", a.Label),
			zap.Error(err))
		agg.Failures = append(agg.Failures, Failure{Provider: a.Provider, Label: a.Label, Err: err})
		if provider.KindOf(err) == provider.RateLimited {
			limited[a.Provider] = true
		}
	}
	r.logger.Warn("spot resolution failed", zap.String("symbol", string(symbol)), zap.Error(agg))
	return SpotQuote{}, agg
}

func (r *Resolver) try(ctx context.Context, a Attempt, symbol provider.Symbol) (SpotQuote, error) {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	rq, err := a.Adapter.FetchSpot(ctx, symbol)
	if err != nil {
		err = provider.Classify(a.Provider, err)
		metrics.ObserveAttempt(a.Provider, provider.KindOf(err).String())
		return SpotQuote{}, err
	}
	res, err := normalize.USDPerOunce(rq)
	if err != nil {
		metrics.ObserveAttempt(a.Provider, metrics.OutcomeNormalize)
		return SpotQuote{}, fmt.Errorf("%s: %w", a.Provider, err)
	}
	metrics.ObserveAttempt(a.Provider, metrics.OutcomeOK)
	asOf := rq.TimestampMs
	if asOf <= 0 {
		asOf = r.now().UnixMilli()
	}
	return SpotQuote{
		Symbol:        symbol,
		PriceUSDPerOz: res.PriceUSDPerOz,
		AsOfMs:        asOf,
		Provider:      a.Provider,
	}, nil
}

// IsAggregate reports whether err carries an *AggregateError.
func IsAggregate(err error) bool {
	var agg *AggregateError
	return errors.As(err, &agg)
}
