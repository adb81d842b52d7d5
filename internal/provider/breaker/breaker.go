// Package breaker guards an adapter with a hystrix circuit. Only Unavailable
// failures count against the circuit; malformed payloads and quota refusals
// are returned to the caller without tripping it.
package breaker

import (
	"context"
	"errors"

	"github.com/afex/hystrix-go/hystrix"

	"metalquotes/internal/provider"
)

// Config mirrors hystrix.CommandConfig. Durations are milliseconds.
type Config struct {
	Timeout                int
	MaxConcurrentRequests  int
	RequestVolumeThreshold int
	SleepWindow            int
	ErrorPercentThreshold  int
}

type Breaker struct {
	A       provider.Adapter
	Circuit string
}

// Wrap registers circuit (once per process) and returns the guarded adapter.
func Wrap(a provider.Adapter, circuit string, cfg Config) *Breaker {
	if hystrix.GetCircuitSettings()[circuit] == nil {
		hystrix.ConfigureCommand(circuit, hystrix.CommandConfig{
			Timeout:                cfg.Timeout,
			MaxConcurrentRequests:  cfg.MaxConcurrentRequests,
			RequestVolumeThreshold: cfg.RequestVolumeThreshold,
			SleepWindow:            cfg.SleepWindow,
			ErrorPercentThreshold:  cfg.ErrorPercentThreshold,
		})
	}
	return &Breaker{A: a, Circuit: circuit}
}

func (b *Breaker) Name() string { return b.A.Name() }

func (b *Breaker) FetchSpot(ctx context.Context, symbol provider.Symbol) (provider.RawQuote, error) {
	var (
		rq      provider.RawQuote
		callErr error
	)
	err := hystrix.DoC(ctx, b.Circuit, func(ctx context.Context) error {
		q, err := b.A.FetchSpot(ctx, symbol)
		if err != nil && provider.KindOf(err) != provider.Unavailable && provider.KindOf(err) != 0 {
			callErr = err
			return nil
		}
		if err != nil {
			return err
		}
		rq = q
		return nil
	}, nil)
	if err != nil {
		return provider.RawQuote{}, b.translate(err)
	}
	if callErr != nil {
		return provider.RawQuote{}, callErr
	}
	return rq, nil
}

func (b *Breaker) translate(err error) error {
	switch {
	case errors.Is(err, hystrix.ErrCircuitOpen):
		return &provider.Error{Provider: b.A.Name(), Kind: provider.Unavailable, Err: err}
	case errors.Is(err, hystrix.ErrTimeout):
		return &provider.Error{Provider: b.A.Name(), Kind: provider.Unavailable, Err: err}
	case errors.Is(err, hystrix.ErrMaxConcurrency):
		return &provider.Error{Provider: b.A.Name(), Kind: provider.RateLimited, Err: err}
	}
	return provider.Classify(b.A.Name(), err)
}
