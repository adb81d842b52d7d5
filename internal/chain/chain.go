// Package chain turns configuration into the resolver's attempt list.
package chain

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"metalquotes/internal/config"
	"metalquotes/internal/httpx"
	"metalquotes/internal/logutils"
	"metalquotes/internal/provider"
	"metalquotes/internal/provider/breaker"
	"metalquotes/internal/provider/forex"
	"metalquotes/internal/provider/goldapi"
	"metalquotes/internal/provider/metalprice"
	"metalquotes/internal/provider/metalslive"
	"metalquotes/internal/provider/ratelimit"
	"metalquotes/internal/resolver"
)

type Chain struct {
	Attempts []resolver.Attempt
	// Ticks is the candle history source, nil when metals.live is disabled.
	Ticks provider.TickSource
}

// Build assembles attempts in cfg.Providers.Order. Each credential becomes
// its own attempt, wrapped in a local rate limiter and, when enabled, a
// circuit breaker named after the attempt label.
func Build(cfg config.Config, hc *httpx.Client, logger *zap.Logger) (Chain, error) {
	logger = logutils.OrNop(logger)
	p := cfg.Providers
	var ch Chain
	var live *metalslive.Provider
	if p.MetalsLive.Enabled {
		live = metalslive.New(metalslive.Config{
			URL:      p.MetalsLive.Endpoint,
			CacheTTL: seconds(p.MetalsLive.TicksCacheTTLSec),
		}, hc)
		ch.Ticks = live
	}

	for _, name := range p.Order {
		switch name {
		case config.Metalprice:
			if !p.Metalprice.Enabled {
				continue
			}
			if len(p.Metalprice.APIKeys) == 0 {
				logger.Warn("metalprice enabled but no api keys set; skipping")
				continue
			}
			for i, key := range p.Metalprice.APIKeys {
				a := metalprice.New(metalprice.Config{URL: p.Metalprice.Endpoint, APIKey: key}, hc)
				label := fmt.Sprintf("%s#%d", config.Metalprice, i+1)
				ch.Attempts = append(ch.Attempts, attempt(cfg, config.Metalprice, label, a,
					p.Metalprice.MaxRequestsPerMinute, p.Metalprice.Burst, p.Metalprice.TimeoutSec))
			}
		case config.GoldAPI:
			if !p.GoldAPI.Enabled {
				continue
			}
			if len(p.GoldAPI.Tokens) == 0 {
				logger.Warn("goldapi enabled but no tokens set; skipping")
				continue
			}
			for i, tok := range p.GoldAPI.Tokens {
				a := goldapi.New(goldapi.Config{URL: p.GoldAPI.Endpoint, Token: tok}, hc)
				label := fmt.Sprintf("%s#%d", config.GoldAPI, i+1)
				ch.Attempts = append(ch.Attempts, attempt(cfg, config.GoldAPI, label, a,
					p.GoldAPI.MaxRequestsPerMinute, p.GoldAPI.Burst, p.GoldAPI.TimeoutSec))
			}
		case config.MetalsLive:
			if live == nil {
				continue
			}
			ch.Attempts = append(ch.Attempts, attempt(cfg, config.MetalsLive, config.MetalsLive, live, 0, 0, p.MetalsLive.TimeoutSec))
		case config.Forex:
			if !p.Forex.Enabled {
				continue
			}
			urls := map[provider.Symbol]string{}
			if p.Forex.XAUURL != "" {
				urls[provider.Gold] = p.Forex.XAUURL
			}
			if p.Forex.XAGURL != "" {
				urls[provider.Silver] = p.Forex.XAGURL
			}
			a := forex.New(forex.Config{URLs: urls, APIKey: p.Forex.APIKey}, hc)
			ch.Attempts = append(ch.Attempts, attempt(cfg, config.Forex, config.Forex, a, 0, 0, p.Forex.TimeoutSec))
		default:
			return Chain{}, fmt.Errorf("unknown provider %q", name)
		}
	}
	logger.Info("provider chain built", zap.Int("attempts", len(ch.Attempts)), zap.Bool("ticks", ch.Ticks != nil))
	return ch, nil
}

func attempt(cfg config.Config, name, label string, a provider.Adapter, rpm, burst, timeoutSec int) resolver.Attempt {
	if rpm > 0 {
		a = ratelimit.New(a, time.Minute/time.Duration(rpm), burst)
	}
	if b := cfg.Providers.Breaker; b.Enabled {
		a = breaker.Wrap(a, label, breaker.Config{
			Timeout:                b.TimeoutMs,
			MaxConcurrentRequests:  b.MaxConcurrentRequests,
			RequestVolumeThreshold: b.RequestVolumeThreshold,
			SleepWindow:            b.SleepWindowMs,
			ErrorPercentThreshold:  b.ErrorPercentThreshold,
		})
	}
	return resolver.Attempt{Provider: name, Label: label, Adapter: a, Timeout: seconds(timeoutSec)}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
