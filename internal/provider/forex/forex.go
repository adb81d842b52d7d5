// Package forex reads a liquidity-venue bid/ask feed. Each symbol has its own
// endpoint; the spot price is the mid of the venue quote with the tightest
// positive spread.
package forex

import (
	"context"

	"metalquotes/internal/httpx"
	"metalquotes/internal/provider"
)

type Config struct {
	Name   string
	URLs   map[provider.Symbol]string
	APIKey string // optional; sent as Bearer token
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "forex"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Payload:
//
//	[
//	  {"ts": 1700000000000, "spreadProfilePrices": [{"bid": 2303.9, "ask": 2304.3}]},
//	  ...
//	]
var schema = provider.MustSchema(`{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"ts": {"type": "number"},
			"spreadProfilePrices": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["bid", "ask"],
					"properties": {
						"bid": {"type": "number"},
						"ask": {"type": "number"}
					}
				}
			}
		}
	}
}`)

func (p *Provider) FetchSpot(ctx context.Context, symbol provider.Symbol) (provider.RawQuote, error) {
	url := p.cfg.URLs[symbol]
	if url == "" {
		return provider.RawQuote{}, provider.Errorf(p.cfg.Name, provider.Unavailable, "no endpoint configured for %s", symbol)
	}
	var headers map[string]string
	if p.cfg.APIKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}
	}
	body, err := p.client.GetBody(ctx, url, headers, "")
	if err != nil {
		return provider.RawQuote{}, provider.Classify(p.cfg.Name, err)
	}
	doc, err := schema.Decode(p.cfg.Name, body)
	if err != nil {
		return provider.RawQuote{}, err
	}

	var (
		found         bool
		bestSpread    float64
		bestMid       float64
		bestTimestamp int64
	)
	venues, _ := doc.([]any)
	for _, v := range venues {
		venue, _ := v.(map[string]any)
		ts, _ := venue["ts"].(float64)
		prices, _ := venue["spreadProfilePrices"].([]any)
		for _, raw := range prices {
			q, _ := raw.(map[string]any)
			bid, _ := q["bid"].(float64)
			ask, _ := q["ask"].(float64)
			spread := ask - bid
			if bid <= 0 || spread <= 0 {
				continue
			}
			if !found || spread < bestSpread {
				found = true
				bestSpread = spread
				bestMid = (bid + ask) / 2
				bestTimestamp = int64(ts)
			}
		}
	}
	if !found {
		return provider.RawQuote{}, provider.Errorf(p.cfg.Name, provider.Malformed, "%s: no bid/ask with positive spread", symbol.Code())
	}
	rq := provider.RawQuote{Price: provider.Float(bestMid)}
	if bestTimestamp > 0 {
		rq.TimestampMs = provider.EpochMillis(bestTimestamp)
	}
	return rq, nil
}
