// Package goldapi queries goldapi.io with an access token.
package goldapi

import (
	"context"
	"fmt"
	"strings"

	"metalquotes/internal/httpx"
	"metalquotes/internal/provider"
)

const DefaultURL = "https://www.goldapi.io/api"

type Config struct {
	Name  string
	URL   string
	Token string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "goldapi"
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Response shape for /{code}/USD:
//
//	{
//	  "timestamp": 1700000000,
//	  "metal": "XAU",
//	  "currency": "USD",
//	  "price": 2304.1,
//	  "ask": 2304.6,
//	  "bid": 2303.7,
//	  "price_gram_24k": 74.08
//	}
var schema = provider.MustSchema(`{
	"type": "object",
	"properties": {
		"timestamp": {"type": "number"},
		"metal": {"type": "string"},
		"currency": {"type": "string", "enum": ["USD"]},
		"price": {"type": "number"},
		"ask": {"type": "number"},
		"bid": {"type": "number"},
		"price_gram_24k": {"type": "number"},
		"error": {"type": "string"}
	}
}`)

var fields = provider.FieldMap{
	{Path: "price", Slot: provider.SlotPrice},
	{Path: "ask", Slot: provider.SlotPrice},
	{Path: "price_gram_24k", Slot: provider.SlotPricePerGram},
	{Path: "timestamp", Slot: provider.SlotTimestampSec},
}

func (p *Provider) FetchSpot(ctx context.Context, symbol provider.Symbol) (provider.RawQuote, error) {
	url := fmt.Sprintf("%s/%s/USD", p.cfg.URL, symbol.Code())
	headers := map[string]string{"x-access-token": p.cfg.Token}

	body, err := p.client.GetBody(ctx, url, headers, "")
	if err != nil {
		return provider.RawQuote{}, provider.Classify(p.cfg.Name, err)
	}
	doc, err := schema.Decode(p.cfg.Name, body)
	if err != nil {
		return provider.RawQuote{}, err
	}
	if obj, ok := doc.(map[string]any); ok {
		if msg, ok := obj["error"].(string); ok && msg != "" {
			return provider.RawQuote{}, provider.Errorf(p.cfg.Name, provider.Unavailable, "provider error: %s", msg)
		}
	}
	rq := fields.Extract(doc, symbol)
	if rq.Empty() {
		return provider.RawQuote{}, provider.Errorf(p.cfg.Name, provider.Malformed, "%s: no price field", symbol.Code())
	}
	return rq, nil
}
