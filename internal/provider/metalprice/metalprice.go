// Package metalprice queries metalpriceapi.com. One Provider holds one API
// key; key rotation is expressed by building one Provider per key and letting
// the resolver walk them in order.
package metalprice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"metalquotes/internal/httpx"
	"metalquotes/internal/provider"
)

const DefaultURL = "https://api.metalpriceapi.com/v1/latest"

type Config struct {
	Name   string
	URL    string
	APIKey string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "metalprice"
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Response shape (base=USD):
//
//	{
//	  "success": true,
//	  "base": "USD",
//	  "timestamp": 1700000000,
//	  "rates": {"XAU": 0.000434, "USDXAU": 2304.1}
//	}
//
// "XAU" is ounces of metal per dollar; "USDXAU", when the plan returns it,
// is already dollars per ounce.
var schema = provider.MustSchema(`{
	"type": "object",
	"required": ["rates"],
	"properties": {
		"success": {"type": "boolean"},
		"base": {"type": "string", "enum": ["USD"]},
		"timestamp": {"type": "number"},
		"rates": {
			"type": "object",
			"additionalProperties": {"type": "number"}
		}
	}
}`)

var fields = provider.FieldMap{
	{Path: "rates.USD{code}", Slot: provider.SlotPrice},
	{Path: "rates.{code}", Slot: provider.SlotRate},
	{Path: "timestamp", Slot: provider.SlotTimestampSec},
}

// errorEnvelope is returned with HTTP 200 when the key is rejected or the
// monthly quota is exhausted.
type errorEnvelope struct {
	Success *bool `json:"success"`
	Error   *struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
	} `json:"error"`
}

func (p *Provider) FetchSpot(ctx context.Context, symbol provider.Symbol) (provider.RawQuote, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return provider.RawQuote{}, provider.Errorf(p.cfg.Name, provider.Unavailable, "parse url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", p.cfg.APIKey)
	q.Set("base", "USD")
	q.Set("currencies", symbol.Code())
	u.RawQuery = q.Encode()

	body, err := p.client.GetBody(ctx, u.String(), nil, p.cfg.URL)
	if err != nil {
		return provider.RawQuote{}, provider.Classify(p.cfg.Name, err)
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Success != nil && !*env.Success {
		kind := provider.Unavailable
		code, msg := 0, ""
		if env.Error != nil {
			code, msg = env.Error.StatusCode, env.Error.Message
		}
		if code == http.StatusTooManyRequests {
			kind = provider.RateLimited
		}
		return provider.RawQuote{}, provider.Errorf(p.cfg.Name, kind, "provider error: code=%d msg=%q", code, msg)
	}

	doc, err := schema.Decode(p.cfg.Name, body)
	if err != nil {
		return provider.RawQuote{}, err
	}
	rq := fields.Extract(doc, symbol)
	if rq.Empty() {
		return provider.RawQuote{}, provider.Errorf(p.cfg.Name, provider.Malformed, "no rate for %s", symbol.Code())
	}
	return rq, nil
}
