// Package metalslive reads the public metals.live spot history feed. It is
// both a TickSource for candles and a spot Adapter (latest tick).
package metalslive

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"metalquotes/internal/httpx"
	"metalquotes/internal/provider"
)

const DefaultURL = "https://api.metals.live/v1/spot"

var slugs = map[provider.Symbol]string{
	provider.Gold:   "gold",
	provider.Silver: "silver",
}

type Config struct {
	Name string
	URL  string
	// CacheTTL keeps the last fetched series so a spot lookup and a candle
	// build in the same request window share one upstream call. 0 disables.
	CacheTTL time.Duration
}

type Provider struct {
	cfg    Config
	client *httpx.Client
	ticks  *ttlcache.Cache[provider.Symbol, []provider.Tick]
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "metals.live"
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	p := &Provider{cfg: cfg, client: hc}
	if cfg.CacheTTL > 0 {
		p.ticks = ttlcache.New[provider.Symbol, []provider.Tick](
			ttlcache.WithTTL[provider.Symbol, []provider.Tick](cfg.CacheTTL),
			ttlcache.WithDisableTouchOnHit[provider.Symbol, []provider.Tick](),
		)
	}
	return p
}

func (p *Provider) Name() string { return p.cfg.Name }

// Payload is an array of [timestamp, price] pairs; timestamps may be seconds
// or milliseconds.
var schema = provider.MustSchema(`{
	"type": "array",
	"items": {
		"type": "array",
		"minItems": 2,
		"items": {"type": "number"}
	}
}`)

// FetchTicks returns the feed in upstream order. The slice is shared with
// the cache and must not be modified.
func (p *Provider) FetchTicks(ctx context.Context, symbol provider.Symbol) ([]provider.Tick, error) {
	if p.ticks != nil {
		if item := p.ticks.Get(symbol); item != nil {
			return item.Value(), nil
		}
	}
	slug, ok := slugs[symbol]
	if !ok {
		return nil, provider.Errorf(p.cfg.Name, provider.Unavailable, "unsupported symbol %s", symbol)
	}
	body, err := p.client.GetBody(ctx, fmt.Sprintf("%s/%s", p.cfg.URL, slug), nil, "")
	if err != nil {
		return nil, provider.Classify(p.cfg.Name, err)
	}
	doc, err := schema.Decode(p.cfg.Name, body)
	if err != nil {
		return nil, err
	}
	rows, _ := doc.([]any)
	ticks := make([]provider.Tick, 0, len(rows))
	for _, row := range rows {
		pair, _ := row.([]any)
		if len(pair) < 2 {
			continue
		}
		ts, _ := pair[0].(float64)
		price, _ := pair[1].(float64)
		ticks = append(ticks, provider.Tick{
			TimestampSec: provider.EpochMillis(int64(ts)) / 1000,
			Price:        price,
		})
	}
	if p.ticks != nil {
		p.ticks.Set(symbol, ticks, ttlcache.DefaultTTL)
	}
	return ticks, nil
}

// FetchSpot reports the most recent tick as a direct USD/oz price.
func (p *Provider) FetchSpot(ctx context.Context, symbol provider.Symbol) (provider.RawQuote, error) {
	ticks, err := p.FetchTicks(ctx, symbol)
	if err != nil {
		return provider.RawQuote{}, err
	}
	var last *provider.Tick
	for i := range ticks {
		t := &ticks[i]
		if math.IsNaN(t.Price) || math.IsInf(t.Price, 0) {
			continue
		}
		if last == nil || t.TimestampSec >= last.TimestampSec {
			last = t
		}
	}
	if last == nil {
		return provider.RawQuote{}, provider.Errorf(p.cfg.Name, provider.Malformed, "%s: empty feed", symbol.Code())
	}
	return provider.RawQuote{Price: provider.Float(last.Price), TimestampMs: last.TimestampSec * 1000}, nil
}
