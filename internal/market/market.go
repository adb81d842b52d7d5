// Package market answers the public price queries. Every method returns a
// response value; failures are reported in the payload with OK=false.
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"metalquotes/internal/aggregate"
	"metalquotes/internal/logutils"
	"metalquotes/internal/metrics"
	"metalquotes/internal/provider"
	"metalquotes/internal/resolver"
)

// SpotGetter is satisfied by cache.Resolver.
//
//go:generate mockgen -package=market -destination=mock_market_test.go -source=market.go SpotGetter
type SpotGetter interface {
	GetSpot(ctx context.Context, symbol provider.Symbol) (resolver.SpotQuote, error)
}

// SpotResponse is the /api/spot payload.
type SpotResponse struct {
	OK          bool            `json:"ok"`
	Symbol      provider.Symbol `json:"symbol,omitempty"`
	Price       float64         `json:"price,omitempty"`
	TimestampMs int64           `json:"timestampMs,omitempty"`
	Provider    string          `json:"provider,omitempty"`
	Degraded    bool            `json:"degraded"`
	Error       string          `json:"error,omitempty"`
}

// CandlesResponse is the /api/candles payload. Candles is never null.
type CandlesResponse struct {
	OK        bool               `json:"ok"`
	Symbol    provider.Symbol    `json:"symbol,omitempty"`
	Timeframe string             `json:"timeframe,omitempty"`
	Candles   []aggregate.Candle `json:"candles"`
	Degraded  bool               `json:"degraded"`
	Error     string             `json:"error,omitempty"`
}

// QuotesResponse is the /api/quotes payload. Spot is null when neither a
// provider nor the tick feed has a price.
type QuotesResponse struct {
	OK        bool               `json:"ok"`
	Symbol    provider.Symbol    `json:"symbol,omitempty"`
	Timeframe string             `json:"timeframe,omitempty"`
	Spot      *float64           `json:"spot"`
	Provider  string             `json:"provider,omitempty"`
	UpdatedAt int64              `json:"updatedAt,omitempty"`
	Candles   []aggregate.Candle `json:"candles"`
	Degraded  bool               `json:"degraded"`
	Error     string             `json:"error,omitempty"`
}

// MetalQuote is one metal inside MetalsResponse.
type MetalQuote struct {
	Price       float64 `json:"price"`
	TimestampMs int64   `json:"timestampMs"`
	Provider    string  `json:"provider"`
	Degraded    bool    `json:"degraded,omitempty"`
}

// MetalsResponse is the /api/metals payload.
type MetalsResponse struct {
	OK          bool        `json:"ok"`
	Gold        *MetalQuote `json:"gold,omitempty"`
	Silver      *MetalQuote `json:"silver,omitempty"`
	TimestampMs int64       `json:"timestampMs,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Config bounds the responses.
type Config struct {
	// MaxCandles caps every candle series; <= 0 means aggregate.DefaultLimit.
	MaxCandles int
}

// Service answers spot, candle and snapshot queries for both metals.
type Service struct {
	spot   SpotGetter
	ticks  provider.TickSource
	cfg    Config
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for synthetic candles and response stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = logutils.OrNop(l) }
}

// New builds the service. ticks may be nil, in which case candle series are
// always synthetic.
func New(spot SpotGetter, ticks provider.TickSource, cfg Config, opts ...Option) *Service {
	if cfg.MaxCandles <= 0 {
		cfg.MaxCandles = aggregate.DefaultLimit
	}
	s := &Service{spot: spot, ticks: ticks, cfg: cfg, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spot returns the cached or freshly resolved spot price.
func (s *Service) Spot(ctx context.Context, symbol string) SpotResponse {
	sym, err := provider.ParseSymbol(symbol)
	if err != nil {
		return SpotResponse{Error: err.Error()}
	}
	q, err := s.spot.GetSpot(ctx, sym)
	if err != nil {
		s.logger.Warn("spot unavailable", zap.String("symbol", string(sym)), zap.Error(err))
		return SpotResponse{Symbol: sym, Error: err.Error()}
	}
	return SpotResponse{
		OK:          true,
		Symbol:      sym,
		Price:       q.PriceUSDPerOz,
		TimestampMs: q.AsOfMs,
		Provider:    q.Provider,
		Degraded:    q.Degraded,
	}
}

// Candles returns at most limit candles, synthetic when the feed is down.
func (s *Service) Candles(ctx context.Context, symbol, timeframe string, limit int) CandlesResponse {
	sym, err := provider.ParseSymbol(symbol)
	if err != nil {
		return CandlesResponse{Candles: []aggregate.Candle{}, Error: err.Error()}
	}
	tf, width, err := aggregate.ParseTimeframe(timeframe)
	if err != nil {
		return CandlesResponse{Symbol: sym, Candles: []aggregate.Candle{}, Error: err.Error()}
	}
	candles, degraded, err := s.series(ctx, sym, width, s.limit(limit), func() (resolver.SpotQuote, error) {
		return s.spot.GetSpot(ctx, sym)
	})
	if err != nil {
		return CandlesResponse{Symbol: sym, Timeframe: tf, Candles: []aggregate.Candle{}, Error: err.Error()}
	}
	return CandlesResponse{OK: true, Symbol: sym, Timeframe: tf, Candles: candles, Degraded: degraded}
}

// Quotes combines the current spot with a candle series. When no provider
// can produce a spot price, the close of the last real candle stands in and
// the response is flagged degraded.
func (s *Service) Quotes(ctx context.Context, symbol, timeframe string) QuotesResponse {
	sym, err := provider.ParseSymbol(symbol)
	if err != nil {
		return QuotesResponse{Candles: []aggregate.Candle{}, Error: err.Error()}
	}
	tf, width, err := aggregate.ParseTimeframe(timeframe)
	if err != nil {
		return QuotesResponse{Symbol: sym, Candles: []aggregate.Candle{}, Error: err.Error()}
	}

	resp := QuotesResponse{Symbol: sym, Timeframe: tf, UpdatedAt: s.now().UnixMilli()}
	q, spotErr := s.spot.GetSpot(ctx, sym)
	if spotErr == nil {
		resp.Spot = &q.PriceUSDPerOz
		resp.Provider = q.Provider
		resp.Degraded = q.Degraded
	}

	candles, degraded, err := s.series(ctx, sym, width, s.cfg.MaxCandles, func() (resolver.SpotQuote, error) {
		return q, spotErr
	})
	if err != nil {
		resp.Candles = []aggregate.Candle{}
		resp.Error = err.Error()
		return resp
	}
	resp.Candles = candles
	resp.Degraded = resp.Degraded || degraded
	if resp.Spot == nil {
		last := candles[len(candles)-1].Close
		resp.Spot = &last
		resp.Provider = s.ticks.Name()
		resp.Degraded = true
	}
	resp.OK = true
	return resp
}

// Metals resolves gold and silver concurrently. Both are required.
func (s *Service) Metals(ctx context.Context) MetalsResponse {
	var gold, silver resolver.SpotQuote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.spot.GetSpot(gctx, provider.Gold)
		if err != nil {
			return fmt.Errorf("gold: %w", err)
		}
		gold = q
		return nil
	})
	g.Go(func() error {
		q, err := s.spot.GetSpot(gctx, provider.Silver)
		if err != nil {
			return fmt.Errorf("silver: %w", err)
		}
		silver = q
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("metals snapshot failed", zap.Error(err))
		return MetalsResponse{Error: err.Error()}
	}
	return MetalsResponse{
		OK:          true,
		Gold:        metalQuote(gold),
		Silver:      metalQuote(silver),
		TimestampMs: s.now().UnixMilli(),
	}
}

// Ticks exposes the raw feed for diagnostics.
func (s *Service) Ticks(ctx context.Context, sym provider.Symbol) ([]provider.Tick, error) {
	if s.ticks == nil {
		return nil, errNoTickSource
	}
	return s.ticks.FetchTicks(ctx, sym)
}

var errNoTickSource = errors.New("no tick source configured")

// series builds candles from the tick feed, falling back to a flat series at
// the spot price returned by spot. spot is called at most once.
func (s *Service) series(ctx context.Context, sym provider.Symbol, width int64, limit int, spot func() (resolver.SpotQuote, error)) ([]aggregate.Candle, bool, error) {
	ticks, err := s.Ticks(ctx, sym)
	if err == nil {
		if candles := aggregate.BuildCandles(ticks, width, limit); len(candles) > 0 {
			metrics.ObserveCandles(metrics.CandlesTicks)
			return candles, false, nil
		}
		err = errors.New("tick feed returned no usable ticks")
	}
	s.logger.Info("tick history unavailable, using synthetic candles",
		zap.String("symbol", string(sym)), zap.Error(err))

	q, spotErr := spot()
	if spotErr != nil {
		metrics.ObserveCandles(metrics.CandlesFailed)
		return nil, false, fmt.Errorf("no candle data: %w", errors.Join(err, spotErr))
	}
	metrics.ObserveCandles(metrics.CandlesSynthetic)
	return aggregate.Synthetic(q.PriceUSDPerOz, width, limit, s.now()), true, nil
}

func (s *Service) limit(n int) int {
	if n <= 0 || n > s.cfg.MaxCandles {
		return s.cfg.MaxCandles
	}
	return n
}

func metalQuote(q resolver.SpotQuote) *MetalQuote {
	return &MetalQuote{Price: q.PriceUSDPerOz, TimestampMs: q.AsOfMs, Provider: q.Provider, Degraded: q.Degraded}
}
