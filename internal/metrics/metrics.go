// Package metrics holds the process-wide prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	attempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metalquotes_provider_attempts_total",
			Help: "Spot resolution attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metalquotes_spot_cache_lookups_total",
			Help: "Spot cache lookups by symbol and result",
		},
		[]string{"symbol", "result"},
	)
	candleBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metalquotes_candle_builds_total",
			Help: "Candle series served by mode",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(attempts)
	prometheus.MustRegister(cacheLookups)
	prometheus.MustRegister(candleBuilds)
}

// Outcome labels for ObserveAttempt. Failure outcomes use provider.Kind
// strings ("unavailable", "malformed", "rate_limited").
const (
	OutcomeOK        = "ok"
	OutcomeNormalize = "normalize"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
)

// Candle modes.
const (
	CandlesTicks     = "ticks"
	CandlesSynthetic = "synthetic"
	CandlesFailed    = "failed"
)

func ObserveAttempt(provider, outcome string) {
	attempts.WithLabelValues(provider, outcome).Inc()
}

func ObserveCacheLookup(symbol, result string) {
	cacheLookups.WithLabelValues(symbol, result).Inc()
}

func ObserveCandles(mode string) {
	candleBuilds.WithLabelValues(mode).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
