package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"metalquotes/internal/provider"
)

// DefaultLimit caps a candle series when the caller gives no limit.
const DefaultLimit = 300

// Candle is one fixed-width OHLC bucket. Time is the bucket start in unix
// seconds and is always a multiple of the width.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Timeframes maps chart timeframe names to bucket widths in seconds.
var Timeframes = map[string]int64{
	"1m":  60,
	"5m":  300,
	"15m": 900,
	"1h":  3600,
	"4h":  14400,
	"1d":  86400,
}

// DefaultTimeframe is used when the caller names none.
const DefaultTimeframe = "1m"

// ParseTimeframe resolves a timeframe name (case-insensitive) to its
// canonical name and width. Empty means DefaultTimeframe.
func ParseTimeframe(s string) (string, int64, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		name = DefaultTimeframe
	}
	w, ok := Timeframes[name]
	if !ok {
		return "", 0, fmt.Errorf("unsupported timeframe %q", s)
	}
	return name, w, nil
}

// BucketStart floors ts to a multiple of width.
func BucketStart(ts, width int64) int64 {
	m := ts % width
	if m < 0 {
		m += width
	}
	return ts - m
}

// BuildCandles buckets ticks into candles of widthSec seconds.
// Rules:
//   - non-finite prices are skipped
//   - ticks are ordered by timestamp first; equal timestamps keep input order
//   - the first tick of a bucket opens it, every later one moves high/low
//     and sets close
//   - output is ascending by Time and keeps the most recent limit buckets
//     (limit <= 0 means DefaultLimit)
//
// widthSec <= 0 yields an empty series. The input slice is not modified.
func BuildCandles(ticks []provider.Tick, widthSec int64, limit int) []Candle {
	out := []Candle{}
	if widthSec <= 0 || len(ticks) == 0 {
		return out
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	sorted := make([]provider.Tick, 0, len(ticks))
	for _, t := range ticks {
		if math.IsNaN(t.Price) || math.IsInf(t.Price, 0) {
			continue
		}
		sorted = append(sorted, t)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TimestampSec < sorted[j].TimestampSec })

	for _, t := range sorted {
		start := BucketStart(t.TimestampSec, widthSec)
		if n := len(out); n > 0 && out[n-1].Time == start {
			c := &out[n-1]
			c.High = math.Max(c.High, t.Price)
			c.Low = math.Min(c.Low, t.Price)
			c.Close = t.Price
			continue
		}
		out = append(out, Candle{Time: start, Open: t.Price, High: t.Price, Low: t.Price, Close: t.Price})
	}

	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Synthetic returns count flat candles at price, the last one being the
// bucket that contains now. Used when no tick history is available.
func Synthetic(price float64, widthSec int64, count int, now time.Time) []Candle {
	out := []Candle{}
	if widthSec <= 0 || count <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return out
	}
	end := BucketStart(now.Unix(), widthSec)
	for i := count - 1; i >= 0; i-- {
		out = append(out, Candle{
			Time:  end - int64(i)*widthSec,
			Open:  price,
			High:  price,
			Low:   price,
			Close: price,
		})
	}
	return out
}
