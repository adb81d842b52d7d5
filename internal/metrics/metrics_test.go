package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveAttempt(t *testing.T) {
	before := testutil.ToFloat64(attempts.WithLabelValues("unit", OutcomeOK))

	ObserveAttempt("unit", OutcomeOK)
	ObserveAttempt("unit", OutcomeOK)

	require.Equal(t, before+2, testutil.ToFloat64(attempts.WithLabelValues("unit", OutcomeOK)))
}

func TestHandlerExposesCounters(t *testing.T) {
	ObserveCacheLookup("GOLD", CacheHit)
	ObserveCandles(CandlesSynthetic)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "metalquotes_spot_cache_lookups_total")
	require.Contains(t, rec.Body.String(), `metalquotes_candle_builds_total{mode="synthetic"}`)
}
