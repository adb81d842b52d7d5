package forex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"metalquotes/internal/httpx"
	"metalquotes/internal/provider"
)

func newProvider(t *testing.T, status int, body string) *Provider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(Config{
		URLs:   map[provider.Symbol]string{provider.Gold: srv.URL + "/XAU/USD"},
		APIKey: "k",
	}, httpx.New(2*time.Second))
}

func TestFetchSpot_TightestSpreadMid(t *testing.T) {
	t.Parallel()

	// Arrange
	p := newProvider(t, http.StatusOK, `[
		{"ts": 1700000000000, "spreadProfilePrices": [{"bid": 2300, "ask": 2306}, {"bid": 2303, "ask": 2304}]},
		{"ts": 1700000001000, "spreadProfilePrices": [{"bid": 2302, "ask": 2306}]}
	]`)

	// Act
	rq, err := p.FetchSpot(context.Background(), provider.Gold)

	// Assert
	require.NoError(t, err)
	require.InDelta(t, 2303.5, *rq.Price, 1e-9)
	require.Equal(t, int64(1700000000000), rq.TimestampMs)
}

func TestFetchSpot_NoUsableSpread(t *testing.T) {
	t.Parallel()

	p := newProvider(t, http.StatusOK, `[{"ts": 1700000000, "spreadProfilePrices": [{"bid": 2304, "ask": 2304}, {"bid": 0, "ask": 1}]}]`)

	_, err := p.FetchSpot(context.Background(), provider.Gold)
	require.Equal(t, provider.Malformed, provider.KindOf(err))
}

func TestFetchSpot_NoEndpointForSymbol(t *testing.T) {
	t.Parallel()

	p := newProvider(t, http.StatusOK, `[]`)

	_, err := p.FetchSpot(context.Background(), provider.Silver)
	require.Equal(t, provider.Unavailable, provider.KindOf(err))
}

func TestFetchSpot_BadPayloads(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"bid": 1}`, `[{"spreadProfilePrices": [{"bid": "1", "ask": 2}]}]`, `not json`} {
		p := newProvider(t, http.StatusOK, body)
		_, err := p.FetchSpot(context.Background(), provider.Gold)
		require.Equalf(t, provider.Malformed, provider.KindOf(err), "body %s", body)
	}

	p := newProvider(t, http.StatusBadGateway, `oops`)
	_, err := p.FetchSpot(context.Background(), provider.Gold)
	require.Equal(t, provider.Unavailable, provider.KindOf(err))
}
