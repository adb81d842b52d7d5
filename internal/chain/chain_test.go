package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"metalquotes/internal/config"
	"metalquotes/internal/httpx"
	"metalquotes/internal/provider/breaker"
	"metalquotes/internal/provider/forex"
	"metalquotes/internal/provider/metalslive"
	"metalquotes/internal/provider/ratelimit"
)

func labels(ch Chain) []string {
	out := make([]string, 0, len(ch.Attempts))
	for _, a := range ch.Attempts {
		out = append(out, a.Label)
	}
	return out
}

func TestBuild_OrderAndKeyRotation(t *testing.T) {
	t.Parallel()

	// Arrange
	cfg := config.Default()
	cfg.Providers.Breaker.Enabled = false
	cfg.Providers.Metalprice.APIKeys = []string{"k1", "k2"}
	cfg.Providers.GoldAPI.Tokens = []string{"g1"}

	// Act
	ch, err := Build(cfg, httpx.New(time.Second), nil)

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"metalprice#1", "metalprice#2", "goldapi#1", "metals.live"}, labels(ch))
	require.Equal(t, "metalprice", ch.Attempts[1].Provider)
	require.Equal(t, 6*time.Second, ch.Attempts[0].Timeout)
	require.IsType(t, &ratelimit.Limited{}, ch.Attempts[0].Adapter)
	require.IsType(t, &metalslive.Provider{}, ch.Attempts[3].Adapter)
	require.IsType(t, &metalslive.Provider{}, ch.Ticks)
}

func TestBuild_SkipsMissingCredentialsAndDisabled(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Providers.GoldAPI.Enabled = false
	cfg.Providers.MetalsLive.Enabled = false

	ch, err := Build(cfg, httpx.New(time.Second), nil)

	require.NoError(t, err)
	require.Empty(t, ch.Attempts)
	require.Nil(t, ch.Ticks)
}

func TestBuild_ForexFirstWithBreaker(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Providers.Order = []string{config.Forex, config.MetalsLive}
	cfg.Providers.Forex = config.ForexConfig{Enabled: true, XAUURL: "https://fx.example/XAU/USD", TimeoutSec: 5}

	ch, err := Build(cfg, httpx.New(time.Second), nil)

	require.NoError(t, err)
	require.Equal(t, []string{"forex", "metals.live"}, labels(ch))
	b, ok := ch.Attempts[0].Adapter.(*breaker.Breaker)
	require.True(t, ok)
	require.IsType(t, &forex.Provider{}, b.A)
	require.Equal(t, 5*time.Second, ch.Attempts[0].Timeout)
}

func TestBuild_UnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Providers.Order = []string{"kitco"}

	_, err := Build(cfg, httpx.New(time.Second), nil)
	require.Error(t, err)
}
