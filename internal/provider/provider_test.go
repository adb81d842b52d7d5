package provider_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"metalquotes/internal/httpx"
	"metalquotes/internal/provider"
)

func TestParseSymbol(t *testing.T) {
	t.Parallel()

	cases := map[string]provider.Symbol{
		"":       provider.Gold,
		"gold":   provider.Gold,
		"XAU":    provider.Gold,
		"xauusd": provider.Gold,
		"SILVER": provider.Silver,
		" xag ":  provider.Silver,
		"XAGUSD": provider.Silver,
	}
	for in, want := range cases {
		got, err := provider.ParseSymbol(in)
		require.NoErrorf(t, err, "input %q", in)
		require.Equalf(t, want, got, "input %q", in)
	}

	_, err := provider.ParseSymbol("platinum")
	require.Error(t, err)
	require.Equal(t, "XAG", provider.Silver.Code())
	require.False(t, provider.Symbol("COPPER").Valid())
}

func TestFieldMap_Extract_DeclaredOrderWins(t *testing.T) {
	t.Parallel()

	// Arrange: both a direct and an inverse field are present.
	doc := map[string]any{
		"rates": map[string]any{
			"XAG":    0.04,
			"USDXAG": 25.5,
		},
		"ask":       31.0,
		"timestamp": 1700000000.0,
	}
	m := provider.FieldMap{
		{Path: "rates.USD{code}", Slot: provider.SlotPrice},
		{Path: "ask", Slot: provider.SlotPrice},
		{Path: "rates.{code}", Slot: provider.SlotRate},
		{Path: "timestamp", Slot: provider.SlotTimestampSec},
	}

	// Act
	rq := m.Extract(doc, provider.Silver)

	// Assert: the first price rule wins, later ones are ignored.
	require.NotNil(t, rq.Price)
	require.InDelta(t, 25.5, *rq.Price, 1e-9)
	require.NotNil(t, rq.Rate)
	require.InDelta(t, 0.04, *rq.Rate, 1e-9)
	require.Nil(t, rq.PricePerGram)
	require.Equal(t, int64(1700000000000), rq.TimestampMs)
}

func TestFieldMap_Extract_MissingAndWrongTypes(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"price": "2000",
		"rates": nil,
	}
	m := provider.FieldMap{
		{Path: "price", Slot: provider.SlotPrice},
		{Path: "rates.{code}", Slot: provider.SlotRate},
		{Path: "nested.deep.value", Slot: provider.SlotPricePerGram},
	}

	rq := m.Extract(doc, provider.Gold)
	require.True(t, rq.Empty())
	require.Zero(t, rq.TimestampMs)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	err := provider.Classify("x", &httpx.StatusError{Code: http.StatusTooManyRequests})
	require.Equal(t, provider.RateLimited, provider.KindOf(err))

	err = provider.Classify("x", &httpx.StatusError{Code: http.StatusBadGateway})
	require.Equal(t, provider.Unavailable, provider.KindOf(err))

	err = provider.Classify("x", fmt.Errorf("GET: %w", context.DeadlineExceeded))
	require.Equal(t, provider.Unavailable, provider.KindOf(err))
	require.True(t, errors.Is(err, context.DeadlineExceeded))

	// Already classified errors pass through untouched.
	orig := provider.Errorf("y", provider.Malformed, "bad")
	require.Same(t, orig, provider.Classify("x", orig))

	require.NoError(t, provider.Classify("x", nil))
	require.Zero(t, provider.KindOf(errors.New("plain")))
}

func TestSchema_Decode(t *testing.T) {
	t.Parallel()

	s := provider.MustSchema(`{
		"type": "object",
		"required": ["price"],
		"properties": {"price": {"type": "number"}}
	}`)

	doc, err := s.Decode("test", []byte(`{"price": 12.5, "extra": true}`))
	require.NoError(t, err)
	require.Equal(t, 12.5, doc.(map[string]any)["price"])

	_, err = s.Decode("test", []byte(`{"price": "12.5"}`))
	require.Error(t, err)
	require.Equal(t, provider.Malformed, provider.KindOf(err))

	_, err = s.Decode("test", []byte(`<html>`))
	require.Error(t, err)
	require.Equal(t, provider.Malformed, provider.KindOf(err))
}
