package provider

import (
	"context"
	"fmt"
	"strings"
)

// Symbol is one of the supported metals.
type Symbol string

const (
	Gold   Symbol = "GOLD"
	Silver Symbol = "SILVER"
)

// Symbols lists every supported metal in display order.
var Symbols = []Symbol{Gold, Silver}

// codes maps a Symbol to the ISO-style metal code used by most upstreams.
var codes = map[Symbol]string{
	Gold:   "XAU",
	Silver: "XAG",
}

// Code returns the upstream metal code ("XAU", "XAG").
func (s Symbol) Code() string { return codes[s] }

// Valid reports whether s is a supported metal.
func (s Symbol) Valid() bool {
	_, ok := codes[s]
	return ok
}

// ParseSymbol accepts GOLD/SILVER, XAU/XAG and XAUUSD/XAGUSD in any case.
// An empty string yields Gold.
func ParseSymbol(s string) (Symbol, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case "", "GOLD", "XAU", "XAUUSD":
		return Gold, nil
	case "SILVER", "XAG", "XAGUSD":
		return Silver, nil
	}
	return "", fmt.Errorf("unsupported symbol %q", s)
}

// RawQuote is a provider's native price representation. It carries no unit
// semantics beyond which slot a value landed in; see package normalize.
type RawQuote struct {
	// Price is a direct USD per troy ounce figure.
	Price *float64
	// Rate is units of metal per 1 USD.
	Rate *float64
	// PricePerGram is USD per gram of fine metal.
	PricePerGram *float64
	// TimestampMs is the provider's quote time, 0 when unknown.
	TimestampMs int64
}

// Empty reports whether no price slot is populated.
func (r RawQuote) Empty() bool {
	return r.Price == nil && r.Rate == nil && r.PricePerGram == nil
}

// Tick is one timestamped observation from a feed.
type Tick struct {
	TimestampSec int64   `json:"t"`
	Price        float64 `json:"p"`
}

// Adapter fetches a spot quote for one metal from a single upstream using a
// single credential.
//
//go:generate mockgen -package=resolver_test -destination=../resolver/mock_provider_test.go -source=provider.go Adapter,TickSource
type Adapter interface {
	Name() string
	FetchSpot(ctx context.Context, symbol Symbol) (RawQuote, error)
}

// TickSource is implemented by feed-style providers that expose history.
type TickSource interface {
	Name() string
	FetchTicks(ctx context.Context, symbol Symbol) ([]Tick, error)
}

// Float returns a pointer to v, for building RawQuotes in code.
func Float(v float64) *float64 { return &v }
