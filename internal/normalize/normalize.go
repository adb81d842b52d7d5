// Package normalize converts provider-native RawQuotes into USD per troy ounce.
package normalize

import (
	"fmt"
	"math"
	"strings"

	"metalquotes/internal/provider"
)

// GramsPerTroyOunce is the mass of one troy ounce in grams.
const GramsPerTroyOunce = 31.1034768

// Field names a RawQuote slot in normalization priority order.
type Field string

const (
	FieldPrice        Field = "price"
	FieldRate         Field = "rate"
	FieldPricePerGram Field = "price_per_gram"
)

// Error reports that no RawQuote field was usable. Rejected lists the reason
// for every field that was present but unusable.
type Error struct {
	Rejected map[Field]string
}

func (e *Error) Error() string {
	if len(e.Rejected) == 0 {
		return "normalize: no price field present"
	}
	parts := make([]string, 0, len(e.Rejected))
	for _, f := range []Field{FieldPrice, FieldRate, FieldPricePerGram} {
		if why, ok := e.Rejected[f]; ok {
			parts = append(parts, fmt.Sprintf("%s %s", f, why))
		}
	}
	return "normalize: " + strings.Join(parts, ", ")
}

// Result is a normalized price and the field it was derived from.
type Result struct {
	PriceUSDPerOz float64
	From          Field
}

// USDPerOunce applies the fixed priority {direct price, inverse rate,
// per-gram} and returns the first usable conversion. Values are never
// averaged, so a given payload always yields the same price.
func USDPerOunce(rq provider.RawQuote) (Result, error) {
	rejected := map[Field]string{}

	if rq.Price != nil {
		if v := *rq.Price; usable(v) {
			return Result{PriceUSDPerOz: v, From: FieldPrice}, nil
		}
		rejected[FieldPrice] = describe(*rq.Price)
	}
	if rq.Rate != nil {
		if r := *rq.Rate; usable(r) {
			if v := 1 / r; usable(v) {
				return Result{PriceUSDPerOz: v, From: FieldRate}, nil
			}
		}
		rejected[FieldRate] = describe(*rq.Rate)
	}
	if rq.PricePerGram != nil {
		if g := *rq.PricePerGram; usable(g) {
			if v := g * GramsPerTroyOunce; usable(v) {
				return Result{PriceUSDPerOz: v, From: FieldPricePerGram}, nil
			}
		}
		rejected[FieldPricePerGram] = describe(*rq.PricePerGram)
	}
	return Result{}, &Error{Rejected: rejected}
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func describe(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "is not finite"
	case v == 0:
		return "is zero"
	case v < 0:
		return "is negative"
	}
	return fmt.Sprintf("%g is out of range", v)
}
