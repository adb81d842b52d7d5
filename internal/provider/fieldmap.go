package provider

import (
	"math"
	"strings"
)

// Slot is the RawQuote field a mapping rule writes to.
type Slot int

const (
	SlotPrice Slot = iota + 1
	SlotRate
	SlotPricePerGram
	SlotTimestampSec
	SlotTimestampMs
)

// FieldRule maps a dotted JSON path to a RawQuote slot. The literal "{code}"
// in Path is replaced by the symbol's metal code.
type FieldRule struct {
	Path string
	Slot Slot
}

// FieldMap is an ordered list of rules. Rules are evaluated in declaration
// order and the first present finite number fills its slot; later rules
// targeting an already filled slot are ignored.
type FieldMap []FieldRule

// Extract applies the map to a decoded JSON document.
func (m FieldMap) Extract(doc any, symbol Symbol) RawQuote {
	var rq RawQuote
	filled := make(map[Slot]bool, len(m))
	for _, r := range m {
		if filled[r.Slot] {
			continue
		}
		path := strings.ReplaceAll(r.Path, "{code}", symbol.Code())
		v, ok := lookupNumber(doc, path)
		if !ok {
			continue
		}
		filled[r.Slot] = true
		switch r.Slot {
		case SlotPrice:
			rq.Price = Float(v)
		case SlotRate:
			rq.Rate = Float(v)
		case SlotPricePerGram:
			rq.PricePerGram = Float(v)
		case SlotTimestampSec:
			rq.TimestampMs = int64(v) * 1000
		case SlotTimestampMs:
			rq.TimestampMs = int64(v)
		}
	}
	return rq
}

func lookupNumber(doc any, path string) (float64, bool) {
	cur := doc
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return 0, false
		}
		cur, ok = obj[part]
		if !ok || cur == nil {
			return 0, false
		}
	}
	f, ok := cur.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// EpochMillis interprets v as seconds or milliseconds since the epoch.
// Values above 1e12 are already milliseconds.
func EpochMillis(v int64) int64 {
	if v > 1_000_000_000_000 {
		return v
	}
	return v * 1000
}
