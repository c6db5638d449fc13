package collapse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/toolmap/pkg/jsonvalue"
)

// extraLayouts cover date strings utc.Time does not read on its own.
var extraLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05 MST",
	"20060102",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
}

// Freshness is a parsed freshness value. Numeric freshness (numbers and
// date strings) orders by Number; anything else orders by Text.
type Freshness struct {
	Numeric bool
	Number  float64
	Text    string
}

// ParseFreshness interprets a freshness field value. It returns false when
// the value is missing: null or an empty or whitespace-only string. A list
// (as left behind by merging tied records) takes its freshest item and is
// missing only when every item is. Booleans and objects compare as text.
func ParseFreshness(v jsonvalue.Value) (Freshness, bool) {
	switch v.Kind() {
	case jsonvalue.KindNull:
		return Freshness{}, false
	case jsonvalue.KindNumber:
		f, ok := v.AsFloat()
		if !ok || math.IsNaN(f) {
			return Freshness{Text: v.Text()}, true
		}
		return Freshness{Numeric: true, Number: f, Text: v.Text()}, true
	case jsonvalue.KindString:
		s, _ := v.AsString()
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return Freshness{}, false
		}
		if ms, ok := parseTimestamp(trimmed); ok {
			return Freshness{Numeric: true, Number: ms, Text: s}, true
		}
		return Freshness{Text: s}, true
	case jsonvalue.KindArray:
		items, _ := v.AsArray()
		var best Freshness
		found := false
		for _, item := range items {
			if item.Kind() == jsonvalue.KindArray {
				continue
			}
			f, ok := ParseFreshness(item)
			if !ok {
				continue
			}
			if !found || f.Compare(best) > 0 {
				best, found = f, true
			}
		}
		return best, found
	case jsonvalue.KindBool, jsonvalue.KindObject:
		return Freshness{Text: v.Text()}, true
	default:
		return Freshness{}, false
	}
}

// Compare orders two freshness values: numerically when both are numeric,
// otherwise lexicographically on their text.
func (f Freshness) Compare(other Freshness) int {
	if f.Numeric && other.Numeric {
		switch {
		case f.Number > other.Number:
			return 1
		case f.Number < other.Number:
			return -1
		default:
			return 0
		}
	}
	return strings.Compare(f.Text, other.Text)
}

// parseTimestamp returns milliseconds since the epoch for a date string, or
// the number itself for a numeric string. Dates win over numbers, so "2025"
// is the year 2025 rather than the number 2025.
func parseTimestamp(s string) (float64, bool) {
	var t utc.Time
	if err := t.UnmarshalText([]byte(s)); err == nil {
		return float64(t.UnixMilli()), true
	}
	for _, layout := range extraLayouts {
		if t, err := utc.Parse(layout, s); err == nil {
			return float64(t.UnixMilli()), true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f, true
	}
	return 0, false
}
