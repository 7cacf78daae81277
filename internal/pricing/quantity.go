package pricing

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseQuantity converts a decoded JSON quantity into a positive whole
// number. Numbers and numeric strings are accepted as long as they carry no
// fractional part, so 2, 2.0 and "2" all yield 2.
func ParseQuantity(raw any) (int, bool) {
	var d decimal.Decimal
	switch v := raw.(type) {
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return 0, false
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		d = parsed
	default:
		return 0, false
	}

	if !d.IsInteger() || !d.IsPositive() {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(maxQuantity)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

const maxQuantity = 1_000_000
