package importer

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ParsePrice extracts a decimal amount from a currency-formatted string.
// Every character that is not a digit or a dot is stripped (currency
// symbols, thousands separators, whitespace, any annotation) and whatever
// remains is parsed. Returns ok=false for empty input, strings with no
// digits, and malformed remainders (a multi-dot string like "1.200.50"
// fails to parse). Never returns an error; a malformed price is a missing
// value, not a failure.
func ParsePrice(raw string) (float64, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, false
	}

	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		zap.L().Debug("price has no digits", zap.String("raw", raw))
		return 0, false
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		zap.L().Warn("could not parse price", zap.String("raw", raw))
		return 0, false
	}
	return v, true
}
