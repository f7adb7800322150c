package leaderboard

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	nonNumeric  = regexp.MustCompile(`[^0-9.\-]`)
	floatPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

// ParseCurrency turns "$1,234.56" into 1234.56. Anything that is not a
// string, or has no leading number once symbols are stripped, is NaN.
func ParseCurrency(v any) float64 {
	s, ok := v.(string)
	if !ok {
		return math.NaN()
	}
	return leadingFloat(nonNumeric.ReplaceAllString(s, ""))
}

// ParsePercent turns "12.3%" into 12.3.
func ParsePercent(v any) float64 {
	s, ok := v.(string)
	if !ok {
		return math.NaN()
	}
	return leadingFloat(strings.ReplaceAll(s, "%", ""))
}

func leadingFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := floatPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}
