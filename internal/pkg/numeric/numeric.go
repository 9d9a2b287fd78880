// Package numeric holds the fixed-point conversions between atomic token
// units and human-readable amounts, plus the lenient coercions applied to
// loosely-typed upstream payloads.
package numeric

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NormaliseWithDecimals converts an atomic-unit amount to its human-readable
// value by shifting the decimal point left. Zero or negative decimals return
// the amount unchanged.
func NormaliseWithDecimals(atomic decimal.Decimal, decimals int32) decimal.Decimal {
	if decimals <= 0 {
		return atomic
	}
	return atomic.Shift(-decimals)
}

// ToAtomicUnits converts a human-readable amount to atomic units, rounding
// half away from zero. It is the exact inverse of NormaliseWithDecimals for
// amounts representable at the given precision.
func ToAtomicUnits(amount decimal.Decimal, decimals int32) int64 {
	return amount.Shift(decimals).Round(0).IntPart()
}

// ToNormalisedYield turns a raw yield figure into its normalized value.
// Upstream reports yield as an atomic integer that sometimes arrives with a
// spurious fractional tail ("3.457" meaning 3 atomic units); only the integer
// part before the dot is the yield.
//
// Package-level var so the truncation step can be swapped out once upstream
// fixes its serialization.
var ToNormalisedYield = func(raw any, decimals int32) decimal.Decimal {
	s := strings.TrimSpace(rawString(raw))
	intPart, _, _ := strings.Cut(s, ".")
	if intPart == "" || intPart == "-" || intPart == "+" {
		return decimal.Zero
	}
	atomic, err := decimal.NewFromString(intPart)
	if err != nil {
		return decimal.Zero
	}
	return NormaliseWithDecimals(atomic, decimals)
}

func rawString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return ""
		}
		return decimal.NewFromFloat(s).String()
	case decimal.Decimal:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// ToDecimal leniently coerces an upstream value to a decimal. Strings and
// numbers both count; anything else, including NaN and infinities, is zero.
func ToDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		return ToDecimal(float64(n))
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		return ToDecimal(string(n))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// ToFloat is ToDecimal collapsed to a float64.
func ToFloat(v any) float64 {
	return ToDecimal(v).InexactFloat64()
}

// ToInt is ToDecimal truncated to an int64.
func ToInt(v any) int64 {
	return ToDecimal(v).IntPart()
}

// FormatPercent renders an APY for display: "-" when absent or not a number,
// otherwise two decimal places with a percent sign.
func FormatPercent(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// FormatNumber renders an amount for display with thousands separators and
// two decimal places. Non-finite input renders as "0.00".
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	s := fmt.Sprintf("%.2f", v)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
