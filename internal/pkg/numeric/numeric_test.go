package numeric

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseWithDecimals(t *testing.T) {
	tests := []struct {
		atomic   string
		decimals int32
		want     string
	}{
		{atomic: "125500000", decimals: 6, want: "125.5"},
		{atomic: "1", decimals: 6, want: "0.000001"},
		{atomic: "0", decimals: 6, want: "0"},
		{atomic: "-1500000", decimals: 6, want: "-1.5"},
		{atomic: "42", decimals: 0, want: "42"},
		{atomic: "42", decimals: -2, want: "42"},
		{atomic: "1000000000000000000", decimals: 18, want: "1"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.atomic, tt.decimals), func(t *testing.T) {
			atomic := decimal.RequireFromString(tt.atomic)
			assert.Equal(t, tt.want, NormaliseWithDecimals(atomic, tt.decimals).String())
		})
	}
}

func TestToAtomicUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int32
		want     int64
	}{
		{amount: "125.5", decimals: 6, want: 125500000},
		{amount: "0.000001", decimals: 6, want: 1},
		{amount: "100", decimals: 6, want: 100000000},
		{amount: "0", decimals: 6, want: 0},
		{amount: "1", decimals: 0, want: 1},
		// Rounds half away from zero at the precision boundary.
		{amount: "0.0000015", decimals: 6, want: 2},
		{amount: "-0.0000015", decimals: 6, want: -2},
		{amount: "0.0000014", decimals: 6, want: 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.amount, tt.decimals), func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			assert.Equal(t, tt.want, ToAtomicUnits(amount, tt.decimals))
		})
	}
}

func TestAtomicRoundTrip(t *testing.T) {
	atomics := []int64{0, 1, 7, 999, 1000000, 125500000, -42, math.MaxInt32}
	for _, atomic := range atomics {
		for decimals := int32(0); decimals <= 18; decimals++ {
			normalized := NormaliseWithDecimals(decimal.NewFromInt(atomic), decimals)
			require.Equal(t, atomic, ToAtomicUnits(normalized, decimals),
				"atomic=%d decimals=%d", atomic, decimals)
		}
	}
}

func TestToNormalisedYield(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{name: "string with fractional tail", raw: "3.457", want: "0.000003"},
		{name: "plain integer string", raw: "1500000", want: "1.5"},
		{name: "negative", raw: "-12.9", want: "-0.000012"},
		{name: "float", raw: 3.457, want: "0.000003"},
		{name: "zero", raw: "0", want: "0"},
		{name: "empty string", raw: "", want: "0"},
		{name: "bare dot", raw: ".5", want: "0"},
		{name: "bare sign", raw: "-.5", want: "0"},
		{name: "garbage", raw: "abc", want: "0"},
		{name: "nil", raw: nil, want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToNormalisedYield(tt.raw, 6).String())
		})
	}
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{name: "float64", v: 1.5, want: "1.5"},
		{name: "int", v: 42, want: "42"},
		{name: "int64", v: int64(-7), want: "-7"},
		{name: "string", v: " 12.25 ", want: "12.25"},
		{name: "decimal", v: decimal.NewFromInt(3), want: "3"},
		{name: "nan", v: math.NaN(), want: "0"},
		{name: "inf", v: math.Inf(1), want: "0"},
		{name: "bad string", v: "12n", want: "0"},
		{name: "nil", v: nil, want: "0"},
		{name: "bool", v: true, want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToDecimal(tt.v).String())
		})
	}
}

func TestToFloatAndToInt(t *testing.T) {
	assert.Equal(t, 1.5, ToFloat("1.5"))
	assert.Equal(t, 0.0, ToFloat(nil))
	assert.Equal(t, int64(1), ToInt(1.9))
	assert.Equal(t, int64(125500000), ToInt(125500000.0))
	assert.Equal(t, int64(0), ToInt("not a number"))
}

func TestFormatPercent(t *testing.T) {
	apy := 5.4321
	nan := math.NaN()

	assert.Equal(t, "5.43%", FormatPercent(&apy))
	assert.Equal(t, "-", FormatPercent(nil))
	assert.Equal(t, "-", FormatPercent(&nan))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{v: 0, want: "0.00"},
		{v: 1234.5, want: "1,234.50"},
		{v: 1000000, want: "1,000,000.00"},
		{v: -9876.543, want: "-9,876.54"},
		{v: 999.999, want: "1,000.00"},
		{v: math.NaN(), want: "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.v))
	}
}
