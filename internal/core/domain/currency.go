// Package domain defines the core domain models for bil.
package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Precision is the fixed scale between persisted integer amounts and
// decimal amounts. Shared with the API server.
const Precision int64 = 100_000_000

// precisionExp is log10(Precision).
const precisionExp int32 = -8

var (
	precisionDecimal = decimal.NewFromInt(Precision)

	// maxAmount is the largest absolute decimal value whose encoding fits in int64.
	maxAmount = decimal.NewFromInt(math.MaxInt64).Div(precisionDecimal).Floor()
)

// EncodeAmount converts a decimal amount into its persisted integer form:
// round(v * Precision), rounding half away from zero.
//
// It is the only place amounts are encoded; every payment write goes through it.
func EncodeAmount(v decimal.Decimal) (int64, error) {
	if v.Abs().GreaterThan(maxAmount) {
		return 0, ErrInvalidAmount.WithDetails(fmt.Sprintf("%s exceeds %s", v.String(), maxAmount.String()))
	}
	return v.Mul(precisionDecimal).Round(0).IntPart(), nil
}

// DecodeAmount converts a persisted integer amount into its decimal form.
// The conversion is exact.
func DecodeAmount(n int64) decimal.Decimal {
	return decimal.New(n, precisionExp)
}

// ParseAmount parses a decimal string such as "10.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount.WithDetails(s).WithCause(err)
	}
	return d, nil
}
