// Package core holds the ledger domain: entities, calendar arithmetic,
// recurrence expansion and the dashboard aggregations.
//
// This file contains amount parsing. Amounts are decimal.Decimal values so
// that sums over many small entries never drift.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept on stored amounts.
const AmountPlaces = 2

// MaxAmount is the largest amount a NUMERIC(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ParseAmount converts a decimal string to a non-negative amount.
//
// Both dot (12.34) and comma (12,34) separators are accepted, as is exponent
// notation (1e3). The value is rounded half-up to two places and must not
// exceed MaxAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35
//	ParseAmount("1e3")    -> 1000
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is empty", ErrInvalidInput)
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrInvalidInput, raw)
	}
	if d.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("%w: amount %q must not be negative", ErrInvalidInput, raw)
	}
	if d.Sign() == 0 {
		return decimal.Zero, nil
	}
	// keeps Round and Cmp away from huge exponents
	if exp := d.Exponent(); exp > 12 || exp < -32 {
		return decimal.Zero, fmt.Errorf("%w: amount %q is out of range", ErrInvalidInput, raw)
	}

	d = d.Round(AmountPlaces)
	if d.GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: amount %q exceeds %s", ErrInvalidInput, raw, FormatAmount(MaxAmount))
	}
	return d, nil
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}
