// Package core provides money parsing and handling utilities.
//
// Amounts are stored as integers in the smallest currency unit. The currency
// exponent (number of fractional digits) is configuration; the default of 0
// matches the Rupiah, which is entered and displayed without fractions.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const currencySymbol = "Rp"

// ParseMoney converts user input to a Money value with half-up rounding.
//
// With exponent 0 dots, commas and spaces are treated as thousands separators
// ("1.500.000" -> 1500000). With a positive exponent a comma is accepted as
// the decimal separator and the value is rounded to exponent digits.
// Returns ErrInvalidAmount for empty, signed, malformed or non-positive input.
//
// Examples:
//
//	ParseMoney("Rp 1.500.000", 0) -> {1500000}, nil
//	ParseMoney("12,345", 2)      -> {1235}, nil
func ParseMoney(s string, exponent int32) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, currencySymbol))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}

	if exponent == 0 {
		s = strings.NewReplacer(".", "", ",", "", " ", "").Replace(s)
	} else {
		s = strings.ReplaceAll(s, ",", ".")
		if strings.Count(s, ".") > 1 {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return Money{}, ErrInvalidAmount
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	minor := d.Shift(exponent).Round(0)
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Minor: minor.IntPart()}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal(exponent int32) decimal.Decimal {
	return decimal.New(m.Minor, -exponent)
}

// FormatMoney renders m with Indonesian digit grouping, e.g. "Rp 1.000.000".
// Negative amounts are rendered as "-Rp 100.000".
func FormatMoney(m Money, exponent int32) string {
	p := message.NewPrinter(language.Indonesian)
	sign := ""
	minor := m.Minor
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	if exponent <= 0 {
		return sign + p.Sprintf("%s %d", currencySymbol, minor)
	}
	// Exact decimal split; the integer part is grouped, the fraction is
	// appended after the Indonesian decimal comma.
	major := decimal.New(minor, -exponent)
	fixed := major.StringFixed(exponent)
	frac := fixed[strings.IndexByte(fixed, '.')+1:]
	return sign + p.Sprintf("%s %d", currencySymbol, major.Truncate(0).IntPart()) + "," + frac
}
