// Package core provides money parsing and handling utilities.
//
// Amounts are kept in kopecks (cents) internally; floats appear only at the
// edges, where the extraction collaborator and the JSON API speak in rubles.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// MoneyFromFloat converts a ruble amount to Money with half-up rounding on
// the kopeck. Non-finite and non-positive inputs yield zero Money.
func MoneyFromFloat(rubles float64) Money {
	if math.IsNaN(rubles) || math.IsInf(rubles, 0) || rubles <= 0 {
		return Money{}
	}
	return Money{Cents: int64(math.Round(rubles * 100))}
}

// Rubles returns the ruble value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Rubles() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount as a plain decimal ruble value, e.g. "500" or
// "12.50", the way the ledger serializes amounts for the advice prompt.
func (m Money) String() string {
	if m.Cents%100 == 0 {
		return strconv.FormatInt(m.Cents/100, 10)
	}
	return strconv.FormatFloat(m.Rubles(), 'f', 2, 64)
}
