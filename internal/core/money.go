// Package core provides money parsing and handling utilities.
//
// Amounts are decimal.Decimal throughout so that rupee figures and fractional
// days worked never go through float64.
package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Ledger amounts have at most MaxIntegerDigits digits before the decimal
// point and MaxFractionDigits after it. Text longer than MaxAmountText is
// rejected before it is parsed.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 4
	MaxAmountText     = 32
)

// CheckAmountRange rejects amounts the ledger cannot hold, such as 1e20000
// or 0.000001. The check looks at the exponent first so huge values are never
// expanded.
func CheckAmountRange(d decimal.Decimal) error {
	exp := int(d.Exponent())
	if exp > MaxIntegerDigits || exp < -MaxAmountText {
		return fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}
	coef := d.Coefficient()
	if len(coef.Abs(coef).String())+exp > MaxIntegerDigits {
		return fmt.Errorf("%w: more than %d integer digits", ErrInvalidAmount, MaxIntegerDigits)
	}
	if exp < -MaxFractionDigits && !d.Equal(d.Truncate(MaxFractionDigits)) {
		return fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, MaxFractionDigits)
	}
	return nil
}

// ParseAmount converts a user-entered amount to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Negative
// values and anything that is not a plain decimal number are rejected with
// ErrInvalidAmount. Zero is allowed; callers that need a strictly positive
// amount check it themselves.
//
// Examples:
//
//	ParseAmount("1500")    -> 1500, nil
//	ParseAmount("12,5")    -> 12.5, nil
//	ParseAmount("-1")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxAmountText {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	intPart, fracPart := parts[0], ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if fracPart != "" {
		intPart += "." + fracPart
	}
	d, err := decimal.NewFromString(intPart)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := CheckAmountRange(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// FormatRupees renders an amount in Indian digit grouping, rounded to whole
// rupees, e.g. ₹1,06,000 or -₹1,000.
func FormatRupees(d decimal.Decimal) string {
	rounded := d.Round(0)
	neg := rounded.IsNegative()
	digits := rounded.Abs().String()

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("₹")
	b.WriteString(groupIndian(digits))
	return b.String()
}

// groupIndian inserts separators as 12,34,56,789: the last three digits, then pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/2)
	first := len(head) % 2
	if first == 0 {
		first = 2
	}
	b.WriteString(head[:first])
	for i := first; i < len(head); i += 2 {
		b.WriteByte(',')
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}
