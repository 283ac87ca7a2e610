package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Decimal is a fixed-point amount with two fractional digits, stored as
// cents. Item prices and cart totals use it so arithmetic stays exact.
type Decimal struct {
	cents int64
}

// DecimalFromCents builds a Decimal from a cent amount.
func DecimalFromCents(cents int64) Decimal {
	return Decimal{cents: cents}
}

// ParseDecimal parses strings like "10", "5.5", or "9.99". More than two
// fractional digits is an error, never silently rounded.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, fmt.Errorf("parse decimal: empty input")
	}

	negative := false
	if s[0] == '-' || s[0] == '+' {
		negative = s[0] == '-'
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return Decimal{}, fmt.Errorf("parse decimal: %q is not a number", s)
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Decimal{}, fmt.Errorf("parse decimal: %q is not a number", s)
	}

	var centPart int64
	switch len(frac) {
	case 0:
	case 1:
		centPart, err = strconv.ParseInt(frac, 10, 64)
		centPart *= 10
	case 2:
		centPart, err = strconv.ParseInt(frac, 10, 64)
	default:
		return Decimal{}, fmt.Errorf("parse decimal: %q has more than two fractional digits", s)
	}
	if err != nil {
		return Decimal{}, fmt.Errorf("parse decimal: %q is not a number", s)
	}

	cents := units*100 + centPart
	if negative {
		cents = -cents
	}
	return Decimal{cents: cents}, nil
}

// Cents returns the raw cent amount.
func (d Decimal) Cents() int64 { return d.cents }

// Add returns d + o.
func (d Decimal) Add(o Decimal) Decimal {
	return Decimal{cents: d.cents + o.cents}
}

// MulInt returns d scaled by n, e.g. price times quantity.
func (d Decimal) MulInt(n int64) Decimal {
	return Decimal{cents: d.cents * n}
}

// IsNegative reports whether the amount is below zero.
func (d Decimal) IsNegative() bool { return d.cents < 0 }

// IsZero reports whether the amount is exactly zero.
func (d Decimal) IsZero() bool { return d.cents == 0 }

// String renders the amount with exactly two fractional digits, e.g. "25.50".
func (d Decimal) String() string {
	cents := d.cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON renders the amount as a JSON number with two fractional digits.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts both a JSON number and a quoted decimal string.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
