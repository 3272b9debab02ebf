// Package core defines the bill domain: money, dates, schedules and the
// validation rules applied before anything is sent to the remote store.
//
// This file handles monetary amounts. Amounts are held as integer cents;
// parsing accepts the locale-formatted strings the legacy forms produce.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a positive currency amount in cents.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the canonical decimal string with exactly two
// fractional digits, e.g. "1234.56".
func (m Money) Decimal() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Reais returns the amount as a float64 for display only.
// Calculations must use cents.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// BRL formats the amount in Brazilian currency notation with dot
// grouping and comma decimals, e.g. "R$ 1.234,56".
func (m Money) BRL() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	intPart := strconv.FormatInt(c/100, 10)
	var grouped strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		grouped.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteString(intPart[i : i+3])
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, grouped.String(), c%100)
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third fractional digit.
//
// Both decimal separators are accepted, with or without thousands
// grouping: "12.34", "12,34", "1.234,56" and "1,234.56" all parse.
// When both separators appear, the one occurring last is the decimal
// separator. A separator repeated more than once is grouping.
// Only positive amounts are valid.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, " ", "")

	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')
	switch {
	case dot >= 0 && comma >= 0:
		// Mixed separators: the later one is decimal, the other grouping.
		if dot > comma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	case strings.Count(s, ",") > 1:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
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
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
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

// CanonicalAmount normalizes a locale-formatted amount string to the
// canonical "1234.56" form. Idempotent: canonical input round-trips
// to itself.
func CanonicalAmount(s string) (string, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return "", err
	}
	return Money{Cents: cents}.Decimal(), nil
}
