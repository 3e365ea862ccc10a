package domain

import (
	"fmt"
	"strings"
)

type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyINR Currency = "INR"
)

// ParseCurrency normalizes and validates a currency code against the
// supported enumeration.
func ParseCurrency(value string) (Currency, error) {
	normalized := Currency(strings.ToUpper(strings.TrimSpace(value)))
	switch normalized {
	case CurrencyEUR, CurrencyUSD, CurrencyINR:
		return normalized, nil
	}
	return "", fmt.Errorf("unsupported currency %q", value)
}
