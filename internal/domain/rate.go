package domain

import "github.com/shopspring/decimal"

type Rate struct {
	FromCurrency Currency
	ToCurrency   Currency
	Rate         decimal.Decimal
}
