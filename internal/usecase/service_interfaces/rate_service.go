package service_interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/api-sage/money-transfer-engine/internal/domain"
)

// RateService converts an amount between currencies. Implementations must
// be defined for every pair of the deployment's currency enumeration,
// identity pairs included, and must be pure: the engine recomputes every
// conversion from current rates and never caches the result.
type RateService interface {
	Exchange(ctx context.Context, amount decimal.Decimal, fromCurrency domain.Currency, toCurrency domain.Currency) (decimal.Decimal, error)
}
