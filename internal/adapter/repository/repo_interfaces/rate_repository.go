package repo_interfaces

import (
	"context"

	"github.com/api-sage/money-transfer-engine/internal/domain"
)

type RateRepository interface {
	GetRate(ctx context.Context, fromCurrency domain.Currency, toCurrency domain.Currency) (domain.Rate, error)
}
