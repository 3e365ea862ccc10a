package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/domain"
)

type ratePair struct {
	from domain.Currency
	to   domain.Currency
}

// RateRepository is a fixed conversion table covering every pair of the
// supported currency enumeration, identity pairs included.
type RateRepository struct {
	rates map[ratePair]domain.Rate
}

func NewRateRepository() *RateRepository {
	seed := []domain.Rate{
		{FromCurrency: domain.CurrencyEUR, ToCurrency: domain.CurrencyEUR, Rate: decimal.NewFromInt(1)},
		{FromCurrency: domain.CurrencyEUR, ToCurrency: domain.CurrencyUSD, Rate: decimal.RequireFromString("1.12")},
		{FromCurrency: domain.CurrencyEUR, ToCurrency: domain.CurrencyINR, Rate: decimal.RequireFromString("77.81")},
		{FromCurrency: domain.CurrencyUSD, ToCurrency: domain.CurrencyUSD, Rate: decimal.NewFromInt(1)},
		{FromCurrency: domain.CurrencyUSD, ToCurrency: domain.CurrencyEUR, Rate: decimal.RequireFromString("0.89")},
		{FromCurrency: domain.CurrencyUSD, ToCurrency: domain.CurrencyINR, Rate: decimal.RequireFromString("69.46")},
		{FromCurrency: domain.CurrencyINR, ToCurrency: domain.CurrencyINR, Rate: decimal.NewFromInt(1)},
		{FromCurrency: domain.CurrencyINR, ToCurrency: domain.CurrencyEUR, Rate: decimal.RequireFromString("0.013")},
		{FromCurrency: domain.CurrencyINR, ToCurrency: domain.CurrencyUSD, Rate: decimal.RequireFromString("0.014")},
	}

	rates := make(map[ratePair]domain.Rate, len(seed))
	for _, rate := range seed {
		rates[ratePair{from: rate.FromCurrency, to: rate.ToCurrency}] = rate
	}

	return &RateRepository{rates: rates}
}

var _ repo_interfaces.RateRepository = (*RateRepository)(nil)

func (r *RateRepository) GetRate(_ context.Context, fromCurrency domain.Currency, toCurrency domain.Currency) (domain.Rate, error) {
	rate, ok := r.rates[ratePair{from: fromCurrency, to: toCurrency}]
	if !ok {
		return domain.Rate{}, commons.ErrRecordNotFound
	}
	return rate, nil
}
