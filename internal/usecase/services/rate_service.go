package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/money-transfer-engine/internal/domain"
	"github.com/api-sage/money-transfer-engine/internal/logger"
	"github.com/api-sage/money-transfer-engine/internal/usecase/service_interfaces"
)

// Verify that RateService implements the service_interfaces.RateService interface
var _ service_interfaces.RateService = (*RateService)(nil)

type RateService struct {
	rateRepo repo_interfaces.RateRepository
}

func NewRateService(rateRepo repo_interfaces.RateRepository) *RateService {
	return &RateService{rateRepo: rateRepo}
}

func (s *RateService) Exchange(ctx context.Context, amount decimal.Decimal, fromCurrency domain.Currency, toCurrency domain.Currency) (decimal.Decimal, error) {
	if fromCurrency == toCurrency {
		return amount, nil
	}

	rate, err := s.rateRepo.GetRate(ctx, fromCurrency, toCurrency)
	if err != nil {
		logger.Error("rate service exchange lookup failed", err, logger.Fields{
			"fromCurrency": fromCurrency,
			"toCurrency":   toCurrency,
		})
		return decimal.Decimal{}, fmt.Errorf("get rate %s->%s: %w", fromCurrency, toCurrency, err)
	}

	return amount.Mul(rate.Rate), nil
}
