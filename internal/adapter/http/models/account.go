package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	OwnerName string          `json:"ownerName"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.OwnerName) == "" {
		errs = append(errs, "ownerName is required")
	}

	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if len(currency) != 3 {
		errs = append(errs, "currency must be 3 characters")
	}

	if r.Balance.IsNegative() {
		errs = append(errs, "balance must not be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type UpdateOwnerNameRequest struct {
	OwnerName string `json:"ownerName"`
}

func (r UpdateOwnerNameRequest) Validate() error {
	if strings.TrimSpace(r.OwnerName) == "" {
		return errors.New("ownerName is required")
	}
	return nil
}

type AccountResponse struct {
	ID            string          `json:"id"`
	OwnerName     string          `json:"ownerName"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	BlockedAmount decimal.Decimal `json:"blockedAmount"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}
