package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type CreateTransactionRequest struct {
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

func (r CreateTransactionRequest) Validate() error {
	var errs []string

	fromAccountID := strings.TrimSpace(r.FromAccountID)
	toAccountID := strings.TrimSpace(r.ToAccountID)
	if fromAccountID == "" {
		errs = append(errs, "fromAccountId is required")
	}
	if toAccountID == "" {
		errs = append(errs, "toAccountId is required")
	}
	if fromAccountID != "" && fromAccountID == toAccountID {
		errs = append(errs, "fromAccountId and toAccountId cannot be the same")
	}

	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(strings.TrimSpace(r.Currency)) != 3 {
		errs = append(errs, "currency must be 3 characters")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type TransactionResponse struct {
	ID            string          `json:"id"`
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	FailMessage   string          `json:"failMessage,omitempty"`
	CreationDate  string          `json:"creationDate"`
	UpdateDate    string          `json:"updateDate"`
}
