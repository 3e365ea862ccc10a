package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusCreated   TransactionStatus = "CREATED"
	TransactionStatusSucceeded TransactionStatus = "SUCCEEDED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// IsTerminal reports whether the status can never change again.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusSucceeded || s == TransactionStatusFailed
}

// Transaction is a money transfer between two accounts. Currency is the
// currency of Amount and may differ from either account's currency.
// Status, FailMessage and UpdateDate are written only by the transfer
// engine; everything else is fixed at creation.
type Transaction struct {
	ID            string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Currency      Currency
	Status        TransactionStatus
	FailMessage   *string
	CreationDate  time.Time
	UpdateDate    time.Time
}
