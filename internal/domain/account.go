package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a bank account. BlockedAmount is the slice of Balance reserved
// for outgoing transfers that have been created but not yet executed, so
// Balance >= BlockedAmount holds at every commit point.
type Account struct {
	ID            string
	OwnerName     string
	Currency      Currency
	Balance       decimal.Decimal
	BlockedAmount decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Available is the portion of the balance not reserved for pending transfers.
func (a Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.BlockedAmount)
}
