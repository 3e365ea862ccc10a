package repo_interfaces

import (
	"context"

	"github.com/api-sage/money-transfer-engine/internal/domain"
)

// TransferUnitOfWork is one atomic multi-statement transaction against the
// store. Rows read through the ForUpdate methods stay exclusively locked
// until Commit or Rollback, which serializes conflicting transfers.
type TransferUnitOfWork interface {
	GetAccountForUpdate(ctx context.Context, id string) (domain.Account, error)
	GetTransactionForUpdate(ctx context.Context, id string) (domain.Transaction, error)
	UpdateAccountBalances(ctx context.Context, account domain.Account) error
	InsertTransaction(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, transaction domain.Transaction) error
	Commit() error
	Rollback() error
}

type TransferStore interface {
	Begin(ctx context.Context) (TransferUnitOfWork, error)
}
