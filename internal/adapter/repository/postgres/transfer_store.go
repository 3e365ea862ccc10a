package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/domain"
	"github.com/api-sage/money-transfer-engine/internal/logger"
)

// TransferStore hands out units of work backed by database transactions.
// SELECT ... FOR UPDATE inside a unit keeps the selected rows exclusively
// locked until Commit or Rollback, which is the only concurrency primitive
// the transfer engine relies on.
type TransferStore struct {
	db *sql.DB
}

func NewTransferStore(db *sql.DB) *TransferStore {
	return &TransferStore{db: db}
}

func (s *TransferStore) Begin(ctx context.Context) (repo_interfaces.TransferUnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("transfer store begin tx failed", err, nil)
		return nil, fmt.Errorf("begin transfer unit of work: %w", err)
	}

	return &transferUnitOfWork{tx: tx}, nil
}

type transferUnitOfWork struct {
	tx *sql.Tx
}

func (u *transferUnitOfWork) GetAccountForUpdate(ctx context.Context, id string) (domain.Account, error) {
	const query = `
SELECT id, owner_name, currency, balance, blocked_amount, created_at, updated_at
FROM bank_accounts
WHERE id = $1
FOR UPDATE`

	account, err := scanAccount(u.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return domain.Account{}, commons.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("lock account %s: %w", id, err)
	}

	return account, nil
}

func (u *transferUnitOfWork) GetTransactionForUpdate(ctx context.Context, id string) (domain.Transaction, error) {
	const query = `
SELECT id, from_account_id, to_account_id, amount, currency, status, fail_message, creation_date, update_date
FROM transactions
WHERE id = $1
FOR UPDATE`

	transaction, err := scanTransaction(u.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return domain.Transaction{}, commons.ErrRecordNotFound
		}
		return domain.Transaction{}, fmt.Errorf("lock transaction %s: %w", id, err)
	}

	return transaction, nil
}

func (u *transferUnitOfWork) UpdateAccountBalances(ctx context.Context, account domain.Account) error {
	const query = `
UPDATE bank_accounts
SET balance = $2,
    blocked_amount = $3,
    updated_at = NOW()
WHERE id = $1`

	result, err := u.tx.ExecContext(ctx, query, account.ID, account.Balance, account.BlockedAmount)
	if err != nil {
		return fmt.Errorf("update account balances: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account balances rows affected: %w", err)
	}
	if rows == 0 {
		return commons.ErrRecordNotFound
	}

	return nil
}

func (u *transferUnitOfWork) InsertTransaction(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	const query = `
INSERT INTO transactions (
	from_account_id,
	to_account_id,
	amount,
	currency,
	status,
	fail_message
) VALUES (
	$1, $2, $3, $4, $5, $6
)
RETURNING id, creation_date, update_date`

	if err := u.tx.QueryRowContext(
		ctx,
		query,
		transaction.FromAccountID,
		transaction.ToAccountID,
		transaction.Amount,
		transaction.Currency,
		transaction.Status,
		transaction.FailMessage,
	).Scan(&transaction.ID, &transaction.CreationDate, &transaction.UpdateDate); err != nil {
		return domain.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	return transaction, nil
}

func (u *transferUnitOfWork) UpdateTransactionStatus(ctx context.Context, transaction domain.Transaction) error {
	const query = `
UPDATE transactions
SET status = $2,
    fail_message = $3,
    update_date = NOW()
WHERE id = $1`

	result, err := u.tx.ExecContext(ctx, query, transaction.ID, transaction.Status, transaction.FailMessage)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction status rows affected: %w", err)
	}
	if rows == 0 {
		return commons.ErrRecordNotFound
	}

	return nil
}

func (u *transferUnitOfWork) Commit() error {
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer unit of work: %w", err)
	}
	return nil
}

func (u *transferUnitOfWork) Rollback() error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transfer unit of work: %w", err)
	}
	return nil
}
