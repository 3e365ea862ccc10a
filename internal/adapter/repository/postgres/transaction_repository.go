package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/domain"
	"github.com/api-sage/money-transfer-engine/internal/logger"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	const query = `
SELECT id, from_account_id, to_account_id, amount, currency, status, fail_message, creation_date, update_date
FROM transactions
WHERE id = $1`

	transaction, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return domain.Transaction{}, commons.ErrRecordNotFound
		}
		logger.Error("transaction repository get by id failed", err, logger.Fields{
			"transactionId": id,
		})
		return domain.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}

	return transaction, nil
}

func (r *TransactionRepository) GetAll(ctx context.Context) ([]domain.Transaction, error) {
	const query = `
SELECT id, from_account_id, to_account_id, amount, currency, status, fail_message, creation_date, update_date
FROM transactions
ORDER BY creation_date`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("transaction repository get all failed", err, nil)
		return nil, fmt.Errorf("get all transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return transactions, nil
}

func (r *TransactionRepository) GetIDsByStatus(ctx context.Context, status domain.TransactionStatus) ([]string, error) {
	const query = `
SELECT id
FROM transactions
WHERE status = $1
ORDER BY creation_date`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		logger.Error("transaction repository get ids by status failed", err, logger.Fields{
			"status": status,
		})
		return nil, fmt.Errorf("get transaction ids by status: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan transaction id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction ids: %w", err)
	}

	return ids, nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, failMessage *string) error {
	logger.Info("transaction repository update status", logger.Fields{
		"transactionId": id,
		"status":        status,
	})

	// The guard on CREATED keeps a late best-effort marking from
	// overwriting a terminal status another worker already committed.
	const query = `
UPDATE transactions
SET status = $2,
    fail_message = $3,
    update_date = NOW()
WHERE id = $1
  AND status = 'CREATED'`

	result, err := r.db.ExecContext(ctx, query, id, status, failMessage)
	if err != nil {
		logger.Error("transaction repository update status failed", err, logger.Fields{
			"transactionId": id,
		})
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

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var transaction domain.Transaction
	var currency string
	var status string
	var failMessage sql.NullString

	if err := row.Scan(
		&transaction.ID,
		&transaction.FromAccountID,
		&transaction.ToAccountID,
		&transaction.Amount,
		&currency,
		&status,
		&failMessage,
		&transaction.CreationDate,
		&transaction.UpdateDate,
	); err != nil {
		return domain.Transaction{}, err
	}

	transaction.Currency = domain.Currency(currency)
	transaction.Status = domain.TransactionStatus(status)
	if failMessage.Valid {
		value := failMessage.String
		transaction.FailMessage = &value
	}

	return transaction, nil
}
