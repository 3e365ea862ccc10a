package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/domain"
	"github.com/api-sage/money-transfer-engine/internal/logger"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"ownerName": account.OwnerName,
		"currency":  account.Currency,
	})

	const query = `
INSERT INTO bank_accounts (
	owner_name,
	currency,
	balance,
	blocked_amount
) VALUES (
	$1, $2, $3, $4
)
RETURNING id, created_at, updated_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		strings.TrimSpace(account.OwnerName),
		account.Currency,
		account.Balance,
		account.BlockedAmount,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		logger.Error("account repository create failed", err, logger.Fields{
			"ownerName": account.OwnerName,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	logger.Info("account repository create success", logger.Fields{
		"accountId": account.ID,
	})

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `
SELECT id, owner_name, currency, balance, blocked_amount, created_at, updated_at
FROM bank_accounts
WHERE id = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return domain.Account{}, commons.ErrRecordNotFound
		}
		logger.Error("account repository get by id failed", err, logger.Fields{
			"accountId": id,
		})
		return domain.Account{}, fmt.Errorf("get account %s: %w", id, err)
	}

	return account, nil
}

func (r *AccountRepository) GetAll(ctx context.Context) ([]domain.Account, error) {
	const query = `
SELECT id, owner_name, currency, balance, blocked_amount, created_at, updated_at
FROM bank_accounts
ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("account repository get all failed", err, nil)
		return nil, fmt.Errorf("get all accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) UpdateOwnerName(ctx context.Context, id string, ownerName string) (domain.Account, error) {
	logger.Info("account repository update owner name", logger.Fields{
		"accountId": id,
	})

	const query = `
UPDATE bank_accounts
SET owner_name = $2,
    updated_at = NOW()
WHERE id = $1
RETURNING id, owner_name, currency, balance, blocked_amount, created_at, updated_at`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id, strings.TrimSpace(ownerName)))
	if err != nil {
		if isNotFound(err) {
			logger.Info("account repository record not found", logger.Fields{
				"accountId": id,
			})
			return domain.Account{}, commons.ErrRecordNotFound
		}
		logger.Error("account repository update owner name failed", err, logger.Fields{
			"accountId": id,
		})
		return domain.Account{}, fmt.Errorf("update account owner name: %w", err)
	}

	return account, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var account domain.Account
	var currency string

	if err := row.Scan(
		&account.ID,
		&account.OwnerName,
		&currency,
		&account.Balance,
		&account.BlockedAmount,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return domain.Account{}, err
	}

	account.Currency = domain.Currency(currency)
	return account, nil
}
