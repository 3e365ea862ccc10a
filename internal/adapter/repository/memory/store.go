package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/domain"
)

// Store is the in-process twin of the postgres store, used by tests and by
// local runs without a database. The store mutex plays the role of the row
// locks: Begin takes it and Commit/Rollback release it, so units of work
// are fully serialized and staged writes can be discarded on rollback
// without partial state ever becoming visible.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
	}
}

var _ repo_interfaces.TransferStore = (*Store)(nil)

func (s *Store) Begin(_ context.Context) (repo_interfaces.TransferUnitOfWork, error) {
	s.mu.Lock()

	return &unitOfWork{
		store:              s,
		stagedAccounts:     make(map[string]domain.Account),
		stagedTransactions: make(map[string]domain.Transaction),
	}, nil
}

type unitOfWork struct {
	store              *Store
	done               bool
	stagedAccounts     map[string]domain.Account
	stagedTransactions map[string]domain.Transaction
}

func (u *unitOfWork) GetAccountForUpdate(_ context.Context, id string) (domain.Account, error) {
	if account, ok := u.stagedAccounts[id]; ok {
		return account, nil
	}
	account, ok := u.store.accounts[id]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return account, nil
}

func (u *unitOfWork) GetTransactionForUpdate(_ context.Context, id string) (domain.Transaction, error) {
	if transaction, ok := u.stagedTransactions[id]; ok {
		return cloneTransaction(transaction), nil
	}
	transaction, ok := u.store.transactions[id]
	if !ok {
		return domain.Transaction{}, commons.ErrRecordNotFound
	}
	return cloneTransaction(transaction), nil
}

func (u *unitOfWork) UpdateAccountBalances(_ context.Context, account domain.Account) error {
	if _, ok := u.stagedAccounts[account.ID]; !ok {
		if _, exists := u.store.accounts[account.ID]; !exists {
			return commons.ErrRecordNotFound
		}
	}
	account.UpdatedAt = time.Now().UTC()
	u.stagedAccounts[account.ID] = account
	return nil
}

func (u *unitOfWork) InsertTransaction(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	now := time.Now().UTC()
	transaction.ID = uuid.NewString()
	transaction.CreationDate = now
	transaction.UpdateDate = now
	u.stagedTransactions[transaction.ID] = cloneTransaction(transaction)
	return transaction, nil
}

func (u *unitOfWork) UpdateTransactionStatus(_ context.Context, transaction domain.Transaction) error {
	if _, ok := u.stagedTransactions[transaction.ID]; !ok {
		if _, exists := u.store.transactions[transaction.ID]; !exists {
			return commons.ErrRecordNotFound
		}
	}
	transaction.UpdateDate = time.Now().UTC()
	u.stagedTransactions[transaction.ID] = cloneTransaction(transaction)
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.done {
		return nil
	}
	u.done = true

	for id, account := range u.stagedAccounts {
		u.store.accounts[id] = account
	}
	for id, transaction := range u.stagedTransactions {
		u.store.transactions[id] = transaction
	}

	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true

	u.store.mu.Unlock()
	return nil
}

func cloneTransaction(transaction domain.Transaction) domain.Transaction {
	if transaction.FailMessage != nil {
		message := *transaction.FailMessage
		transaction.FailMessage = &message
	}
	return transaction
}
