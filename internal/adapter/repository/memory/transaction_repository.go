package memory

import (
	"context"
	"sort"
	"time"

	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/domain"
)

type TransactionRepository struct {
	store *Store
}

func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

var _ repo_interfaces.TransactionRepository = (*TransactionRepository)(nil)

func (r *TransactionRepository) GetByID(_ context.Context, id string) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	transaction, ok := r.store.transactions[id]
	if !ok {
		return domain.Transaction{}, commons.ErrRecordNotFound
	}
	return cloneTransaction(transaction), nil
}

func (r *TransactionRepository) GetAll(_ context.Context) ([]domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	transactions := make([]domain.Transaction, 0, len(r.store.transactions))
	for _, transaction := range r.store.transactions {
		transactions = append(transactions, cloneTransaction(transaction))
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].CreationDate.Before(transactions[j].CreationDate)
	})

	return transactions, nil
}

func (r *TransactionRepository) GetIDsByStatus(_ context.Context, status domain.TransactionStatus) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := make([]domain.Transaction, 0, len(r.store.transactions))
	for _, transaction := range r.store.transactions {
		if transaction.Status == status {
			matched = append(matched, transaction)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreationDate.Before(matched[j].CreationDate)
	})

	ids := make([]string, 0, len(matched))
	for _, transaction := range matched {
		ids = append(ids, transaction.ID)
	}

	return ids, nil
}

func (r *TransactionRepository) UpdateStatus(_ context.Context, id string, status domain.TransactionStatus, failMessage *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	transaction, ok := r.store.transactions[id]
	if !ok || transaction.Status.IsTerminal() {
		return commons.ErrRecordNotFound
	}

	transaction.Status = status
	transaction.FailMessage = failMessage
	transaction.UpdateDate = time.Now().UTC()
	r.store.transactions[id] = cloneTransaction(transaction)

	return nil
}
