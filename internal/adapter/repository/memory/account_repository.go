package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/domain"
)

type AccountRepository struct {
	store *Store
}

func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

var _ repo_interfaces.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	account.ID = uuid.NewString()
	account.OwnerName = strings.TrimSpace(account.OwnerName)
	account.CreatedAt = now
	account.UpdatedAt = now
	r.store.accounts[account.ID] = account

	return account, nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return account, nil
}

func (r *AccountRepository) GetAll(_ context.Context) ([]domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	accounts := make([]domain.Account, 0, len(r.store.accounts))
	for _, account := range r.store.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return accounts, nil
}

func (r *AccountRepository) UpdateOwnerName(_ context.Context, id string, ownerName string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}

	account.OwnerName = strings.TrimSpace(ownerName)
	account.UpdatedAt = time.Now().UTC()
	r.store.accounts[id] = account

	return account, nil
}
