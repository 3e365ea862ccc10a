package repo_interfaces

import (
	"context"

	"github.com/api-sage/money-transfer-engine/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetAll(ctx context.Context) ([]domain.Account, error)
	// UpdateOwnerName is the only externally reachable account mutation;
	// balances move exclusively through the transfer engine.
	UpdateOwnerName(ctx context.Context, id string, ownerName string) (domain.Account, error)
}
