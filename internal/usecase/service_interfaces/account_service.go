package service_interfaces

import (
	"context"

	"github.com/api-sage/money-transfer-engine/internal/adapter/http/models"
	"github.com/api-sage/money-transfer-engine/internal/commons"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, id string) (commons.Response[models.AccountResponse], error)
	GetAllAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error)
	UpdateOwnerName(ctx context.Context, id string, req models.UpdateOwnerNameRequest) (commons.Response[models.AccountResponse], error)
}
