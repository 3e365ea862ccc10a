package service_interfaces

import (
	"context"

	"github.com/api-sage/money-transfer-engine/internal/adapter/http/models"
	"github.com/api-sage/money-transfer-engine/internal/commons"
)

type TransferService interface {
	CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (commons.Response[models.TransactionResponse], error)
	ExecuteTransaction(ctx context.Context, id string) error
	ExecutePendingTransactions(ctx context.Context) error
	GetTransaction(ctx context.Context, id string) (commons.Response[models.TransactionResponse], error)
	GetAllTransactions(ctx context.Context) (commons.Response[[]models.TransactionResponse], error)
}
