package repo_interfaces

import (
	"context"

	"github.com/api-sage/money-transfer-engine/internal/domain"
)

type TransactionRepository interface {
	GetByID(ctx context.Context, id string) (domain.Transaction, error)
	GetAll(ctx context.Context) ([]domain.Transaction, error)
	GetIDsByStatus(ctx context.Context, status domain.TransactionStatus) ([]string, error)
	// UpdateStatus writes status, fail message and update date outside any
	// unit of work. The engine uses it for the best-effort FAILED marking
	// after a rolled-back execution. Rows already in a terminal status are
	// left untouched and reported as ErrRecordNotFound.
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, failMessage *string) error
}
