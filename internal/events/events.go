package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is emitted once a transfer reaches a terminal
// status. It is published after the transfer has committed, so consumers
// only ever see settled outcomes.
type TransactionCompleted struct {
	TransactionID string          `json:"transaction_id"`
	FromAccount   string          `json:"from_account"`
	ToAccount     string          `json:"to_account"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	FailMessage   string          `json:"fail_message,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event TransactionCompleted) error
}

// NoopPublisher is the default when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, TransactionCompleted) error {
	return nil
}
