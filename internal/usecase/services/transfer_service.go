package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/money-transfer-engine/internal/adapter/http/models"
	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/domain"
	"github.com/api-sage/money-transfer-engine/internal/events"
	"github.com/api-sage/money-transfer-engine/internal/logger"
	"github.com/api-sage/money-transfer-engine/internal/usecase/service_interfaces"
)

// failMessageLimit caps the diagnostic stored on a transaction that
// failed outside the happy path.
const failMessageLimit = 5000

// Verify that TransferService implements the service_interfaces.TransferService interface
var _ service_interfaces.TransferService = (*TransferService)(nil)

// TransferService is the transfer engine. Both phases run as one unit of
// work against the store; conflicting transfers serialize on the row
// locks taken inside that unit, never on in-process locks, so correctness
// holds across multiple processes sharing one database.
type TransferService struct {
	store           repo_interfaces.TransferStore
	accountRepo     repo_interfaces.AccountRepository
	transactionRepo repo_interfaces.TransactionRepository
	rateService     service_interfaces.RateService
	publisher       events.EventPublisher
}

func NewTransferService(
	store repo_interfaces.TransferStore,
	accountRepo repo_interfaces.AccountRepository,
	transactionRepo repo_interfaces.TransactionRepository,
	rateService service_interfaces.RateService,
	publisher events.EventPublisher,
) *TransferService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &TransferService{
		store:           store,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		rateService:     rateService,
		publisher:       publisher,
	}
}

// CreateTransaction books the transfer amount into the source account's
// blocked funds and records the transaction as CREATED, all in one unit of
// work. The visible balance stays untouched and the destination account is
// not locked; realizing the transfer is deferred to ExecuteTransaction so
// a crash in between leaves the transfer safely resumable.
func (s *TransferService) CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("transfer service create transaction request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		validationErr := commons.NewValidationError("%s", err.Error())
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", validationErr.Error()), validationErr
	}

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		validationErr := commons.NewValidationError("%s", err.Error())
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", validationErr.Error()), validationErr
	}

	fromAccountID := strings.TrimSpace(req.FromAccountID)
	toAccountID := strings.TrimSpace(req.ToAccountID)

	// The create phase never locks the destination row; existence is all
	// that has to hold here.
	if _, err := s.accountRepo.GetByID(ctx, toAccountID); err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			validationErr := commons.NewValidationError("to bank account does not exist")
			return commons.ErrorResponse[models.TransactionResponse]("validation failed", validationErr.Error()), validationErr
		}
		return commons.ErrorResponse[models.TransactionResponse]("failed to create transaction", "Unable to create transaction right now"), err
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("failed to create transaction", "Unable to create transaction right now"), err
	}

	created, err := s.createLocked(ctx, uow, fromAccountID, toAccountID, req, currency)
	if err != nil {
		_ = uow.Rollback()
		if commons.IsValidationError(err) {
			return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
		}
		if errors.Is(err, commons.ErrInsufficientBalance) {
			return commons.ErrorResponse[models.TransactionResponse]("Insufficient balance", err.Error()), err
		}
		logger.Error("transfer service create transaction failed", err, logger.Fields{
			"fromAccountId": fromAccountID,
			"toAccountId":   toAccountID,
		})
		return commons.ErrorResponse[models.TransactionResponse]("failed to create transaction", "Unable to create transaction right now"), err
	}

	if err := uow.Commit(); err != nil {
		logger.Error("transfer service create transaction commit failed", err, logger.Fields{
			"fromAccountId": fromAccountID,
			"toAccountId":   toAccountID,
		})
		return commons.ErrorResponse[models.TransactionResponse]("failed to create transaction", "Unable to create transaction right now"), err
	}

	logger.Info("transfer service create transaction success", logger.Fields{
		"transactionId": created.ID,
	})

	return commons.SuccessResponse("transaction created", mapTransactionToResponse(created)), nil
}

func (s *TransferService) createLocked(
	ctx context.Context,
	uow repo_interfaces.TransferUnitOfWork,
	fromAccountID string,
	toAccountID string,
	req models.CreateTransactionRequest,
	currency domain.Currency,
) (domain.Transaction, error) {
	fromAccount, err := uow.GetAccountForUpdate(ctx, fromAccountID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Transaction{}, commons.NewValidationError("from bank account does not exist")
		}
		return domain.Transaction{}, err
	}

	debitAmount, err := s.rateService.Exchange(ctx, req.Amount, currency, fromAccount.Currency)
	if err != nil {
		return domain.Transaction{}, err
	}

	if fromAccount.Available().LessThan(debitAmount) {
		return domain.Transaction{}, commons.ErrInsufficientBalance
	}

	fromAccount.BlockedAmount = fromAccount.BlockedAmount.Add(debitAmount)
	if err := uow.UpdateAccountBalances(ctx, fromAccount); err != nil {
		return domain.Transaction{}, err
	}

	created, err := uow.InsertTransaction(ctx, domain.Transaction{
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        req.Amount,
		Currency:      currency,
		Status:        domain.TransactionStatusCreated,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	return created, nil
}

// ExecuteTransaction realizes a CREATED transfer: the blocked funds become
// an actual debit on the source and a credit on the destination, or the
// transaction is marked FAILED. Terminal transactions are rejected, never
// reprocessed, which is what gives at-most-once execution. The transaction
// row is locked first, then the source account, then the destination;
// the fixed order prevents lock-order deadlocks between opposing
// transfers over the same account pair.
func (s *TransferService) ExecuteTransaction(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return commons.NewValidationError("the specified transaction does not exist")
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin execute unit of work: %w", err)
	}

	transaction, err := s.executeLocked(ctx, uow, id)
	if err != nil {
		_ = uow.Rollback()
		if commons.IsValidationError(err) {
			return err
		}
		logger.Error("transfer service execute transaction failed", err, logger.Fields{
			"transactionId": id,
		})
		s.markFailedAfterRollback(ctx, id, err)
		return fmt.Errorf("execute transaction %s: %w", id, err)
	}

	if err := uow.Commit(); err != nil {
		logger.Error("transfer service execute transaction commit failed", err, logger.Fields{
			"transactionId": id,
		})
		s.markFailedAfterRollback(ctx, id, err)
		return fmt.Errorf("commit execute unit of work: %w", err)
	}

	logger.Info("transfer service execute transaction finished", logger.Fields{
		"transactionId": transaction.ID,
		"status":        transaction.Status,
	})

	s.publishCompleted(ctx, transaction)
	return nil
}

func (s *TransferService) executeLocked(ctx context.Context, uow repo_interfaces.TransferUnitOfWork, id string) (domain.Transaction, error) {
	transaction, err := uow.GetTransactionForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Transaction{}, commons.NewValidationError("the specified transaction does not exist")
		}
		return domain.Transaction{}, err
	}

	if transaction.Status != domain.TransactionStatusCreated {
		return domain.Transaction{}, commons.NewValidationError("could not execute transaction which is not in CREATED status")
	}

	// Source before destination, always.
	fromAccount, err := uow.GetAccountForUpdate(ctx, transaction.FromAccountID)
	if err != nil {
		return domain.Transaction{}, err
	}
	toAccount, err := uow.GetAccountForUpdate(ctx, transaction.ToAccountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	debitAmount, err := s.rateService.Exchange(ctx, transaction.Amount, transaction.Currency, fromAccount.Currency)
	if err != nil {
		return domain.Transaction{}, err
	}

	newBlockedAmount := fromAccount.BlockedAmount.Sub(debitAmount)
	newBalance := fromAccount.Balance.Sub(debitAmount)

	if newBlockedAmount.IsNegative() || newBalance.IsNegative() {
		// The blocked funds deliberately stay blocked here; releasing them
		// on failure is a product decision that has not been taken.
		message := fmt.Sprintf("There is no enough money. Current balance is %s", fromAccount.Balance.String())
		transaction.Status = domain.TransactionStatusFailed
		transaction.FailMessage = &message
	} else {
		fromAccount.BlockedAmount = newBlockedAmount
		fromAccount.Balance = newBalance
		if err := uow.UpdateAccountBalances(ctx, fromAccount); err != nil {
			return domain.Transaction{}, err
		}

		creditAmount, err := s.rateService.Exchange(ctx, transaction.Amount, transaction.Currency, toAccount.Currency)
		if err != nil {
			return domain.Transaction{}, err
		}

		toAccount.Balance = toAccount.Balance.Add(creditAmount)
		if err := uow.UpdateAccountBalances(ctx, toAccount); err != nil {
			return domain.Transaction{}, err
		}

		transaction.Status = domain.TransactionStatusSucceeded
	}

	if err := uow.UpdateTransactionStatus(ctx, transaction); err != nil {
		return domain.Transaction{}, err
	}

	return transaction, nil
}

// markFailedAfterRollback records a terminal FAILED status in a separate
// unit of work after the main one has been rolled back, so the scheduler
// does not pick the same broken transaction up forever. Best effort: a
// failure here is logged and swallowed.
func (s *TransferService) markFailedAfterRollback(ctx context.Context, id string, cause error) {
	message := fmt.Sprintf("Transaction has been rolled back as it was unexpected exception: %s", cause.Error())
	if len(message) > failMessageLimit {
		message = message[:failMessageLimit]
	}

	if err := s.transactionRepo.UpdateStatus(ctx, id, domain.TransactionStatusFailed, &message); err != nil {
		logger.Error("transfer service mark failed after rollback", err, logger.Fields{
			"transactionId": id,
		})
		return
	}

	if failed, err := s.transactionRepo.GetByID(ctx, id); err == nil {
		s.publishCompleted(ctx, failed)
	}
}

// ExecutePendingTransactions drains everything still in CREATED status,
// isolating each transaction's failure from the rest of the batch.
func (s *TransferService) ExecutePendingTransactions(ctx context.Context) error {
	logger.Info("transaction executor started", nil)

	ids, err := s.transactionRepo.GetIDsByStatus(ctx, domain.TransactionStatusCreated)
	if err != nil {
		logger.Error("transaction executor could not list pending transactions", err, nil)
		return fmt.Errorf("list pending transactions: %w", err)
	}

	for _, id := range ids {
		if err := s.ExecuteTransaction(ctx, id); err != nil {
			logger.Error("transaction executor could not execute transaction", err, logger.Fields{
				"transactionId": id,
			})
		}
	}

	logger.Info("transaction executor ended", logger.Fields{
		"pendingCount": len(ids),
	})
	return nil
}

func (s *TransferService) GetTransaction(ctx context.Context, id string) (commons.Response[models.TransactionResponse], error) {
	transaction, err := s.transactionRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransactionResponse]("Transaction not found"), err
		}
		logger.Error("transfer service get transaction failed", err, logger.Fields{
			"transactionId": id,
		})
		return commons.ErrorResponse[models.TransactionResponse]("failed to get transaction", "Unable to fetch transaction right now"), err
	}

	return commons.SuccessResponse("transaction fetched successfully", mapTransactionToResponse(transaction)), nil
}

func (s *TransferService) GetAllTransactions(ctx context.Context) (commons.Response[[]models.TransactionResponse], error) {
	transactions, err := s.transactionRepo.GetAll(ctx)
	if err != nil {
		logger.Error("transfer service get all transactions failed", err, nil)
		return commons.ErrorResponse[[]models.TransactionResponse]("failed to get transactions", "Unable to fetch transactions right now"), err
	}

	resp := make([]models.TransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		resp = append(resp, mapTransactionToResponse(transaction))
	}

	return commons.SuccessResponse("transactions fetched successfully", resp), nil
}

func (s *TransferService) publishCompleted(ctx context.Context, transaction domain.Transaction) {
	if !transaction.Status.IsTerminal() {
		return
	}

	event := events.TransactionCompleted{
		TransactionID: transaction.ID,
		FromAccount:   transaction.FromAccountID,
		ToAccount:     transaction.ToAccountID,
		Amount:        transaction.Amount,
		Currency:      string(transaction.Currency),
		Status:        string(transaction.Status),
		OccurredAt:    time.Now().UTC(),
	}
	if transaction.FailMessage != nil {
		event.FailMessage = *transaction.FailMessage
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("transfer service publish transaction completed failed", err, logger.Fields{
			"transactionId": transaction.ID,
		})
	}
}

func mapTransactionToResponse(transaction domain.Transaction) models.TransactionResponse {
	resp := models.TransactionResponse{
		ID:            transaction.ID,
		FromAccountID: transaction.FromAccountID,
		ToAccountID:   transaction.ToAccountID,
		Amount:        transaction.Amount,
		Currency:      string(transaction.Currency),
		Status:        string(transaction.Status),
		CreationDate:  transaction.CreationDate.UTC().Format(time.RFC3339),
		UpdateDate:    transaction.UpdateDate.UTC().Format(time.RFC3339),
	}
	if transaction.FailMessage != nil {
		resp.FailMessage = *transaction.FailMessage
	}
	return resp
}
