package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/api-sage/money-transfer-engine/internal/adapter/http/models"
	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/memory"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/domain"
	"github.com/api-sage/money-transfer-engine/internal/usecase/service_interfaces"
	"github.com/api-sage/money-transfer-engine/internal/usecase/services"
)

type engineFixture struct {
	store        *memory.Store
	accounts     *memory.AccountRepository
	transactions *memory.TransactionRepository
	engine       *services.TransferService
}

func newEngineFixture(rateService service_interfaces.RateService) *engineFixture {
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	transactions := memory.NewTransactionRepository(store)
	if rateService == nil {
		rateService = services.NewRateService(memory.NewRateRepository())
	}

	return &engineFixture{
		store:        store,
		accounts:     accounts,
		transactions: transactions,
		engine:       services.NewTransferService(store, accounts, transactions, rateService, nil),
	}
}

func (f *engineFixture) createAccount(t *testing.T, currency domain.Currency, balance string) domain.Account {
	t.Helper()

	account, err := f.accounts.Create(context.Background(), domain.Account{
		OwnerName: "Test Owner",
		Currency:  currency,
		Balance:   decimal.RequireFromString(balance),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

func (f *engineFixture) account(t *testing.T, id string) domain.Account {
	t.Helper()

	account, err := f.accounts.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get account %s: %v", id, err)
	}
	return account
}

func (f *engineFixture) transaction(t *testing.T, id string) domain.Transaction {
	t.Helper()

	transaction, err := f.transactions.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get transaction %s: %v", id, err)
	}
	return transaction
}

type rateServiceStub struct {
	exchangeFn func(ctx context.Context, amount decimal.Decimal, from domain.Currency, to domain.Currency) (decimal.Decimal, error)
}

func (s *rateServiceStub) Exchange(ctx context.Context, amount decimal.Decimal, from domain.Currency, to domain.Currency) (decimal.Decimal, error) {
	if s.exchangeFn != nil {
		return s.exchangeFn(ctx, amount, from, to)
	}
	return amount, nil
}

func TestCreateTransactionBlocksFundsWithoutTouchingBalance(t *testing.T) {
	f := newEngineFixture(nil)
	from := f.createAccount(t, domain.CurrencyEUR, "1000")
	to := f.createAccount(t, domain.CurrencyUSD, "0")

	resp, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(1),
		Currency:      "EUR",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected successful response with data")
	}
	if resp.Data.Status != string(domain.TransactionStatusCreated) {
		t.Fatalf("expected CREATED status, got %s", resp.Data.Status)
	}

	fromAfter := f.account(t, from.ID)
	if !fromAfter.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected balance 1000, got %s", fromAfter.Balance)
	}
	if !fromAfter.BlockedAmount.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected blocked amount 1, got %s", fromAfter.BlockedAmount)
	}
	toAfter := f.account(t, to.ID)
	if !toAfter.Balance.Equal(decimal.Zero) {
		t.Fatalf("expected destination untouched, got balance %s", toAfter.Balance)
	}
}

func TestCreateTransactionConvertsBlockedAmountToSourceCurrency(t *testing.T) {
	f := newEngineFixture(nil)
	from := f.createAccount(t, domain.CurrencyUSD, "1000")
	to := f.createAccount(t, domain.CurrencyUSD, "0")

	// 10 EUR from a USD account blocks 10 * 1.12 = 11.2 USD.
	_, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(10),
		Currency:      "EUR",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	fromAfter := f.account(t, from.ID)
	if !fromAfter.BlockedAmount.Equal(decimal.RequireFromString("11.2")) {
		t.Fatalf("expected blocked amount 11.2, got %s", fromAfter.BlockedAmount)
	}
}

func TestCreateTransactionSameAccountRejected(t *testing.T) {
	f := newEngineFixture(nil)
	account := f.createAccount(t, domain.CurrencyEUR, "100")

	_, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: account.ID,
		ToAccountID:   account.ID,
		Amount:        decimal.NewFromInt(1),
		Currency:      "EUR",
	})
	if !commons.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateTransactionNonPositiveAmountRejected(t *testing.T) {
	f := newEngineFixture(nil)
	from := f.createAccount(t, domain.CurrencyEUR, "100")
	to := f.createAccount(t, domain.CurrencyEUR, "100")

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        amount,
			Currency:      "EUR",
		})
		if !commons.IsValidationError(err) {
			t.Fatalf("expected validation error for amount %s, got %v", amount, err)
		}
	}
}

func TestCreateTransactionUnknownAccountsRejected(t *testing.T) {
	f := newEngineFixture(nil)
	account := f.createAccount(t, domain.CurrencyEUR, "100")

	_, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: "b3c7e6ce-2f0f-4bb1-9f51-000000000000",
		ToAccountID:   account.ID,
		Amount:        decimal.NewFromInt(1),
		Currency:      "EUR",
	})
	if !commons.IsValidationError(err) {
		t.Fatalf("expected validation error for unknown source, got %v", err)
	}

	_, err = f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: account.ID,
		ToAccountID:   "b3c7e6ce-2f0f-4bb1-9f51-000000000001",
		Amount:        decimal.NewFromInt(1),
		Currency:      "EUR",
	})
	if !commons.IsValidationError(err) {
		t.Fatalf("expected validation error for unknown destination, got %v", err)
	}
}

func TestCreateTransactionInsufficientFundsLeavesStateUntouched(t *testing.T) {
	f := newEngineFixture(nil)
	from := f.createAccount(t, domain.CurrencyEUR, "100")
	to := f.createAccount(t, domain.CurrencyEUR, "0")

	_, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(150),
		Currency:      "EUR",
	})
	if !errors.Is(err, commons.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}

	fromAfter := f.account(t, from.ID)
	if !fromAfter.Balance.Equal(decimal.NewFromInt(100)) || !fromAfter.BlockedAmount.Equal(decimal.Zero) {
		t.Fatalf("expected balance 100 and blocked 0, got %s / %s", fromAfter.Balance, fromAfter.BlockedAmount)
	}

	transactions, err := f.transactions.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all transactions: %v", err)
	}
	if len(transactions) != 0 {
		t.Fatalf("expected no transaction persisted, got %d", len(transactions))
	}
}

func TestExecuteTransactionEndToEnd(t *testing.T) {
	f := newEngineFixture(nil)
	from := f.createAccount(t, domain.CurrencyEUR, "1000")
	to := f.createAccount(t, domain.CurrencyUSD, "0")

	resp, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(1),
		Currency:      "EUR",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := f.engine.ExecuteTransaction(context.Background(), resp.Data.ID); err != nil {
		t.Fatalf("execute transaction: %v", err)
	}

	fromAfter := f.account(t, from.ID)
	if !fromAfter.Balance.Equal(decimal.NewFromInt(999)) {
		t.Fatalf("expected source balance 999, got %s", fromAfter.Balance)
	}
	if !fromAfter.BlockedAmount.Equal(decimal.Zero) {
		t.Fatalf("expected source blocked 0, got %s", fromAfter.BlockedAmount)
	}

	toAfter := f.account(t, to.ID)
	if !toAfter.Balance.Equal(decimal.RequireFromString("1.12")) {
		t.Fatalf("expected destination balance 1.12, got %s", toAfter.Balance)
	}

	executed := f.transaction(t, resp.Data.ID)
	if executed.Status != domain.TransactionStatusSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s", executed.Status)
	}
}

func TestExecuteTransactionTwiceRejected(t *testing.T) {
	f := newEngineFixture(nil)
	from := f.createAccount(t, domain.CurrencyEUR, "1000")
	to := f.createAccount(t, domain.CurrencyEUR, "0")

	resp, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(10),
		Currency:      "EUR",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := f.engine.ExecuteTransaction(context.Background(), resp.Data.ID); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	err = f.engine.ExecuteTransaction(context.Background(), resp.Data.ID)
	if !commons.IsValidationError(err) {
		t.Fatalf("expected validation error on second execute, got %v", err)
	}

	// The balance mutation happened exactly once.
	fromAfter := f.account(t, from.ID)
	if !fromAfter.Balance.Equal(decimal.NewFromInt(990)) {
		t.Fatalf("expected source balance 990, got %s", fromAfter.Balance)
	}
	toAfter := f.account(t, to.ID)
	if !toAfter.Balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected destination balance 10, got %s", toAfter.Balance)
	}
}

func TestExecuteTransactionUnknownIDRejected(t *testing.T) {
	f := newEngineFixture(nil)

	err := f.engine.ExecuteTransaction(context.Background(), "b3c7e6ce-2f0f-4bb1-9f51-000000000002")
	if !commons.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = f.engine.ExecuteTransaction(context.Background(), "")
	if !commons.IsValidationError(err) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}
}

// A transfer created against one rate can become uncoverable if the rate
// moves before execution. The execute phase then marks the transaction
// FAILED and deliberately leaves the blocked funds blocked.
func TestExecuteInsufficientFundsLeavesFundsBlocked(t *testing.T) {
	rate := decimal.NewFromInt(1)
	var mu sync.Mutex
	stub := &rateServiceStub{
		exchangeFn: func(_ context.Context, amount decimal.Decimal, _ domain.Currency, _ domain.Currency) (decimal.Decimal, error) {
			mu.Lock()
			defer mu.Unlock()
			return amount.Mul(rate), nil
		},
	}

	f := newEngineFixture(stub)
	from := f.createAccount(t, domain.CurrencyEUR, "100")
	to := f.createAccount(t, domain.CurrencyUSD, "0")

	resp, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(80),
		Currency:      "EUR",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	mu.Lock()
	rate = decimal.NewFromInt(2)
	mu.Unlock()

	if err := f.engine.ExecuteTransaction(context.Background(), resp.Data.ID); err != nil {
		t.Fatalf("execute transaction: %v", err)
	}

	failed := f.transaction(t, resp.Data.ID)
	if failed.Status != domain.TransactionStatusFailed {
		t.Fatalf("expected FAILED, got %s", failed.Status)
	}
	if failed.FailMessage == nil || *failed.FailMessage == "" {
		t.Fatal("expected fail message citing the current balance")
	}

	fromAfter := f.account(t, from.ID)
	if !fromAfter.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance untouched at 100, got %s", fromAfter.Balance)
	}
	if !fromAfter.BlockedAmount.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected blocked funds to stay blocked at 80, got %s", fromAfter.BlockedAmount)
	}
}

// A storage or rate failure after the execute-phase locks are held must
// leave no partial state behind: the unit of work rolls back, and a
// separate best-effort unit marks the transaction FAILED so the scheduler
// stops retrying it.
func TestExecuteFailureRollsBackAndMarksFailed(t *testing.T) {
	var calls atomic.Int64
	stub := &rateServiceStub{
		exchangeFn: func(_ context.Context, amount decimal.Decimal, _ domain.Currency, _ domain.Currency) (decimal.Decimal, error) {
			// Call 1 is the create-phase debit conversion, call 2 the
			// execute-phase debit, call 3 the credit conversion.
			if calls.Add(1) == 3 {
				return decimal.Decimal{}, errors.New("rate source unavailable")
			}
			return amount, nil
		},
	}

	f := newEngineFixture(stub)
	from := f.createAccount(t, domain.CurrencyEUR, "100")
	to := f.createAccount(t, domain.CurrencyUSD, "0")

	resp, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(10),
		Currency:      "EUR",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	err = f.engine.ExecuteTransaction(context.Background(), resp.Data.ID)
	if err == nil {
		t.Fatal("expected execute to fail")
	}
	if commons.IsValidationError(err) {
		t.Fatalf("expected a non-validation failure, got %v", err)
	}

	failed := f.transaction(t, resp.Data.ID)
	if failed.Status != domain.TransactionStatusFailed {
		t.Fatalf("expected FAILED, got %s", failed.Status)
	}
	if failed.FailMessage == nil || !strings.Contains(*failed.FailMessage, "rate source unavailable") {
		t.Fatalf("expected fail message carrying the cause, got %v", failed.FailMessage)
	}

	fromAfter := f.account(t, from.ID)
	if !fromAfter.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected source balance untouched at 100, got %s", fromAfter.Balance)
	}
	if !fromAfter.BlockedAmount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected blocked amount untouched at 10, got %s", fromAfter.BlockedAmount)
	}
	toAfter := f.account(t, to.ID)
	if !toAfter.Balance.Equal(decimal.Zero) {
		t.Fatalf("expected destination untouched, got balance %s", toAfter.Balance)
	}
}

func TestExecuteFailureDiagnosticTruncated(t *testing.T) {
	var calls atomic.Int64
	stub := &rateServiceStub{
		exchangeFn: func(_ context.Context, amount decimal.Decimal, _ domain.Currency, _ domain.Currency) (decimal.Decimal, error) {
			if calls.Add(1) == 3 {
				return decimal.Decimal{}, errors.New(strings.Repeat("x", 6000))
			}
			return amount, nil
		},
	}

	f := newEngineFixture(stub)
	from := f.createAccount(t, domain.CurrencyEUR, "100")
	to := f.createAccount(t, domain.CurrencyUSD, "0")

	resp, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(10),
		Currency:      "EUR",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := f.engine.ExecuteTransaction(context.Background(), resp.Data.ID); err == nil {
		t.Fatal("expected execute to fail")
	}

	failed := f.transaction(t, resp.Data.ID)
	if failed.Status != domain.TransactionStatusFailed {
		t.Fatalf("expected FAILED, got %s", failed.Status)
	}
	if failed.FailMessage == nil {
		t.Fatal("expected a fail message")
	}
	if len(*failed.FailMessage) != 5000 {
		t.Fatalf("expected fail message truncated to 5000 chars, got %d", len(*failed.FailMessage))
	}
}

func TestConcurrentCreatesNeverOverbook(t *testing.T) {
	f := newEngineFixture(nil)
	from := f.createAccount(t, domain.CurrencyEUR, "100")
	to := f.createAccount(t, domain.CurrencyEUR, "0")

	const attempts = 200
	var succeeded atomic.Int64
	var wg sync.WaitGroup
	wg.Add(attempts)

	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := f.engine.CreateTransaction(context.Background(), models.CreateTransactionRequest{
				FromAccountID: from.ID,
				ToAccountID:   to.ID,
				Amount:        decimal.NewFromInt(1),
				Currency:      "EUR",
			})
			if err == nil {
				succeeded.Add(1)
			} else if !errors.Is(err, commons.ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded.Load() != 100 {
		t.Fatalf("expected exactly 100 creates to succeed, got %d", succeeded.Load())
	}

	fromAfter := f.account(t, from.ID)
	if !fromAfter.BlockedAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected blocked 100, got %s", fromAfter.BlockedAmount)
	}
	if fromAfter.Balance.LessThan(fromAfter.BlockedAmount) {
		t.Fatalf("invariant broken: balance %s < blocked %s", fromAfter.Balance, fromAfter.BlockedAmount)
	}
}

func TestConcurrentCreateAndDrain(t *testing.T) {
	f := newEngineFixture(nil)
	from := f.createAccount(t, domain.CurrencyEUR, "1000")
	to := f.createAccount(t, domain.CurrencyEUR, "0")

	const transfers = 1000
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < transfers; i++ {
		g.Go(func() error {
			_, err := f.engine.CreateTransaction(ctx, models.CreateTransactionRequest{
				FromAccountID: from.ID,
				ToAccountID:   to.ID,
				Amount:        decimal.NewFromInt(1),
				Currency:      "EUR",
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent creates: %v", err)
	}

	if err := f.engine.ExecutePendingTransactions(context.Background()); err != nil {
		t.Fatalf("drain pending transactions: %v", err)
	}

	fromAfter := f.account(t, from.ID)
	if !fromAfter.Balance.Equal(decimal.Zero) || !fromAfter.BlockedAmount.Equal(decimal.Zero) {
		t.Fatalf("expected source drained to 0/0, got %s / %s", fromAfter.Balance, fromAfter.BlockedAmount)
	}
	toAfter := f.account(t, to.ID)
	if !toAfter.Balance.Equal(decimal.NewFromInt(transfers)) {
		t.Fatalf("expected destination balance %d, got %s", transfers, toAfter.Balance)
	}

	transactions, err := f.transactions.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all transactions: %v", err)
	}
	if len(transactions) != transfers {
		t.Fatalf("expected %d transactions, got %d", transfers, len(transactions))
	}
	for _, transaction := range transactions {
		if transaction.Status != domain.TransactionStatusSucceeded {
			t.Fatalf("expected all transactions SUCCEEDED, found %s", transaction.Status)
		}
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	f := newEngineFixture(nil)

	_, err := f.engine.GetTransaction(context.Background(), "b3c7e6ce-2f0f-4bb1-9f51-000000000003")
	if !errors.Is(err, commons.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
