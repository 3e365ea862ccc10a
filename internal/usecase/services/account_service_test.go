package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/api-sage/money-transfer-engine/internal/adapter/http/models"
	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/memory"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/usecase/services"
)

func newAccountService() *services.AccountService {
	return services.NewAccountService(memory.NewAccountRepository(memory.NewStore()))
}

func TestCreateAccountSuccess(t *testing.T) {
	service := newAccountService()

	resp, err := service.CreateAccount(context.Background(), models.CreateAccountRequest{
		OwnerName: "Ada Lovelace",
		Currency:  "eur",
		Balance:   decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected successful response with data")
	}
	if resp.Data.ID == "" {
		t.Fatal("expected generated account id")
	}
	if resp.Data.Currency != "EUR" {
		t.Fatalf("expected currency normalized to EUR, got %s", resp.Data.Currency)
	}
	if !resp.Data.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected balance 500, got %s", resp.Data.Balance)
	}
	if !resp.Data.BlockedAmount.Equal(decimal.Zero) {
		t.Fatalf("expected blocked amount 0, got %s", resp.Data.BlockedAmount)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	service := newAccountService()

	cases := []struct {
		name string
		req  models.CreateAccountRequest
	}{
		{"missing owner name", models.CreateAccountRequest{Currency: "EUR", Balance: decimal.NewFromInt(1)}},
		{"bad currency length", models.CreateAccountRequest{OwnerName: "Ada", Currency: "EURO", Balance: decimal.NewFromInt(1)}},
		{"unsupported currency", models.CreateAccountRequest{OwnerName: "Ada", Currency: "GBP", Balance: decimal.NewFromInt(1)}},
		{"negative balance", models.CreateAccountRequest{OwnerName: "Ada", Currency: "EUR", Balance: decimal.NewFromInt(-1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateAccount(context.Background(), tc.req)
			if !commons.IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetAccountNotFound(t *testing.T) {
	service := newAccountService()

	_, err := service.GetAccount(context.Background(), "b3c7e6ce-2f0f-4bb1-9f51-000000000004")
	if !errors.Is(err, commons.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestGetAllAccountsReturnsEverything(t *testing.T) {
	service := newAccountService()

	for _, owner := range []string{"Ada", "Grace", "Edsger"} {
		_, err := service.CreateAccount(context.Background(), models.CreateAccountRequest{
			OwnerName: owner,
			Currency:  "USD",
			Balance:   decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("create account for %s: %v", owner, err)
		}
	}

	resp, err := service.GetAllAccounts(context.Background())
	if err != nil {
		t.Fatalf("get all accounts: %v", err)
	}
	if len(*resp.Data) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(*resp.Data))
	}
}

func TestUpdateOwnerName(t *testing.T) {
	service := newAccountService()

	created, err := service.CreateAccount(context.Background(), models.CreateAccountRequest{
		OwnerName: "Ada",
		Currency:  "EUR",
		Balance:   decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	updated, err := service.UpdateOwnerName(context.Background(), created.Data.ID, models.UpdateOwnerNameRequest{OwnerName: "Ada King"})
	if err != nil {
		t.Fatalf("update owner name: %v", err)
	}
	if updated.Data.OwnerName != "Ada King" {
		t.Fatalf("expected owner name updated, got %s", updated.Data.OwnerName)
	}

	_, err = service.UpdateOwnerName(context.Background(), created.Data.ID, models.UpdateOwnerNameRequest{OwnerName: "  "})
	if !commons.IsValidationError(err) {
		t.Fatalf("expected validation error for blank owner name, got %v", err)
	}

	_, err = service.UpdateOwnerName(context.Background(), "b3c7e6ce-2f0f-4bb1-9f51-000000000005", models.UpdateOwnerNameRequest{OwnerName: "Someone"})
	if !errors.Is(err, commons.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
