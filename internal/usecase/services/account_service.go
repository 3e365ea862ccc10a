package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/api-sage/money-transfer-engine/internal/adapter/http/models"
	"github.com/api-sage/money-transfer-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/domain"
	"github.com/api-sage/money-transfer-engine/internal/logger"
	"github.com/api-sage/money-transfer-engine/internal/usecase/service_interfaces"
)

// Verify that AccountService implements the service_interfaces.AccountService interface
var _ service_interfaces.AccountService = (*AccountService)(nil)

type AccountService struct {
	accountRepo repo_interfaces.AccountRepository
}

func NewAccountService(accountRepo repo_interfaces.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

func (s *AccountService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service create account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		validationErr := commons.NewValidationError("%s", err.Error())
		return commons.ErrorResponse[models.AccountResponse]("validation failed", validationErr.Error()), validationErr
	}

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		validationErr := commons.NewValidationError("%s", err.Error())
		return commons.ErrorResponse[models.AccountResponse]("validation failed", validationErr.Error()), validationErr
	}

	account, err := s.accountRepo.Create(ctx, domain.Account{
		OwnerName: strings.TrimSpace(req.OwnerName),
		Currency:  currency,
		Balance:   req.Balance,
	})
	if err != nil {
		logger.Error("account service create account failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}

	logger.Info("account service create account success", logger.Fields{
		"accountId": account.ID,
	})

	return commons.SuccessResponse("account created", mapAccountToResponse(account)), nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (commons.Response[models.AccountResponse], error) {
	account, err := s.accountRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		logger.Error("account service get account failed", err, logger.Fields{
			"accountId": id,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to get account", "Unable to fetch account right now"), err
	}

	return commons.SuccessResponse("account fetched successfully", mapAccountToResponse(account)), nil
}

func (s *AccountService) GetAllAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error) {
	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		logger.Error("account service get all accounts failed", err, nil)
		return commons.ErrorResponse[[]models.AccountResponse]("failed to get accounts", "Unable to fetch accounts right now"), err
	}

	resp := make([]models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, mapAccountToResponse(account))
	}

	return commons.SuccessResponse("accounts fetched successfully", resp), nil
}

func (s *AccountService) UpdateOwnerName(ctx context.Context, id string, req models.UpdateOwnerNameRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service update owner name request", logger.Fields{
		"accountId": id,
	})

	if err := req.Validate(); err != nil {
		validationErr := commons.NewValidationError("%s", err.Error())
		return commons.ErrorResponse[models.AccountResponse]("validation failed", validationErr.Error()), validationErr
	}

	account, err := s.accountRepo.UpdateOwnerName(ctx, strings.TrimSpace(id), req.OwnerName)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		logger.Error("account service update owner name failed", err, logger.Fields{
			"accountId": id,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to update account", "Unable to update account right now"), err
	}

	return commons.SuccessResponse("account updated", mapAccountToResponse(account)), nil
}

func mapAccountToResponse(account domain.Account) models.AccountResponse {
	return models.AccountResponse{
		ID:            account.ID,
		OwnerName:     account.OwnerName,
		Currency:      string(account.Currency),
		Balance:       account.Balance,
		BlockedAmount: account.BlockedAmount,
		CreatedAt:     account.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
