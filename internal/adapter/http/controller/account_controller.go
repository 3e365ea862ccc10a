package controller

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/money-transfer-engine/internal/adapter/http/models"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/usecase/service_interfaces"
)

type AccountController struct {
	service service_interfaces.AccountService
}

func NewAccountController(service service_interfaces.AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	collection := http.Handler(http.HandlerFunc(c.accounts))
	item := http.Handler(http.HandlerFunc(c.account))
	if authMiddleware != nil {
		collection = authMiddleware(collection)
		item = authMiddleware(item)
	}

	mux.Handle("/accounts", collection)
	mux.Handle("/accounts/", item)
}

func (c *AccountController) accounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	switch r.Method {
	case http.MethodPost:
		c.createAccount(w, r, start)
	case http.MethodGet:
		c.getAllAccounts(w, r, start)
	default:
		response := commons.ErrorResponse[models.AccountResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
	}
}

func (c *AccountController) account(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/accounts/"), "/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "" && r.Method == http.MethodGet:
		c.getAccount(w, r, parts[0], start)
	case len(parts) == 2 && parts[1] == "owner" && r.Method == http.MethodPut:
		c.updateOwnerName(w, r, parts[0], start)
	default:
		response := commons.ErrorResponse[models.AccountResponse]("not found")
		writeJSON(w, http.StatusNotFound, response)
		logResponse(r, http.StatusNotFound, response, start)
	}
}

func (c *AccountController) createAccount(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateAccount(r.Context(), req)
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *AccountController) getAllAccounts(w http.ResponseWriter, r *http.Request, start time.Time) {
	logRequest(r, nil)

	response, err := c.service.GetAllAccounts(r.Context())
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request, id string, start time.Time) {
	logRequest(r, nil)

	response, err := c.service.GetAccount(r.Context(), id)
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AccountController) updateOwnerName(w http.ResponseWriter, r *http.Request, id string, start time.Time) {
	var req models.UpdateOwnerNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.UpdateOwnerName(r.Context(), id, req)
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
