package controller

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/money-transfer-engine/internal/adapter/http/models"
	"github.com/api-sage/money-transfer-engine/internal/commons"
	"github.com/api-sage/money-transfer-engine/internal/logger"
	"github.com/api-sage/money-transfer-engine/internal/usecase/service_interfaces"
)

type TransactionController struct {
	service service_interfaces.TransferService
}

func NewTransactionController(service service_interfaces.TransferService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	collection := http.Handler(http.HandlerFunc(c.transactions))
	item := http.Handler(http.HandlerFunc(c.transaction))
	if authMiddleware != nil {
		collection = authMiddleware(collection)
		item = authMiddleware(item)
	}

	mux.Handle("/transactions", collection)
	mux.Handle("/transactions/", item)
}

func (c *TransactionController) transactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	switch r.Method {
	case http.MethodPost:
		c.createTransaction(w, r, start)
	case http.MethodGet:
		c.getAllTransactions(w, r, start)
	default:
		response := commons.ErrorResponse[models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
	}
}

func (c *TransactionController) transaction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/transactions/"), "/")
	if id == "" || strings.Contains(id, "/") || r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.TransactionResponse]("not found")
		writeJSON(w, http.StatusNotFound, response)
		logResponse(r, http.StatusNotFound, response, start)
		return
	}

	logRequest(r, nil)

	response, err := c.service.GetTransaction(r.Context(), id)
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

func (c *TransactionController) createTransaction(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateTransaction(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *TransactionController) getAllTransactions(w http.ResponseWriter, r *http.Request, start time.Time) {
	logRequest(r, nil)

	response, err := c.service.GetAllTransactions(r.Context())
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
