package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/http/models"
	"github.com/api-sage/expense-limit-service/src/internal/commons"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
)

type BankController struct {
	service service_interfaces.BankService
}

func NewBankController(service service_interfaces.BankService) *BankController {
	return &BankController{service: service}
}

func (c *BankController) RegisterRoutes(mux *http.ServeMux, mw func(http.Handler) http.Handler) {
	mux.Handle("/api/bank", wrap(c.recordTransaction, mw))
}

func (c *BankController) recordTransaction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.BankTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.RecordTransaction(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := http.StatusInternalServerError
		if response.Message == "validation failed" {
			status = http.StatusBadRequest
		}
		if response.Message == "Rates not found" {
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	if !response.Success {
		writeJSON(w, http.StatusUnprocessableEntity, response)
		logResponse(r, http.StatusUnprocessableEntity, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
