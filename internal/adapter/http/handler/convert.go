package handler

import (
	"errors"
	"net/http"
	"time"

	"personal-ledger/internal/adapter/http/dto"
	"personal-ledger/internal/core/domain"
	"personal-ledger/pkg/apperror"
	"personal-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindJSON binds and sanitizes a request body, writing the error response on
// failure. Oversized bodies answer 413, everything else 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.ErrPayloadTooLarge())
			return false
		}
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	dto.SanitizeStruct(req)
	return true
}

// accountIDParam parses the :id path parameter.
func accountIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid account ID"))
		return uuid.Nil, false
	}
	return id, true
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	resp := dto.AccountResponse{
		ID:          a.ID.String(),
		Name:        a.Name,
		AccountType: string(a.AccountType),
		Currency:    a.Currency,
		Balance:     a.Balance.StringFixedBank(2),
		LastUpdated: formatTime(a.LastUpdated),
	}
	if a.LastInterestApplied != nil {
		s := formatTime(*a.LastInterestApplied)
		resp.LastInterestApplied = &s
	}
	return resp
}

func toAccountResponses(accounts []domain.Account) []dto.AccountResponse {
	out := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, toAccountResponse(&accounts[i]))
	}
	return out
}

func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:              tx.ID.String(),
		AccountID:       tx.AccountID.String(),
		Date:            formatTime(tx.Date),
		TransactionType: string(tx.Type),
		Amount:          tx.Amount.StringFixedBank(2),
		BalanceAfter:    tx.BalanceAfter.StringFixedBank(2),
		Note:            tx.Note,
	}
	if tx.CounterpartyAccountID != nil {
		s := tx.CounterpartyAccountID.String()
		resp.CounterpartyAccountID = &s
	}
	return resp
}

func toTransactionResponses(transactions []domain.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		out = append(out, toTransactionResponse(&transactions[i]))
	}
	return out
}

func toInterestEventResponses(events []domain.InterestApplied) []dto.InterestEventResponse {
	out := make([]dto.InterestEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.InterestEventResponse{
			AccountID: e.AccountID.String(),
			Amount:    e.Amount.StringFixedBank(2),
			Timestamp: formatTime(e.When),
		})
	}
	return out
}
