package handler

import (
	"context"

	"personal-ledger/internal/adapter/http/dto"
	"personal-ledger/internal/core/domain"
	"personal-ledger/internal/core/ports"
	"personal-ledger/pkg/apperror"
	"personal-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles account endpoints.
type AccountHandler struct {
	ledger ports.LedgerService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledger ports.LedgerService) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

// Create handles POST /api/v1/accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	accountType, err := domain.ParseAccountType(req.AccountType)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	account, err := h.ledger.CreateAccount(c.Request.Context(), ports.CreateAccountRequest{
		Name:           req.Name,
		AccountType:    accountType,
		Currency:       req.Currency,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}

// List handles GET /api/v1/accounts.
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.ledger.ListAccounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toAccountResponses(accounts))
}

// Get handles GET /api/v1/accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := accountIDParam(c)
	if !ok {
		return
	}

	account, err := h.ledger.GetAccount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toAccountResponse(account))
}

// Delete handles DELETE /api/v1/accounts/:id. Unknown ids succeed.
func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := accountIDParam(c)
	if !ok {
		return
	}

	if err := h.ledger.DeleteAccount(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Deposit handles POST /api/v1/accounts/:id/deposit.
func (h *AccountHandler) Deposit(c *gin.Context) {
	h.move(c, h.ledger.Deposit)
}

// Withdraw handles POST /api/v1/accounts/:id/withdraw.
func (h *AccountHandler) Withdraw(c *gin.Context) {
	h.move(c, h.ledger.Withdraw)
}

type movementFunc func(ctx context.Context, req ports.MovementRequest) (*domain.Transaction, error)

func (h *AccountHandler) move(c *gin.Context, fn movementFunc) {
	id, ok := accountIDParam(c)
	if !ok {
		return
	}

	var req dto.MovementRequest
	if !bindJSON(c, &req) {
		return
	}

	txn, err := fn(c.Request.Context(), ports.MovementRequest{
		AccountID: id,
		Amount:    req.Amount,
		Note:      req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toTransactionResponse(txn))
}
