package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"personal-ledger/internal/adapter/http/dto"
	"personal-ledger/internal/core/ports"
	"personal-ledger/pkg/apperror"
	"personal-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles transfers, history, backups and interest endpoints.
type LedgerHandler struct {
	ledger   ports.LedgerService
	notifier ports.InterestNotifier
	clock    func() time.Time
}

// NewLedgerHandler creates a new LedgerHandler. A nil clock means time.Now.
func NewLedgerHandler(ledger ports.LedgerService, notifier ports.InterestNotifier, clock func() time.Time) *LedgerHandler {
	if clock == nil {
		clock = time.Now
	}
	return &LedgerHandler{ledger: ledger, notifier: notifier, clock: clock}
}

// Transfer handles POST /api/v1/transfers.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !bindJSON(c, &req) {
		return
	}

	// both ids already passed the uuid tag
	from := uuid.MustParse(req.FromAccountID)
	to := uuid.MustParse(req.ToAccountID)

	result, err := h.ledger.Transfer(c.Request.Context(), ports.TransferRequest{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        req.Amount,
		Note:          req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.TransferResponse{
		Out: toTransactionResponse(&result.Out),
		In:  toTransactionResponse(&result.In),
	})
}

// ListTransactions handles GET /api/v1/transactions, newest first.
// Query params: account_id (optional).
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	var accountID *uuid.UUID
	if raw := c.Query("account_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.Validation("Invalid account_id"))
			return
		}
		accountID = &id
	}

	transactions, err := h.ledger.ListTransactions(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTransactionResponses(transactions))
}

// Summary handles GET /api/v1/summary.
func (h *LedgerHandler) Summary(c *gin.Context) {
	summary, err := h.ledger.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	totals := make(map[string]string, len(summary.Totals))
	for currency, total := range summary.Totals {
		totals[currency] = total.StringFixedBank(2)
	}
	response.OK(c, dto.SummaryResponse{
		Accounts:     summary.Accounts,
		Transactions: summary.Transactions,
		Totals:       totals,
	})
}

// Export handles GET /api/v1/ledger/export as a JSON attachment.
func (h *LedgerHandler) Export(c *gin.Context) {
	data, err := h.ledger.ExportLedger(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("ledger-%s.json", h.clock().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// Import handles POST /api/v1/ledger/import. The body is a backup document.
// Query params: replace (bool, default false merges).
func (h *LedgerHandler) Import(c *gin.Context) {
	replace := false
	if raw := c.Query("replace"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, apperror.Validation("Invalid replace flag"))
			return
		}
		replace = v
	}

	data, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.ErrPayloadTooLarge())
			return
		}
		response.Error(c, apperror.Validation("Unreadable request body"))
		return
	}

	result, err := h.ledger.ImportLedger(c.Request.Context(), data, replace)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ImportResponse{
		Replaced:     result.Replaced,
		Accounts:     result.Accounts,
		Transactions: result.Transactions,
	})
}

// ApplyInterest handles POST /api/v1/interest/apply, running one interest
// cycle as of now.
func (h *LedgerHandler) ApplyInterest(c *gin.Context) {
	asOf := h.clock().UTC()
	events, err := h.ledger.ApplyInterest(c.Request.Context(), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.InterestRunResponse{
		AsOf:    formatTime(asOf),
		Applied: toInterestEventResponses(events),
	})
}

// RecentInterest handles GET /api/v1/events/interest, newest first.
// Query params: limit (default 20, 0 = everything buffered).
func (h *LedgerHandler) RecentInterest(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			response.Error(c, apperror.Validation("Invalid limit"))
			return
		}
		limit = v
	}

	response.OK(c, toInterestEventResponses(h.notifier.Recent(limit)))
}
