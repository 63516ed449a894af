package handler

import (
	"personal-ledger/internal/adapter/http/dto"
	"personal-ledger/internal/core/ports"
	"personal-ledger/pkg/apperror"
	"personal-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LockHandler handles screen-lock endpoints.
type LockHandler struct {
	lock ports.ScreenLock
}

// NewLockHandler creates a new LockHandler.
func NewLockHandler(lock ports.ScreenLock) *LockHandler {
	return &LockHandler{lock: lock}
}

// Status handles GET /api/v1/lock.
func (h *LockHandler) Status(c *gin.Context) {
	response.OK(c, dto.LockStatusResponse{Unlocked: h.lock.IsUnlocked()})
}

// Verify handles POST /api/v1/lock/verify.
func (h *LockHandler) Verify(c *gin.Context) {
	var req dto.VerifyPasscodeRequest
	if !bindJSON(c, &req) {
		return
	}

	ok, err := h.lock.Verify(c.Request.Context(), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.Error(c, apperror.ErrInvalidPasscode())
		return
	}
	response.OK(c, dto.LockStatusResponse{Unlocked: true})
}

// Lock handles POST /api/v1/lock.
func (h *LockHandler) Lock(c *gin.Context) {
	if err := h.lock.Lock(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.LockStatusResponse{Unlocked: false})
}
