package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string   `json:"error_code"`
	Message    string   `json:"message"`
	Problems   []string `json:"problems,omitempty"` // Human-readable import problems
	HTTPStatus int      `json:"-"`
	Err        error    `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	msg := e.Message
	if len(e.Problems) > 0 {
		msg += ": " + strings.Join(e.Problems, "; ")
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Code families. The prefix of Code identifies the error kind.
const (
	familyValidation = "VAL_"
	familyImport     = "IMPORT_"
	familyLock       = "LOCK_"
)

// ---- Validation (VAL) ----

// Validation returns a generic bad-input error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrSameAccount() *AppError {
	return New("VAL_002", "Source and destination accounts must differ", http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_003", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrPayloadTooLarge() *AppError {
	return New("VAL_004", "Request body too large", http.StatusRequestEntityTooLarge)
}

// ---- Ledger Business Logic (LEDGER) ----

func ErrNotFound(entity string) *AppError {
	return New("LEDGER_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInsufficientFunds() *AppError {
	return New("LEDGER_002", "Insufficient funds", http.StatusUnprocessableEntity)
}

// ---- Import (IMPORT) ----

// Import returns an error carrying every problem found in a backup document.
func Import(problems ...string) *AppError {
	return &AppError{
		Code:       "IMPORT_001",
		Message:    "Ledger import failed",
		Problems:   problems,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ---- Screen Lock (LOCK) ----

func ErrLocked() *AppError {
	return New("LOCK_001", "Ledger is locked", http.StatusLocked)
}

func ErrInvalidPasscode() *AppError {
	return New("LOCK_002", "Invalid passcode", http.StatusUnauthorized)
}

func ErrTooManyAttempts() *AppError {
	return New("LOCK_003", "Too many passcode attempts", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrStorage(err error) *AppError {
	return Wrap("SYS_002", "Storage unavailable", http.StatusServiceUnavailable, err)
}

// ---- Kind predicates ----

func hasFamily(err error, family string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && strings.HasPrefix(appErr.Code, family)
}

// IsValidation reports whether err is a bad-input error.
func IsValidation(err error) bool { return hasFamily(err, familyValidation) }

// IsNotFound reports whether err references an unknown entity.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == "LEDGER_001"
}

// IsInsufficientFunds reports whether err is a rejected debit.
func IsInsufficientFunds(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == "LEDGER_002"
}

// IsImport reports whether err is a rejected backup document.
func IsImport(err error) bool { return hasFamily(err, familyImport) }

// IsLock reports whether err comes from the screen lock.
func IsLock(err error) bool { return hasFamily(err, familyLock) }

// ProblemsOf returns the import problems carried by err, if any.
func ProblemsOf(err error) []string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Problems
	}
	return nil
}
