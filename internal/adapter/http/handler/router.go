package handler

import (
	"time"

	"personal-ledger/internal/adapter/http/middleware"
	"personal-ledger/internal/core/ports"
	"personal-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Ledger         ports.LedgerService
	Lock           ports.ScreenLock
	Notifier       ports.InterestNotifier
	RateLimiter    ports.RateLimiter // nil = passcode attempts unlimited
	VerifyLimit    middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	Clock          func() time.Time // nil = time.Now
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(middleware.DefaultMaxBodyBytes))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	var verifyLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.RateLimiter != nil {
		verifyLimit = middleware.RateLimiter(deps.RateLimiter, "lock_verify", deps.VerifyLimit, apperror.ErrTooManyAttempts, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Screen lock (always reachable) ---
	lockHandler := NewLockHandler(deps.Lock)
	lock := v1.Group("/lock")
	{
		lock.GET("", lockHandler.Status)
		lock.POST("", lockHandler.Lock)
		lock.POST("/verify", verifyLimit, lockHandler.Verify)
	}

	// --- Ledger (requires unlocked screen) ---
	unlocked := v1.Group("", middleware.RequireUnlocked(deps.Lock))

	accountHandler := NewAccountHandler(deps.Ledger)
	accounts := unlocked.Group("/accounts")
	{
		accounts.GET("", accountHandler.List)
		accounts.POST("", accountHandler.Create)
		accounts.GET("/:id", accountHandler.Get)
		accounts.DELETE("/:id", accountHandler.Delete)
		accounts.POST("/:id/deposit", accountHandler.Deposit)
		accounts.POST("/:id/withdraw", accountHandler.Withdraw)
	}

	ledgerHandler := NewLedgerHandler(deps.Ledger, deps.Notifier, deps.Clock)
	unlocked.POST("/transfers", ledgerHandler.Transfer)
	unlocked.GET("/transactions", ledgerHandler.ListTransactions)
	unlocked.GET("/summary", ledgerHandler.Summary)
	unlocked.GET("/ledger/export", ledgerHandler.Export)
	unlocked.POST("/ledger/import", ledgerHandler.Import)
	unlocked.POST("/interest/apply", ledgerHandler.ApplyInterest)
	unlocked.GET("/events/interest", ledgerHandler.RecentInterest)

	return r
}
