package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"personal-ledger/internal/adapter/http/middleware"
	"personal-ledger/internal/adapter/storage/gateway"
	"personal-ledger/internal/adapter/storage/memory"
	"personal-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stackClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stackClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stackClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type stack struct {
	router *gin.Engine
	clock  *stackClock
	blobs  *memory.BlobStore
}

// newStack wires the real services over an in-memory blob store.
func newStack(t *testing.T, blobs *memory.BlobStore) *stack {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()
	clock := &stackClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}

	gw := gateway.New(blobs, "ledger:", time.Second)
	notifier := service.NewNotifier(10, nil, log)
	ledger, err := service.OpenLedger(ctx, gw,
		service.WithClock(clock.Now),
		service.WithNotifier(notifier),
		service.WithLogger(log),
	)
	require.NoError(t, err)

	lock, err := service.NewScreenLock(gw, "7788", log)
	require.NoError(t, err)
	require.NoError(t, lock.Init(ctx))

	router := SetupRouter(RouterDeps{
		Ledger:      ledger,
		Lock:        lock,
		Notifier:    notifier,
		RateLimiter: memory.NewRateLimitStore(),
		VerifyLimit: middleware.RateLimitRule{Limit: 3, Window: time.Hour},
		Clock:       clock.Now,
		Logger:      log,
	})
	return &stack{router: router, clock: clock, blobs: blobs}
}

func (s *stack) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func (s *stack) unlock(t *testing.T) {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/api/v1/lock/verify", `{"code":"7788"}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func (s *stack) createAccount(t *testing.T, name, accountType, balance string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"account_type":%q,"currency":"SEK","initial_balance":%q}`, name, accountType, balance)
	w, resp := s.do(t, http.MethodPost, "/api/v1/accounts", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return resp["data"].(map[string]interface{})["id"].(string)
}

func (s *stack) balance(t *testing.T, id string) string {
	t.Helper()
	w, resp := s.do(t, http.MethodGet, "/api/v1/accounts/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	return resp["data"].(map[string]interface{})["balance"].(string)
}

func TestRouter_LockGatesLedgerRoutes(t *testing.T) {
	s := newStack(t, memory.NewBlobStore())

	w, resp := s.do(t, http.MethodGet, "/api/v1/accounts", "")
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Equal(t, "LOCK_001", resp["error_code"])

	w, resp = s.do(t, http.MethodGet, "/api/v1/lock", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["data"].(map[string]interface{})["unlocked"])

	w, _ = s.do(t, http.MethodPost, "/api/v1/lock/verify", `{"code":"1234"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.unlock(t)
	w, _ = s.do(t, http.MethodGet, "/api/v1/accounts", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/lock", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/v1/summary", "")
	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestRouter_UnlockSurvivesRestart(t *testing.T) {
	blobs := memory.NewBlobStore()
	s := newStack(t, blobs)
	s.unlock(t)

	restarted := newStack(t, blobs)
	w, _ := restarted.do(t, http.MethodGet, "/api/v1/accounts", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_PasscodeAttemptsLimited(t *testing.T) {
	s := newStack(t, memory.NewBlobStore())

	for i := 0; i < 3; i++ {
		w, _ := s.do(t, http.MethodPost, "/api/v1/lock/verify", `{"code":"0000"}`)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w, resp := s.do(t, http.MethodPost, "/api/v1/lock/verify", `{"code":"7788"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "LOCK_003", resp["error_code"])
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	s := newStack(t, memory.NewBlobStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lock", nil)
	req.Header.Set(middleware.HeaderRequestID, "trace-42")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, "trace-42", w.Header().Get(middleware.HeaderRequestID))
	assert.Contains(t, w.Body.String(), `"request_id":"trace-42"`)
}

func TestRouter_AliceAndBob(t *testing.T) {
	s := newStack(t, memory.NewBlobStore())
	s.unlock(t)

	alice := s.createAccount(t, "Alice", "Checking", "100")
	bob := s.createAccount(t, "Bob", "Savings", "0")

	w, _ := s.do(t, http.MethodPost, "/api/v1/accounts/"+alice+"/deposit", `{"amount":"50.25","note":"salary"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/accounts/"+alice+"/withdraw", `{"amount":500}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	transfer := fmt.Sprintf(`{"from_account_id":%q,"to_account_id":%q,"amount":"30","note":"rent"}`, alice, bob)
	w, resp := s.do(t, http.MethodPost, "/api/v1/transfers", transfer)
	require.Equal(t, http.StatusCreated, w.Code)
	legs := resp["data"].(map[string]interface{})
	assert.Equal(t, legs["out"].(map[string]interface{})["date"], legs["in"].(map[string]interface{})["date"])

	assert.Equal(t, "120.25", s.balance(t, alice))
	assert.Equal(t, "30.00", s.balance(t, bob))

	w, resp = s.do(t, http.MethodGet, "/api/v1/transactions?account_id="+alice, "")
	require.Equal(t, http.StatusOK, w.Code)
	history := resp["data"].([]interface{})
	require.Len(t, history, 3)
	assert.Equal(t, "TransferOut", history[0].(map[string]interface{})["transaction_type"])

	w, resp = s.do(t, http.MethodGet, "/api/v1/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), summary["accounts"])
	assert.Equal(t, float64(5), summary["transactions"])
	assert.Equal(t, "150.25", summary["totals"].(map[string]interface{})["SEK"])

	w, _ = s.do(t, http.MethodDelete, "/api/v1/accounts/"+bob, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/v1/accounts/"+bob, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_InterestCycle(t *testing.T) {
	s := newStack(t, memory.NewBlobStore())
	s.unlock(t)

	savings := s.createAccount(t, "Sparkonto", "Savings", "1000")
	s.createAccount(t, "Lönekonto", "Checking", "1000")

	s.clock.Advance(365 * 24 * time.Hour)
	w, resp := s.do(t, http.MethodPost, "/api/v1/interest/apply", "")
	require.Equal(t, http.StatusOK, w.Code)
	applied := resp["data"].(map[string]interface{})["applied"].([]interface{})
	require.Len(t, applied, 1)
	assert.Equal(t, savings, applied[0].(map[string]interface{})["account_id"])
	assert.Equal(t, "25.00", applied[0].(map[string]interface{})["amount"])
	assert.Equal(t, "1025.00", s.balance(t, savings))

	// same instant: nothing more to credit
	w, resp = s.do(t, http.MethodPost, "/api/v1/interest/apply", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp["data"].(map[string]interface{})["applied"])

	w, resp = s.do(t, http.MethodGet, "/api/v1/events/interest?limit=0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["data"], 1)
}

func TestRouter_ExportImportRoundTrip(t *testing.T) {
	src := newStack(t, memory.NewBlobStore())
	src.unlock(t)
	a := src.createAccount(t, "A", "Checking", "10")
	b := src.createAccount(t, "B", "Business", "5")
	transfer := fmt.Sprintf(`{"from_account_id":%q,"to_account_id":%q,"amount":"2.5"}`, a, b)
	w, _ := src.do(t, http.MethodPost, "/api/v1/transfers", transfer)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = src.do(t, http.MethodGet, "/api/v1/ledger/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	doc := w.Body.String()

	dst := newStack(t, memory.NewBlobStore())
	dst.unlock(t)
	w, resp := dst.do(t, http.MethodPost, "/api/v1/ledger/import?replace=true", doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), result["accounts"])
	assert.Equal(t, float64(4), result["transactions"])

	assert.Equal(t, "7.50", dst.balance(t, a))
	assert.Equal(t, "7.50", dst.balance(t, b))

	w, resp = dst.do(t, http.MethodPost, "/api/v1/ledger/import", `{"accounts":[],"transactions":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []interface{}{"no data"}, resp["problems"])
}

func TestRouter_ConcurrentDeposits(t *testing.T) {
	s := newStack(t, memory.NewBlobStore())
	s.unlock(t)
	id := s.createAccount(t, "Pot", "Checking", "0")

	var wg sync.WaitGroup
	codes := make([]int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/"+id+"/deposit", strings.NewReader(`{"amount":"1"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusCreated, code, "deposit %d", i)
	}
	assert.Equal(t, "100.00", s.balance(t, id))

	w, resp := s.do(t, http.MethodGet, "/api/v1/transactions?account_id="+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["data"], 101)
}
