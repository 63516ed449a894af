package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"personal-ledger/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeApplier counts calls and fails or panics on demand.
type fakeApplier struct {
	calls   atomic.Int32
	failOn  int32
	panicOn int32
	lastAt  atomic.Value
}

func (f *fakeApplier) ApplyInterest(_ context.Context, asOf time.Time) ([]domain.InterestApplied, error) {
	n := f.calls.Add(1)
	f.lastAt.Store(asOf)
	if n == f.panicOn {
		panic("cycle exploded")
	}
	if n == f.failOn {
		return nil, errors.New("storage unavailable")
	}
	return []domain.InterestApplied{{AccountID: [16]byte{1}}}, nil
}

func TestInterestScheduler_RunOnceUsesClock(t *testing.T) {
	f := &fakeApplier{}
	clock := func() time.Time { return t0 }
	s := NewInterestScheduler(f, time.Hour, clock, zerolog.Nop())

	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, t0, f.lastAt.Load())
}

func TestInterestScheduler_KeepsRunningAfterFailures(t *testing.T) {
	f := &fakeApplier{failOn: 1, panicOn: 2}
	s := NewInterestScheduler(f, 5*time.Millisecond, nil, zerolog.Nop())

	s.Start(context.Background())
	require.Eventually(t, func() bool { return f.calls.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestInterestScheduler_StopHaltsCycles(t *testing.T) {
	f := &fakeApplier{}
	s := NewInterestScheduler(f, 5*time.Millisecond, nil, zerolog.Nop())

	s.Start(context.Background())
	s.Start(context.Background()) // second start is a no-op
	require.Eventually(t, func() bool { return f.calls.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	stopped := f.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, f.calls.Load(), "no cycles after Stop returns")

	s.Stop() // stopping twice is safe
}

func TestInterestScheduler_ParentContextCancelStops(t *testing.T) {
	f := &fakeApplier{}
	s := NewInterestScheduler(f, 5*time.Millisecond, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return f.calls.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after parent cancel")
	}
}

func TestInterestScheduler_DrivesLedger(t *testing.T) {
	d := setupLedger(t)
	savings := mustCreate(t, d.svc, "Savings", domain.AccountTypeSavings, "10000")

	asOf := t0.Add(30 * day)
	s := NewInterestScheduler(d.svc, time.Hour, func() time.Time { return asOf }, zerolog.Nop())
	s.RunOnce(context.Background())

	assert.Equal(t, "10020.55", balanceOf(t, d.svc, savings.ID))
}

func TestNewInterestScheduler_Defaults(t *testing.T) {
	s := NewInterestScheduler(&fakeApplier{}, 0, nil, zerolog.Nop())
	assert.Equal(t, DefaultInterestInterval, s.interval)
	assert.NotNil(t, s.clock)
}
