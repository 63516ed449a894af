package service

import (
	"context"
	"sync"
	"time"

	"personal-ledger/internal/core/domain"

	"github.com/rs/zerolog"
)

// DefaultInterestInterval is how often the scheduler runs an interest cycle.
const DefaultInterestInterval = 60 * time.Second

// InterestApplier is the part of the ledger the scheduler drives.
type InterestApplier interface {
	ApplyInterest(ctx context.Context, asOf time.Time) ([]domain.InterestApplied, error)
}

// InterestScheduler runs interest cycles on a fixed interval until stopped.
type InterestScheduler struct {
	ledger   InterestApplier
	interval time.Duration
	clock    func() time.Time
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewInterestScheduler creates a stopped scheduler. A nil clock means time.Now.
func NewInterestScheduler(ledger InterestApplier, interval time.Duration, clock func() time.Time, log zerolog.Logger) *InterestScheduler {
	if interval <= 0 {
		interval = DefaultInterestInterval
	}
	if clock == nil {
		clock = time.Now
	}
	return &InterestScheduler{ledger: ledger, interval: interval, clock: clock, log: log}
}

// Start launches the background loop. Calling Start on a running scheduler is a no-op.
func (s *InterestScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.loop(ctx)

	s.log.Info().Dur("interval", s.interval).Msg("interest scheduler started")
}

// Stop cancels the loop and waits for it to exit. A running cycle is allowed
// to finish first.
func (s *InterestScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.log.Info().Msg("interest scheduler stopped")
}

// RunOnce runs a single interest cycle. Errors and panics are logged.
func (s *InterestScheduler) RunOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("interest cycle panicked")
		}
	}()

	events, err := s.ledger.ApplyInterest(ctx, s.clock())
	if err != nil {
		s.log.Error().Err(err).Msg("interest cycle failed")
		return
	}
	if len(events) > 0 {
		s.log.Info().Int("credited", len(events)).Msg("interest cycle completed")
	}
}

func (s *InterestScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Cancellation must not interrupt a cycle mid-persist.
			s.RunOnce(context.WithoutCancel(ctx))
		}
	}
}
