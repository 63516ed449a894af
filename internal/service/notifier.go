package service

import (
	"context"
	"sync"

	"personal-ledger/internal/core/domain"
	"personal-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// DefaultEventBuffer is how many recent events the notifier keeps.
const DefaultEventBuffer = 100

var _ ports.InterestNotifier = (*Notifier)(nil)

// Notifier fans interest events out to in-process subscribers, keeps the
// most recent ones for polling and forwards each to an optional publisher.
type Notifier struct {
	publisher ports.EventPublisher
	log       zerolog.Logger

	mu          sync.Mutex
	subscribers map[int]func(domain.InterestApplied)
	nextID      int
	ring        []domain.InterestApplied
	head        int // next write position
	size        int
}

// NewNotifier keeps up to buffer recent events. publisher may be nil.
func NewNotifier(buffer int, publisher ports.EventPublisher, log zerolog.Logger) *Notifier {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Notifier{
		publisher:   publisher,
		log:         log,
		subscribers: make(map[int]func(domain.InterestApplied)),
		ring:        make([]domain.InterestApplied, buffer),
	}
}

// Subscribe registers fn for every future event and returns a function that
// removes it again.
func (n *Notifier) Subscribe(fn func(domain.InterestApplied)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subscribers[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subscribers, id)
			n.mu.Unlock()
		})
	}
}

// Publish records and dispatches events. Subscriber panics and publisher
// errors are logged and never reach the caller.
func (n *Notifier) Publish(ctx context.Context, events ...domain.InterestApplied) {
	if len(events) == 0 {
		return
	}

	n.mu.Lock()
	for _, e := range events {
		n.ring[n.head] = e
		n.head = (n.head + 1) % len(n.ring)
		if n.size < len(n.ring) {
			n.size++
		}
	}
	subs := make([]func(domain.InterestApplied), 0, len(n.subscribers))
	for _, fn := range n.subscribers {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, e := range events {
		for _, fn := range subs {
			n.deliver(fn, e)
		}
		if n.publisher != nil {
			if err := n.publisher.PublishInterestApplied(ctx, e); err != nil {
				n.log.Warn().Err(err).
					Str("account_id", e.AccountID.String()).
					Msg("failed to publish interest event")
			}
		}
	}
}

// Recent returns up to limit events, newest first. limit <= 0 returns all kept events.
func (n *Notifier) Recent(limit int) []domain.InterestApplied {
	n.mu.Lock()
	defer n.mu.Unlock()

	if limit <= 0 || limit > n.size {
		limit = n.size
	}
	out := make([]domain.InterestApplied, 0, limit)
	for i := 1; i <= limit; i++ {
		out = append(out, n.ring[(n.head-i+len(n.ring))%len(n.ring)])
	}
	return out
}

func (n *Notifier) deliver(fn func(domain.InterestApplied), e domain.InterestApplied) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error().Interface("panic", r).Msg("interest subscriber panicked")
		}
	}()
	fn(e)
}
