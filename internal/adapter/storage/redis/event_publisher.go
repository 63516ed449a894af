package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"personal-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// EventTypeInterestApplied tags interest entries on the event stream.
const EventTypeInterestApplied = "interest.applied"

type streamEvent struct {
	Type string                 `json:"type"`
	Data domain.InterestApplied `json:"data"`
}

// EventPublisher appends ledger events to a Redis stream with XADD.
type EventPublisher struct {
	client goredis.UniversalClient
	stream string
}

// NewEventPublisher creates a publisher writing to stream.
func NewEventPublisher(client goredis.UniversalClient, stream string) *EventPublisher {
	return &EventPublisher{client: client, stream: stream}
}

// PublishInterestApplied appends one interest event to the stream.
func (p *EventPublisher) PublishInterestApplied(ctx context.Context, event domain.InterestApplied) error {
	payload, err := json.Marshal(streamEvent{Type: EventTypeInterestApplied, Data: event})
	if err != nil {
		return fmt.Errorf("marshaling interest event: %w", err)
	}

	args := &goredis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":  EventTypeInterestApplied,
			"event": payload,
		},
	}
	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("publishing interest event: %w", err)
	}
	return nil
}
