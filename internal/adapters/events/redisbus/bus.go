// Package redisbus publishes lead change events over Redis Pub/Sub so other
// processes sharing the store can refresh their boards.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/hylla/leadflow/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix is used when no channel prefix is configured.
const DefaultPrefix = "leadflow"

// Bus publishes and subscribes to lead events.
type Bus struct {
	rdb    *redis.Client
	prefix string
}

// New creates a bus for the given redis options.
func New(opts *redis.Options, prefix string) *Bus {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Bus{rdb: redis.NewClient(opts), prefix: prefix}
}

// Channel returns the Pub/Sub channel name for lead events.
func Channel(prefix string) string {
	return prefix + ":lead_events"
}

// Ping verifies the connection.
func (b *Bus) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

// Close closes the redis client.
func (b *Bus) Close() error {
	return b.rdb.Close()
}

// Publish implements app.Publisher.
func (b *Bus) Publish(ctx context.Context, event domain.LeadEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}
	if err := b.rdb.Publish(ctx, Channel(b.prefix), payload).Err(); err != nil {
		return fmt.Errorf("publish lead event: %w", err)
	}
	return nil
}

// Subscription delivers decoded lead events until closed.
type Subscription struct {
	events <-chan domain.LeadEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the event channel; it closes when the subscription ends.
func (s *Subscription) Events() <-chan domain.LeadEvent {
	return s.events
}

// Errors returns decode failures. Bad messages are skipped, and failures
// beyond the buffer are dropped when nobody reads them.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe listens for lead events. The subscription is confirmed before it returns.
func (b *Bus) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := b.rdb.Subscribe(ctx, Channel(b.prefix))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe lead events: %w", err)
	}

	eventsCh := make(chan domain.LeadEvent, 16)
	errorsCh := make(chan error, 16)
	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(eventsCh)
		defer close(errorsCh)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event domain.LeadEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					// Errors are advisory; a full buffer drops them so events keep flowing.
					select {
					case errorsCh <- fmt.Errorf("decode lead event: %w", err):
					default:
					}
					continue
				}
				select {
				case eventsCh <- event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{events: eventsCh, errors: errorsCh, cancel: cancel}, nil
}
