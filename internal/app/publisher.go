package app

import (
	"context"
	"errors"
	"sync"

	"github.com/hylla/leadflow/internal/domain"
)

// Fanout forwards each event to every wrapped publisher and joins their errors.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, event domain.LeadEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Broadcaster delivers events to in-process subscribers.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(domain.LeadEvent)
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[int]func(domain.LeadEvent){}}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Broadcaster) Subscribe(fn func(domain.LeadEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish implements Publisher.
func (b *Broadcaster) Publish(_ context.Context, event domain.LeadEvent) error {
	b.mu.RLock()
	fns := make([]func(domain.LeadEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(event)
	}
	return nil
}
