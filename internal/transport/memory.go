package transport

import (
	"context"
	"sync"
)

// MemoryBus is an in-process utterance bus used in dev mode and tests.
// Delivery to each subscriber preserves publish order per room.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[string]map[int]func(Utterance)
	nextID int
	closed bool
}

// NewMemoryBus creates an in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: map[string]map[int]func(Utterance){}}
}

// Publish delivers the utterance synchronously to every room subscriber.
func (b *MemoryBus) Publish(ctx context.Context, room string, u Utterance) error {
	if err := u.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	fns := make([]func(Utterance), 0, len(b.subs[room]))
	for _, fn := range b.subs[room] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
	return nil
}

// Subscribe registers fn for the room. The returned cancel removes it.
func (b *MemoryBus) Subscribe(ctx context.Context, room string, fn func(Utterance)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[room] == nil {
		b.subs[room] = map[int]func(Utterance){}
	}
	id := b.nextID
	b.nextID++
	b.subs[room][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[room], id)
	}, nil
}

// Close drops all subscriptions.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[string]map[int]func(Utterance){}
	return nil
}
