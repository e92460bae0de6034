package feed

import (
	"context"
	"sync"
)

type memorySub struct {
	wants func(string) bool
	ch    chan Event
}

// MemoryBus is a single-process Bus. A subscriber whose buffer is full misses
// the event; it still has an undelivered event queued, so its next re-query
// observes the newer state anyway.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[*memorySub]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[*memorySub]struct{})}
}

func (b *MemoryBus) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if !sub.wants(ev.Collection) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, collections ...string) (<-chan Event, error) {
	sub := &memorySub{
		wants: matcher(collections),
		ch:    make(chan Event, defaultBuffer),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, sub)
		close(sub.ch)
		b.mu.Unlock()
	}()

	return sub.ch, nil
}

// Subscribers reports the live subscription count.
func (b *MemoryBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
