package realtime

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

const subscriberBuffer = 64

type memSub struct {
	filter Filter
	ch     chan Event
}

// MemoryBroker is the single-instance broker. Slow subscribers lose events
// rather than blocking publishers; clients poll to recover.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[*memSub]struct{}
	closed *atomic.Bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subs:   make(map[*memSub]struct{}),
		closed: atomic.NewBool(false),
	}
}

func (b *MemoryBroker) Publish(ctx context.Context, ev Event) error {
	if b.closed.Load() {
		return ErrClosed
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if !s.filter.Match(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, f Filter) (*Subscription, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	s := &memSub{filter: f, ch: make(chan Event, subscriberBuffer)}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	remove := func() {
		cancel()
		b.mu.Lock()
		if _, ok := b.subs[s]; ok {
			delete(b.subs, s)
			close(s.ch)
		}
		b.mu.Unlock()
	}
	sub := NewSubscription(f, s.ch, remove)
	go func() {
		<-ctx.Done()
		sub.Close()
	}()
	return sub, nil
}

func (b *MemoryBroker) Close() error {
	if !b.closed.CAS(false, true) {
		return nil
	}
	b.mu.Lock()
	for s := range b.subs {
		delete(b.subs, s)
		close(s.ch)
	}
	b.mu.Unlock()
	return nil
}
