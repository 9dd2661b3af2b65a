package realtime

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("broker closed")

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Broker fans row changes out to filtered subscribers. Delivery is best effort.
type Broker interface {
	Publisher
	Subscribe(ctx context.Context, f Filter) (*Subscription, error)
	Close() error
}

// Subscription delivers matching events on C until Close or the subscribe ctx ends.
type Subscription struct {
	C      <-chan Event
	Filter Filter

	once   sync.Once
	cancel func()
}

// NewSubscription wraps a delivery channel; cancel runs once on Close.
func NewSubscription(f Filter, c <-chan Event, cancel func()) *Subscription {
	return &Subscription{C: c, Filter: f, cancel: cancel}
}

func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}
