package realtime

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"
)

const channelPrefix = "thrift:realtime:"

// RedisBroker shares change events between API instances over redis pub/sub.
// One redis channel per table; row filtering happens locally.
type RedisBroker struct {
	client *redis.Client
	closed *atomic.Bool
	done   chan struct{}
}

func NewRedisBroker(addr, password string, db int) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisBrokerFromClient(client), nil
}

func NewRedisBrokerFromClient(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client, closed: atomic.NewBool(false), done: make(chan struct{})}
}

func channelFor(t Table) string { return channelPrefix + string(t) }

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	if b.closed.Load() {
		return ErrClosed
	}
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, channelFor(ev.Payload.Table()), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, f Filter) (*Subscription, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	ps := b.client.Subscribe(ctx, channelFor(f.Table))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe %s: %w", f, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()
		in := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.done:
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				ev, err := Decode([]byte(msg.Payload))
				if err != nil || !f.Match(ev) {
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()
	return NewSubscription(f, out, cancel), nil
}

func (b *RedisBroker) Close() error {
	if !b.closed.CAS(false, true) {
		return nil
	}
	close(b.done)
	return b.client.Close()
}
