package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaypeewhat/ThriftStore/entity"
)

func newRedisBroker(t *testing.T) (*RedisBroker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	b, err := NewRedisBroker(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b, mr
}

func TestRedisBrokerRoutesByFilter(t *testing.T) {
	b, _ := newRedisBroker(t)
	ctx := context.Background()

	mine, err := b.Subscribe(ctx, Eq(TableNotifications, "user_id", "u1"))
	require.NoError(t, err)
	defer mine.Close()
	other, err := b.Subscribe(ctx, Eq(TableNotifications, "user_id", "u2"))
	require.NoError(t, err)
	defer other.Close()
	orders, err := b.Subscribe(ctx, Filter{Table: TableOrders})
	require.NoError(t, err)
	defer orders.Close()

	n := entity.Notification{Base: entity.Base{ID: "n1"}, UserID: "u1", Type: entity.NotifyOrder, Title: "Order Confirmed"}
	require.NoError(t, b.Publish(ctx, NotificationEvent(Insert, n)))

	ev := recv(t, mine.C)
	assert.Equal(t, Insert, ev.Type)
	nc, ok := ev.Payload.(NotificationChange)
	require.True(t, ok)
	assert.Equal(t, "Order Confirmed", nc.Record.Title)

	o := entity.Order{Base: entity.Base{ID: "o1"}, BuyerID: "u1", SellerID: "s1", Status: entity.StatusConfirmed}
	require.NoError(t, b.Publish(ctx, OrderEvent(Update, o)))
	ev = recv(t, orders.C)
	assert.Equal(t, "o1", ev.Payload.RecordID())

	select {
	case <-other.C:
		t.Fatal("u2 must not see u1's notification")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedisBrokerSkipsForeignPayloads(t *testing.T) {
	b, mr := newRedisBroker(t)
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, Filter{Table: TableMessages})
	require.NoError(t, err)
	defer sub.Close()

	// another writer on the same channel with a bad payload
	mr.Publish(channelFor(TableMessages), `{"table":"messages","type":"INSERT"}`)

	m := entity.Message{Base: entity.Base{ID: "m1"}, OrderID: "o1", SenderID: "u1", ReceiverID: "u2", Content: "hi"}
	require.NoError(t, b.Publish(ctx, MessageEvent(Insert, m)))
	assert.Equal(t, "m1", recv(t, sub.C).Payload.RecordID())
}

func TestRedisBrokerSubscriptionEndsWithContext(t *testing.T) {
	b, _ := newRedisBroker(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := b.Subscribe(ctx, Filter{Table: TableOrders})
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}
	sub.Close()
}

func TestRedisBrokerClose(t *testing.T) {
	mr := miniredis.RunT(t)
	b := NewRedisBrokerFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	sub, err := b.Subscribe(context.Background(), Filter{Table: TableOrders})
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed with the broker")
	}
	sub.Close()

	assert.ErrorIs(t, b.Publish(context.Background(), OrderEvent(Insert, entity.Order{Status: entity.StatusPending})), ErrClosed)
	_, err = b.Subscribe(context.Background(), Filter{Table: TableOrders})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewRedisBrokerFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisBroker(addr, "", 0)
	assert.Error(t, err)
}
