package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaypeewhat/ThriftStore/entity"
)

func recv(t *testing.T, c <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-c:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestMemoryBrokerRoutesByFilter(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()
	ctx := context.Background()

	mine, err := b.Subscribe(ctx, Eq(TableNotifications, "user_id", "u1"))
	require.NoError(t, err)
	defer mine.Close()
	other, err := b.Subscribe(ctx, Eq(TableNotifications, "user_id", "u2"))
	require.NoError(t, err)
	defer other.Close()

	n := entity.Notification{Base: entity.Base{ID: "n1"}, UserID: "u1", Type: entity.NotifyOrder}
	require.NoError(t, b.Publish(ctx, NotificationEvent(Insert, n)))

	ev := recv(t, mine.C)
	assert.Equal(t, "n1", ev.Payload.RecordID())
	select {
	case <-other.C:
		t.Fatal("u2 must not see u1's notification")
	default:
	}
}

func TestMemoryBrokerSubscriptionEndsWithContext(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()
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

func TestMemoryBrokerClose(t *testing.T) {
	b := NewMemoryBroker()
	sub, err := b.Subscribe(context.Background(), Filter{Table: TableOrders})
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	_, ok := <-sub.C
	assert.False(t, ok)
	sub.Close()

	assert.ErrorIs(t, b.Publish(context.Background(), OrderEvent(Insert, entity.Order{Status: entity.StatusPending})), ErrClosed)
	_, err = b.Subscribe(context.Background(), Filter{Table: TableOrders})
	assert.ErrorIs(t, err, ErrClosed)
}
