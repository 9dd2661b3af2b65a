package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/realtime"
)

func note(userID string, i int) *entity.Notification {
	return &entity.Notification{
		UserID:  userID,
		Type:    entity.NotifyOrder,
		Title:   fmt.Sprintf("n%d", i),
		Message: "m",
	}
}

func TestEmitPublishesInsert(t *testing.T) {
	f := newFixture(t)
	u := f.profile(t, entity.RoleBuyer, "bea")
	sub, err := f.broker.Subscribe(f.ctx, realtime.Eq(realtime.TableNotifications, "user_id", u.ID))
	require.NoError(t, err)
	defer sub.Close()

	n := note(u.ID, 1)
	require.NoError(t, f.notes.Emit(f.ctx, n))
	require.NotEmpty(t, n.ID)

	select {
	case ev := <-sub.C:
		assert.Equal(t, realtime.Insert, ev.Type)
		assert.Equal(t, n.ID, ev.Payload.RecordID())
	case <-time.After(time.Second):
		t.Fatal("no insert event")
	}

	assert.ErrorIs(t, f.notes.Emit(f.ctx, &entity.Notification{UserID: u.ID, Type: "promo"}), apperr.ErrValidation)
}

func TestRecentNewestFirstWithLimit(t *testing.T) {
	f := newFixture(t)
	u := f.profile(t, entity.RoleBuyer, "bea")
	for i := 0; i < 25; i++ {
		require.NoError(t, f.notes.Emit(f.ctx, note(u.ID, i)))
	}

	list, err := f.notes.Recent(f.ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, DefaultFeedLimit)
	assert.Equal(t, "n24", list[0].Title)
	assert.Equal(t, "n5", list[len(list)-1].Title)

	list, err = f.notes.Recent(f.ctx, u.ID, 3)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	f := newFixture(t)
	u := f.profile(t, entity.RoleBuyer, "bea")
	other := f.profile(t, entity.RoleBuyer, "eve")
	n := note(u.ID, 1)
	require.NoError(t, f.notes.Emit(f.ctx, n))

	sub, err := f.broker.Subscribe(f.ctx, realtime.Eq(realtime.TableNotifications, "user_id", u.ID))
	require.NoError(t, err)
	defer sub.Close()

	assert.ErrorIs(t, f.notes.MarkRead(f.ctx, other.ID, n.ID), apperr.ErrNotFound)
	assert.ErrorIs(t, f.notes.MarkRead(f.ctx, u.ID, "missing"), apperr.ErrNotFound)

	require.NoError(t, f.notes.MarkRead(f.ctx, u.ID, n.ID))
	select {
	case ev := <-sub.C:
		assert.Equal(t, realtime.Update, ev.Type)
		assert.True(t, ev.Payload.(realtime.NotificationChange).Record.IsRead)
	case <-time.After(time.Second):
		t.Fatal("no update event")
	}

	// second call is a quiet no-op
	require.NoError(t, f.notes.MarkRead(f.ctx, u.ID, n.ID))
	unread, err := f.notes.UnreadCount(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t)
	u := f.profile(t, entity.RoleBuyer, "bea")
	other := f.profile(t, entity.RoleBuyer, "eve")
	for i := 0; i < 3; i++ {
		require.NoError(t, f.notes.Emit(f.ctx, note(u.ID, i)))
	}
	require.NoError(t, f.notes.Emit(f.ctx, note(other.ID, 9)))

	n, err := f.notes.MarkAllRead(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = f.notes.MarkAllRead(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	unread, err := f.notes.UnreadCount(f.ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
