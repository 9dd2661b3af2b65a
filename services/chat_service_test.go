package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/realtime"
)

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	buyer := f.profile(t, entity.RoleBuyer, "bea")
	seller := f.profile(t, entity.RoleSeller, "sam")
	o := f.placeOrder(t, buyer, seller, "Coat", entity.StatusPending)

	sub, err := f.broker.Subscribe(f.ctx, realtime.Eq(realtime.TableMessages, "order_id", o.ID))
	require.NoError(t, err)
	defer sub.Close()

	msg, err := f.chat.Send(f.ctx, buyer.ID, o.ID, "  is this still available?  ")
	require.NoError(t, err)
	assert.Equal(t, "is this still available?", msg.Content)
	assert.Equal(t, seller.ID, msg.ReceiverID)
	assert.False(t, msg.IsRead)

	select {
	case ev := <-sub.C:
		assert.Equal(t, msg.ID, ev.Payload.RecordID())
	case <-time.After(time.Second):
		t.Fatal("message event not published")
	}

	inbox := f.inbox(t, seller.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, entity.NotifyMessage, inbox[0].Type)
	assert.Equal(t, "New Message", inbox[0].Title)
	assert.Equal(t, `bea sent you a message: "is this still available?"`, inbox[0].Message)
}

func TestSendMessagePreviewIsTruncated(t *testing.T) {
	f := newFixture(t)
	buyer := f.profile(t, entity.RoleBuyer, "bea")
	seller := f.profile(t, entity.RoleSeller, "sam")
	o := f.placeOrder(t, buyer, seller, "Coat", entity.StatusPending)

	long := strings.Repeat("x", 60)
	_, err := f.chat.Send(f.ctx, seller.ID, o.ID, long)
	require.NoError(t, err)

	inbox := f.inbox(t, buyer.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, `sam sent you a message: "`+strings.Repeat("x", 50)+`..."`, inbox[0].Message)
	assert.Equal(t, "/buyer/orders/"+o.ID, inbox[0].Link)
}

func TestSendMessageRejections(t *testing.T) {
	f := newFixture(t)
	buyer := f.profile(t, entity.RoleBuyer, "bea")
	seller := f.profile(t, entity.RoleSeller, "sam")
	stranger := f.profile(t, entity.RoleBuyer, "eve")
	o := f.placeOrder(t, buyer, seller, "Coat", entity.StatusPending)
	cancelled := f.placeOrder(t, buyer, seller, "Hat", entity.StatusCancelled)

	_, err := f.chat.Send(f.ctx, buyer.ID, o.ID, "   ")
	assert.ErrorIs(t, err, apperr.ErrEmptyMessage)
	_, err = f.chat.Send(f.ctx, stranger.ID, o.ID, "hi")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.chat.Send(f.ctx, buyer.ID, "missing", "hi")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.chat.Send(f.ctx, buyer.ID, cancelled.ID, "hi")
	assert.ErrorIs(t, err, apperr.ErrChatClosed)

	var count int64
	require.NoError(t, f.db.Model(&entity.Message{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.inbox(t, seller.ID))
}

func TestHistoryAndMarkRead(t *testing.T) {
	f := newFixture(t)
	buyer := f.profile(t, entity.RoleBuyer, "bea")
	seller := f.profile(t, entity.RoleSeller, "sam")
	o := f.placeOrder(t, buyer, seller, "Coat", entity.StatusShipped)

	for i, c := range []struct{ from, text string }{
		{buyer.ID, "one"}, {seller.ID, "two"}, {buyer.ID, "three"},
	} {
		_, err := f.chat.Send(f.ctx, c.from, o.ID, c.text)
		require.NoError(t, err, "message %d", i)
	}

	history, err := f.chat.History(f.ctx, seller.ID, o.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{history[0].Content, history[1].Content, history[2].Content})

	unread, err := f.chat.UnreadCount(f.ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	n, err := f.chat.MarkThreadRead(f.ctx, seller.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err = f.chat.UnreadCount(f.ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread, "marking the seller's side leaves the buyer's unread")

	stranger := f.profile(t, entity.RoleBuyer, "eve")
	_, err = f.chat.History(f.ctx, stranger.ID, o.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
