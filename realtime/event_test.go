package realtime

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaypeewhat/ThriftStore/entity"
)

func TestEncodeDecodeNotification(t *testing.T) {
	n := entity.Notification{
		Base:    entity.Base{ID: "n1", CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		UserID:  "u1",
		Type:    entity.NotifyStatusChange,
		Title:   "Order Shipped",
		Message: "Great news!",
	}
	data, err := Encode(NotificationEvent(Insert, n))
	require.NoError(t, err)

	ev, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, Insert, ev.Type)
	nc, ok := ev.Payload.(NotificationChange)
	require.True(t, ok)
	assert.Equal(t, "n1", nc.Record.ID)
	assert.Equal(t, "u1", nc.Record.UserID)
	assert.True(t, nc.Record.CreatedAt.Equal(n.CreatedAt))
}

func TestOrderEventStripsRelations(t *testing.T) {
	o := entity.Order{
		Base:        entity.Base{ID: "o1"},
		BuyerID:     "b",
		SellerID:    "s",
		Status:      entity.StatusPending,
		TotalAmount: decimal.NewFromInt(500),
		Product:     &entity.Product{Title: "Jacket"},
	}
	ev := OrderEvent(Insert, o)
	assert.Nil(t, ev.Payload.(OrderChange).Record.Product)
	assert.NotNil(t, o.Product)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{`},
		{"unknown table", `{"table":"products","type":"INSERT","record":{"id":"p1"}}`},
		{"unknown type", `{"table":"notifications","type":"UPSERT","record":{"id":"n1","user_id":"u","type":"order"}}`},
		{"missing record", `{"table":"notifications","type":"INSERT"}`},
		{"null record", `{"table":"messages","type":"INSERT","record":null}`},
		{"notification without user", `{"table":"notifications","type":"INSERT","record":{"id":"n1","type":"order"}}`},
		{"notification bad kind", `{"table":"notifications","type":"INSERT","record":{"id":"n1","user_id":"u","type":"promo"}}`},
		{"message without order", `{"table":"messages","type":"INSERT","record":{"id":"m1","sender_id":"s"}}`},
		{"order bad status", `{"table":"orders","type":"UPDATE","record":{"id":"o1","status":"lost"}}`},
		{"missing id", `{"table":"messages","type":"INSERT","record":{"order_id":"o","sender_id":"s"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestFilterMatch(t *testing.T) {
	msg := MessageEvent(Insert, entity.Message{Base: entity.Base{ID: "m1"}, OrderID: "o1", SenderID: "a", ReceiverID: "b"})
	note := NotificationEvent(Insert, entity.Notification{Base: entity.Base{ID: "n1"}, UserID: "b", Type: entity.NotifyMessage})

	assert.True(t, Eq(TableMessages, "order_id", "o1").Match(msg))
	assert.False(t, Eq(TableMessages, "order_id", "o2").Match(msg))
	assert.False(t, Eq(TableNotifications, "user_id", "b").Match(msg))
	assert.True(t, Eq(TableNotifications, "user_id", "b").Match(note))
	assert.False(t, Eq(TableNotifications, "nope", "b").Match(note))
	assert.True(t, Filter{Table: TableMessages}.Match(msg))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(TableNotifications, "user_id=eq.abc")
	require.NoError(t, err)
	assert.Equal(t, Eq(TableNotifications, "user_id", "abc"), f)
	assert.Equal(t, "notifications:user_id=eq.abc", f.String())

	_, err = ParseFilter(TableNotifications, "user_id=gt.1")
	assert.Error(t, err)
	_, err = ParseFilter("profiles", "")
	assert.Error(t, err)
}
