package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/realtime"
	"github.com/jaypeewhat/ThriftStore/utils"
)

type stubOrders map[string]entity.Order

func (s stubOrders) OrderFor(_ context.Context, userID, orderID string) (*entity.Order, error) {
	o, ok := s[orderID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if o.PartyOf(userID) == "" {
		return nil, apperr.ErrForbidden
	}
	return &o, nil
}

func newServer(t *testing.T) (*Hub, *realtime.MemoryBroker, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	broker := realtime.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })

	orders := stubOrders{}
	o := entity.Order{BuyerID: "bea", SellerID: "sam"}
	o.ID = "order-1"
	orders[o.ID] = o

	hub := NewHub(broker, orders, logger.NewNop())
	r := gin.New()
	r.GET("/ws/realtime", func(c *gin.Context) {
		c.Set(utils.CtxUserID, c.GetHeader("X-User"))
		c.Next()
	}, hub.HandleWebSocket)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Shutdown)
	return hub, broker, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/realtime"
}

func dial(t *testing.T, url, user string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	h := http.Header{}
	h.Set("X-User", user)
	return websocket.DefaultDialer.Dial(url, h)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func TestStreamsMatchingNotifications(t *testing.T) {
	hub, broker, url := newServer(t)
	conn, _, err := dial(t, url+"?table=notifications&column=user_id&value=bea", "bea")
	require.NoError(t, err)
	defer conn.Close()
	waitFor(t, func() bool { return hub.Len() == 1 })

	ctx := context.Background()
	other := entity.Notification{UserID: "sam", Type: entity.NotifyOrder, Title: "not yours"}
	other.ID = "n-0"
	mine := entity.Notification{UserID: "bea", Type: entity.NotifyStatusChange, Title: "Order Shipped"}
	mine.ID = "n-1"
	require.NoError(t, broker.Publish(ctx, realtime.NotificationEvent(realtime.Insert, other)))
	require.NoError(t, broker.Publish(ctx, realtime.NotificationEvent(realtime.Insert, mine)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	ev, err := realtime.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, realtime.Insert, ev.Type)
	assert.Equal(t, "n-1", ev.Payload.RecordID())
	assert.Equal(t, "Order Shipped", ev.Payload.(realtime.NotificationChange).Record.Title)
}

func TestRejectsUnauthorizedFilters(t *testing.T) {
	_, _, url := newServer(t)
	cases := []struct {
		query, user string
		status      int
	}{
		{"?table=notifications&column=user_id&value=sam", "bea", http.StatusForbidden},
		{"?table=notifications", "bea", http.StatusForbidden},
		{"?table=messages&column=order_id&value=order-1", "eve", http.StatusForbidden},
		{"?table=messages&column=order_id&value=missing", "bea", http.StatusNotFound},
		{"?table=orders&column=seller_id&value=sam", "bea", http.StatusForbidden},
		{"?table=profiles", "bea", http.StatusBadRequest},
	}
	for _, tc := range cases {
		conn, res, err := dial(t, url+tc.query, tc.user)
		if conn != nil {
			conn.Close()
		}
		require.Error(t, err, tc.query)
		require.NotNil(t, res, tc.query)
		assert.Equal(t, tc.status, res.StatusCode, tc.query)
	}
}

func TestPartyMayWatchThread(t *testing.T) {
	hub, _, url := newServer(t)
	conn, _, err := dial(t, url+"?table=messages&column=order_id&value=order-1", "sam")
	require.NoError(t, err)
	defer conn.Close()
	waitFor(t, func() bool { return hub.Len() == 1 })
}

func TestClientCloseReleasesSubscription(t *testing.T) {
	hub, _, url := newServer(t)
	conn, _, err := dial(t, url+"?table=orders&column=buyer_id&value=bea", "bea")
	require.NoError(t, err)
	waitFor(t, func() bool { return hub.Len() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.Len() == 0 })
}

func TestShutdownClosesConnections(t *testing.T) {
	hub, _, url := newServer(t)
	conn, _, err := dial(t, url+"?table=orders&column=seller_id&value=sam", "sam")
	require.NoError(t, err)
	defer conn.Close()
	waitFor(t, func() bool { return hub.Len() == 1 })

	hub.Shutdown()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	waitFor(t, func() bool { return hub.Len() == 0 })

	_, res, err := dial(t, url+"?table=orders&column=seller_id&value=sam", "sam")
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}
