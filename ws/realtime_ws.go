package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/pkg/metrics"
	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/realtime"
	"github.com/jaypeewhat/ThriftStore/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Subscriber is the half of realtime.Broker the hub needs.
type Subscriber interface {
	Subscribe(ctx context.Context, f realtime.Filter) (*realtime.Subscription, error)
}

// OrderAccess resolves an order the user is party to.
type OrderAccess interface {
	OrderFor(ctx context.Context, userID, orderID string) (*entity.Order, error)
}

// Hub streams broker events to websocket clients, one subscription per connection.
type Hub struct {
	broker Subscriber
	orders OrderAccess
	log    logger.Logger

	upgrader websocket.Upgrader
	mu       sync.Mutex
	conns    map[*websocket.Conn]context.CancelFunc
	closing  atomic.Bool
}

func NewHub(broker Subscriber, orders OrderAccess, log logger.Logger) *Hub {
	return &Hub{
		broker: broker,
		orders: orders,
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]context.CancelFunc),
	}
}

// authorizeFilter checks the caller may watch the rows the filter selects.
func (h *Hub) authorizeFilter(ctx context.Context, userID string, f realtime.Filter) error {
	switch f.Table {
	case realtime.TableNotifications:
		if f.Column == "user_id" && f.Value == userID {
			return nil
		}
	case realtime.TableMessages:
		if f.Column == "order_id" {
			_, err := h.orders.OrderFor(ctx, userID, f.Value)
			return err
		}
	case realtime.TableOrders:
		switch f.Column {
		case "buyer_id", "seller_id":
			if f.Value == userID {
				return nil
			}
		case "id":
			_, err := h.orders.OrderFor(ctx, userID, f.Value)
			return err
		}
	}
	return apperr.ErrForbidden
}

// GET /ws/realtime?table=&column=&value=
func (h *Hub) HandleWebSocket(c *gin.Context) {
	if h.closing.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "shutting down"})
		return
	}
	userID := utils.CurrentUserID(c)

	expr := ""
	if col := c.Query("column"); col != "" {
		expr = col + "=eq." + c.Query("value")
	}
	f, err := realtime.ParseFilter(realtime.Table(c.Query("table")), expr)
	if err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	if err := h.authorizeFilter(c.Request.Context(), userID, f); err != nil {
		resp.Error(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnf(c.Request.Context(), "ws upgrade: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(logger.WithUserID(context.Background(), userID))
	sub, err := h.broker.Subscribe(ctx, f)
	if err != nil {
		cancel()
		h.log.Errorf(ctx, "subscribe %s: %v", f, err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	if !h.register(conn, cancel) {
		cancel()
		sub.Close()
		conn.Close()
		return
	}

	go h.readPump(ctx, conn, cancel)
	go h.writePump(ctx, conn, sub)
}

func (h *Hub) register(conn *websocket.Conn, cancel context.CancelFunc) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing.Load() {
		return false
	}
	h.conns[conn] = cancel
	metrics.RealtimeSubscribers.Inc()
	return true
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	cancel, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if ok {
		cancel()
		metrics.RealtimeSubscribers.Dec()
	}
}

// readPump only watches for the client going away; the feed is server to client.
func (h *Hub) readPump(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debugf(ctx, "ws read: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(ctx context.Context, conn *websocket.Conn, sub *realtime.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		h.unregister(conn)
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := realtime.Encode(ev)
			if err != nil {
				h.log.Warnf(ctx, "encode %s event: %v", sub.Filter, err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					h.log.Debugf(ctx, "ws write: %v", err)
				}
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Shutdown stops accepting connections and closes the live ones.
func (h *Hub) Shutdown() {
	if !h.closing.CompareAndSwap(false, true) {
		return
	}
	h.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(h.conns))
	for _, cancel := range h.conns {
		cancels = append(cancels, cancel)
	}
	h.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// Len reports the number of live connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
