package realtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jaypeewhat/ThriftStore/entity"
)

type Table string

const (
	TableNotifications Table = "notifications"
	TableMessages      Table = "messages"
	TableOrders        Table = "orders"
)

type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

var ErrMalformed = errors.New("malformed realtime event")

// Payload is implemented only by the change types in this package.
type Payload interface {
	Table() Table
	RecordID() string
	field(column string) (string, bool)
}

type NotificationChange struct {
	Record entity.Notification
}

func (c NotificationChange) Table() Table     { return TableNotifications }
func (c NotificationChange) RecordID() string { return c.Record.ID }
func (c NotificationChange) field(col string) (string, bool) {
	switch col {
	case "id":
		return c.Record.ID, true
	case "user_id":
		return c.Record.UserID, true
	}
	return "", false
}

type MessageChange struct {
	Record entity.Message
}

func (c MessageChange) Table() Table     { return TableMessages }
func (c MessageChange) RecordID() string { return c.Record.ID }
func (c MessageChange) field(col string) (string, bool) {
	switch col {
	case "id":
		return c.Record.ID, true
	case "order_id":
		return c.Record.OrderID, true
	case "sender_id":
		return c.Record.SenderID, true
	case "receiver_id":
		return c.Record.ReceiverID, true
	}
	return "", false
}

type OrderChange struct {
	Record entity.Order
}

func (c OrderChange) Table() Table     { return TableOrders }
func (c OrderChange) RecordID() string { return c.Record.ID }
func (c OrderChange) field(col string) (string, bool) {
	switch col {
	case "id":
		return c.Record.ID, true
	case "buyer_id":
		return c.Record.BuyerID, true
	case "seller_id":
		return c.Record.SellerID, true
	case "product_id":
		return c.Record.ProductID, true
	}
	return "", false
}

// Event is one row change on a watched table.
type Event struct {
	Type    EventType
	Payload Payload
}

func NotificationEvent(t EventType, n entity.Notification) Event {
	return Event{Type: t, Payload: NotificationChange{Record: n}}
}

func MessageEvent(t EventType, m entity.Message) Event {
	return Event{Type: t, Payload: MessageChange{Record: m}}
}

func OrderEvent(t EventType, o entity.Order) Event {
	// relations stay server side
	o.Buyer, o.Seller, o.Product = nil, nil, nil
	return Event{Type: t, Payload: OrderChange{Record: o}}
}

type envelope struct {
	Table  Table           `json:"table"`
	Type   EventType       `json:"type"`
	Record json.RawMessage `json:"record"`
}

func Encode(ev Event) ([]byte, error) {
	if ev.Payload == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	var rec any
	switch p := ev.Payload.(type) {
	case NotificationChange:
		rec = p.Record
	case MessageChange:
		rec = p.Record
	case OrderChange:
		rec = p.Record
	default:
		return nil, fmt.Errorf("%w: unknown payload %T", ErrMalformed, ev.Payload)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Table: ev.Payload.Table(), Type: ev.Type, Record: raw})
}

// Decode validates a wire frame and returns the typed event.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch env.Type {
	case Insert, Update, Delete:
	default:
		return Event{}, fmt.Errorf("%w: unknown event type %q", ErrMalformed, env.Type)
	}
	if len(env.Record) == 0 || string(env.Record) == "null" {
		return Event{}, fmt.Errorf("%w: missing record", ErrMalformed)
	}

	var p Payload
	switch env.Table {
	case TableNotifications:
		var n entity.Notification
		if err := json.Unmarshal(env.Record, &n); err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if n.UserID == "" || !n.Type.Valid() {
			return Event{}, fmt.Errorf("%w: notification needs user_id and a known type", ErrMalformed)
		}
		p = NotificationChange{Record: n}
	case TableMessages:
		var m entity.Message
		if err := json.Unmarshal(env.Record, &m); err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if m.OrderID == "" || m.SenderID == "" {
			return Event{}, fmt.Errorf("%w: message needs order_id and sender_id", ErrMalformed)
		}
		p = MessageChange{Record: m}
	case TableOrders:
		var o entity.Order
		if err := json.Unmarshal(env.Record, &o); err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if !o.Status.Valid() {
			return Event{}, fmt.Errorf("%w: order status %q", ErrMalformed, o.Status)
		}
		p = OrderChange{Record: o}
	default:
		return Event{}, fmt.Errorf("%w: unknown table %q", ErrMalformed, env.Table)
	}
	if p.RecordID() == "" {
		return Event{}, fmt.Errorf("%w: record without id", ErrMalformed)
	}
	return Event{Type: env.Type, Payload: p}, nil
}
