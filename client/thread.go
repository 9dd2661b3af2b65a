package client

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/realtime"
)

type ThreadAPI interface {
	Messages(ctx context.Context, orderID string) ([]entity.Message, error)
	MarkMessagesRead(ctx context.Context, orderID string) error
	SendMessage(ctx context.Context, orderID, content string) (*entity.Message, error)
}

// Entry is one displayed message. Pending entries carry a temp id.
type Entry struct {
	Message entity.Message
	State   OpState
}

// Thread is an open conversation on one order.
type Thread struct {
	OrderID string
	Me      string
	Other   string

	api ThreadAPI
	log logger.Logger

	mu      sync.Mutex
	entries []Entry
	draft   string

	sub       *realtime.Subscription
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	onChange  func()
}

// OpenThread loads the history, subscribes to new messages and marks the thread read.
func OpenThread(ctx context.Context, api ThreadAPI, sub Subscriber, log logger.Logger, orderID, me, other string) (*Thread, error) {
	ctx = logger.WithOrderID(logger.WithUserID(ctx, me), orderID)
	history, err := api.Messages(ctx, orderID)
	if err != nil {
		return nil, err
	}
	t := &Thread{
		OrderID: orderID,
		Me:      me,
		Other:   other,
		api:     api,
		log:     log,
		done:    make(chan struct{}),
	}
	for _, m := range history {
		t.entries = append(t.entries, Entry{Message: m, State: OpConfirmed})
	}
	sortOldestFirst(t.entries)

	subCtx, cancel := context.WithCancel(ctx)
	s, err := sub.Subscribe(subCtx, realtime.Eq(realtime.TableMessages, "order_id", orderID))
	if err != nil {
		cancel()
		return nil, err
	}
	t.sub, t.cancel = s, cancel
	go t.listen(subCtx)

	t.markRead(ctx)
	return t, nil
}

// OnChange registers a callback run after every local change, outside the lock.
func (t *Thread) OnChange(fn func()) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

func (t *Thread) listen(ctx context.Context) {
	defer close(t.done)
	for ev := range t.sub.C {
		mc, ok := ev.Payload.(realtime.MessageChange)
		if !ok || ev.Type != realtime.Insert || mc.Record.OrderID != t.OrderID {
			continue
		}
		if t.receive(mc.Record) && mc.Record.SenderID != t.Me {
			t.markRead(ctx)
		}
	}
}

// receive adds a server row unless its id is already shown.
func (t *Thread) receive(m entity.Message) bool {
	t.mu.Lock()
	if t.indexOf(m.ID) >= 0 {
		t.mu.Unlock()
		return false
	}
	t.entries = append(t.entries, Entry{Message: m, State: OpConfirmed})
	sortOldestFirst(t.entries)
	t.mu.Unlock()
	t.changed()
	return true
}

func (t *Thread) markRead(ctx context.Context) {
	if err := t.api.MarkMessagesRead(ctx, t.OrderID); err != nil {
		t.log.Warnf(ctx, "mark thread read: %v", err)
	}
}

// Send shows the message at once as pending, then settles it. On failure the entry
// is removed and the error returned; the input goes back into the draft unless
// something new was typed meanwhile.
func (t *Thread) Send(ctx context.Context, input string) (*Op[entity.Message], error) {
	content := strings.TrimSpace(input)
	if content == "" {
		return nil, apperr.ErrEmptyMessage
	}

	provisional := entity.Message{OrderID: t.OrderID, SenderID: t.Me, ReceiverID: t.Other, Content: content}
	op := NewOp(provisional)
	provisional.ID = op.TempID()
	provisional.CreatedAt = time.Now()

	t.mu.Lock()
	t.entries = append(t.entries, Entry{Message: provisional, State: OpPending})
	sortOldestFirst(t.entries)
	t.draft = ""
	t.mu.Unlock()
	t.changed()

	msg, err := t.api.SendMessage(ctx, t.OrderID, content)

	t.mu.Lock()
	i := t.indexOf(op.TempID())
	if err != nil {
		op.Fail(err)
		if i >= 0 {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
		}
		if t.draft == "" {
			t.draft = input
		}
		t.mu.Unlock()
		t.changed()
		return op, err
	}

	op.Confirm(*msg)
	switch {
	case t.indexOf(msg.ID) >= 0:
		// the realtime echo won the race
		if i >= 0 {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
		}
	case i >= 0:
		t.entries[i] = Entry{Message: *msg, State: OpConfirmed}
	default:
		t.entries = append(t.entries, Entry{Message: *msg, State: OpConfirmed})
	}
	sortOldestFirst(t.entries)
	t.mu.Unlock()
	t.changed()
	return op, nil
}

func (t *Thread) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Thread) Draft() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft
}

func (t *Thread) SetDraft(s string) {
	t.mu.Lock()
	t.draft = s
	t.mu.Unlock()
}

// Close drops the subscription. The loaded history stays readable.
func (t *Thread) Close() {
	t.closeOnce.Do(func() {
		t.cancel()
		t.sub.Close()
		<-t.done
	})
}

func (t *Thread) indexOf(id string) int {
	for i := range t.entries {
		if t.entries[i].Message.ID == id {
			return i
		}
	}
	return -1
}

func (t *Thread) changed() {
	t.mu.Lock()
	fn := t.onChange
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func sortOldestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Message.CreatedAt.Before(entries[j].Message.CreatedAt)
	})
}
