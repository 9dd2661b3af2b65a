package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/realtime"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultFeedLimit    = 20
)

type FeedAPI interface {
	Notifications(ctx context.Context, limit int) ([]entity.Notification, int64, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

type FeedOptions struct {
	Limit        int
	PollInterval time.Duration
	// OnChange, if set, is called after every local state change, outside the lock.
	OnChange func()
	// OnError, if set, receives every failed background poll.
	OnError func(error)
}

// Feed keeps one user's notification list and unread count current from
// realtime inserts plus a periodic authoritative poll.
type Feed struct {
	api    FeedAPI
	sub    Subscriber
	log    logger.Logger
	userID string
	opts   FeedOptions

	mu     sync.Mutex
	items  []entity.Notification
	unread int
}

func NewFeed(api FeedAPI, sub Subscriber, log logger.Logger, userID string, opts FeedOptions) *Feed {
	if opts.Limit <= 0 {
		opts.Limit = DefaultFeedLimit
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Feed{api: api, sub: sub, log: log, userID: userID, opts: opts}
}

// Run polls once, subscribes, and keeps polling until ctx ends. A lost subscription
// is re-opened on the next tick.
func (f *Feed) Run(ctx context.Context) error {
	ctx = logger.WithUserID(ctx, f.userID)
	if err := f.Poll(ctx); err != nil {
		f.failed(ctx, "initial notification poll", err)
	}

	sub := f.subscribe(ctx)
	defer func() {
		if sub != nil {
			sub.Close()
		}
	}()

	ticker := time.NewTicker(f.opts.PollInterval)
	defer ticker.Stop()
	for {
		var events <-chan realtime.Event
		if sub != nil {
			events = sub.C
		}
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				f.log.Warnf(ctx, "notification feed disconnected")
				sub.Close()
				sub = nil
				continue
			}
			f.apply(ctx, ev)
		case <-ticker.C:
			if sub == nil {
				sub = f.subscribe(ctx)
			}
			if err := f.Poll(ctx); err != nil {
				f.failed(ctx, "notification poll", err)
			}
		}
	}
}

func (f *Feed) subscribe(ctx context.Context) *realtime.Subscription {
	sub, err := f.sub.Subscribe(ctx, realtime.Eq(realtime.TableNotifications, "user_id", f.userID))
	if err != nil {
		f.log.Warnf(ctx, "subscribe notifications: %v", err)
		return nil
	}
	return sub
}

func (f *Feed) apply(ctx context.Context, ev realtime.Event) {
	nc, ok := ev.Payload.(realtime.NotificationChange)
	if !ok || nc.Record.UserID != f.userID {
		return
	}
	switch ev.Type {
	case realtime.Insert:
		f.merge(nc.Record)
	default:
		// read flags changed elsewhere; counts come from the server
		if err := f.Poll(ctx); err != nil {
			f.failed(ctx, "resync after "+string(ev.Type), err)
		}
	}
}

func (f *Feed) merge(n entity.Notification) {
	f.mu.Lock()
	for _, have := range f.items {
		if have.ID == n.ID {
			f.mu.Unlock()
			return
		}
	}
	f.items = append(f.items, n)
	sortNewestFirst(f.items)
	if !n.IsRead {
		f.unread++
	}
	f.mu.Unlock()
	f.changed()
}

// Poll replaces the local feed with the newest rows. The unread count is the
// server's, taken over all of the user's rows rather than the page.
func (f *Feed) Poll(ctx context.Context) error {
	list, unread, err := f.api.Notifications(ctx, f.opts.Limit)
	if err != nil {
		return err
	}
	sortNewestFirst(list)

	f.mu.Lock()
	f.items, f.unread = list, int(unread)
	f.mu.Unlock()
	f.changed()
	return nil
}

// MarkRead flips the row locally first. A failed remote call is logged and returned but not rolled back.
func (f *Feed) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	for i := range f.items {
		if f.items[i].ID == id && !f.items[i].IsRead {
			f.items[i].IsRead = true
			f.unread--
			break
		}
	}
	f.mu.Unlock()
	f.changed()

	if err := f.api.MarkNotificationRead(ctx, id); err != nil {
		f.log.Warnf(ctx, "mark notification %s read: %v", id, err)
		return err
	}
	return nil
}

func (f *Feed) MarkAllRead(ctx context.Context) error {
	f.mu.Lock()
	for i := range f.items {
		f.items[i].IsRead = true
	}
	f.unread = 0
	f.mu.Unlock()
	f.changed()

	if err := f.api.MarkAllNotificationsRead(ctx); err != nil {
		f.log.Warnf(ctx, "mark all notifications read: %v", err)
		return err
	}
	return nil
}

func (f *Feed) Items() []entity.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Notification, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

func (f *Feed) failed(ctx context.Context, what string, err error) {
	f.log.Warnf(ctx, "%s: %v", what, err)
	if f.opts.OnError != nil {
		f.opts.OnError(err)
	}
}

func (f *Feed) changed() {
	if f.opts.OnChange != nil {
		f.opts.OnChange()
	}
}

func sortNewestFirst(list []entity.Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
