package client

import (
	"context"
	"errors"
	"sync"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
)

var ErrSessionClosed = errors.New("session closed")

// Session is the signed-in application context: who the user is, their cart,
// and the feeds and threads opened on their behalf. Teardown releases all of it.
type Session struct {
	api *API
	log logger.Logger

	mu      sync.Mutex
	user    *entity.Profile
	cart    []entity.CartItem
	feeds   []*runningFeed
	threads []*Thread
	closed  bool
}

type runningFeed struct {
	feed   *Feed
	cancel context.CancelFunc
	done   chan struct{}
}

// Init loads the current profile and, for buyers, the cart. The API must already hold a token.
func Init(ctx context.Context, api *API, log logger.Logger) (*Session, error) {
	me, err := api.Me(ctx)
	if err != nil {
		return nil, err
	}
	s := &Session{api: api, log: log, user: me}
	if me.Role == entity.RoleBuyer {
		cart, err := api.Cart(ctx)
		if err != nil {
			return nil, err
		}
		s.cart = cart
	}
	return s, nil
}

func (s *Session) User() *entity.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Cart() []entity.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// RefreshCart reloads the cart. A suspended account tears the session down.
func (s *Session) RefreshCart(ctx context.Context) error {
	cart, err := s.api.Cart(ctx)
	if err != nil {
		s.checkSuspended(err)
		return err
	}
	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
	return nil
}

// StartFeed runs the user's notification feed in the background until Teardown.
// A poll rejected for suspension signs the session out.
func (s *Session) StartFeed(ctx context.Context, opts FeedOptions) (*Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	onError := opts.OnError
	opts.OnError = func(err error) {
		if onError != nil {
			onError(err)
		}
		// Teardown waits for this feed to stop, so it cannot run on the feed goroutine.
		if errors.Is(err, apperr.ErrSuspended) {
			go s.checkSuspended(err)
		}
	}
	f := NewFeed(s.api, s.api, s.log, s.user.ID, opts)
	ctx, cancel := context.WithCancel(ctx)
	rf := &runningFeed{feed: f, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(rf.done)
		_ = f.Run(ctx)
	}()
	s.feeds = append(s.feeds, rf)
	return f, nil
}

// OpenThread opens the chat on one of the user's orders.
func (s *Session) OpenThread(ctx context.Context, orderID string) (*Thread, error) {
	me := s.User()
	if me == nil {
		return nil, ErrSessionClosed
	}
	o, err := s.api.Order(ctx, orderID)
	if err != nil {
		s.checkSuspended(err)
		return nil, err
	}
	other := o.PartyOf(me.ID)
	if other == "" {
		return nil, apperr.ErrForbidden
	}
	t, err := OpenThread(ctx, s.api, s.api, s.log, orderID, me.ID, other)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		t.Close()
		return nil, ErrSessionClosed
	}
	s.threads = append(s.threads, t)
	return t, nil
}

func (s *Session) checkSuspended(err error) {
	if errors.Is(err, apperr.ErrSuspended) {
		s.log.Warnf(context.Background(), "account suspended, signing out")
		s.Teardown()
	}
}

// Teardown stops feeds, closes threads and forgets the user, cart and token. Safe to call twice.
func (s *Session) Teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	feeds, threads := s.feeds, s.threads
	s.feeds, s.threads = nil, nil
	s.user, s.cart = nil, nil
	s.mu.Unlock()

	for _, rf := range feeds {
		rf.cancel()
		<-rf.done
	}
	for _, t := range threads {
		t.Close()
	}
	s.api.SetToken("")
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
