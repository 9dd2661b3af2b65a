package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/jaypeewhat/ThriftStore/realtime"
)

// Subscriber opens a filtered change feed. *API and realtime.Broker both satisfy it.
type Subscriber interface {
	Subscribe(ctx context.Context, f realtime.Filter) (*realtime.Subscription, error)
}

func (a *API) realtimeURL(f realtime.Filter) (string, error) {
	u, err := url.Parse(a.base + "/ws/realtime")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := url.Values{}
	q.Set("table", string(f.Table))
	if f.Column != "" {
		q.Set("column", f.Column)
		q.Set("value", f.Value)
	}
	if tok := a.Token(); tok != "" {
		q.Set("token", tok)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Subscribe dials the websocket change feed. Frames that fail realtime.Decode are dropped.
// The channel closes when the connection ends or the subscription is closed.
func (a *API) Subscribe(ctx context.Context, f realtime.Filter) (*realtime.Subscription, error) {
	target, err := a.realtimeURL(f)
	if err != nil {
		return nil, err
	}
	conn, res, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if res != nil && res.StatusCode != http.StatusSwitchingProtocols {
			return nil, &APIError{Status: res.StatusCode, Message: strings.TrimSpace(http.StatusText(res.StatusCode))}
		}
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan realtime.Event, 16)
	go func() {
		defer close(out)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			ev, err := realtime.Decode(data)
			if err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	return realtime.NewSubscription(f, out, cancel), nil
}
