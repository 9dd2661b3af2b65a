package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
)

// APIError is a non-2xx reply from the store API.
type APIError struct {
	Status   int
	Message  string
	Products []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// Unwrap maps the status back onto the domain sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return apperr.ErrValidation
	case http.StatusUnauthorized:
		if e.Message == apperr.ErrSuspended.Error() {
			return apperr.ErrSuspended
		}
		return apperr.ErrUnauthorized
	case http.StatusForbidden:
		return apperr.ErrForbidden
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict:
		if len(e.Products) > 0 {
			return apperr.ErrProductUnavailable
		}
		return apperr.ErrConflict
	}
	return nil
}

type envelope struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    string          `json:"error"`
	Products []string        `json:"products"`
}

// API is a thin client for the store's HTTP API. It carries the bearer token once logged in.
type API struct {
	base string
	hc   *http.Client

	mu    sync.RWMutex
	token string
}

// NewAPI builds a client for base (e.g. http://localhost:8080). A nil hc uses a client without timeouts;
// callers bound calls with their contexts.
func NewAPI(base string, hc *http.Client) *API {
	if hc == nil {
		hc = &http.Client{}
	}
	return &API{base: strings.TrimRight(base, "/"), hc: hc}
}

func (a *API) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

func (a *API) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := a.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := a.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode reply (%d): %w", method, path, res.StatusCode, err)
	}
	if res.StatusCode >= 300 || !env.OK {
		return &APIError{Status: res.StatusCode, Message: env.Error, Products: env.Products}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Login stores the returned token for later calls.
func (a *API) Login(ctx context.Context, email, password string) (*entity.Profile, error) {
	var out struct {
		Token string         `json:"token"`
		User  entity.Profile `json:"user"`
	}
	err := a.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("login: empty token")
	}
	a.SetToken(out.Token)
	return &out.User, nil
}

func (a *API) Me(ctx context.Context) (*entity.Profile, error) {
	var p entity.Profile
	if err := a.do(ctx, http.MethodGet, "/auth/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *API) Cart(ctx context.Context) ([]entity.CartItem, error) {
	var items []entity.CartItem
	err := a.do(ctx, http.MethodGet, "/cart", nil, &items)
	return items, err
}

func (a *API) Order(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	if err := a.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Notifications returns the newest limit notifications and the server's unread total.
func (a *API) Notifications(ctx context.Context, limit int) ([]entity.Notification, int64, error) {
	var out struct {
		Notifications []entity.Notification `json:"notifications"`
		Unread        int64                 `json:"unread"`
	}
	path := "/notifications"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := a.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, 0, err
	}
	return out.Notifications, out.Unread, nil
}

func (a *API) MarkNotificationRead(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (a *API) MarkAllNotificationsRead(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/notifications/read-all", nil, nil)
}

func (a *API) Messages(ctx context.Context, orderID string) ([]entity.Message, error) {
	var msgs []entity.Message
	err := a.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/messages", nil, &msgs)
	return msgs, err
}

func (a *API) MarkMessagesRead(ctx context.Context, orderID string) error {
	return a.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/messages/read", nil, nil)
}

func (a *API) SendMessage(ctx context.Context, orderID, content string) (*entity.Message, error) {
	var m entity.Message
	err := a.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/messages", map[string]string{"content": content}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
