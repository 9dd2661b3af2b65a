package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/realtime"
)

type fakeThreadAPI struct {
	mu        sync.Mutex
	history   []entity.Message
	markReads int
	sends     int
	send      func(content string) (*entity.Message, error)
}

func (f *fakeThreadAPI) Messages(context.Context, string) ([]entity.Message, error) {
	return f.history, nil
}

func (f *fakeThreadAPI) MarkMessagesRead(context.Context, string) error {
	f.mu.Lock()
	f.markReads++
	f.mu.Unlock()
	return nil
}

func (f *fakeThreadAPI) SendMessage(_ context.Context, _ string, content string) (*entity.Message, error) {
	f.mu.Lock()
	f.sends++
	f.mu.Unlock()
	return f.send(content)
}

func (f *fakeThreadAPI) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends
}

func (f *fakeThreadAPI) reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markReads
}

func msg(id, from, to string, minute int, content string) entity.Message {
	m := entity.Message{OrderID: "o1", SenderID: from, ReceiverID: to, Content: content}
	m.ID = id
	m.CreatedAt = epoch.Add(time.Duration(minute) * time.Minute)
	return m
}

func contents(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message.Content
	}
	return out
}

func openTestThread(t *testing.T, api *fakeThreadAPI) (*Thread, *realtime.MemoryBroker) {
	t.Helper()
	broker := realtime.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })
	th, err := OpenThread(context.Background(), api, broker, logger.NewNop(), "o1", "bea", "sam")
	require.NoError(t, err)
	t.Cleanup(th.Close)
	return th, broker
}

func TestOpenThreadLoadsHistoryAscending(t *testing.T) {
	api := &fakeThreadAPI{history: []entity.Message{
		msg("m2", "sam", "bea", 2, "two"),
		msg("m1", "bea", "sam", 1, "one"),
		msg("m3", "sam", "bea", 3, "three"),
	}}
	th, _ := openTestThread(t, api)

	assert.Equal(t, []string{"one", "two", "three"}, contents(th.Entries()))
	assert.Equal(t, 1, api.reads())
}

func TestSendConfirmsInPlace(t *testing.T) {
	api := &fakeThreadAPI{history: []entity.Message{msg("m1", "sam", "bea", 1, "hi")}}
	var th *Thread
	var during []Entry
	api.send = func(content string) (*entity.Message, error) {
		during = th.Entries()
		m := msg("m2", "bea", "sam", 2, content)
		m.CreatedAt = time.Now()
		return &m, nil
	}
	th, _ = openTestThread(t, api)

	op, err := th.Send(context.Background(), "  is it still available?  ")
	require.NoError(t, err)

	require.Len(t, during, 2)
	assert.Equal(t, OpPending, during[1].State)
	assert.True(t, strings.HasPrefix(during[1].Message.ID, "temp-"))
	assert.Equal(t, "is it still available?", during[1].Message.Content)

	assert.Equal(t, OpConfirmed, op.State())
	entries := th.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "m2", entries[1].Message.ID)
	assert.Equal(t, OpConfirmed, entries[1].State)
}

func TestSendAfterEchoKeepsOneCopy(t *testing.T) {
	api := &fakeThreadAPI{}
	var th *Thread
	var broker *realtime.MemoryBroker
	api.send = func(content string) (*entity.Message, error) {
		m := msg("m9", "bea", "sam", 9, content)
		ev := realtime.MessageEvent(realtime.Insert, m)
		// deliver the echo before the reply returns
		require.Eventually(t, func() bool {
			_ = broker.Publish(context.Background(), ev)
			for _, e := range th.Entries() {
				if e.Message.ID == "m9" {
					return true
				}
			}
			return false
		}, time.Second, 5*time.Millisecond)
		return &m, nil
	}
	th, broker = openTestThread(t, api)

	_, err := th.Send(context.Background(), "hello")
	require.NoError(t, err)

	entries := th.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "m9", entries[0].Message.ID)
	assert.Equal(t, 1, api.reads(), "own echo does not mark the thread read")
}

func TestSendFailureRestoresDraft(t *testing.T) {
	boom := errors.New("network down")
	api := &fakeThreadAPI{send: func(string) (*entity.Message, error) { return nil, boom }}
	th, _ := openTestThread(t, api)
	th.SetDraft("offer 300?")

	op, err := th.Send(context.Background(), "offer 300?")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, OpFailed, op.State())
	assert.Empty(t, th.Entries())
	assert.Equal(t, "offer 300?", th.Draft())
}

func TestSendFailureKeepsNewerDraft(t *testing.T) {
	boom := errors.New("network down")
	var th *Thread
	api := &fakeThreadAPI{send: func(string) (*entity.Message, error) {
		th.SetDraft("actually, 250")
		return nil, boom
	}}
	th, _ = openTestThread(t, api)

	_, err := th.Send(context.Background(), "offer 300?")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "actually, 250", th.Draft())
}

func TestSendFailureRestoresUntrimmedInput(t *testing.T) {
	api := &fakeThreadAPI{send: func(string) (*entity.Message, error) { return nil, errors.New("timeout") }}
	th, _ := openTestThread(t, api)

	_, err := th.Send(context.Background(), "  offer 300?\n")
	assert.Error(t, err)
	assert.Equal(t, "  offer 300?\n", th.Draft())
}

func TestBackToBackSendsSettleInOrder(t *testing.T) {
	release := make(chan struct{})
	api := &fakeThreadAPI{send: func(content string) (*entity.Message, error) {
		if content == "first" {
			<-release
			m := msg("m1", "bea", "sam", 1, content)
			return &m, nil
		}
		m := msg("m2", "bea", "sam", 2, content)
		return &m, nil
	}}
	th, _ := openTestThread(t, api)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		_, err := th.Send(ctx, "first")
		firstDone <- err
	}()
	require.Eventually(t, func() bool { return api.sent() == 1 }, time.Second, 5*time.Millisecond)

	op, err := th.Send(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, OpConfirmed, op.State())

	entries := th.Entries()
	require.Len(t, entries, 2, "first is still pending")
	assert.Equal(t, "second", entries[0].Message.Content)
	assert.Equal(t, OpPending, entries[1].State)

	close(release)
	select {
	case err := <-firstDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first send did not settle")
	}

	entries = th.Entries()
	assert.Equal(t, []string{"first", "second"}, contents(entries))
	for _, e := range entries {
		assert.Equal(t, OpConfirmed, e.State)
	}
	assert.Equal(t, "m1", entries[0].Message.ID)
	assert.Equal(t, "m2", entries[1].Message.ID)
}

func TestSendRejectsBlank(t *testing.T) {
	api := &fakeThreadAPI{}
	th, _ := openTestThread(t, api)

	_, err := th.Send(context.Background(), " \n\t ")
	assert.ErrorIs(t, err, apperr.ErrEmptyMessage)
	assert.Zero(t, api.sends)
	assert.Empty(t, th.Entries())
}

func TestIncomingMessageMarksRead(t *testing.T) {
	api := &fakeThreadAPI{}
	th, broker := openTestThread(t, api)

	ev := realtime.MessageEvent(realtime.Insert, msg("m5", "sam", "bea", 5, "yes, still here"))
	require.Eventually(t, func() bool {
		_ = broker.Publish(context.Background(), ev)
		return len(th.Entries()) == 1
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return api.reads() == 2 }, time.Second, 5*time.Millisecond)

	th.Close()
	_ = broker.Publish(context.Background(), realtime.MessageEvent(realtime.Insert, msg("m6", "sam", "bea", 6, "late")))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"yes, still here"}, contents(th.Entries()), "closed thread keeps history, ignores new rows")
}
