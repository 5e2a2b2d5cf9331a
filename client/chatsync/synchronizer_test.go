package chatsync

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giveme-app/giveme-api/client"
)

var base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func message(id string, offset time.Duration, sender string) client.Message {
	return client.Message{
		ID:             id,
		ConversationID: "c1",
		SenderID:       client.FlexID(sender),
		Body:           "msg " + id,
		CreatedAt:      base.Add(offset),
	}
}

type fakeHistory struct {
	mu       sync.Mutex
	messages map[string][]client.Message
	err      error
}

func (h *fakeHistory) Messages(ctx context.Context, conversationID string) ([]client.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	return h.messages[conversationID], nil
}

type fakeSender struct {
	reply client.Message
	err   error
}

func (s *fakeSender) SendMessage(ctx context.Context, conversationID, body string) (client.Message, error) {
	if s.err != nil {
		return client.Message{}, s.err
	}
	return s.reply, nil
}

type fakeSubscription struct {
	conversationID string
	events         chan client.Message
	once           sync.Once
	closed         bool
	mu             sync.Mutex
}

func (s *fakeSubscription) Events() <-chan client.Message { return s.events }

func (s *fakeSubscription) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.events)
	})
	return nil
}

func (s *fakeSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeSubscriber struct {
	mu   sync.Mutex
	subs []*fakeSubscription
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, conversationID string) (Subscription, error) {
	sub := &fakeSubscription{
		conversationID: conversationID,
		events:         make(chan client.Message, 16),
	}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
	return sub, nil
}

func (f *fakeSubscriber) live() []*fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	var live []*fakeSubscription
	for _, sub := range f.subs {
		if !sub.isClosed() {
			live = append(live, sub)
		}
	}
	return live
}

func ids(messages []client.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.ID
	}
	return out
}

func TestSelectReversesHistoryIntoAscendingOrder(t *testing.T) {
	history := &fakeHistory{messages: map[string][]client.Message{
		// Server returns newest first
		"c1": {message("m3", 3*time.Minute, "u2"), message("m2", 2*time.Minute, "u1"), message("m1", time.Minute, "u2")},
	}}
	s := New(history, &fakeSender{}, &fakeSubscriber{}, "u1", nil)
	defer s.Close()

	require.NoError(t, s.Select(context.Background(), "c1"))
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(s.Messages()))
}

func TestSelectSwitchKeepsOneLiveSubscription(t *testing.T) {
	history := &fakeHistory{messages: map[string][]client.Message{}}
	subscriber := &fakeSubscriber{}
	s := New(history, &fakeSender{}, subscriber, "u1", nil)
	defer s.Close()

	require.NoError(t, s.Select(context.Background(), "c1"))
	require.NoError(t, s.Select(context.Background(), "c2"))

	live := subscriber.live()
	require.Len(t, live, 1)
	assert.Equal(t, "c2", live[0].conversationID)
}

func TestPushedMessagesMergeSortedAndDeduplicated(t *testing.T) {
	history := &fakeHistory{messages: map[string][]client.Message{
		"c1": {message("m2", 2*time.Minute, "u2")},
	}}
	subscriber := &fakeSubscriber{}
	s := New(history, &fakeSender{}, subscriber, "u1", nil)
	defer s.Close()

	require.NoError(t, s.Select(context.Background(), "c1"))
	sub := subscriber.live()[0]

	// A duplicate of an existing id, an out-of-order older message, and a
	// newer one
	sub.events <- message("m2", 2*time.Minute, "u2")
	sub.events <- message("m1", time.Minute, "u1")
	sub.events <- message("m3", 3*time.Minute, "u2")

	require.Eventually(t, func() bool {
		return len(s.Messages()) == 3
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(s.Messages()))
}

func TestMessagesFromSupersededSelectionAreIgnored(t *testing.T) {
	history := &fakeHistory{messages: map[string][]client.Message{}}
	subscriber := &fakeSubscriber{}
	s := New(history, &fakeSender{}, subscriber, "u1", nil)
	defer s.Close()

	require.NoError(t, s.Select(context.Background(), "c1"))
	old := subscriber.live()[0]
	require.NoError(t, s.Select(context.Background(), "c2"))

	// The old channel is closed by the switch; anything it would have
	// delivered must not appear in the new list
	assert.True(t, old.isClosed())
	assert.Empty(t, s.Messages())
}

func TestSendAppendsServerEchoOnce(t *testing.T) {
	history := &fakeHistory{messages: map[string][]client.Message{}}
	subscriber := &fakeSubscriber{}
	echo := message("m1", time.Minute, "u1")
	s := New(history, &fakeSender{reply: echo}, subscriber, "u1", nil)
	defer s.Close()

	require.NoError(t, s.Select(context.Background(), "c1"))

	sent, err := s.Send(context.Background(), "oi")
	require.NoError(t, err)
	assert.Equal(t, "m1", sent.ID)
	assert.Equal(t, []string{"m1"}, ids(s.Messages()))

	// The same message arriving over the push channel is a no-op
	subscriber.live()[0].events <- echo
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, s.Messages(), 1)
}

func TestFailedSendLeavesListUnchanged(t *testing.T) {
	history := &fakeHistory{messages: map[string][]client.Message{}}
	s := New(history, &fakeSender{err: errors.New("boom")}, &fakeSubscriber{}, "u1", nil)
	defer s.Close()

	require.NoError(t, s.Select(context.Background(), "c1"))

	_, err := s.Send(context.Background(), "oi")
	require.Error(t, err)
	assert.Empty(t, s.Messages())
}

func TestFailedHistoryFetchLeavesListEmpty(t *testing.T) {
	history := &fakeHistory{err: errors.New("boom")}
	s := New(history, &fakeSender{}, &fakeSubscriber{}, "u1", nil)
	defer s.Close()

	err := s.Select(context.Background(), "c1")
	require.Error(t, err)
	assert.Empty(t, s.Messages())
}

func TestIsMineToleratesNumericSenderIDs(t *testing.T) {
	s := New(&fakeHistory{}, &fakeSender{}, &fakeSubscriber{}, "42", nil)
	defer s.Close()

	var numeric client.Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m1","sender_id":42}`), &numeric))
	assert.True(t, s.IsMine(numeric))

	assert.False(t, s.IsMine(message("m2", 0, "u9")))
}
