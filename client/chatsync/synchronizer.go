// Package chatsync maintains the live message list for one active
// conversation: a one-shot history fetch combined with a push subscription,
// merged into a single list that stays chronologically ascending and free
// of duplicate IDs.
package chatsync

import (
	"context"
	"sort"
	"sync"

	"github.com/giveme-app/giveme-api/client"
)

// History fetches a conversation's messages, newest first
type History interface {
	Messages(ctx context.Context, conversationID string) ([]client.Message, error)
}

// Sender posts a message and returns the server-created row
type Sender interface {
	SendMessage(ctx context.Context, conversationID, body string) (client.Message, error)
}

// Subscription is one live push channel scoped to a conversation.
// Events is closed when the subscription ends.
type Subscription interface {
	Events() <-chan client.Message
	Close() error
}

// Subscriber opens push subscriptions
type Subscriber interface {
	Subscribe(ctx context.Context, conversationID string) (Subscription, error)
}

// Synchronizer holds the message list for the active conversation. At most
// one subscription is live at a time; selecting a conversation tears the
// previous one down before anything else happens.
type Synchronizer struct {
	history    History
	sender     Sender
	subscriber Subscriber
	selfID     string
	onChange   func([]client.Message)

	mu             sync.Mutex
	conversationID string
	messages       []client.Message
	subscription   Subscription
	generation     uint64
}

// New creates a Synchronizer. selfID is the session's user identifier used
// by IsMine. onChange may be nil; when set it is called with the current
// list after every change.
func New(history History, sender Sender, subscriber Subscriber, selfID string, onChange func([]client.Message)) *Synchronizer {
	return &Synchronizer{
		history:    history,
		sender:     sender,
		subscriber: subscriber,
		selfID:     selfID,
		onChange:   onChange,
	}
}

// Select makes conversationID the active conversation: the previous
// subscription is released, the list is cleared, history is fetched and
// reversed into ascending order, and a new subscription is opened. A Select
// that is overtaken by a newer Select abandons its results.
func (s *Synchronizer) Select(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.releaseLocked()
	s.conversationID = conversationID
	s.messages = nil
	s.mu.Unlock()
	s.notify()

	fetched, err := s.history.Messages(ctx, conversationID)
	if err != nil {
		return err
	}

	// Server order is newest first
	ascending := make([]client.Message, len(fetched))
	for i, message := range fetched {
		ascending[len(fetched)-1-i] = message
	}
	sort.SliceStable(ascending, func(i, j int) bool {
		if !ascending[i].CreatedAt.Equal(ascending[j].CreatedAt) {
			return ascending[i].CreatedAt.Before(ascending[j].CreatedAt)
		}
		return ascending[i].ID < ascending[j].ID
	})

	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		return nil
	}
	s.messages = ascending
	s.mu.Unlock()
	s.notify()

	subscription, err := s.subscriber.Subscribe(ctx, conversationID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		subscription.Close()
		return nil
	}
	s.subscription = subscription
	s.mu.Unlock()

	go s.consume(generation, subscription)
	return nil
}

// consume merges pushed messages until the subscription closes or a newer
// selection supersedes this one
func (s *Synchronizer) consume(generation uint64, subscription Subscription) {
	for message := range subscription.Events() {
		s.mu.Lock()
		if s.generation != generation {
			s.mu.Unlock()
			return
		}
		changed := s.mergeLocked(message)
		s.mu.Unlock()
		if changed {
			s.notify()
		}
	}
}

// mergeLocked inserts message in ascending (CreatedAt, ID) position unless
// its ID is already present
func (s *Synchronizer) mergeLocked(message client.Message) bool {
	for _, existing := range s.messages {
		if existing.ID == message.ID {
			return false
		}
	}

	position := sort.Search(len(s.messages), func(i int) bool {
		if !s.messages[i].CreatedAt.Equal(message.CreatedAt) {
			return s.messages[i].CreatedAt.After(message.CreatedAt)
		}
		return s.messages[i].ID > message.ID
	})

	s.messages = append(s.messages, client.Message{})
	copy(s.messages[position+1:], s.messages[position:])
	s.messages[position] = message
	return true
}

// Send posts body to the active conversation and appends the server-echoed
// message. No optimistic append: a failed send changes nothing, so the
// caller keeps the compose text for resubmission.
func (s *Synchronizer) Send(ctx context.Context, body string) (client.Message, error) {
	s.mu.Lock()
	conversationID := s.conversationID
	generation := s.generation
	s.mu.Unlock()

	if conversationID == "" {
		return client.Message{}, context.Canceled
	}

	message, err := s.sender.SendMessage(ctx, conversationID, body)
	if err != nil {
		return client.Message{}, err
	}

	s.mu.Lock()
	if s.generation == generation {
		if s.mergeLocked(message) {
			s.mu.Unlock()
			s.notify()
			return message, nil
		}
	}
	s.mu.Unlock()
	return message, nil
}

// Messages returns the current list in display order
func (s *Synchronizer) Messages() []client.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]client.Message, len(s.messages))
	copy(snapshot, s.messages)
	return snapshot
}

// IsMine reports whether a message was sent by the current user. Sender
// identifiers may arrive as strings or numbers, so the comparison goes
// through the string form.
func (s *Synchronizer) IsMine(message client.Message) bool {
	return message.SenderID.String() == s.selfID
}

// Close releases the active subscription and clears the list
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.generation++
	s.releaseLocked()
	s.conversationID = ""
	s.messages = nil
	s.mu.Unlock()
}

func (s *Synchronizer) releaseLocked() {
	if s.subscription != nil {
		s.subscription.Close()
		s.subscription = nil
	}
}

func (s *Synchronizer) notify() {
	if s.onChange == nil {
		return
	}
	s.onChange(s.Messages())
}
