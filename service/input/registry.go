// Package input keeps the short-lived table of awaited text messages. A
// decision path registers interest in the next message authored by one user
// in one channel; the first matching message resolves it. Entries are removed
// on resolution, timeout or cancellation so the table never outgrows the set
// of open decisions.
package input

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned when no matching message arrived within the window.
	ErrTimeout = errors.New("input: timed out waiting for message")

	// ErrAlreadyAwaiting is returned when the key already has a waiter.
	ErrAlreadyAwaiting = errors.New("input: already awaiting message")
)

// Key identifies an awaited message
type Key struct {
	ChannelID string
	AuthorID  string
}

// Message represents an inbound text message
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string
}

// Key returns message routing key
func (m *Message) Key() Key {
	return Key{ChannelID: m.ChannelID, AuthorID: m.AuthorID}
}

type waiter struct {
	ch chan *Message
}

// Registry routes inbound messages to pending waiters
type Registry struct {
	mu      sync.Mutex
	pending map[Key]*waiter
}

// New creates a registry
func New() *Registry {
	return &Registry{pending: make(map[Key]*waiter)}
}

// Await blocks until a message matching key is offered, the timeout elapses or ctx is done.
func (r *Registry) Await(ctx context.Context, key Key, timeout time.Duration) (*Message, error) {
	w := &waiter{ch: make(chan *Message, 1)}
	r.mu.Lock()
	if _, ok := r.pending[key]; ok {
		r.mu.Unlock()
		return nil, ErrAlreadyAwaiting
	}
	r.pending[key] = w
	r.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.ch:
		return msg, nil
	case <-timer.C:
		return r.abandon(key, w, ErrTimeout)
	case <-ctx.Done():
		return r.abandon(key, w, ctx.Err())
	}
}

// abandon removes the waiter; a message offered concurrently still wins.
func (r *Registry) abandon(key Key, w *waiter, cause error) (*Message, error) {
	r.mu.Lock()
	if r.pending[key] == w {
		delete(r.pending, key)
		r.mu.Unlock()
		return nil, cause
	}
	r.mu.Unlock()
	return <-w.ch, nil
}

// Offer hands msg to the waiter registered for its key and reports whether it was consumed.
func (r *Registry) Offer(msg *Message) bool {
	if msg == nil {
		return false
	}
	key := msg.Key()
	r.mu.Lock()
	w, ok := r.pending[key]
	if ok {
		delete(r.pending, key)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	w.ch <- msg
	return true
}

// Len returns number of open waiters
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
