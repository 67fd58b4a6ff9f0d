// Package memory provides an in-process platform adapter that records every
// post, edit and direct message. It backs the workflow tests and local dry runs.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/viant/sfxbot/service/platform"
)

// DirectMessage represents a recorded direct message
type DirectMessage struct {
	UserID  string
	Content string
}

// Messenger implements platform.Messenger in memory
type Messenger struct {
	mu        sync.Mutex
	seq       int
	channels  map[string]bool
	messages  map[string]*platform.Message
	posts     []*platform.Post
	edits     []*platform.Edit
	dms       []*DirectMessage
	dmAttempt int
	closedDMs map[string]bool
	failSend  map[string]error
	failFetch error
}

// NewMessenger creates a messenger knowing the supplied channels
func NewMessenger(channelIDs ...string) *Messenger {
	ret := &Messenger{
		channels:  make(map[string]bool),
		messages:  make(map[string]*platform.Message),
		closedDMs: make(map[string]bool),
		failSend:  make(map[string]error),
	}
	for _, id := range channelIDs {
		ret.channels[id] = true
	}
	return ret
}

// CloseDMs makes direct messages to userID fail with platform.ErrForbidden
func (m *Messenger) CloseDMs(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closedDMs[userID] = true
}

// FailSend makes Send to channelID fail with err
func (m *Messenger) FailSend(channelID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSend[channelID] = err
}

// FailFetch makes every Fetch fail with err
func (m *Messenger) FailFetch(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFetch = err
}

// Put stores a message as if it was posted by someone else
func (m *Messenger) Put(msg *platform.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[msg.ChannelID] = true
	m.messages[msg.ID] = cloneMessage(msg)
}

func (m *Messenger) Send(ctx context.Context, post *platform.Post) (*platform.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failSend[post.ChannelID]; ok {
		return nil, err
	}
	if !m.channels[post.ChannelID] {
		return nil, fmt.Errorf("channel %v: %w", post.ChannelID, platform.ErrNotFound)
	}
	m.seq++
	msg := &platform.Message{
		ID:          strconv.Itoa(m.seq),
		ChannelID:   post.ChannelID,
		AuthorID:    "bot",
		Content:     post.Content,
		Attachments: post.Attachments,
		Controls:    append([]*platform.Control(nil), post.Controls...),
		CreatedAt:   time.Now(),
	}
	m.messages[msg.ID] = msg
	m.posts = append(m.posts, post)
	return cloneMessage(msg), nil
}

func (m *Messenger) Edit(ctx context.Context, channelID, messageID string, edit *platform.Edit) (*platform.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok || msg.ChannelID != channelID {
		return nil, fmt.Errorf("message %v: %w", messageID, platform.ErrNotFound)
	}
	if edit.Content != nil {
		msg.Content = *edit.Content
	}
	if edit.Controls != nil {
		msg.Controls = append([]*platform.Control(nil), (*edit.Controls)...)
	}
	m.edits = append(m.edits, edit)
	return cloneMessage(msg), nil
}

func (m *Messenger) Fetch(ctx context.Context, channelID, messageID string) (*platform.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFetch != nil {
		return nil, m.failFetch
	}
	msg, ok := m.messages[messageID]
	if !ok || msg.ChannelID != channelID {
		return nil, fmt.Errorf("message %v: %w", messageID, platform.ErrNotFound)
	}
	return cloneMessage(msg), nil
}

func (m *Messenger) DirectMessage(ctx context.Context, userID, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dmAttempt++
	if m.closedDMs[userID] {
		return fmt.Errorf("dm %v: %w", userID, platform.ErrForbidden)
	}
	m.dms = append(m.dms, &DirectMessage{UserID: userID, Content: content})
	return nil
}

// Posts returns posts sent to channelID
func (m *Messenger) Posts(channelID string) []*platform.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ret []*platform.Post
	for _, post := range m.posts {
		if post.ChannelID == channelID {
			ret = append(ret, post)
		}
	}
	return ret
}

// Message returns current state of a stored message
func (m *Messenger) Message(messageID string) *platform.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMessage(m.messages[messageID])
}

// Edits returns number of applied edits
func (m *Messenger) Edits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.edits)
}

// DirectMessages returns delivered direct messages
func (m *Messenger) DirectMessages() []*DirectMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*DirectMessage(nil), m.dms...)
}

// DirectMessageAttempts returns number of delivery attempts including failed ones
func (m *Messenger) DirectMessageAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dmAttempt
}

func cloneMessage(msg *platform.Message) *platform.Message {
	if msg == nil {
		return nil
	}
	ret := *msg
	ret.Controls = append([]*platform.Control(nil), msg.Controls...)
	ret.Attachments = append(ret.Attachments[:0:0], msg.Attachments...)
	return &ret
}

var _ platform.Messenger = (*Messenger)(nil)
