package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/sfxbot/service/platform"
)

// Reply represents a recorded interaction answer
type Reply struct {
	Content string
	Private bool
	Edited  bool
}

// Responder implements platform.Responder in memory
type Responder struct {
	mu        sync.Mutex
	deferred  bool
	private   bool
	responded bool
	replies   []*Reply
	failReply error
}

// NewResponder creates a responder
func NewResponder() *Responder {
	return &Responder{}
}

// FailReply makes Reply and Defer fail with err
func (r *Responder) FailReply(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failReply = err
}

func (r *Responder) Defer(ctx context.Context, private bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReply != nil {
		return r.failReply
	}
	if r.responded {
		return errors.New("interaction already acknowledged")
	}
	r.deferred, r.private, r.responded = true, private, true
	return nil
}

func (r *Responder) Reply(ctx context.Context, content string, private bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReply != nil {
		return r.failReply
	}
	if r.responded {
		return errors.New("interaction already acknowledged")
	}
	r.responded, r.private = true, private
	r.replies = append(r.replies, &Reply{Content: content, Private: private})
	return nil
}

func (r *Responder) EditReply(ctx context.Context, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.responded {
		return errors.New("interaction not acknowledged")
	}
	r.replies = append(r.replies, &Reply{Content: content, Private: r.private, Edited: true})
	return nil
}

func (r *Responder) Responded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responded
}

// Replies returns recorded answers in order
func (r *Responder) Replies() []*Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Reply(nil), r.replies...)
}

// Last returns the latest answer content or empty
func (r *Responder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return ""
	}
	return r.replies[len(r.replies)-1].Content
}

var _ platform.Responder = (*Responder)(nil)
