package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/sfxbot/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	// MaxRetries is the number of redeliveries after a Nack; 0 means a single attempt.
	MaxRetries  int
	RetryDelay  time.Duration
	DeadLetter  bool
	QueueBuffer int
	// OnDeadLetter is invoked for every message moved to the dead letter list.
	OnDeadLetter func(id string, err error)
}

// DefaultConfig returns a single-attempt configuration with dead lettering
func DefaultConfig() Config {
	return Config{
		MaxRetries:  0,
		RetryDelay:  100 * time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 100,
	}
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id        string
	payload   T
	queue     *Queue[T]
	attempt   int
	mu        sync.Mutex
	processed bool
	createdAt time.Time
}

func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	return nil
}

// Nack records a failure; the message is redelivered while retries remain,
// otherwise it is dead lettered.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true

	if m.attempt <= m.queue.config.MaxRetries {
		retry := &Message[T]{
			id:        m.id,
			payload:   m.payload,
			queue:     m.queue,
			attempt:   m.attempt + 1,
			createdAt: time.Now(),
		}
		go func() {
			time.Sleep(m.queue.config.RetryDelay)
			m.queue.enqueue(retry)
		}()
		return nil
	}
	m.queue.deadLetter(m, err)
	return nil
}

// Queue implements an in-memory messaging.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
	closed   chan struct{}
	once     sync.Once
	dlqMu    sync.Mutex
	dlq      []*messaging.DeadLetter[T]
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
		closed:   make(chan struct{}),
	}
}

// Publish adds a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if t == nil {
		return fmt.Errorf("nil payload")
	}
	msg := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		queue:     q,
		attempt:   1,
		createdAt: time.Now(),
	}
	select {
	case <-q.closed:
		return fmt.Errorf("queue closed")
	default:
	}
	select {
	case <-q.closed:
		return fmt.Errorf("queue closed")
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) enqueue(msg *Message[T]) {
	select {
	case <-q.closed:
		q.deadLetter(msg, fmt.Errorf("queue closed"))
	case q.messages <- msg:
	}
}

func (q *Queue[T]) deadLetter(msg *Message[T], err error) {
	if !q.config.DeadLetter {
		return
	}
	q.dlqMu.Lock()
	q.dlq = append(q.dlq, &messaging.DeadLetter[T]{ID: msg.id, Payload: msg.payload, Err: err, Attempt: msg.attempt})
	q.dlqMu.Unlock()
	if q.config.OnDeadLetter != nil {
		q.config.OnDeadLetter(msg.id, err)
	}
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case <-q.closed:
		return nil, fmt.Errorf("queue closed")
	default:
	}
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-q.closed:
		return nil, fmt.Errorf("queue closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting messages; pending consumers return an error.
func (q *Queue[T]) Close() {
	q.once.Do(func() { close(q.closed) })
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DeadLetters returns a copy of the dead letter list
func (q *Queue[T]) DeadLetters() []*messaging.DeadLetter[T] {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return append([]*messaging.DeadLetter[T](nil), q.dlq...)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
