// Package notify holds short-lived user notifications (toasts) produced by
// board operations until a client drains them.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alphabot-ai/campusboard/internal/clock"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

type Toast struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"`
}

// Queue is a bounded FIFO of toasts. When full, the oldest toast is
// dropped. Toasts older than the TTL are discarded on read.
type Queue struct {
	mu       sync.Mutex
	toasts   []Toast
	capacity int
	ttl      time.Duration
	clock    clock.Clock
}

func NewQueue(capacity int, ttl time.Duration, clk clock.Clock) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Queue{capacity: capacity, ttl: ttl, clock: clk}
}

// Push enqueues a toast and returns it.
func (q *Queue) Push(kind Kind, message string) Toast {
	t := Toast{
		ID:        newID(),
		Kind:      kind,
		Message:   message,
		CreatedAt: clock.Millis(q.clock.Now()),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.expireLocked()
	if len(q.toasts) >= q.capacity {
		q.toasts = q.toasts[len(q.toasts)-q.capacity+1:]
	}
	q.toasts = append(q.toasts, t)
	return t
}

func (q *Queue) Success(message string) Toast { return q.Push(KindSuccess, message) }
func (q *Queue) Info(message string) Toast    { return q.Push(KindInfo, message) }
func (q *Queue) Error(message string) Toast   { return q.Push(KindError, message) }

// Drain returns the live toasts oldest first and empties the queue.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.expireLocked()
	out := q.toasts
	if out == nil {
		out = []Toast{}
	}
	q.toasts = nil
	return out
}

// Len returns the number of live toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.expireLocked()
	return len(q.toasts)
}

func (q *Queue) expireLocked() {
	if q.ttl <= 0 {
		return
	}
	cutoff := clock.Millis(q.clock.Now().Add(-q.ttl))
	i := 0
	for i < len(q.toasts) && q.toasts[i].CreatedAt <= cutoff {
		i++
	}
	if i > 0 {
		q.toasts = append([]Toast(nil), q.toasts[i:]...)
	}
}

func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
