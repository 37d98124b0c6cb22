// Package notify carries fire-and-forget outcome messages from the core to
// whichever surface is presenting them.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/joescharf/todo/internal/models"
)

// DefaultBuffer is the queue capacity used when none is configured.
const DefaultBuffer = 64

// Sink receives notifications. Implementations must not block.
type Sink interface {
	Notify(message string, severity models.Severity)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(message string, severity models.Severity)

// Notify calls f.
func (f SinkFunc) Notify(message string, severity models.Severity) { f(message, severity) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(string, models.Severity) {})

// Queue is a bounded Sink. Publishing never blocks; when the buffer is full
// the notification is dropped and logged.
type Queue struct {
	ch  chan models.Notification
	log zerolog.Logger
	now func() time.Time

	mu     sync.Mutex
	closed bool
}

// NewQueue returns a queue holding up to size notifications.
func NewQueue(size int, logger zerolog.Logger) *Queue {
	if size <= 0 {
		size = DefaultBuffer
	}
	return &Queue{
		ch:  make(chan models.Notification, size),
		log: logger,
		now: time.Now,
	}
}

// Notify implements Sink.
func (q *Queue) Notify(message string, severity models.Severity) {
	n := models.Notification{Message: message, Severity: severity, At: q.now().UTC()}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	select {
	case q.ch <- n:
		q.log.Debug().Str("severity", string(severity)).Str("message", message).Msg("notification")
	default:
		q.log.Warn().Str("message", message).Msg("notification queue full, dropping")
	}
}

// C returns the receive side for subscribers.
func (q *Queue) C() <-chan models.Notification {
	return q.ch
}

// Drain returns every pending notification without blocking.
func (q *Queue) Drain() []models.Notification {
	var out []models.Notification
	for {
		select {
		case n, ok := <-q.ch:
			if !ok {
				return out
			}
			out = append(out, n)
		default:
			return out
		}
	}
}

// Close stops accepting notifications and closes the channel.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
