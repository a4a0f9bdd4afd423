// Package notify delivers staff notifications after a domain mutation has
// committed. Delivery is best effort: callers never wait on it and sink
// failures are only logged.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"venuepos/backend/internal/domain"
)

const (
	DefaultBuffer  = 256
	deliverTimeout = 5 * time.Second
)

// Envelope is the wire format shared by every external sink.
type Envelope struct {
	EventID      string              `json:"event_id"`
	EventType    string              `json:"event_type"`
	EventVersion int                 `json:"event_version"`
	OccurredAt   time.Time           `json:"occurred_at"`
	Producer     string              `json:"producer"`
	Payload      domain.Notification `json:"payload"`
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

type Sink interface {
	Name() string
	Deliver(ctx context.Context, env Envelope) error
}

type Dispatcher struct {
	producer string
	sinks    []Sink
	inbox    chan domain.Notification
	done     chan struct{}

	mu      sync.RWMutex
	closed  bool
	started bool
	dropped atomic.Int64
}

func NewDispatcher(producer string, buffer int, sinks ...Sink) *Dispatcher {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Dispatcher{
		producer: producer,
		sinks:    sinks,
		inbox:    make(chan domain.Notification, buffer),
		done:     make(chan struct{}),
	}
}

// Start launches the delivery worker. It is safe to call once.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	go func() {
		defer close(d.done)
		for n := range d.inbox {
			d.deliver(n)
		}
	}()
}

// Publish enqueues n without blocking. A full inbox drops the event.
func (d *Dispatcher) Publish(_ context.Context, n domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Printf("[notify] WARN: dispatcher closed, dropping %s", n.Type)
		return
	}

	select {
	case d.inbox <- n:
	default:
		d.dropped.Add(1)
		log.Printf("[notify] WARN: inbox full, dropping %s id=%s", n.Type, n.ID)
	}
}

func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting events, flushes what is queued and closes sinks that
// hold connections.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	started := d.started
	close(d.inbox)
	d.mu.Unlock()

	if started {
		<-d.done
	} else {
		for n := range d.inbox {
			d.deliver(n)
		}
	}

	for _, s := range d.sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				log.Printf("[notify] WARN: closing sink %s: %v", s.Name(), err)
			}
		}
	}
}

func (d *Dispatcher) deliver(n domain.Notification) {
	occurred := n.CreatedAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    n.Type,
		EventVersion: 1,
		OccurredAt:   occurred,
		Producer:     d.producer,
		Payload:      n,
	}

	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		if err := s.Deliver(ctx, env); err != nil {
			log.Printf("[notify] WARN: sink %s failed for %s id=%s: %v", s.Name(), n.Type, n.ID, err)
		}
		cancel()
	}
}
