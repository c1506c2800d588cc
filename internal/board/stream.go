package board

import (
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const subscriberBuffer = 16

// StreamEvent is one message on the board change feed.
type StreamEvent struct {
	Name string `json:"name"`
	Data string `json:"data,omitempty"`
}

// Broadcaster fans board notifications out to connected rendering clients.
// Slow subscribers are skipped rather than allowed to stall the feed; clients
// re-pull the full projection on every change event, so a dropped signal is
// recovered by the next one.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[string]chan StreamEvent
	logger apt.Logger
}

func NewBroadcaster(logger apt.Logger) *Broadcaster {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Broadcaster{
		subs:   make(map[string]chan StreamEvent),
		logger: logger,
	}
}

// Subscribe registers a new stream client and returns its handle and channel.
func (b *Broadcaster) Subscribe() (string, <-chan StreamEvent) {
	id := uuid.NewString()
	ch := make(chan StreamEvent, subscriberBuffer)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	return id, ch
}

// Unsubscribe drops a stream client.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()

	if ok {
		close(ch)
	}
}

// Publish delivers evt to every subscriber without blocking.
func (b *Broadcaster) Publish(evt StreamEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			b.logger.Debug("stream subscriber lagging, dropping event", "subscriber", id, "event", evt.Name)
		}
	}
}

// SubscriberCount returns the number of connected stream clients.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// StreamNotifier delivers toasts over the change feed so rendering clients
// can show them.
type StreamNotifier struct {
	broadcaster *Broadcaster
}

func NewStreamNotifier(broadcaster *Broadcaster) *StreamNotifier {
	return &StreamNotifier{broadcaster: broadcaster}
}

func (n *StreamNotifier) Toast(message string) {
	n.broadcaster.Publish(StreamEvent{Name: "toast", Data: message})
}
