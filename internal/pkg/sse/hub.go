package sse

import (
	"sync"
	"sync/atomic"
)

// Event is one message for the subscribers of a topic. Topic is the topic it was
// published on, also when it reaches a catch-all subscriber.
type Event struct {
	Topic string
	Event string
	Data  interface{}
}

// Hub fans events out to topic subscribers. Subscribers of the catch-all topic receive
// every event published on any topic.
type Hub struct {
	mu          sync.RWMutex
	catchAll    string
	subscribers map[string]map[chan Event]struct{}
	dropped     atomic.Uint64
}

// NewHub creates a Hub whose catch-all topic is catchAll. An empty catchAll disables
// the fan-out.
func NewHub(catchAll string) *Hub {
	return &Hub{
		catchAll:    catchAll,
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber of topic and returns its channel and an idempotent
// cleanup that closes it.
func (h *Hub) Subscribe(topic string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan Event]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[topic], ch)
			close(ch)
			if len(h.subscribers[topic]) == 0 {
				delete(h.subscribers, topic)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers event to the subscribers of topic and of the catch-all topic. Each
// subscriber gets it once. A subscriber whose buffer is full misses the event.
func (h *Hub) Publish(topic string, event Event) {
	event.Topic = topic

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.send(h.subscribers[topic], event)
	if h.catchAll != "" && topic != h.catchAll {
		h.send(h.subscribers[h.catchAll], event)
	}
}

func (h *Hub) send(subs map[chan Event]struct{}, event Event) {
	for ch := range subs {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped is the number of deliveries skipped because a subscriber was not keeping up.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// SubscriberCount returns the number of active subscribers of a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[topic])
}

// TotalSubscribers returns the total number of active subscribers across all topics
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
