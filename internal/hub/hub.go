// Package hub manages live client connections, their topic memberships,
// and both global and topic-scoped event delivery.
package hub

import (
	"sync"
	"sync/atomic"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/observability"
)

const connBufSize = 64

// Event is a named message delivered to connections. Payload is JSON-encoded
// at the transport edge.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Topic returns the room identifier for a disaster.
func Topic(disasterID string) string {
	return "disaster:" + disasterID
}

// Hub tracks connections and their topic subscriptions. All delivery is
// non-blocking: a connection whose buffer is full drops the event rather
// than stalling or failing the publish for everyone else.
type Hub struct {
	metrics *observability.Metrics
	nextID  atomic.Uint64

	mu     sync.RWMutex
	conns  map[uint64]chan Event
	topics map[string]map[uint64]struct{} // topic -> member ids
	joined map[uint64]map[string]struct{} // conn id -> topics, for cleanup
}

func New(metrics *observability.Metrics) *Hub {
	return &Hub{
		metrics: metrics,
		conns:   make(map[uint64]chan Event),
		topics:  make(map[string]map[uint64]struct{}),
		joined:  make(map[uint64]map[string]struct{}),
	}
}

// Register adds a connection with no subscriptions and returns its id and
// receive channel.
func (h *Hub) Register() (uint64, <-chan Event) {
	id := h.nextID.Add(1)
	ch := make(chan Event, connBufSize)

	h.mu.Lock()
	h.conns[id] = ch
	h.mu.Unlock()

	h.metrics.ConnectedClients.Inc()
	return id, ch
}

// Unregister removes a connection and all of its memberships, closing its
// channel. Safe to call concurrently with in-flight publishes; a publish
// that lost the race is silently dropped for this connection.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	ch, ok := h.conns[id]
	if ok {
		delete(h.conns, id)
		for topic := range h.joined[id] {
			h.removeMember(topic, id)
		}
		delete(h.joined, id)
		close(ch)
	}
	h.mu.Unlock()

	if ok {
		h.metrics.ConnectedClients.Dec()
	}
}

// Join subscribes a connection to a topic. Unknown connections are ignored.
func (h *Hub) Join(id uint64, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[id]; !ok {
		return
	}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[uint64]struct{})
	}
	h.topics[topic][id] = struct{}{}
	if h.joined[id] == nil {
		h.joined[id] = make(map[string]struct{})
	}
	h.joined[id][topic] = struct{}{}
}

// Leave removes a single topic membership.
func (h *Hub) Leave(id uint64, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeMember(topic, id)
	if set := h.joined[id]; set != nil {
		delete(set, topic)
	}
}

// removeMember must be called with h.mu held.
func (h *Hub) removeMember(topic string, id uint64) {
	set := h.topics[topic]
	if set == nil {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(h.topics, topic)
	}
}

// Broadcast delivers an event to every connection.
func (h *Hub) Broadcast(name string, payload any) {
	evt := Event{Name: name, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.conns {
		h.send(ch, evt)
	}
	h.metrics.EventsDelivered.WithLabelValues("global").Add(float64(len(h.conns)))
}

// PublishToTopic delivers an event only to connections that joined the
// topic. Connections that never joined receive nothing.
func (h *Hub) PublishToTopic(topic, name string, payload any) {
	evt := Event{Name: name, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.topics[topic]
	for id := range members {
		if ch, ok := h.conns[id]; ok {
			h.send(ch, evt)
		}
	}
	h.metrics.EventsDelivered.WithLabelValues("topic").Add(float64(len(members)))
}

func (h *Hub) send(ch chan Event, evt Event) {
	select {
	case ch <- evt:
	default:
		// Slow consumer: drop rather than block the publish.
		h.metrics.EventsDropped.Inc()
	}
}

// ConnCount returns the number of registered connections.
func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// TopicMembers returns the number of connections joined to a topic.
func (h *Hub) TopicMembers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Close unregisters every connection, closing all channels so transport
// write loops exit.
func (h *Hub) Close() {
	h.mu.Lock()
	n := len(h.conns)
	for id, ch := range h.conns {
		delete(h.conns, id)
		delete(h.joined, id)
		close(ch)
	}
	h.topics = make(map[string]map[uint64]struct{})
	h.mu.Unlock()

	h.metrics.ConnectedClients.Sub(float64(n))
}
