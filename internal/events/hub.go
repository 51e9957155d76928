package events

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

const subscriberBuffer = 1024

// Message is the wire envelope for a single event.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Hub fans events out to every subscriber as encoded JSON frames. A
// subscriber whose buffer fills is evicted and its channel closed, so it
// never sees a stream with frames missing from the middle.
type Hub struct {
	subMu       sync.Mutex
	subscribers map[chan []byte]struct{}

	evicted atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan []byte]struct{}),
	}
}

// Emit encodes the event once and broadcasts it to all subscribers.
func (h *Hub) Emit(name string, payload any) {
	frame, err := json.Marshal(Message{Event: name, Payload: payload})
	if err != nil {
		log.Printf("events: marshal %s: %v", name, err)
		return
	}

	h.subMu.Lock()
	defer h.subMu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- frame:
		default:
			delete(h.subscribers, ch)
			close(ch)
			n := h.evicted.Add(1)
			log.Printf("events: subscriber too slow, disconnected (%d so far)", n)
		}
	}
}

// Subscribe returns a channel of encoded frames and an unsubscribe function.
// The channel is closed by unsubscribe or when the hub evicts the subscriber.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	h.subMu.Lock()
	h.subscribers[ch] = struct{}{}
	h.subMu.Unlock()

	unsub := func() {
		h.subMu.Lock()
		defer h.subMu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
	return ch, unsub
}

// Subscribers returns the current number of subscribers.
func (h *Hub) Subscribers() int {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	return len(h.subscribers)
}

// Evicted returns how many subscribers were disconnected for falling behind.
func (h *Hub) Evicted() uint64 {
	return h.evicted.Load()
}

var _ Emitter = (*Hub)(nil)
