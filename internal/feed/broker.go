// Package feed pushes link discovery events to WebSocket subscribers. It
// replaces the on-page overlay: UI clients connect once and receive every
// insert/update for every session.
package feed

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/dgnsrekt/video_agent/internal/engine"
)

const subscriberBufSize = 256

// Event is one link lifecycle notification.
type Event struct {
	Type      string          `json:"type"` // "insert" or "update"
	SessionID string          `json:"session_id"`
	Link      engine.LinkView `json:"link"`
}

// Broker fans out link events to all subscribers. Slow consumers have
// events dropped rather than backing up the engine.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      atomic.Int64
}

func NewBroker() *Broker {
	return &Broker{subscribers: make(map[int64]chan Event)}
}

// Subscribe registers a client. The returned channel is buffered.
func (b *Broker) Subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	ch, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers without blocking.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// ClientCount returns the number of active subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// LinkUpserted implements engine.Sink.
func (b *Broker) LinkUpserted(sessionID string, link engine.LinkView, inserted bool) {
	evtType := "update"
	if inserted {
		evtType = "insert"
	}
	b.Publish(Event{Type: evtType, SessionID: sessionID, Link: link})
}

func (e Event) encode() ([]byte, error) {
	return json.Marshal(e)
}
