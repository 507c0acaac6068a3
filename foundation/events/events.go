// Package events fans out ledger activity messages to any number of
// subscribers, such as websocket clients.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is how many messages a slow subscriber can fall behind
// before new messages are dropped for it.
const messageBuffer = 100

// Events maintains a mapping of subscriber id to channel.
type Events struct {
	mu     sync.RWMutex
	subs   map[string]chan string
	closed bool
}

// New constructs an Events value for subscribing and publishing.
func New() *Events {
	return &Events{
		subs: make(map[string]chan string),
	}
}

// Subscribe registers the id and returns the channel its messages arrive on.
// Subscribing an id twice returns the same channel. After Shutdown the
// returned channel is already closed.
func (evt *Events) Subscribe(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.subs[id]; exists {
		return ch
	}

	ch := make(chan string, messageBuffer)
	if evt.closed {
		close(ch)
		return ch
	}

	evt.subs[id] = ch
	return ch
}

// Unsubscribe closes and removes the channel registered for the id.
func (evt *Events) Unsubscribe(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.subs, id)
	close(ch)
	return nil
}

// Publish sends the message to every subscriber. It never blocks: a
// subscriber whose buffer is full misses the message.
func (evt *Events) Publish(msg string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers.
func (evt *Events) Subscribers() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subs)
}

// Shutdown closes every subscriber channel and refuses new subscribers.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subs {
		delete(evt.subs, id)
		close(ch)
	}
	evt.closed = true
}
