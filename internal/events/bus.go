// Package events is the in-process publish/subscribe surface the UI layer
// observes. Delivery is synchronous: Publish returns after every handler ran.
package events

import "sync"

// Topics published by the sync engine. The payload is always the fresh
// snapshot for the collection.
const (
	TopicCatalogSynced        = "catalog.synced"
	TopicOrderSynced          = "order.synced"
	TopicProgressSynced       = "progress.synced"
	TopicNotificationsUpdated = "notifications.updated"
	TopicFollowingSynced      = "following.synced"
)

// Handler receives the new snapshot for a topic
type Handler func(payload any)

// Bus is a synchronous topic/handler registry. Handlers are expected to be
// registered at construction time, before the engine starts publishing.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a topic
func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// Publish delivers payload to every handler registered for topic, in
// registration order, on the caller's goroutine.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	handlers := b.handlers[topic]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}
