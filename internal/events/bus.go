// Package events broadcasts process-wide notifications to every open screen.
package events

import (
	"sync"

	"github.com/mmcdole/filmora/internal/domain"
)

// Event is anything published on the bus. Currently only
// domain.FavoritesChanged is published.
type Event interface{}

const subscriberBuffer = 16

// Bus fans each published event out to all current subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new listener. The returned cancel func unregisters it
// and closes the channel; calling it more than once is safe.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers e to every subscriber (non-blocking if a subscriber's
// buffer is full).
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default: // Non-blocking if channel full
		}
	}
}

// PublishFavorite is shorthand for publishing a domain.FavoritesChanged.
func (b *Bus) PublishFavorite(movieID int, favorited bool) {
	b.Publish(domain.FavoritesChanged{MovieID: movieID, Favorited: favorited})
}

// Subscribers returns the number of registered listeners.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
