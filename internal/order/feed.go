package order

import (
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/menyraclub/menyra/pkg"
)

const feedBufferSize = 100

type feedSubscriber struct {
	restaurantID string
	ch           chan pkg.OrderEvent
}

// Feed fans order events out to live dashboard and status-page streams. Each
// subscriber gets a buffered channel scoped to one restaurant; a subscriber
// that stops draining has events dropped rather than blocking the broadcast.
type Feed struct {
	logger apt.Logger

	mu          sync.RWMutex
	subscribers map[string]*feedSubscriber
}

func NewFeed(logger apt.Logger) *Feed {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Feed{
		logger:      logger,
		subscribers: make(map[string]*feedSubscriber),
	}
}

// Subscribe registers a listener for one restaurant's order events. The
// returned cancel func must be called when the listener goes away.
func (f *Feed) Subscribe(restaurantID string) (<-chan pkg.OrderEvent, func()) {
	id := uuid.New().String()
	sub := &feedSubscriber{
		restaurantID: restaurantID,
		ch:           make(chan pkg.OrderEvent, feedBufferSize),
	}

	f.mu.Lock()
	f.subscribers[id] = sub
	f.mu.Unlock()

	f.logger.Debug("order feed subscriber added", "subscriber_id", id, "restaurant_id", restaurantID)

	cancel := func() {
		f.mu.Lock()
		if s, ok := f.subscribers[id]; ok {
			delete(f.subscribers, id)
			close(s.ch)
		}
		f.mu.Unlock()
	}

	return sub.ch, cancel
}

// Broadcast delivers an event to every subscriber of its restaurant.
func (f *Feed) Broadcast(evt pkg.OrderEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for id, sub := range f.subscribers {
		if sub.restaurantID != evt.RestaurantID {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			f.logger.Debug("order feed subscriber full, dropping event", "subscriber_id", id)
		}
	}
}

// SubscriberCount reports active listeners, used by health reporting.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}
