package order

import (
	"context"
	"encoding/json"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/menyraclub/menyra/pkg"
)

// EventSubscriber bridges the order events topic into the in-process feed so
// HTTP streams see events regardless of which instance produced them.
type EventSubscriber struct {
	logger     apt.Logger
	subscriber events.Subscriber
	feed       *Feed
}

func NewEventSubscriber(subscriber events.Subscriber, feed *Feed, logger apt.Logger) *EventSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &EventSubscriber{
		logger:     logger,
		subscriber: subscriber,
		feed:       feed,
	}
}

func (s *EventSubscriber) Start(ctx context.Context) error {
	err := s.subscriber.Subscribe(ctx, pkg.OrderEventsTopic, s.handleEvent)
	if err != nil {
		s.logger.Error("cannot subscribe to order events", "error", err)
		return err
	}

	s.logger.Info("subscribed to order events", "topic", pkg.OrderEventsTopic)
	return nil
}

func (s *EventSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt pkg.OrderEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Error("cannot unmarshal order event", "error", err)
		return err
	}

	s.logger.Debug("order event received",
		"event_type", evt.EventType,
		"restaurant_id", evt.RestaurantID,
		"order_id", evt.OrderID,
		"status", evt.Status)

	s.feed.Broadcast(evt)
	return nil
}
